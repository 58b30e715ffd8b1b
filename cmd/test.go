package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/studyloop/studyloop/internal/concepts"
	"github.com/studyloop/studyloop/internal/logging"
	"github.com/studyloop/studyloop/internal/tutor"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Quiz yourself on topics that are due",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTest(cmd)
	},
}

func runTest(cmd *cobra.Command) error {
	ctx := cmd.Context()

	s, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	due, err := s.tutor.TestingCandidates(ctx)
	if err != nil {
		return fmt.Errorf("find due topics: %w", err)
	}
	if len(due) == 0 {
		fmt.Println("Nothing is due for testing right now. Come back later.")
		return nil
	}

	fmt.Println(styleTitle.Render(fmt.Sprintf("%d topic(s) due for testing", len(due))))
	fmt.Println(styleHint.Render(`Answer each question, or type "skip" for the next topic and "exit" to stop.`))

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "answer> ",
		HistoryFile:     historyFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	var asked, correct int
	for _, c := range due {
		question, err := askQuestion(ctx, s.tutor, c)
		if err != nil {
			fmt.Println(styleError.Render("Skipping " + c.Label + ": " + err.Error()))
			continue
		}

		fmt.Println()
		fmt.Println(styleTopic.Render("Topic: " + c.Label))
		fmt.Println(question)

		answer, stop := readAnswer(rl)
		if stop {
			break
		}
		if answer == "" {
			fmt.Println(styleHint.Render("Skipped."))
			continue
		}

		eval, err := s.tutor.EvaluateAnswer(ctx, c, answer)
		if err != nil {
			// The verdict exists but recording it failed. Show the
			// feedback anyway.
			logging.L().Warn("test outcome not recorded", "topic", c.Label, "error", err)
		}

		switch {
		case err == nil && !eval.Counted:
			// No usable verdict came back, so there is nothing to grade.
			fmt.Println(styleHint.Render(eval.Feedback))
		case eval.IsCorrect:
			fmt.Println(styleCorrect.Render("Correct!") + " " + eval.Feedback)
		default:
			fmt.Println(styleIncorrect.Render("Not quite.") + " " + eval.Feedback)
		}

		if eval.Counted {
			asked++
			if eval.IsCorrect {
				correct++
			}
		}
	}

	if asked > 0 {
		fmt.Println()
		fmt.Printf("Session done: %d/%d correct.\n", correct, asked)
	}
	return nil
}

// askQuestion generates a quiz question, retrying once. Generation can
// fail transiently even after provider-level retries.
func askQuestion(ctx context.Context, t *tutor.Tutor, c concepts.Concept) (string, error) {
	q, err := t.GenerateQuestion(ctx, c)
	if err == nil {
		return q, nil
	}
	logging.L().Warn("question generation failed, retrying", "topic", c.Label, "error", err)
	return t.GenerateQuestion(ctx, c)
}

// readAnswer reads one answer line. It returns stop=true when the
// student ends the session, and an empty answer when they skip.
func readAnswer(rl *readline.Instance) (answer string, stop bool) {
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return "", true
			}
			return "", true
		}

		input := strings.TrimSpace(line)
		switch input {
		case "exit", "quit":
			return "", true
		case "skip", "":
			return "", false
		default:
			return input, false
		}
	}
}
