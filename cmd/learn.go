package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Start an interactive learning session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLearn(cmd)
	},
}

func runLearn(cmd *cobra.Command) error {
	ctx := cmd.Context()

	s, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "you> ",
		HistoryFile:     historyFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	fmt.Println(styleTitle.Render("studyloop") + "  Ask me anything about " + s.cfg.Tutor.Subject + ".")
	fmt.Println(styleHint.Render(`Type "exit" to end the session.`))
	fmt.Println()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return nil
		}

		reply, err := s.tutor.HandleInteraction(ctx, input)
		if err != nil {
			fmt.Println(styleError.Render("Error: " + err.Error()))
			continue
		}

		fmt.Println(styleTutor.Render("tutor>") + " " + reply)
		fmt.Println()
	}
}

// historyFile keeps readline history per user in the temp directory.
func historyFile() string {
	return filepath.Join(os.TempDir(), "studyloop_history")
}
