package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/spf13/cobra"

	"github.com/studyloop/studyloop/internal/logging"
)

var remindEvery time.Duration

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Periodically announce topics that are due for testing",
	Long: `Remind checks the memory store on an interval and prints the topics
whose last test is older than the scheduling interval. It runs until
interrupted and needs no LLM access.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRemind(cmd)
	},
}

func init() {
	remindCmd.Flags().DurationVar(&remindEvery, "every", 30*time.Minute, "how often to check for due topics")
}

func runRemind(cmd *cobra.Command) error {
	ctx := cmd.Context()

	s, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	check := func() {
		due, err := s.tutor.TestingCandidates(ctx)
		if err != nil {
			logging.L().Warn("due-topic check failed", "error", err)
			return
		}

		stamp := time.Now().Format("15:04")
		if len(due) == 0 {
			fmt.Printf("[%s] Nothing due yet.\n", stamp)
			return
		}

		labels := make([]string, len(due))
		for i, c := range due {
			labels[i] = c.Label
		}
		fmt.Printf("[%s] %s %s\n", stamp,
			styleTopic.Render(fmt.Sprintf("%d topic(s) due:", len(due))),
			strings.Join(labels, ", "))
		fmt.Println(styleHint.Render(`Run "studyloop test" to take the quiz.`))
	}

	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(remindEvery).Do(check); err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}

	// First check right away; the scheduler fires after one interval.
	check()
	scheduler.StartAsync()
	defer scheduler.Stop()

	fmt.Println(styleHint.Render(fmt.Sprintf("Checking every %s. Press Ctrl-C to stop.", remindEvery)))

	return waitForInterrupt(ctx)
}

func waitForInterrupt(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		fmt.Println()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
