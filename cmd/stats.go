package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/studyloop/studyloop/internal/concepts"
	"github.com/studyloop/studyloop/internal/logging"
	"github.com/studyloop/studyloop/internal/memstore"
	"github.com/studyloop/studyloop/internal/schedule"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show your test history per topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats(cmd)
	},
}

// statsRow joins a concept with its recorded test history. Topics that
// were discussed but never tested appear with zero attempts.
type statsRow struct {
	label      string
	total      int
	correct    int
	accuracy   float64
	lastTested *time.Time
	status     schedule.Status
}

func runStats(cmd *cobra.Command) error {
	ctx := cmd.Context()

	s, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	histories, err := s.outcomes.AllHistories(ctx)
	if err != nil {
		return fmt.Errorf("load test history: %w", err)
	}
	byID := make(map[string]int, len(histories))
	for i, h := range histories {
		byID[h.ConceptID] = i
	}

	rows := make([]statsRow, 0, len(histories))
	seen := make(map[string]bool, len(histories))
	now := time.Now().UTC()

	records, err := s.memory.GetAll(ctx, memstore.Filter{
		AppID:  s.cfg.Tutor.AppID,
		UserID: s.cfg.Tutor.UserID,
	})
	if err != nil {
		// History alone still tells the accuracy story; topics just
		// lose their display labels.
		logging.L().Warn("memory store unavailable, labels reduced to IDs", "error", err)
	}

	for _, c := range concepts.Extract(records) {
		row := statsRow{label: c.Label, status: schedule.StatusNeverTested}
		if i, ok := byID[c.ID]; ok {
			h := histories[i]
			row.total = h.TotalTests
			row.correct = h.CorrectCount
			row.accuracy = h.Accuracy()
			row.lastTested = h.LastTested
			row.status = s.policy.StatusOf(h.LastTested, now)
		}
		rows = append(rows, row)
		seen[c.ID] = true
	}

	// Histories whose records were pruned from memory still count.
	for _, h := range histories {
		if seen[h.ConceptID] {
			continue
		}
		rows = append(rows, statsRow{
			label:      h.ConceptID,
			total:      h.TotalTests,
			correct:    h.CorrectCount,
			accuracy:   h.Accuracy(),
			lastTested: h.LastTested,
			status:     s.policy.StatusOf(h.LastTested, now),
		})
	}

	if len(rows) == 0 {
		fmt.Println("No topics yet. Start a session with \"studyloop learn\".")
		return nil
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].label < rows[j].label })
	printStats(rows)
	return nil
}

func printStats(rows []statsRow) {
	fmt.Printf("%-32s  %5s  %7s  %8s  %-16s  %s\n",
		"Topic", "Tests", "Correct", "Accuracy", "Last tested", "Status")
	fmt.Println(strings.Repeat("─", 90))

	for _, r := range rows {
		label := r.label
		if len(label) > 32 {
			label = label[:29] + "..."
		}

		last := "never"
		if r.lastTested != nil {
			last = r.lastTested.Local().Format("2006-01-02 15:04")
		}

		fmt.Printf("%-32s  %5d  %7d  %7.0f%%  %-16s  %s\n",
			label, r.total, r.correct, r.accuracy*100, last, renderStatus(r.status))
	}

	fmt.Printf("\n%d topic(s)\n", len(rows))
}

func renderStatus(st schedule.Status) string {
	switch st {
	case schedule.StatusDue:
		return styleTopic.Render("due now")
	case schedule.StatusNeverTested:
		return styleTopic.Render("due (never tested)")
	default:
		return styleHint.Render("scheduled")
	}
}
