package concepts

import (
	"testing"
	"time"

	"github.com/studyloop/studyloop/internal/memstore"
)

func snippetContent(t *testing.T, s Snippet) string {
	t.Helper()
	content, err := EncodeSnippet(s)
	if err != nil {
		t.Fatalf("encode snippet: %v", err)
	}
	return content
}

func TestExtractSkipsRecordsWithoutContent(t *testing.T) {
	records := []memstore.Record{
		{ID: "1", Content: "X"},
		{ID: "2"},
	}

	concepts := Extract(records)
	if len(concepts) != 1 {
		t.Fatalf("expected exactly 1 concept, got %d", len(concepts))
	}
	if concepts[0].ID != "1" {
		t.Errorf("concept ID = %q, want '1'", concepts[0].ID)
	}
}

func TestExtractSkipsRecordsWithoutID(t *testing.T) {
	records := []memstore.Record{
		{Content: "orphan"},
		{ID: "1", Content: "kept"},
	}

	concepts := Extract(records)
	if len(concepts) != 1 || concepts[0].ID != "1" {
		t.Fatalf("expected only the keyed record, got %+v", concepts)
	}
}

func TestExtractGroupsByTopic(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	records := []memstore.Record{
		{ID: "m1", CreatedAt: base, Content: snippetContent(t, Snippet{
			UserInput: "what is the mean", TutorResponse: "the average", Topic: "central tendency",
		})},
		{ID: "m2", CreatedAt: base.Add(time.Hour), Content: snippetContent(t, Snippet{
			UserInput: "and the median", TutorResponse: "the middle value", Topic: "central tendency",
		})},
		{ID: "m3", CreatedAt: base.Add(2 * time.Hour), Content: snippetContent(t, Snippet{
			UserInput: "what is variance", TutorResponse: "squared spread", Topic: "dispersion",
		})},
	}

	concepts := Extract(records)
	if len(concepts) != 2 {
		t.Fatalf("expected 2 concepts, got %d", len(concepts))
	}

	// Newest first: dispersion was discussed last.
	if concepts[0].Label != "dispersion" {
		t.Errorf("first concept = %q, want 'dispersion'", concepts[0].Label)
	}
	grouped := concepts[1]
	if grouped.Label != "central tendency" {
		t.Fatalf("second concept = %q, want 'central tendency'", grouped.Label)
	}
	if len(grouped.Snippets) != 2 || len(grouped.RecordIDs) != 2 {
		t.Fatalf("grouped concept has %d snippets, %d records", len(grouped.Snippets), len(grouped.RecordIDs))
	}
	if grouped.RecordIDs[0] != "m1" || grouped.RecordIDs[1] != "m2" {
		t.Errorf("record IDs = %v, want [m1 m2]", grouped.RecordIDs)
	}
	if grouped.Snippets[0].UserInput != "what is the mean" {
		t.Errorf("snippets out of order: %+v", grouped.Snippets)
	}
	if !grouped.LastSeen.Equal(base.Add(time.Hour)) {
		t.Errorf("last seen = %v, want %v", grouped.LastSeen, base.Add(time.Hour))
	}
}

func TestExtractTopicCaseInsensitive(t *testing.T) {
	records := []memstore.Record{
		{ID: "m1", Content: snippetContent(t, Snippet{UserInput: "a", Topic: "Sampling Distributions"})},
		{ID: "m2", Content: snippetContent(t, Snippet{UserInput: "b", Topic: "sampling distributions"})},
	}

	concepts := Extract(records)
	if len(concepts) != 1 {
		t.Fatalf("expected labels differing in case to merge, got %d concepts", len(concepts))
	}
	if concepts[0].Label != "Sampling Distributions" {
		t.Errorf("label = %q, want first-seen casing", concepts[0].Label)
	}
}

func TestExtractOpaqueContentStandsAlone(t *testing.T) {
	records := []memstore.Record{
		{ID: "m1", Content: "plain text note about histograms"},
	}

	concepts := Extract(records)
	if len(concepts) != 1 {
		t.Fatalf("expected 1 concept, got %d", len(concepts))
	}
	c := concepts[0]
	if c.ID != "m1" || c.Label != "" {
		t.Errorf("concept = %+v", c)
	}
	if len(c.Snippets) != 1 || c.Snippets[0].UserInput != "plain text note about histograms" {
		t.Errorf("snippets = %+v", c.Snippets)
	}
}

func TestExtractSnippetWithoutTopicStandsAlone(t *testing.T) {
	records := []memstore.Record{
		{ID: "m1", Content: snippetContent(t, Snippet{UserInput: "q", TutorResponse: "a"})},
		{ID: "m2", Content: snippetContent(t, Snippet{UserInput: "q2", TutorResponse: "a2"})},
	}

	concepts := Extract(records)
	if len(concepts) != 2 {
		t.Fatalf("expected one concept per record, got %d", len(concepts))
	}
}

func TestExtractOrdersNewestFirst(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	records := []memstore.Record{
		{ID: "old", CreatedAt: base, Content: "old note"},
		{ID: "new", CreatedAt: base.Add(time.Hour), Content: "new note"},
		{ID: "mid", CreatedAt: base.Add(30 * time.Minute), Content: "mid note"},
	}

	concepts := Extract(records)
	want := []string{"new", "mid", "old"}
	for i, c := range concepts {
		if c.ID != want[i] {
			t.Errorf("position %d = %q, want %q", i, c.ID, want[i])
		}
	}
}

func TestExtractTieBreaksOnID(t *testing.T) {
	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	records := []memstore.Record{
		{ID: "b", CreatedAt: ts, Content: "note b"},
		{ID: "a", CreatedAt: ts, Content: "note a"},
	}

	concepts := Extract(records)
	if concepts[0].ID != "a" || concepts[1].ID != "b" {
		t.Errorf("tie order = %s, %s; want a, b", concepts[0].ID, concepts[1].ID)
	}
}

func TestTopicID(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Central Tendency", "topic:central-tendency"},
		{"central tendency", "topic:central-tendency"},
		{"  p-values!  ", "topic:p-values"},
		{"Type I & II Errors", "topic:type-i-ii-errors"},
	}
	for _, tt := range tests {
		if got := TopicID(tt.label); got != tt.want {
			t.Errorf("TopicID(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestDecodeSnippetRejectsForeignJSON(t *testing.T) {
	if _, ok := DecodeSnippet(`{"foo": "bar"}`); ok {
		t.Error("expected JSON without snippet fields to be rejected")
	}
	if _, ok := DecodeSnippet("not json at all"); ok {
		t.Error("expected non-JSON to be rejected")
	}
	if _, ok := DecodeSnippet(`{"user_input": "q"}`); !ok {
		t.Error("expected minimal snippet to decode")
	}
}
