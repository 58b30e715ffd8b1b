package concepts

import (
	"sort"
	"strings"
	"unicode"

	"github.com/studyloop/studyloop/internal/logging"
	"github.com/studyloop/studyloop/internal/memstore"
)

// Extract converts memory records into concepts. Records with blank
// content are skipped silently. A record without an ID cannot key the
// outcome store; it is skipped and logged as a data defect.
// The result is ordered newest first, ties broken by concept ID.
func Extract(records []memstore.Record) []Concept {
	grouped := make(map[string]*Concept)
	var order []*Concept

	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			logging.L().Warn("memory record has no ID, skipping")
			continue
		}
		if strings.TrimSpace(rec.Content) == "" {
			continue
		}

		snip, isSnippet := DecodeSnippet(rec.Content)
		if isSnippet && snip.Topic != "" {
			id := TopicID(snip.Topic)
			c, ok := grouped[id]
			if !ok {
				c = &Concept{ID: id, Label: snip.Topic, Content: snip.Topic}
				grouped[id] = c
				order = append(order, c)
			}
			c.Snippets = append(c.Snippets, snip)
			c.RecordIDs = append(c.RecordIDs, rec.ID)
			if rec.CreatedAt.After(c.LastSeen) {
				c.LastSeen = rec.CreatedAt
			}
			continue
		}

		if !isSnippet {
			// Opaque content still makes a testable concept.
			snip = Snippet{UserInput: rec.Content}
		}
		order = append(order, &Concept{
			ID:        rec.ID,
			Content:   rec.Content,
			Snippets:  []Snippet{snip},
			RecordIDs: []string{rec.ID},
			LastSeen:  rec.CreatedAt,
		})
	}

	out := make([]Concept, len(order))
	for i, c := range order {
		out[i] = *c
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSeen.Equal(out[j].LastSeen) {
			return out[i].LastSeen.After(out[j].LastSeen)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// TopicID derives the stable outcome-store key for a topic label.
// Labels differing only in case or punctuation map to the same key.
func TopicID(label string) string {
	return "topic:" + slugify(label)
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	pendingDash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		} else {
			pendingDash = true
		}
	}
	return b.String()
}
