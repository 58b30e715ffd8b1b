// Package concepts turns flat memory records into the deduplicated
// concepts the quiz loop works on. A record carrying an explicit topic
// label is grouped with other records on the same topic; a record
// without one stands as its own concept, keyed by its record ID.
package concepts

import (
	"encoding/json"
	"time"
)

// Snippet is the JSON payload stored in a memory record for one
// tutoring exchange. LastTested and TestResult are written back onto
// the record after a quiz; the authoritative schedule lives in the
// outcome store, these fields just keep the memory record
// self-describing.
type Snippet struct {
	UserInput     string      `json:"user_input"`
	TutorResponse string      `json:"tutor_response"`
	Topic         string      `json:"topic,omitempty"`
	LastTested    *time.Time  `json:"last_tested,omitempty"`
	TestResult    *TestResult `json:"test_result,omitempty"`
}

// TestResult records the outcome of one quiz attempt on the record.
type TestResult struct {
	Correct   bool      `json:"correct"`
	Feedback  string    `json:"feedback"`
	Timestamp time.Time `json:"timestamp"`
}

// Concept is a testable topic extracted from memory records.
type Concept struct {
	// ID keys the concept in the outcome store: the memory record ID
	// for standalone concepts, a topic-derived key for grouped ones.
	ID string

	// Label is the topic label for grouped concepts, empty otherwise.
	Label string

	// Content is the display text: the stored memory text for
	// standalone concepts, the topic label for grouped ones.
	Content string

	// Snippets holds the contributing exchanges, oldest first.
	Snippets []Snippet

	// RecordIDs lists the contributing memory records, parallel in
	// order to Snippets.
	RecordIDs []string

	// LastSeen is the creation time of the newest contributing record.
	LastSeen time.Time
}

// EncodeSnippet renders a snippet as record content.
func EncodeSnippet(s Snippet) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeSnippet parses record content into a snippet. The second
// return is false when the content is not a snippet payload (not JSON,
// or JSON with none of the snippet fields set); such content is
// treated as opaque text by extraction.
func DecodeSnippet(content string) (Snippet, bool) {
	var s Snippet
	if err := json.Unmarshal([]byte(content), &s); err != nil {
		return Snippet{}, false
	}
	if s.UserInput == "" && s.TutorResponse == "" && s.Topic == "" {
		return Snippet{}, false
	}
	return s, true
}
