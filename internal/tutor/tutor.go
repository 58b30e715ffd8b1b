// Package tutor orchestrates the learning and testing loops: answering
// student questions, deciding which exchanges are worth remembering,
// quizzing concepts that are due, and recording outcomes.
package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/studyloop/studyloop/internal/concepts"
	"github.com/studyloop/studyloop/internal/llm"
	"github.com/studyloop/studyloop/internal/logging"
	"github.com/studyloop/studyloop/internal/memstore"
)

// Metadata keys on memory records written by the tutor.
const (
	metaTimestamp   = "timestamp"
	metaType        = "type"
	typeInteraction = "interaction"
)

// evaluationContextSnippets bounds how many stored exchanges accompany
// an evaluation request.
const evaluationContextSnippets = 2

// Recorder is the slice of the outcome store the tutor depends on.
type Recorder interface {
	RecordTest(ctx context.Context, conceptID string, correct bool) error
	ReadyForTest(ctx context.Context, conceptID string) (bool, error)
}

// Evaluation is the judged outcome of one quiz answer. Counted is
// false when no usable verdict came back and the attempt was not
// written to the outcome store.
type Evaluation struct {
	IsCorrect bool
	Feedback  string
	Counted   bool
	Timestamp time.Time
}

// Tutor runs tutoring sessions against an LLM provider, a memory
// store, and an outcome recorder. It is not safe for concurrent use;
// one Tutor serves one interactive session.
type Tutor struct {
	provider llm.Provider
	memory   memstore.Store
	outcomes Recorder
	cfg      Config
	conv     *Conversation
	log      *slog.Logger

	// now is the session clock, overridden in tests.
	now func() time.Time
}

// New creates a tutor. Zero-value config fields fall back to defaults.
func New(provider llm.Provider, memory memstore.Store, outcomes Recorder, cfg Config) *Tutor {
	cfg = cfg.withDefaults()
	return &Tutor{
		provider: provider,
		memory:   memory,
		outcomes: outcomes,
		cfg:      cfg,
		conv:     NewConversation(cfg.MaxExchanges),
		log:      logging.Named("tutor"),
		now:      time.Now,
	}
}

type replyOutput struct {
	Reply    string `json:"reply"`
	Testable bool   `json:"testable"`
	Topic    string `json:"topic"`
	Reason   string `json:"reason"`
}

type questionOutput struct {
	Question string `json:"question"`
}

type evaluationOutput struct {
	IsCorrect bool   `json:"is_correct"`
	Feedback  string `json:"feedback"`
}

// HandleInteraction answers one learning-mode input. The reply is
// generated from the bounded running conversation plus any relevant
// stored memories; exchanges the model marks testable are written to
// the memory store as a side effect.
func (t *Tutor) HandleInteraction(ctx context.Context, input string) (string, error) {
	ctx = llm.WithPurpose(ctx, "tutoring")

	prior := t.relevantSnippets(ctx, input)

	messages := append(t.conv.Messages(), llm.Message{Role: llm.RoleUser, Content: input})

	resp, err := t.provider.Generate(ctx, llm.Request{
		System:      buildTutoringSystemPrompt(t.cfg.Subject, prior),
		Messages:    messages,
		Schema:      ReplySchema,
		MaxTokens:   t.cfg.MaxTokens,
		Temperature: t.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("tutor reply: %w", err)
	}

	var out replyOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("parse tutor reply: %w", err)
	}

	t.conv.Append(input, out.Reply)

	if out.Testable {
		t.storeExchange(ctx, input, out)
	}

	return out.Reply, nil
}

// relevantSnippets searches earlier interactions related to the input.
// Retrieval is best-effort: a failing store degrades the prompt, it
// does not block the answer.
func (t *Tutor) relevantSnippets(ctx context.Context, input string) []concepts.Snippet {
	records, err := t.memory.Search(ctx, input, memstore.Filter{
		UserID:   t.cfg.UserID,
		AppID:    t.cfg.AppID,
		Metadata: map[string]string{metaType: typeInteraction},
		Limit:    t.cfg.SearchLimit,
	})
	if err != nil {
		t.log.WarnContext(ctx, "memory search failed", "error", err)
		return nil
	}

	var out []concepts.Snippet
	for _, r := range records {
		if s, ok := concepts.DecodeSnippet(r.Content); ok {
			out = append(out, s)
		}
	}
	return out
}

// storeExchange persists one testable exchange. Failures are logged,
// not returned: the student already has the reply, losing the memory
// write only costs a future quiz candidate.
func (t *Tutor) storeExchange(ctx context.Context, input string, out replyOutput) {
	content, err := concepts.EncodeSnippet(concepts.Snippet{
		UserInput:     input,
		TutorResponse: out.Reply,
		Topic:         out.Topic,
	})
	if err != nil {
		t.log.WarnContext(ctx, "encode exchange failed", "error", err)
		return
	}

	_, err = t.memory.Add(ctx,
		[]memstore.Message{{Role: "user", Content: content}},
		memstore.AddOptions{
			UserID: t.cfg.UserID,
			AppID:  t.cfg.AppID,
			Metadata: map[string]string{
				metaTimestamp: t.now().UTC().Format(time.RFC3339),
				metaType:      typeInteraction,
			},
		})
	if err != nil {
		t.log.WarnContext(ctx, "memory write failed", "topic", out.Topic, "error", err)
		return
	}

	t.log.DebugContext(ctx, "exchange stored", "topic", out.Topic, "reason", out.Reason)
}

// TestingCandidates returns the concepts currently due for testing:
// every stored record for the user, grouped into concepts and filtered
// through the outcome store's schedule. The result is a snapshot;
// calling again re-reads the store.
func (t *Tutor) TestingCandidates(ctx context.Context) ([]concepts.Concept, error) {
	records, err := t.memory.GetAll(ctx, memstore.Filter{UserID: t.cfg.UserID, AppID: t.cfg.AppID})
	if err != nil {
		return nil, fmt.Errorf("load memories: %w", err)
	}

	var due []concepts.Concept
	for _, c := range concepts.Extract(records) {
		ready, err := t.outcomes.ReadyForTest(ctx, c.ID)
		if err != nil {
			// A broken history database must not read as "never tested".
			return nil, fmt.Errorf("check schedule for %s: %w", c.ID, err)
		}
		if ready {
			due = append(due, c)
		}
	}
	return due, nil
}

// GenerateQuestion produces a quiz question for the concept from its
// stored exchanges, then resets the running conversation to that single
// exchange so the following evaluation sees only on-topic context.
func (t *Tutor) GenerateQuestion(ctx context.Context, c concepts.Concept) (string, error) {
	ctx = llm.WithPurpose(ctx, "question")

	messages := append(snippetMessages(c.Snippets, 0),
		llm.Message{Role: llm.RoleUser, Content: buildQuestionUserMessage(c)})

	resp, err := t.provider.Generate(ctx, llm.Request{
		System:      questionSystemPrompt(t.cfg.Subject),
		Messages:    messages,
		Schema:      QuestionSchema,
		MaxTokens:   t.cfg.MaxTokens,
		Temperature: t.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generate question: %w", err)
	}

	var out questionOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("parse question: %w", err)
	}
	if out.Question == "" {
		return "", fmt.Errorf("generate question: empty question")
	}

	t.conv.Reset(Exchange{UserInput: buildQuestionUserMessage(c), TutorResponse: out.Question})

	return out.Question, nil
}

// EvaluateAnswer judges the student's answer to the current question
// (the one GenerateQuestion reset the conversation to). On success the
// outcome is recorded in the history store and written back onto the
// contributing memory records. A missing or unparseable verdict fails
// soft: the student gets a retry message and no test attempt is
// counted. When recording fails, the evaluation is still returned
// alongside the error so the caller can show the feedback.
func (t *Tutor) EvaluateAnswer(ctx context.Context, c concepts.Concept, answer string) (Evaluation, error) {
	ctx = llm.WithPurpose(ctx, "evaluation")

	question := ""
	if last, ok := t.conv.Last(); ok {
		question = last.TutorResponse
	}

	messages := append(snippetMessages(c.Snippets, evaluationContextSnippets),
		llm.Message{Role: llm.RoleUser, Content: buildEvaluationUserMessage(question, answer)})

	resp, err := t.provider.Generate(ctx, llm.Request{
		System:      evaluationSystemPrompt(t.cfg.Subject),
		Messages:    messages,
		Schema:      EvaluationSchema,
		MaxTokens:   t.cfg.MaxTokens,
		Temperature: t.cfg.Temperature,
	})
	if err != nil {
		t.log.WarnContext(ctx, "evaluation failed", "concept", c.ID, "error", err)
		return t.softFailEvaluation(), nil
	}

	var out evaluationOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil || out.Feedback == "" {
		t.log.WarnContext(ctx, "evaluation verdict unusable", "concept", c.ID, "error", err)
		return t.softFailEvaluation(), nil
	}

	ts := t.now().UTC()
	eval := Evaluation{IsCorrect: out.IsCorrect, Feedback: out.Feedback, Counted: true, Timestamp: ts}

	if err := t.outcomes.RecordTest(ctx, c.ID, out.IsCorrect); err != nil {
		eval.Counted = false
		return eval, fmt.Errorf("record test outcome: %w", err)
	}

	t.annotateRecords(ctx, c, eval)

	return eval, nil
}

// softFailEvaluation is returned when no usable verdict came back. It
// never counts as a test attempt.
func (t *Tutor) softFailEvaluation() Evaluation {
	return Evaluation{
		IsCorrect: false,
		Feedback:  "Your answer could not be evaluated this time; it was not counted. Try this concept again later.",
		Timestamp: t.now().UTC(),
	}
}

// annotateRecords writes the test outcome back onto each contributing
// memory record. Missing records are skipped and write failures only
// logged: the outcome store already holds the authoritative result.
func (t *Tutor) annotateRecords(ctx context.Context, c concepts.Concept, eval Evaluation) {
	result := &concepts.TestResult{
		Correct:   eval.IsCorrect,
		Feedback:  eval.Feedback,
		Timestamp: eval.Timestamp,
	}

	for _, id := range c.RecordIDs {
		rec, err := t.memory.Get(ctx, id)
		if memstore.IsNotFound(err) {
			continue
		}
		if err != nil {
			t.log.WarnContext(ctx, "load record for annotation failed", "record", id, "error", err)
			continue
		}

		s, ok := concepts.DecodeSnippet(rec.Content)
		if !ok {
			// Opaque content gets wrapped so the outcome has a place to live.
			s = concepts.Snippet{UserInput: rec.Content}
		}
		ts := eval.Timestamp
		s.LastTested = &ts
		s.TestResult = result

		content, err := concepts.EncodeSnippet(s)
		if err != nil {
			t.log.WarnContext(ctx, "encode annotation failed", "record", id, "error", err)
			continue
		}
		if _, err := t.memory.Update(ctx, id, content); err != nil {
			t.log.WarnContext(ctx, "annotate record failed", "record", id, "error", err)
		}
	}
}
