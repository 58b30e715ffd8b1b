package llm

import (
	"context"
	"encoding/json"
	"testing"
)

func TestRateLimit_PassesThrough(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`"ok"`)})
	p := WithRateLimit(mock, 600)

	resp, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "hi"}},
		MaxTokens: 16,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `"ok"` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected ModelID passthrough, got %q", p.ModelID())
	}
}

func TestRateLimit_HonorsContextWhenExhausted(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`"one"`)},
		MockResponse{Content: json.RawMessage(`"two"`)},
	)
	// 1 request per minute, burst 1: the second call must wait.
	p := WithRateLimit(mock, 1)

	if _, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "first"}},
	}); err != nil {
		t.Fatalf("first call failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Generate(ctx, Request{
		Messages: []Message{{Role: RoleUser, Content: "second"}},
	})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected the throttled call to never reach the provider, got %d calls", mock.CallCount())
	}
}

func TestRateLimit_DisabledForNonPositiveRPM(t *testing.T) {
	mock := NewMockProvider()
	if p := WithRateLimit(mock, 0); p != Provider(mock) {
		t.Fatal("expected rpm=0 to return the provider unwrapped")
	}
}
