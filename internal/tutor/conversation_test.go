package tutor

import (
	"fmt"
	"testing"

	"github.com/studyloop/studyloop/internal/llm"
)

func TestConversationAppendAndMessages(t *testing.T) {
	c := NewConversation(4)
	c.Append("What is the mean?", "The mean is the average.")
	c.Append("And the median?", "The middle value when sorted.")

	msgs := c.Messages()
	if len(msgs) != 4 {
		t.Fatalf("len(Messages()) = %d, want 4", len(msgs))
	}
	if msgs[0].Role != llm.RoleUser || msgs[0].Content != "What is the mean?" {
		t.Errorf("msgs[0] = %+v, want first user turn", msgs[0])
	}
	if msgs[1].Role != llm.RoleAssistant || msgs[1].Content != "The mean is the average." {
		t.Errorf("msgs[1] = %+v, want first tutor turn", msgs[1])
	}
	if msgs[3].Role != llm.RoleAssistant || msgs[3].Content != "The middle value when sorted." {
		t.Errorf("msgs[3] = %+v, want latest tutor turn", msgs[3])
	}
}

func TestConversationDropsOldestAtCap(t *testing.T) {
	c := NewConversation(3)
	for i := 1; i <= 5; i++ {
		c.Append(fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
	}

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}

	msgs := c.Messages()
	if msgs[0].Content != "question 3" {
		t.Errorf("oldest kept turn = %q, want question 3", msgs[0].Content)
	}
	if msgs[len(msgs)-1].Content != "answer 5" {
		t.Errorf("newest turn = %q, want answer 5", msgs[len(msgs)-1].Content)
	}
}

func TestConversationDefaultCap(t *testing.T) {
	c := NewConversation(0)
	for i := 0; i < DefaultMaxExchanges+3; i++ {
		c.Append(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}
	if c.Len() != DefaultMaxExchanges {
		t.Errorf("Len() = %d, want %d", c.Len(), DefaultMaxExchanges)
	}
}

func TestConversationReset(t *testing.T) {
	c := NewConversation(5)
	c.Append("old question", "old answer")
	c.Append("another", "reply")

	c.Reset(Exchange{UserInput: "quiz prompt", TutorResponse: "What is variance?"})

	if c.Len() != 1 {
		t.Fatalf("Len() after Reset = %d, want 1", c.Len())
	}
	last, ok := c.Last()
	if !ok {
		t.Fatal("Last() reported empty conversation")
	}
	if last.TutorResponse != "What is variance?" {
		t.Errorf("Last().TutorResponse = %q, want the quiz question", last.TutorResponse)
	}
}

func TestConversationResetToEmpty(t *testing.T) {
	c := NewConversation(5)
	c.Append("q", "a")
	c.Reset()

	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	if _, ok := c.Last(); ok {
		t.Error("Last() = ok on empty conversation")
	}
}
