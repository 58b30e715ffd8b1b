package tutor

import "github.com/studyloop/studyloop/internal/llm"

// DefaultMaxExchanges is how many user/tutor exchanges the running
// conversation keeps when no cap is configured.
const DefaultMaxExchanges = 12

// Exchange is one user/tutor turn pair.
type Exchange struct {
	UserInput     string
	TutorResponse string
}

// Conversation is the bounded running history of a session. Once the
// cap is reached the oldest exchange is dropped for each new one, so
// prompts never grow without limit.
type Conversation struct {
	max       int
	exchanges []Exchange
}

// NewConversation creates a conversation capped at max exchanges.
// Non-positive caps fall back to DefaultMaxExchanges.
func NewConversation(max int) *Conversation {
	if max <= 0 {
		max = DefaultMaxExchanges
	}
	return &Conversation{max: max}
}

// Append adds one completed exchange, evicting the oldest when full.
func (c *Conversation) Append(userInput, tutorResponse string) {
	c.exchanges = append(c.exchanges, Exchange{UserInput: userInput, TutorResponse: tutorResponse})
	if len(c.exchanges) > c.max {
		c.exchanges = c.exchanges[len(c.exchanges)-c.max:]
	}
}

// Reset discards the history and replaces it with the given exchanges.
// Quiz questions call this so the running context is exactly the
// question being answered, not leftover learning chatter.
func (c *Conversation) Reset(exchanges ...Exchange) {
	c.exchanges = append([]Exchange(nil), exchanges...)
	if len(c.exchanges) > c.max {
		c.exchanges = c.exchanges[len(c.exchanges)-c.max:]
	}
}

// Last returns the most recent exchange, if any.
func (c *Conversation) Last() (Exchange, bool) {
	if len(c.exchanges) == 0 {
		return Exchange{}, false
	}
	return c.exchanges[len(c.exchanges)-1], true
}

// Len returns the number of stored exchanges.
func (c *Conversation) Len() int {
	return len(c.exchanges)
}

// Messages renders the history as alternating role-tagged messages,
// oldest first.
func (c *Conversation) Messages() []llm.Message {
	msgs := make([]llm.Message, 0, len(c.exchanges)*2)
	for _, e := range c.exchanges {
		msgs = append(msgs,
			llm.Message{Role: llm.RoleUser, Content: e.UserInput},
			llm.Message{Role: llm.RoleAssistant, Content: e.TutorResponse},
		)
	}
	return msgs
}
