package ollama

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Turn is one message of a chat session.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Session holds a bounded conversation with the serving endpoint.
// History is trimmed to the environment profile's message budget so
// prompts stay within the tier's context window.
type Session struct {
	id         string
	client     *Client
	maxHistory int
	turns      []Turn
}

// NewSession starts a conversation. maxHistory bounds the number of
// retained turns; values below 2 keep one exchange.
func NewSession(client *Client, maxHistory int) *Session {
	if maxHistory < 2 {
		maxHistory = 2
	}
	return &Session{
		id:         uuid.NewString(),
		client:     client,
		maxHistory: maxHistory,
	}
}

// ID returns the stable session identifier.
func (s *Session) ID() string {
	return s.id
}

// History returns a copy of the retained turns.
func (s *Session) History() []Turn {
	return append([]Turn(nil), s.turns...)
}

// Clear drops the conversation history. The session id is kept.
func (s *Session) Clear() {
	s.turns = nil
}

// Ask sends a question, optionally grounded in document context, and
// records the exchange. On error nothing is recorded, so a retried
// question does not duplicate history.
func (s *Session) Ask(ctx context.Context, question, docContext string) (string, error) {
	prompt := s.buildPrompt(question, docContext)

	answer, err := s.client.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	s.turns = append(s.turns,
		Turn{Role: "user", Content: question},
		Turn{Role: "assistant", Content: answer},
	)
	s.trim()

	return answer, nil
}

// buildPrompt assembles the system preamble, document context, retained
// history and the new question into a single generation prompt.
func (s *Session) buildPrompt(question, docContext string) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant for a personal document library. Answer using the library's documents when context is provided.\n")

	if docContext != "" {
		b.WriteString("\nDocument context:\n")
		b.WriteString(docContext)
		b.WriteString("\n")
	}

	if len(s.turns) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, t := range s.turns {
			b.WriteString(t.Role)
			b.WriteString(": ")
			b.WriteString(t.Content)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nuser: ")
	b.WriteString(question)
	b.WriteString("\nassistant:")
	return b.String()
}

// trim drops the oldest turns beyond the history budget.
func (s *Session) trim() {
	if len(s.turns) > s.maxHistory {
		s.turns = s.turns[len(s.turns)-s.maxHistory:]
	}
}
