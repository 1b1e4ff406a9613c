package workflow

import (
	"context"
	"sync"

	"agentflow/pkg/msg"
)

// Session accumulates a conversation across runs of one agent. It is a
// thin convenience wrapper: each Send appends a user message, runs the
// orchestrator with the full accumulated conversation, and adopts the
// returned conversation (which already contains the appended assistant
// and tool turns).
type Session struct {
	orchestrator *Orchestrator
	agentName    string

	mu       sync.Mutex
	messages []msg.Message
}

// NewSession creates a session bound to a registered agent name.
func NewSession(o *Orchestrator, agentName string) *Session {
	return &Session{orchestrator: o, agentName: agentName}
}

// Send appends a user message, runs the agent, and returns the run's
// final text. The accumulated conversation is replaced with the run's
// returned conversation even when the run fails, so the transcript always
// reflects what happened.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg.NewUserMessage(text))
	result, err := s.orchestrator.Run(ctx, s.agentName, msg.RunRequest{Messages: s.messages})
	if result.Conversation != nil {
		s.messages = result.Conversation
	}
	if err != nil {
		return "", err
	}
	return result.FinalText(), nil
}

// LatestText returns the text of the most recent assistant message, or
// the empty string when there is none.
func (s *Session) LatestText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == msg.RoleAssistant {
			return s.messages[i].Text()
		}
	}
	return ""
}

// History returns a copy of the accumulated conversation.
func (s *Session) History() []msg.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return msg.CloneMessages(s.messages)
}
