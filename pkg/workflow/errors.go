package workflow

import "errors"

// Fatal run errors. These are the only failures Run surfaces as errors;
// generation and tool failures are absorbed into the conversation so the
// caller can always audit what happened.
var (
	// ErrAgentNotRegistered means Run was asked for an unknown agent.
	ErrAgentNotRegistered = errors.New("agent not registered")

	// ErrToolNotRegistered means an agent requested a tool the registry
	// does not hold.
	ErrToolNotRegistered = errors.New("tool not registered")

	// ErrMaxTurnsExceeded means the turn loop exhausted its bound without
	// a terminal assistant message.
	ErrMaxTurnsExceeded = errors.New("maximum turns exceeded")

	// ErrDelegationDepthExceeded means nested delegation went past the
	// configured depth limit.
	ErrDelegationDepthExceeded = errors.New("delegation depth exceeded")
)
