package agent

import "errors"

// Translator bookkeeping errors. Both are fatal for the attempt that hits
// them; the retry executor one layer up decides whether to try again.
var (
	// ErrChainStateLost means a tool output's call id has no recorded
	// upstream response id to continue from.
	ErrChainStateLost = errors.New("response chaining state lost for tool call")

	// ErrAmbiguousChain means the tool outputs of one request resolve to
	// more than one upstream response id and cannot be merged into a
	// single thread.
	ErrAmbiguousChain = errors.New("tool outputs resolve to multiple upstream responses")
)
