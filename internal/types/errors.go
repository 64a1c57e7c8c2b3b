package types

import "errors"

// Error taxonomy surfaced to callers. Components wrap these
// sentinels with errbuilder to attach a code and a message; callers
// should match with errors.Is against these values.
var (
	ErrParse     = errors.New("malformed control stanza or blueprint line")
	ErrNetwork   = errors.New("transport failure")
	ErrSignature = errors.New("index signature did not validate against trusted keys")
	ErrIntegrity = errors.New("index content did not match its recorded hash")
	ErrCancelled = errors.New("operation cancelled")
)
