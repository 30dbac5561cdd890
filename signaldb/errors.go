package signaldb

import "fmt"

// SignalNotFoundError is returned by any per-signal query against an
// unknown id.
type SignalNotFoundError struct {
	SignalID string
}

func (e *SignalNotFoundError) Error() string {
	return fmt.Sprintf("signal not found in the database: %s", e.SignalID)
}

// SearchNotFoundError is returned when querying a search expression
// that was never initialized with Search or SearchInit.
type SearchNotFoundError struct {
	Expr string
}

func (e *SearchNotFoundError) Error() string {
	return fmt.Sprintf("search not found in the database: %s", e.Expr)
}

// InitializationError is returned by WaitUntilInitialized after the
// store has been marked invalid; Msg carries the last status string.
type InitializationError struct {
	Msg string
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("failed to initialize the database: %s", e.Msg)
}

// SyntaxError is returned by the VCD parser on malformed input; Line
// carries the offending source text. The search expression parser
// does not return it: its errors are plain error values.
type SyntaxError struct {
	Line string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %q", e.Line)
}
