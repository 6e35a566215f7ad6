package errcode

import "errors"

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	Timeout       Code = "timeout"
	NotReady      Code = "not_ready"
	Overflow      Code = "overflow"
	BadIdentity   Code = "bad_identity"
	ReadFailed    Code = "read_failed"
	UnknownBus    Code = "unknown_bus"
	InvalidParams Code = "invalid_params"

	Error Code = "error" // generic fallback
)

// E carries a code together with the operation and cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from anywhere in err's chain, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	var e *E
	if errors.As(err, &e) {
		return e.C
	}
	return Error
}
