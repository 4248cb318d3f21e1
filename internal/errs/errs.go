// Package errs provides the structured error value shared by every subsystem.
package errs

import (
	"errors"
	"fmt"
)

// Source identifies the subsystem an error originated in. It is a 4-byte
// tag packed big-endian into a uint32, so 'sqlt' reads back as "sqlt".
type Source uint32

// MakeSource packs four ASCII bytes into a Source tag.
func MakeSource(a, b, c, d byte) Source {
	return Source(uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d))
}

const (
	// SourceLocal marks precondition failures raised by the caller-side
	// wrapper itself rather than a foreign subsystem.
	SourceLocal Source = 0
)

// String renders the tag as its four characters, or "local" for SourceLocal.
func (s Source) String() string {
	if s == SourceLocal {
		return "local"
	}
	b := []byte{byte(s >> 24), byte(s >> 16), byte(s >> 8), byte(s)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08x", uint32(s))
		}
	}
	return string(b)
}

// Error is the unified error value. Msg is an owned copy of the
// diagnostic text reported by the source at the moment the error was raised.
type Error struct {
	Source Source
	Code   int
	Msg    string
}

// New returns an *Error.
func New(source Source, code int, msg string) *Error {
	return &Error{Source: source, Code: code, Msg: msg}
}

func (e *Error) Error() string {
	if e.Source == SourceLocal {
		return e.Msg
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s: code %d", e.Source, e.Code)
	}
	return fmt.Sprintf("%s: %s (code %d)", e.Source, e.Msg, e.Code)
}

var (
	// ErrOutOfMemory is raised for memory pressure from any subsystem, so
	// callers can handle it once.
	ErrOutOfMemory = New(SourceLocal, 0, "out of memory")
)

// SourceOf reports the source of the first *Error in err's chain.
func SourceOf(err error) (Source, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return SourceLocal, false
	}
	return e.Source, true
}

// CodeOf returns the code of the first *Error in err's chain if it came
// from source, or 0 otherwise.
func CodeOf(err error, source Source) int {
	var e *Error
	if errors.As(err, &e) && e.Source == source {
		return e.Code
	}
	return 0
}
