package fsio

import (
	"errors"
	"fmt"
	"syscall"
)

// PathEscapeError reports a request whose canonicalized target falls
// outside the sandbox root. It is never retried, and no OS call is
// issued for the rejected path.
type PathEscapeError struct {
	// Path is the path as the caller requested it.
	Path string
	// Root is the sandbox root the path was validated against.
	Root string
}

func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("fsio: path %q escapes sandbox root %q", e.Path, e.Root)
}

// RetriesExhaustedError reports that an operation kept failing with a
// transient resource error after the full retry budget was spent.
type RetriesExhaustedError struct {
	// Attempts is the total number of attempts made, including the first.
	Attempts int
	// Cause is the error returned by the final attempt.
	Cause error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("fsio: retries exhausted after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.Cause
}

// IsPathEscape reports whether err is (or wraps) a PathEscapeError.
func IsPathEscape(err error) bool {
	var pe *PathEscapeError
	return errors.As(err, &pe)
}

// IsRetriesExhausted reports whether err is (or wraps) a RetriesExhaustedError.
func IsRetriesExhausted(err error) bool {
	var re *RetriesExhaustedError
	return errors.As(err, &re)
}

// isTransient reports whether err is a descriptor-exhaustion error that
// retrying can fix. EMFILE means this process ran out of descriptors,
// ENFILE means the whole system did; both clear once in-flight
// operations finish and close their files. Everything else (ENOENT,
// EACCES, path escapes, ...) is permanent from this layer's point of
// view and is propagated on first occurrence.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE)
}
