package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	// KindUnknown is reported for errors that carry no pipeline kind.
	KindUnknown Kind = iota
	// KindFetch is a network error or non-success status.
	KindFetch
	// KindTimeout is a fetch that exceeded its deadline.
	KindTimeout
	// KindParse is markup or image data that could not be decoded.
	KindParse
	// KindRender is a failure while building the vector document.
	KindRender
	// KindEncode is a failure while rasterizing or encoding the output.
	KindEncode
)

// String returns the short name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFetch:
		return "fetch"
	case KindTimeout:
		return "timeout"
	case KindParse:
		return "parse"
	case KindRender:
		return "render"
	case KindEncode:
		return "encode"
	default:
		return "unknown"
	}
}

// Error is a classified pipeline failure.
type Error struct {
	Kind Kind
	Op   string // what was being attempted, e.g. "fetch page"
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a classified error. A deadline error is always
// reported as KindTimeout regardless of the requested kind.
func NewError(kind Kind, op string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}
