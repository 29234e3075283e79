package gateway

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindUpstream Kind = iota
	KindValidation
	KindNotFound
	KindEnrichment
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindEnrichment:
		return "enrichment"
	default:
		return "upstream"
	}
}

// Error carries the kind that decides the HTTP status. Its message is the
// underlying message unchanged since callers expose it as the detail.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String() + " error"
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the kind of err; errors the gateway did not classify are
// upstream failures.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return KindUpstream
}

// StatusCode maps err to its HTTP status. Validation failures stay 500 for
// compatibility with existing callers.
func StatusCode(err error) int {
	if KindOf(err) == KindNotFound {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
