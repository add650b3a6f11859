package query

import "errors"

var (
	ErrSession   = errors.New("engine session could not be created")
	ErrCompile   = errors.New("statement could not be compiled")
	ErrExecution = errors.New("statement execution failed")
	ErrNoResults = errors.New("no results returned")
	ErrFormat    = errors.New("value could not be formatted")
)

// Error ties an engine failure to one of the sentinel kinds above while
// keeping the engine's own message reachable through Unwrap.
type Error struct {
	Kind error
	Err  error
}

func NewError(kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Message returns the engine's original text, or the kind when there is none.
func (e *Error) Message() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Err.Error()
}

// KindOf reports which sentinel err belongs to, or nil for foreign errors.
func KindOf(err error) error {
	for _, kind := range []error{ErrSession, ErrCompile, ErrExecution, ErrNoResults, ErrFormat} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
