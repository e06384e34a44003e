package commonModels

import (
	"errors"
	"fmt"
)

var (
	ErrExtractionEmpty       = errors.New("document has no extractable text")
	ErrCapacityExceeded      = errors.New("document limit reached for session")
	ErrIndexUnavailable      = errors.New("vector index unavailable")
	ErrGenerationUnavailable = errors.New("generation model unavailable")
	ErrSessionNotFound       = errors.New("session not found")
	ErrUnsupportedDocument   = errors.New("unsupported document type")
	ErrEmptyQuery            = errors.New("query is empty")
)

// RemoteError is a failed call to a collaborator service. It unwraps to Kind,
// so callers can treat it like the matching local failure.
type RemoteError struct {
	Service    string
	StatusCode int
	Detail     string
	Kind       error
	Cause      error
}

func (e *RemoteError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s responded %d: %s", e.Service, e.StatusCode, e.Detail)
	case e.Cause != nil:
		return fmt.Sprintf("%s unreachable: %v", e.Service, e.Cause)
	default:
		return e.Service + " failed"
	}
}

func (e *RemoteError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Timeout reports whether the call hit its deadline rather than getting a response.
func (e *RemoteError) Timeout() bool {
	var t interface{ Timeout() bool }
	return e.StatusCode == 0 && errors.As(e.Cause, &t) && t.Timeout()
}
