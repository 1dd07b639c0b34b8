package wikijs

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by gateway operations.
//
// These can be checked with errors.Is():
//
//	if errors.Is(err, wikijs.ErrNotFound) {
//	    // page does not resolve remotely
//	}
var (
	// ErrNotAuthenticated is returned when no usable credential form is
	// configured or the remote store rejected the configured credentials.
	ErrNotAuthenticated = errors.New("not authenticated with Wiki.js")

	// ErrNotFound is returned when a page id or path does not resolve.
	ErrNotFound = errors.New("page not found")
)

// TransportError reports a failure to reach the Wiki.js GraphQL endpoint
// or a non-2xx HTTP response.
type TransportError struct {
	// StatusCode is the HTTP status, or 0 for connection-level failures.
	StatusCode int

	// Body is the raw response body when one was received.
	Body string

	// Err is the underlying transport error, if any.
	Err error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wiki.js connection error: %v", e.Err)
	}
	return fmt.Sprintf("wiki.js HTTP error %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError reports an application-level failure: the remote store
// accepted the call but returned GraphQL errors or a responseResult
// with succeeded=false.
type RemoteError struct {
	Messages []string
}

func (e *RemoteError) Error() string {
	return "wiki.js GraphQL error: " + strings.Join(e.Messages, "; ")
}

// DecodeError reports a response that parsed as JSON but is missing a
// field this gateway requires. Loose responses are never silently
// defaulted.
type DecodeError struct {
	Field string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("wiki.js response missing required field %q", e.Field)
}

// remoteErr builds a RemoteError from a single message, substituting a
// placeholder when the remote gave none.
func remoteErr(msg string) *RemoteError {
	if msg == "" {
		msg = "unknown error"
	}
	return &RemoteError{Messages: []string{msg}}
}
