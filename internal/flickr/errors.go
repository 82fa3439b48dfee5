package flickr

import (
	"errors"
	"fmt"
)

// TransportError reports a failure to obtain a usable response: connection
// problems, HTTP error statuses, or a body that is not the expected JSON.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("flickr %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("flickr %s: %v", e.Op, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteAPIError is a well-formed error response (stat != "ok").
type RemoteAPIError struct {
	Code    int
	Message string
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("flickr error %d: %s", e.Code, e.Message)
}

// IsTransport reports whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsRemote reports whether err is, or wraps, a RemoteAPIError.
func IsRemote(err error) bool {
	var re *RemoteAPIError
	return errors.As(err, &re)
}
