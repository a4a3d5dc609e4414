package client

import "fmt"

// RequestError indicates a transport-level failure or a non-2xx response.
// Status is zero when the request never produced a response.
type RequestError struct {
	Status int    // HTTP status code, 0 if the call failed before a response
	Body   string // response body text, if any
	Err    error  // underlying transport error, if any
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed: %s", e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ProtocolError indicates a well-formed HTTP response that is missing an
// expected field, e.g. a /task/new response without a task identifier.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %s", e.Message)
}
