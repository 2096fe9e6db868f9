package rt

import "fmt"

// AuthError means RT rejected the configured credentials. A search that hits
// this never returns partial data.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("rt: authentication failed: %s", e.Message)
}

// RequestError wraps transport-level failures: unreachable endpoint,
// timeout, or an HTTP status that is not an RT response at all.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("rt: %s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ParseError means the response body does not match the RT REST 1.0
// flat-record format, or a mandatory field is malformed.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rt: parsing response: %s", e.Detail)
}
