package upstream

import "fmt"

// UnavailableError wraps a transport-level failure (connection refused,
// DNS, timeout). The next scheduled cycle is the retry.
type UnavailableError struct {
	URL string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("upstream unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// HTTPError is a response with a non-success status code.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream HTTP error: %s", e.Status)
}

// ProtocolError means the response body does not have the shape the
// feed promises (e.g. the bus envelope key is missing entirely).
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string { return e.Reason }

// SemanticError is a well-formed response that explicitly reports a
// business error, like a rail errCd/errNm pair or a bus error list.
type SemanticError struct {
	Message string
}

func (e *SemanticError) Error() string { return e.Message }
