package transport

import (
	"errors"
	"fmt"
)

// HTTPStatusError is a non-2xx response surfaced without a retry: a 4xx
// other than 401 from a JSON call, or any non-200 from a chunk call. A JSON
// call whose 5xx retries are exhausted returns a plain error instead.
type HTTPStatusError struct {
	StatusCode int
	Code       string // domain error code from the JSON envelope, if any
	Message    string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("transport: http %d: %s (%s)", e.StatusCode, e.Message, e.Code)
}

// AuthChallengeError signals that login requires a second factor. Code is
// either "enter_2fa" (first attempt, no code supplied) or "wrong_2fa" (a
// code was supplied and rejected).
type AuthChallengeError struct {
	Code string
}

func (e *AuthChallengeError) Error() string {
	return fmt.Sprintf("transport: auth challenge: %s", e.Code)
}

// ErrUnauthorized is returned for HTTP 401 responses.
var ErrUnauthorized = errors.New("transport: unauthorized")

// ErrDomainFailure wraps a JSON envelope with status=false that is not an
// auth challenge.
type ErrDomainFailure struct {
	Code    string
	Message string
}

func (e *ErrDomainFailure) Error() string {
	return fmt.Sprintf("transport: domain error %s: %s", e.Code, e.Message)
}

func isAuthChallengeCode(code string) bool {
	return code == "enter_2fa" || code == "wrong_2fa"
}
