// auth/errors.go
package auth

import (
	"errors"
	"fmt"
)

// ErrNoToken means no credentials are stored for the user. Decode
// failures on persisted values degrade to this error as well, which
// prompts re-authorization instead of surfacing corruption.
var ErrNoToken = errors.New("no tokens found for user")

// ExchangeError is a failed code exchange or refresh against the OAuth
// token endpoint. Callers redirect to a failure state rather than leak
// provider internals.
type ExchangeError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ExchangeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token exchange failed: %v", e.Err)
	}
	return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *ExchangeError) Unwrap() error { return e.Err }
