package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailed is returned when the Centric session endpoint rejects the credentials
	ErrAuthenticationFailed = errors.New("centric authentication failed")

	// ErrMissingCredentials is returned when base URL, username or password are not configured
	ErrMissingCredentials = errors.New("base_url, username and password are required to authenticate")

	// ErrCentricAPIFailure is returned when a Centric API request fails
	ErrCentricAPIFailure = errors.New("centric API request failed")

	// ErrMissingEndpoint is returned when neither an endpoint nor a resolvable alias is given
	ErrMissingEndpoint = errors.New("endpoint is required")

	// ErrEmptyWorkbook is returned when a workbook contains no worksheets
	ErrEmptyWorkbook = errors.New("workbook has no worksheets")
)

// MissingColumnError reports a logical column that could not be resolved by
// any of its header aliases or by its positional fallback index.
type MissingColumnError struct {
	Field         string
	Aliases       []string
	FallbackIndex int
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("cannot resolve column for %q: no header matching %v and no column at index %d",
		e.Field, e.Aliases, e.FallbackIndex)
}
