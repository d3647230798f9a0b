package fantasyapi

import "context"

// StaticCredentials is a Credentials that always returns the same cookie.
type StaticCredentials string

func (s StaticCredentials) Cookie(context.Context) (string, error) {
	return string(s), nil
}
