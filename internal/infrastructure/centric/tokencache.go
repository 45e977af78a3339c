package centric

import (
	"os"
	"strings"
)

// TokenCache persists the session token between invocations so every run
// does not have to re-authenticate. A cached token is trusted until a 401
// proves it stale; there is no TTL.
type TokenCache struct {
	path string
}

// NewTokenCache creates a token cache backed by the given file. An empty
// path disables caching.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path}
}

// Read returns the cached token, if any
func (c *TokenCache) Read() (string, bool) {
	if c.path == "" {
		return "", false
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return "", false
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", false
	}

	return token, true
}

// Write stores a token. Callers treat a failed write as non-fatal: the
// session still works, it just will not survive this invocation.
func (c *TokenCache) Write(token string) error {
	if c.path == "" {
		return nil
	}

	return os.WriteFile(c.path, []byte(token), 0o600)
}
