// Package centric implements a bearer-token client for the Centric PLM
// REST API, with session-token caching and request/response audit logging.
package centric

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dpplink/dpplink/internal/domain"
)

// API path layout
const (
	sessionPath = "/csi-requesthandler/api/v2/session"
	apiPrefix   = "/csi-requesthandler/api/"
)

// Config holds the settings needed to construct a Client
type Config struct {
	BaseURL           string
	Username          string
	Password          string
	TokenFile         string
	LogFile           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client handles communication with the Centric PLM API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	username    string
	password    string
	tokenCache  *TokenCache
	requestLog  *RequestLog
	rateLimiter *rate.Limiter
	token       string
	debug       bool
}

// NewClient creates a new Centric API client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 4
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		username:    cfg.Username,
		password:    cfg.Password,
		tokenCache:  NewTokenCache(cfg.TokenFile),
		requestLog:  NewRequestLog(cfg.LogFile),
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 5),
	}
}

// SetDebug enables or disables debug logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SetToken installs an explicitly provided token (flag or env), which takes
// precedence over the cache file and fresh authentication
func (c *Client) SetToken(token string) {
	c.token = strings.TrimSpace(token)
}

// EndpointURL composes the request URL for a versioned endpoint like
// "v2/materials"
func (c *Client) EndpointURL(endpoint string) string {
	return c.baseURL + apiPrefix + strings.TrimLeft(endpoint, "/")
}

// Token returns a usable session token: the explicit one, then the cache
// file, then a fresh authentication.
func (c *Client) Token(ctx context.Context) (string, error) {
	if c.token != "" {
		return c.token, nil
	}

	if token, ok := c.tokenCache.Read(); ok {
		if c.debug {
			log.Printf("[CENTRIC] Using cached session token")
		}
		c.token = token
		return token, nil
	}

	return c.Authenticate(ctx)
}

// Authenticate opens a new session and caches the resulting token. The
// session endpoint returns tokens of the form "key=value"; only the
// right-hand side is the bearer token.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if c.baseURL == "" || c.username == "" || c.password == "" {
		return "", domain.ErrMissingCredentials
	}

	body, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode credentials: %w", err)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	authURL := c.baseURL + sessionPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "dpplink/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAuthenticationFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAuthenticationFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d, body: %s", domain.ErrAuthenticationFailed, resp.StatusCode, string(raw))
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("%w: response was not JSON: %s", domain.ErrAuthenticationFailed, string(raw))
	}

	token := strings.TrimSpace(payload.Token)
	if _, value, found := strings.Cut(token, "="); found {
		token = value
	}

	if token == "" {
		return "", fmt.Errorf("%w: response: %s", domain.ErrAuthenticationFailed, string(raw))
	}

	if err := c.tokenCache.Write(token); err != nil {
		// Non-fatal: the session works, it just will not be reused
		log.Printf("[CENTRIC] WARNING: failed to cache session token: %v", err)
	}

	c.token = token

	if c.debug {
		log.Printf("[CENTRIC] Authenticated against %s", authURL)
	}

	return token, nil
}

// Do executes an authenticated request against a fully resolved URL.
// On a 401 it re-authenticates once, updates the cache and retries once;
// any other non-2xx status is an error.
func (c *Client) Do(ctx context.Context, method, requestURL string, body []byte) ([]byte, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()

	data, status, err := c.execute(ctx, requestID, method, requestURL, token, body, "")
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		c.requestLog.Append(logEntry{
			Phase:          "ERROR",
			RequestID:      requestID,
			Method:         method,
			URL:            requestURL,
			ResponseStatus: status,
			ResponseBody:   data,
			Note:           "401 -> retrying after re-auth",
		})

		token, err = c.Authenticate(ctx)
		if err != nil {
			return nil, err
		}

		data, status, err = c.execute(ctx, requestID, method, requestURL, token, body, "retry")
		if err != nil {
			return nil, err
		}
	}

	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrCentricAPIFailure, status, string(data))
	}

	return data, nil
}

// Call executes an authenticated request against a versioned endpoint
func (c *Client) Call(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	return c.Do(ctx, method, c.EndpointURL(endpoint), body)
}

func (c *Client) execute(ctx context.Context, requestID, method, requestURL, token string, body []byte, note string) ([]byte, int, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limiter error: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), requestURL, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "dpplink/1.0")

	c.requestLog.Append(logEntry{
		Phase:          "REQUEST",
		RequestID:      requestID,
		Method:         req.Method,
		URL:            requestURL,
		Note:           note,
		RequestHeaders: req.Header,
		RequestBody:    body,
	})

	if c.debug {
		log.Printf("[CENTRIC] %s %s (request %s)", req.Method, requestURL, requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.requestLog.Append(logEntry{
			Phase:     "ERROR",
			RequestID: requestID,
			Method:    req.Method,
			URL:       requestURL,
			Note:      fmt.Sprintf("transport error: %v", err),
		})
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrCentricAPIFailure, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrCentricAPIFailure, err)
	}

	c.requestLog.Append(logEntry{
		Phase:           "RESPONSE",
		RequestID:       requestID,
		Method:          req.Method,
		URL:             requestURL,
		Note:            note,
		RequestHeaders:  req.Header,
		ResponseStatus:  resp.StatusCode,
		ResponseHeaders: resp.Header,
		ResponseBody:    data,
	})

	return data, resp.StatusCode, nil
}
