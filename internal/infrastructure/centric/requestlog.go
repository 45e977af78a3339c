package centric

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"
	"unicode/utf8"
)

// RequestLog appends request/response records to an audit file. Logging
// must never break the main flow, so every failure here is swallowed.
type RequestLog struct {
	path string
	mu   sync.Mutex
}

// NewRequestLog creates a request log backed by the given file. An empty
// path disables logging.
func NewRequestLog(path string) *RequestLog {
	return &RequestLog{path: path}
}

// logEntry is one phase of one request (REQUEST, RESPONSE or ERROR)
type logEntry struct {
	Phase           string
	RequestID       string
	Method          string
	URL             string
	Note            string
	RequestHeaders  http.Header
	RequestBody     []byte
	ResponseStatus  int
	ResponseHeaders http.Header
	ResponseBody    []byte
}

// Append writes one entry. The Authorization header is redacted.
func (l *RequestLog) Append(e logEntry) {
	if l.path == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	timestamp := time.Now().UTC().Format(time.RFC3339)
	fmt.Fprintf(f, "=== %s | %s ===\n", timestamp, e.Phase)
	fmt.Fprintf(f, "Request-ID: %s\n", e.RequestID)
	fmt.Fprintf(f, "Method: %s\n", e.Method)
	fmt.Fprintf(f, "URL: %s\n", e.URL)
	if e.Note != "" {
		fmt.Fprintf(f, "Note: %s\n", e.Note)
	}
	fmt.Fprintf(f, "Request-Headers: %s\n", marshalHeaders(redactHeaders(e.RequestHeaders)))
	if e.RequestBody != nil {
		fmt.Fprintf(f, "Request-Body: %s\n", safeText(e.RequestBody))
	}
	if e.ResponseStatus != 0 {
		fmt.Fprintf(f, "Response-Status: %d\n", e.ResponseStatus)
	}
	if e.ResponseHeaders != nil {
		fmt.Fprintf(f, "Response-Headers: %s\n", marshalHeaders(e.ResponseHeaders))
	}
	if e.ResponseBody != nil {
		fmt.Fprintf(f, "Response-Body: %s\n", safeText(e.ResponseBody))
	}
	fmt.Fprintln(f)
}

// redactHeaders masks credentials before they reach the log file
func redactHeaders(headers http.Header) http.Header {
	redacted := http.Header{}
	for k, values := range headers {
		if http.CanonicalHeaderKey(k) == "Authorization" {
			redacted[k] = []string{"Bearer ***"}
			continue
		}
		redacted[k] = values
	}
	return redacted
}

func marshalHeaders(headers http.Header) string {
	flat := map[string]string{}
	for k, values := range headers {
		if len(values) > 0 {
			flat[k] = values[0]
		}
	}

	data, err := json.Marshal(flat)
	if err != nil {
		return "<unserializable>"
	}
	return string(data)
}

// safeText keeps text bodies readable and base64-encodes binary ones
func safeText(body []byte) string {
	if utf8.Valid(body) {
		return string(body)
	}
	return "base64:" + base64.StdEncoding.EncodeToString(body)
}
