package common

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/johanforsgren/forgereview/internal/logger"
)

const maxLoggedBody = 10000

// LoggingTransport wraps an http.RoundTripper to log every request and
// response. Each exchange carries a correlation id so the two log entries
// can be paired even when calls overlap.
type LoggingTransport struct {
	Transport http.RoundTripper
}

// NewLoggingTransport creates a new logging transport wrapper
func NewLoggingTransport(transport http.RoundTripper) *LoggingTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &LoggingTransport{
		Transport: transport,
	}
}

// RoundTrip executes a single HTTP transaction with full logging
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID := uuid.NewString()[:8]
	start := time.Now()

	t.logRequest(requestID, req)

	resp, err := t.Transport.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		logger.LogError("HTTP_REQUEST", fmt.Sprintf("[%s] %s %s", requestID, req.Method, req.URL.String()), err)
		return nil, err
	}

	t.logResponse(requestID, req, resp, duration)

	return resp, nil
}

func (t *LoggingTransport) logRequest(requestID string, req *http.Request) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("=== HTTP REQUEST [%s] ===\n", requestID))
	buf.WriteString(fmt.Sprintf("%s %s %s\n", req.Method, req.URL.String(), req.Proto))

	buf.WriteString("Headers:\n")
	for name, values := range req.Header {
		if isSensitiveHeader(name) {
			buf.WriteString(fmt.Sprintf("  %s: [REDACTED]\n", name))
		} else {
			for _, value := range values {
				buf.WriteString(fmt.Sprintf("  %s: %s\n", name, value))
			}
		}
	}

	if req.Body != nil && req.ContentLength > 0 && req.ContentLength < maxLoggedBody {
		bodyBytes, err := io.ReadAll(req.Body)
		if err == nil {
			// Restore the body for the actual request
			req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

			buf.WriteString(fmt.Sprintf("Body (%d bytes):\n", len(bodyBytes)))
			buf.Write(bodyBytes)
			buf.WriteString("\n")
		}
	} else if req.ContentLength > 0 {
		buf.WriteString(fmt.Sprintf("Body: (%d bytes, too large to log)\n", req.ContentLength))
	}

	buf.WriteString("===================\n")

	logger.Log(buf.String())
}

func (t *LoggingTransport) logResponse(requestID string, req *http.Request, resp *http.Response, duration time.Duration) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("=== HTTP RESPONSE [%s] ===\n", requestID))
	buf.WriteString(fmt.Sprintf("%s %s - %s (%v)\n", req.Method, req.URL.Path, resp.Status, duration))

	buf.WriteString("Headers:\n")
	for name, values := range resp.Header {
		for _, value := range values {
			buf.WriteString(fmt.Sprintf("  %s: %s\n", name, value))
		}
	}

	if resp.Body != nil && resp.ContentLength != 0 {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err == nil {
			// Restore the body for the caller
			resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

			if len(bodyBytes) > 0 && len(bodyBytes) < maxLoggedBody {
				buf.WriteString(fmt.Sprintf("Body (%d bytes):\n", len(bodyBytes)))
				buf.Write(bodyBytes)
				buf.WriteString("\n")
			} else if len(bodyBytes) > 0 {
				buf.WriteString(fmt.Sprintf("Body: (%d bytes, too large to log)\n", len(bodyBytes)))
			}
		}
	}

	buf.WriteString("====================\n")

	logger.Log(buf.String())
}

func isSensitiveHeader(name string) bool {
	lowerName := strings.ToLower(name)
	sensitiveHeaders := []string{
		"authorization",
		"x-api-key",
		"api-key",
		"x-auth-token",
		"cookie",
		"set-cookie",
	}

	for _, sensitive := range sensitiveHeaders {
		if lowerName == sensitive {
			return true
		}
	}

	return false
}
