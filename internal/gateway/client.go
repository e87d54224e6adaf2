package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default settings for remote requests.
const (
	defaultTimeout = 10 * time.Second

	// maxResponseSize caps how much of a response body is read (4 MB).
	maxResponseSize = 4 << 20
)

// Logger is the optional logging interface used by the client.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Observer is notified after every request. Used for instrumentation.
type Observer func(op string, status int, err error, elapsed time.Duration)

// Config holds the settings for a Client.
type Config struct {
	// BaseURL is the server address including the path prefix,
	// e.g. "http://10.0.0.5:8080/api/v1".
	BaseURL string

	// AppName is the application identity used in app-scoped paths.
	AppName string

	// Username and Password enable basic auth when Username is non-empty.
	Username string
	Password string

	// Timeout bounds each request. Default: 10s.
	Timeout time.Duration

	// HTTPClient overrides the underlying client (tests, custom TLS).
	HTTPClient *http.Client
}

// Client talks to the remote REST server.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	baseURL  string
	appName  string
	username string
	password string
	http     *http.Client
	logger   Logger
	observe  Observer
}

// New creates a Client. No network traffic happens until a method is called.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		appName:  cfg.AppName,
		username: cfg.Username,
		password: cfg.Password,
		http:     httpClient,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for request tracing.
func (c *Client) SetLogger(logger Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// SetObserver installs a per-request callback.
func (c *Client) SetObserver(obs Observer) {
	c.observe = obs
}

// AppName returns the application identity this client acts for.
func (c *Client) AppName() string {
	return c.appName
}

// appPath builds an app-scoped path such as /app-provision/{app}.
func (c *Client) appPath(segments ...string) string {
	escaped := make([]string, 0, len(segments)+1)
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return "/" + strings.Join(escaped, "/")
}

// do performs one request and decodes a successful response into out.
// out may be nil when the body is not needed.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (err error) {
	start := time.Now()
	status := 0
	defer func() {
		if c.observe != nil {
			c.observe(op, status, err, time.Since(start))
		}
	}()

	var reader io.Reader
	if body != nil {
		payload, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return &Error{Op: op, Message: "encoding request", kind: ErrTransport, cause: marshalErr}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return transportError(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	c.logger.Debug("remote request", "op", op, "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(op, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return transportError(op, fmt.Errorf("reading body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message, details := parseFailure(resp, data)
		return rejectedError(op, resp.StatusCode, message, details)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		if out != nil {
			return decodeError(op, resp.StatusCode, io.ErrUnexpectedEOF)
		}
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return decodeError(op, resp.StatusCode, err)
	}
	return nil
}

// parseFailure extracts the server's message and validation details,
// falling back to the HTTP reason phrase.
func parseFailure(resp *http.Response, data []byte) (string, []string) {
	var fb failureBody
	if len(data) > 0 && json.Unmarshal(data, &fb) == nil && fb.Message != "" {
		return fb.Message, fb.Details
	}
	reason := http.StatusText(resp.StatusCode)
	if reason == "" {
		reason = resp.Status
	}
	return reason, fb.Details
}
