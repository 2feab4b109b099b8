// Package transport issues authenticated GET requests against the Todoist API.
//
// The bearer credential is attached by an oauth2 static token source; the
// client never retries. Every failure is returned as a *Error so the sync
// driver can decide what to do with it.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	// DefaultTimeout bounds a single request, including reading the body.
	DefaultTimeout = 30 * time.Second

	// UserAgent is sent with every request.
	UserAgent = "todoist-to-sqlite"

	// maxBodyExcerpt caps the response text kept on a *Error.
	maxBodyExcerpt = 512
)

// Param is one query parameter. A nil Value is omitted from the request.
type Param struct {
	Name  string
	Value *string
}

// Query is an ordered list of query parameters.
type Query []Param

// String returns a Param with a present value.
func String(name, value string) Param {
	return Param{Name: name, Value: &value}
}

// Optional returns a Param that is omitted when value is nil.
func Optional(name string, value *string) Param {
	return Param{Name: name, Value: value}
}

// Client performs authenticated JSON GET requests.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	base    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithHTTPClient sets the client whose transport carries the requests.
// The bearer credential is layered on top of its Transport.
func WithHTTPClient(base *http.Client) Option {
	return func(c *clientConfig) {
		c.base = base
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// New creates a Client that presents token as a bearer credential.
func New(token string, opts ...Option) *Client {
	cfg := clientConfig{
		base:    http.DefaultClient,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, cfg.base)
	httpClient := oauth2.NewClient(ctx, src)
	httpClient.Timeout = cfg.timeout

	return &Client{http: httpClient, logger: cfg.logger}
}

// Get requests rawURL and returns the decoded JSON body.
// Numbers are decoded as json.Number so large integer ids keep full precision.
func (c *Client) Get(ctx context.Context, rawURL string, query Query) (any, error) {
	var body any
	if err := c.GetInto(ctx, rawURL, query, &body); err != nil {
		return nil, err
	}
	return body, nil
}

// GetInto requests rawURL and decodes the JSON body into dst.
//
// Query parameters with a nil value are omitted. A non-2xx status or a
// network failure returns a TRANSPORT_ERROR; a body that is not valid JSON
// for dst returns a DECODE_ERROR.
func (c *Client) GetInto(ctx context.Context, rawURL string, query Query, dst any) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &Error{Code: ErrCodeTransport, Method: http.MethodGet, URL: rawURL, Cause: err}
	}
	if len(query) > 0 {
		q := u.Query()
		for _, p := range query {
			if p.Value != nil {
				q.Set(p.Name, *p.Value)
			}
		}
		u.RawQuery = q.Encode()
	}
	target := u.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &Error{Code: ErrCodeTransport, Method: http.MethodGet, URL: target, Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Code: ErrCodeTransport, Method: http.MethodGet, URL: target, Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Code: ErrCodeTransport, Method: http.MethodGet, URL: target, Status: resp.StatusCode, Cause: err}
	}
	c.logger.Debug("http request",
		"method", http.MethodGet,
		"url", target,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Code:   ErrCodeTransport,
			Method: http.MethodGet,
			URL:    target,
			Status: resp.StatusCode,
			Body:   excerpt(data),
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return DecodeError(target, err)
	}
	return nil
}

func excerpt(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > maxBodyExcerpt {
		s = s[:maxBodyExcerpt] + "..."
	}
	return s
}
