package flickr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Caller performs one REST method call and returns the raw JSON body.
type Caller interface {
	Call(ctx context.Context, method string, params url.Values) ([]byte, error)
}

// Ensure HTTPCaller implements Caller at compile time.
var _ Caller = (*HTTPCaller)(nil)

const (
	// DefaultEndpoint is the public REST endpoint.
	DefaultEndpoint  = "https://api.flickr.com/services/rest/"
	defaultUserAgent = "skylight/0.1"
	defaultTimeout   = 10 * time.Second
	maxBodyBytes     = 8 << 20
)

// HTTPCallerOptions configures NewHTTPCaller.
type HTTPCallerOptions struct {
	Endpoint  string
	APIKey    string
	Timeout   time.Duration
	UserAgent string
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
	Logger     *log.Logger
}

// HTTPCaller calls the REST API over HTTP GET with JSON output.
type HTTPCaller struct {
	endpoint  *url.URL
	apiKey    string
	http      *http.Client
	userAgent string
	logger    *log.Logger
}

// NewHTTPCaller builds an HTTPCaller. A missing API key is logged but not
// fatal; requests will be rejected by the remote side.
func NewHTTPCaller(opts HTTPCallerOptions) (*HTTPCaller, error) {
	endpoint, err := parseEndpoint(opts.Endpoint)
	if err != nil {
		return nil, err
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		logger.Warn("no API key configured, requests will not work")
	}
	return &HTTPCaller{
		endpoint:  endpoint,
		apiKey:    apiKey,
		http:      client,
		userAgent: ua,
		logger:    logger,
	}, nil
}

// Call issues method with params and returns the body. It does not inspect
// stat; that is the caller's concern.
func (c *HTTPCaller) Call(ctx context.Context, method string, params url.Values) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("caller is nil")
	}
	start := time.Now()
	body, err := c.call(ctx, method, params)
	observeCall(method, start, err)
	return body, err
}

func (c *HTTPCaller) call(ctx context.Context, method string, params url.Values) ([]byte, error) {
	reqURL := c.requestURL(method, params)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &TransportError{Op: method, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, &TransportError{
			Op:         method,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("api returned status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Op: method, Err: fmt.Errorf("read response: %w", err)}
	}
	c.logger.Debug("api call", "method", method, "page", params.Get("page"), "bytes", len(body))
	return body, nil
}

func (c *HTTPCaller) requestURL(method string, params url.Values) string {
	values := url.Values{}
	for k, v := range params {
		values[k] = append([]string(nil), v...)
	}
	values.Set("method", method)
	values.Set("format", "json")
	values.Set("nojsoncallback", "1")
	if c.apiKey != "" {
		values.Set("api_key", c.apiKey)
	}
	u := *c.endpoint
	u.RawQuery = values.Encode()
	return u.String()
}

func parseEndpoint(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultEndpoint
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse endpoint %q: missing host", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
