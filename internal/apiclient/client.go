// Package apiclient talks to the registry REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxFailures = 5

	maxBodySize = 4 << 20
)

// TokenSource supplies the bearer token of the current session.
type TokenSource interface {
	Token() string
}

// Config configures a Client.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxFailures uint32
	Token       TokenSource
	HTTPClient  *http.Client
	Logger      zerolog.Logger
	Registerer  prometheus.Registerer
}

// Client is safe for concurrent use.
type Client struct {
	base    *url.URL
	timeout time.Duration
	token   TokenSource
	http    *http.Client
	log     zerolog.Logger
	cb      *gobreaker.CircuitBreaker[*Response]
	metrics *collector
}

// New returns a client for the API at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNoBaseURL
	}
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = DefaultMaxFailures
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	c := &Client{
		base:    base,
		timeout: cfg.Timeout,
		token:   cfg.Token,
		http:    cfg.HTTPClient,
		log:     cfg.Logger.With().Str("component", "apiclient").Logger(),
		metrics: newCollector(cfg.Registerer),
	}
	maxFailures := cfg.MaxFailures
	c.cb = gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:    "registry-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			if to == gobreaker.StateOpen {
				c.metrics.breaker.Set(1)
			} else {
				c.metrics.breaker.Set(0)
			}
		},
	})
	return c, nil
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// PostJSON sends body as JSON to path and returns the decoded envelope.
// The envelope is returned for any HTTP status as long as it parses; a
// non-ok status is not an error.
func (c *Client) PostJSON(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	start := time.Now()
	resp, err := c.cb.Execute(func() (*Response, error) {
		return c.roundTrip(ctx, method, path, query, body)
	})
	c.metrics.duration.WithLabelValues(path).Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.metrics.requests.WithLabelValues(path, "circuit_open").Inc()
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrCircuitOpen)
	case err != nil:
		c.metrics.requests.WithLabelValues(path, "error").Inc()
		c.log.Error().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, err
	}

	outcome := "ok"
	if !resp.OK() {
		outcome = "rejected"
	}
	c.metrics.requests.WithLabelValues(path, outcome).Inc()
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("http_status", resp.HTTPStatus).
		Str("status", resp.Status).
		Dur("latency", time.Since(start)).
		Msg("request completed")
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(buf)
	}

	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %v", method, path, ErrRequestFailed, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	resp, err := ParseResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s %s (http %d): %w", method, path, res.StatusCode, err)
	}
	resp.HTTPStatus = res.StatusCode
	return resp, nil
}

// LoginRequest is the body of /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the data member of a successful /login response.
type LoginResult struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	resp, err := c.PostJSON(ctx, "/login", LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("login: %s", apiError(resp))
	}
	var out LoginResult
	if err := resp.DecodeData(&out); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if out.Token == "" {
		return nil, fmt.Errorf("login: %w: empty token", ErrMalformedResponse)
	}
	return &out, nil
}

// Patient is the registry listing view of a registered patient.
type Patient struct {
	NationalID       string  `json:"id"`
	FirstName        string  `json:"fname"`
	LastName         string  `json:"lname"`
	Gender           string  `json:"gender"`
	Age              int     `json:"age"`
	Phone            string  `json:"phone_number"`
	Condition        string  `json:"condition"`
	District         string  `json:"district"`
	BMI              *string `json:"bmi"`
	RegistrationDate string  `json:"registrationDate"`
}

// ListPatients returns the patients of a registry. The caller owns the
// returned slice.
func (c *Client) ListPatients(ctx context.Context, registry string) ([]Patient, error) {
	resp, err := c.do(ctx, http.MethodGet, "/patients", url.Values{"registry": {registry}}, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("list patients: %s", apiError(resp))
	}
	var out []Patient
	if err := resp.DecodeData(&out); err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return out, nil
}

func apiError(resp *Response) string {
	if resp.Error != "" {
		return resp.Error
	}
	return fmt.Sprintf("status %q (http %d)", resp.Status, resp.HTTPStatus)
}
