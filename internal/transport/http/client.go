package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// StatusError is returned when an upstream answers with a non-2xx status.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error: status %d: %s", e.Service, e.StatusCode, e.Body)
}

// IsStatus reports whether err is a StatusError carrying code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Options configures a Client.
type Options struct {
	// Service names the upstream in errors, logs and spans
	Service string

	Timeout    time.Duration
	MaxRetries int

	// BreakerFailures is the number of consecutive failures that opens the
	// circuit. Zero disables the breaker.
	BreakerFailures uint32
	BreakerTimeout  time.Duration

	// Transport defaults to a pooled http.Transport
	Transport http.RoundTripper
}

// Client performs JSON requests against one upstream service.
type Client struct {
	httpClient *http.Client
	service    string
	maxRetries int
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a Client with connection pooling and tracing.
func NewClient(opts Options) *Client {
	base := opts.Transport
	if base == nil {
		base = &http.Transport{
			MaxIdleConns:        10,
			MaxConnsPerHost:     10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(base,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return opts.Service + " " + r.Method + " " + r.URL.Path
				}),
			),
			Timeout: timeout,
		},
		service:    opts.Service,
		maxRetries: opts.MaxRetries,
	}

	if opts.BreakerFailures > 0 {
		breakerTimeout := opts.BreakerTimeout
		if breakerTimeout <= 0 {
			breakerTimeout = 30 * time.Second
		}
		failures := opts.BreakerFailures
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        opts.Service,
			MaxRequests: 1,
			Timeout:     breakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			IsSuccessful: func(err error) bool {
				var se *StatusError
				if errors.As(err, &se) {
					return se.StatusCode < 500
				}
				return err == nil
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				log.Log.WithName("circuit-breaker").Info("Circuit breaker state changed",
					"service", name, "from", from.String(), "to", to.String())
			},
		})
	}

	return c
}

// HTTPClient exposes the traced client, e.g. for SDKs that take one.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// DoJSON sends in (when non-nil) as a JSON body and decodes the response
// into out (when non-nil). Non-2xx answers become *StatusError.
func (c *Client) DoJSON(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", c.service, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", c.service, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	_, err = c.execute(func() (any, error) {
		return nil, c.roundTrip(ctx, req, out)
	})
	return err
}

// Ping issues a GET and succeeds on any 2xx answer.
func (c *Client) Ping(ctx context.Context, url string) error {
	return c.DoJSON(ctx, http.MethodGet, url, nil, nil)
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) execute(fn func() (any, error)) (any, error) {
	if c.breaker == nil {
		return fn()
	}
	res, err := c.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s unavailable: %w", c.service, err)
	}
	return res, err
}

func (c *Client) roundTrip(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", c.service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return &StatusError{
			Service:    c.service,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.service, err)
	}
	return nil
}

// doWithRetry executes the request, retrying transport errors and 5xx
// answers with exponential backoff.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	logger := log.FromContext(ctx).WithName("upstream-client")
	backoff := 1 * time.Second
	maxBackoff := 16 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		reqClone := req.Clone(ctx)
		if req.GetBody != nil {
			b, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			reqClone.Body = b
		}

		resp, err := c.httpClient.Do(reqClone)
		if err == nil {
			if resp.StatusCode < 500 {
				return resp, nil
			}
		}

		if attempt == c.maxRetries {
			if err != nil {
				return nil, err
			}
			return resp, nil
		}
		if err == nil {
			resp.Body.Close()
		}

		logger.V(1).Info("Retrying upstream request",
			"service", c.service, "url", req.URL.String(), "attempt", attempt+1, "error", err)

		select {
		case <-time.After(backoff):
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("max retries exceeded")
}

// JoinURL appends path to base, avoiding a doubled slash.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
