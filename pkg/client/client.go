// Package client provides the core World Bank API HTTP executor with
// envelope decoding, typed error classification, and request throttling.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/macrostat/worldbank-client/pkg/envelope"
	"github.com/macrostat/worldbank-client/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for API client operations.
var (
	wbRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wb_requests_total",
		Help: "Total API requests by status",
	}, []string{"status"})

	wbRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wb_request_duration_seconds",
		Help:    "API request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	wbErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wb_errors_total",
		Help: "Total API errors by class",
	}, []string{"class"})
)

// Client is the single-request executor. It issues exactly one GET per call,
// never retries, and classifies every failure into an APIError class.
type Client struct {
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	config     Config
	logger     zerolog.Logger
}

// New creates a new API client.
func New(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "wb-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		limiter: ratelimit.New(cfg.MinRequestInterval),
		config:  cfg,
		logger:  logger,
	}, nil
}

// Config returns the configuration the client was created with.
func (c *Client) Config() Config {
	return c.config
}

// BuildURL assembles a concrete request URL from the configured endpoint, a
// language code (empty means the configured default), a relative path, and
// query parameters.
func (c *Client) BuildURL(lang, path string, params url.Values) string {
	if lang == "" {
		lang = c.config.Lang
	}
	u := strings.TrimRight(c.config.Endpoint, "/") + "/" + lang + "/" + strings.TrimLeft(path, "/")
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// Execute issues one HTTP GET against a fully-assembled URL and returns the
// decoded envelope together with its paging header.
//
// Failures are classified: non-200 status (transport), unparseable body
// (decode), unrecognized envelope (shape), and a 200 response whose header
// embeds a server error message (server). Nothing is retried.
func (c *Client) Execute(ctx context.Context, rawURL string) (envelope.Header, envelope.Envelope, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return envelope.Header{}, nil, err
	}

	start := time.Now()
	defer func() {
		wbRequestDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return envelope.Header{}, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", rawURL).Msg("Executing API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		wbRequestsTotal.WithLabelValues("network_error").Inc()
		wbErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
		return envelope.Header{}, nil, &APIError{
			URL:     rawURL,
			Class:   ErrorClassTransport,
			Message: "request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	wbRequestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		wbErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
		c.logger.Warn().
			Str("url", rawURL).
			Int("status", resp.StatusCode).
			Msg("API request error")
		return envelope.Header{}, nil, &APIError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Class:      ErrorClassTransport,
			Message:    statusReason(resp),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		wbErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
		return envelope.Header{}, nil, &APIError{
			URL:     rawURL,
			Class:   ErrorClassTransport,
			Message: "read response body",
			Err:     err,
		}
	}

	env, err := envelope.Decode(body)
	if err != nil {
		class := ErrorClassShape
		if errors.Is(err, envelope.ErrDecode) {
			class = ErrorClassDecode
		}
		wbErrorsTotal.WithLabelValues(string(class)).Inc()
		return envelope.Header{}, nil, &APIError{
			URL:     rawURL,
			Class:   class,
			Message: err.Error(),
			Err:     err,
		}
	}

	header := env.Header()

	if msg, ok := env.Message(); ok {
		wbErrorsTotal.WithLabelValues(string(ErrorClassServer)).Inc()
		c.logger.Warn().
			Str("url", rawURL).
			Str("key", msg.Key).
			Str("value", msg.Value).
			Msg("Server-reported error in response header")
		return envelope.Header{}, nil, &APIError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Class:      ErrorClassServer,
			Message:    fmt.Sprintf("%s: %s", msg.Key, msg.Value),
		}
	}

	return header, env, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// statusReason extracts the server-supplied reason phrase from a response,
// falling back to the standard text for the status code.
func statusReason(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}
