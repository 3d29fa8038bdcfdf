// Package llm wraps the Anthropic SDK with the two call shapes the extraction
// pipeline needs: streamed free-form completion and a forced tool call that
// returns schema shaped input
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	perr "orderlens/internal/platform/errors"
	"orderlens/internal/platform/logger"
	"orderlens/internal/platform/metrics"
)

const (
	modelDefault     = "claude-3-7-sonnet-20250219"
	defaultTimeout   = 5 * time.Minute
	defaultUA        = "orderlens"
	defaultMaxTokens = 20000
)

// Options configures the Client
type Options struct {
	BaseURL   string // empty keeps the SDK default (or ANTHROPIC_BASE_URL)
	APIKey    string // empty falls back to ANTHROPIC_API_KEY
	Model     string
	UserAgent string
	Timeout   time.Duration // per attempt; the call deadline comes from ctx

	// SDK retries for connection errors, 408, 409, 429 and 5xx, honouring retry-after
	MaxRetries int

	MaxTokens int
	Metrics   *metrics.Registry
}

// Client is safe for concurrent use
type Client struct {
	api  anthropic.Client
	opts Options
	log  logger.Logger
	met  *metrics.Registry
	now  func() time.Time
}

// NewClient fills defaults and builds the SDK client
func NewClient(o Options) *Client {
	if o.Model == "" {
		o.Model = modelDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	o.MaxRetries = max(o.MaxRetries, 0)
	if o.MaxTokens <= 0 {
		o.MaxTokens = defaultMaxTokens
	}
	met := o.Metrics
	if met == nil {
		met = metrics.NewRegistry()
	}
	c := &Client{opts: o, log: *logger.Named("llm"), met: met, now: time.Now}

	ro := []option.RequestOption{
		option.WithMaxRetries(o.MaxRetries),
		option.WithRequestTimeout(o.Timeout),
		option.WithHeader("User-Agent", o.UserAgent),
		option.WithMiddleware(c.attempt),
	}
	if o.APIKey != "" {
		ro = append(ro, option.WithAPIKey(o.APIKey))
	}
	if o.BaseURL != "" {
		ro = append(ro, option.WithBaseURL(o.BaseURL))
	}
	c.api = anthropic.NewClient(ro...)
	return c
}

// Model returns the configured model id
func (c *Client) Model() string { return c.opts.Model }

type attemptsKey struct{}

// withAttempts gives one logical call its own attempt counter; the SDK
// re-sends the same context on every retry
func withAttempts(ctx context.Context) context.Context {
	return context.WithValue(ctx, attemptsKey{}, new(atomic.Int32))
}

// attempt is SDK middleware run once per HTTP attempt
func (c *Client) attempt(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
	n := int32(0)
	if ctr, ok := req.Context().Value(attemptsKey{}).(*atomic.Int32); ok {
		n = ctr.Add(1) - 1
	}
	if n > 0 {
		c.met.LLMRetries.Inc()
		c.log.Warn().Int32("attempt", n).Msg("llm retrying")
	}
	start := c.now()
	resp, err := next(req)
	evt := c.log.Debug().Int32("attempt", n).Dur("latency", c.now().Sub(start))
	if resp != nil {
		evt = evt.Int("status", resp.StatusCode)
	}
	evt.Err(err).Msg("llm http response")
	return resp, err
}

// fail codes an SDK error: 429 is TooManyRequests, 5xx and transport are
// Unavailable, any other status is Upstream
func (c *Client) fail(ctx context.Context, err error, what string) error {
	if ctx.Err() != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "llm "+what+" cancelled")
	}
	var api *anthropic.Error
	if !errors.As(err, &api) {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "llm "+what+" transport failed")
	}
	msg := fmt.Sprintf("llm %s status %d", what, api.StatusCode)
	switch {
	case api.StatusCode == http.StatusTooManyRequests:
		return perr.Wrap(err, perr.ErrorCodeTooManyRequests, msg)
	case api.StatusCode >= 500:
		return perr.Wrap(err, perr.ErrorCodeUnavailable, msg)
	default:
		return perr.Wrap(err, perr.ErrorCodeUpstream, msg)
	}
}

func (c *Client) observe(kind string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.met.LLMRequests.WithLabelValues(kind, status).Inc()
	c.met.LLMSeconds.WithLabelValues(kind).Observe(c.now().Sub(start).Seconds())
}
