package wikidata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/agenthands/kinship/internal/config"
	"github.com/agenthands/kinship/internal/core/common"
	"github.com/agenthands/kinship/internal/core/model"
	"github.com/agenthands/kinship/internal/metrics"
)

var tracer = otel.Tracer("kinship.wikidata")

type Options struct {
	BaseURL        string
	Language       string
	UserAgent      string
	RequestTimeout time.Duration
	// BatchSize is the number of ids per wbgetentities call (API max 50).
	BatchSize   int
	Concurrency int
	// MaxRetries counts attempts after the first one.
	MaxRetries     int
	InitialBackoff time.Duration
	// RateLimit is requests per second across all goroutines; 0 disables it.
	RateLimit float64
	Burst     int

	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *metrics.Registry
}

func OptionsFromConfig(cfg config.WikidataConfig) Options {
	return Options{
		BaseURL:        cfg.BaseURL,
		Language:       cfg.Language,
		UserAgent:      cfg.UserAgent,
		RequestTimeout: cfg.RequestTimeout.Duration,
		BatchSize:      cfg.BatchSize,
		Concurrency:    cfg.Concurrency,
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: 500 * time.Millisecond,
		RateLimit:      cfg.RateLimit,
		Burst:          cfg.Burst,
	}
}

// Client talks to the MediaWiki action API of a Wikibase instance.
type Client struct {
	opts    Options
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	metrics *metrics.Registry
}

func NewClient(opts Options) *Client {
	if opts.BatchSize < 1 || opts.BatchSize > 50 {
		opts.BatchSize = 50
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		opts:    opts,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
		metrics: opts.Metrics,
	}
}

func (c *Client) FetchOne(ctx context.Context, id string) (*model.EntityRecord, error) {
	res := c.FetchBatch(ctx, []string{id})
	if err, ok := res.Failures[id]; ok {
		return nil, err
	}
	return res.Records[id], nil
}

// FetchBatch splits ids into API-sized chunks and requests them in
// parallel, at most Concurrency at a time. It returns only after all
// chunks have completed; a failing chunk does not cancel the others.
func (c *Client) FetchBatch(ctx context.Context, ids []string) BatchResult {
	ctx, span := tracer.Start(ctx, "wikidata.FetchBatch")
	defer span.End()

	res := newBatchResult()
	valid := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if model.NumericID(id) != id || id == "" {
			res.Failures[id] = fmt.Errorf("%w: %q", ErrInvalidID, id)
			continue
		}
		valid = append(valid, id)
	}

	chunks := chunk(valid, c.opts.BatchSize)
	span.SetAttributes(attribute.Int("ids", len(valid)), attribute.Int("chunks", len(chunks)))

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(c.opts.Concurrency)
	for _, ids := range chunks {
		g.Go(func() error {
			records, failures := c.fetchChunk(ctx, ids)
			mu.Lock()
			defer mu.Unlock()
			for id, rec := range records {
				res.Records[id] = rec
			}
			for id, err := range failures {
				res.Failures[id] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	missing := 0
	for _, err := range res.Failures {
		if errors.Is(err, ErrEntityNotFound) {
			missing++
		}
	}
	c.metrics.RecordEntities("found", len(res.Records))
	c.metrics.RecordEntities("missing", missing)
	c.metrics.RecordEntities("failed", len(res.Failures)-missing)
	if len(res.Failures) > 0 {
		span.SetAttributes(attribute.Int("failures", len(res.Failures)))
	}
	return res
}

// fetchChunk maps one wbgetentities response back onto the requested ids.
func (c *Client) fetchChunk(ctx context.Context, ids []string) (map[string]*model.EntityRecord, map[string]error) {
	records := make(map[string]*model.EntityRecord, len(ids))
	failures := make(map[string]error)

	resp, err := getJSON[entitiesResponse](ctx, c, entitiesQuery(ids, c.opts.Language))
	if err == nil && resp.Error != nil {
		err = resp.Error.asError()
	}
	if err != nil {
		for _, id := range ids {
			failures[id] = err
		}
		c.logger.Warn("wikidata entity request failed", "ids", len(ids), "error", err)
		return records, failures
	}

	for key, rec := range resp.Entities {
		requested := key
		if rec != nil && rec.Redirects != nil && rec.Redirects.From != "" {
			requested = rec.Redirects.From
		}
		id := model.NumericID(requested)
		if rec.IsMissing() {
			failures[id] = fmt.Errorf("%w: %s", ErrEntityNotFound, requested)
			continue
		}
		if rec.ID == "" {
			rec.ID = key
		}
		records[id] = rec
	}

	for _, id := range ids {
		_, found := records[id]
		_, failed := failures[id]
		if !found && !failed {
			failures[id] = fmt.Errorf("%w: Q%s absent from response", ErrEntityNotFound, id)
		}
	}
	return records, failures
}

func (c *Client) Search(ctx context.Context, term string, limit int) ([]SearchHit, error) {
	if limit < 1 {
		limit = 1
	}
	resp, err := getJSON[searchResponse](ctx, c, searchQuery(term, c.opts.Language, limit))
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error.asError()
	}
	return resp.Search, nil
}

// statusError carries a non-2xx HTTP status.
type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("wikidata returned HTTP %d", e.Code)
}

func (e *apiError) asError() error {
	if e.Code == "no-such-entity" {
		return fmt.Errorf("%w: %s", ErrEntityNotFound, e.Info)
	}
	return fmt.Errorf("wikidata api error %s: %s", e.Code, e.Info)
}

// getJSON issues one GET against the action API with rate limiting,
// per-attempt timeouts and exponential backoff on transient failures.
func getJSON[T any](ctx context.Context, c *Client, params url.Values) (T, error) {
	endpoint := c.opts.BaseURL + apiPath + "?" + params.Encode()

	ctx, span := tracer.Start(ctx, "wikidata."+params.Get("action"))
	defer span.End()

	operation := func() (T, error) {
		var zero T
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return zero, backoff.Permanent(ctx.Err())
			}
			if _, ok := ctx.Deadline(); ok {
				// the limiter refuses waits that would outlast the deadline
				return zero, backoff.Permanent(fmt.Errorf("%w: %w: %v", ErrDeadlineAhead, context.DeadlineExceeded, err))
			}
			return zero, backoff.Permanent(err)
		}
		return attempt[T](ctx, c, endpoint)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.InitialBackoff

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.opts.MaxRetries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.metrics.RecordRetry()
			c.logger.Debug("retrying wikidata request", "action", params.Get("action"), "in", next, "error", err)
		}),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func attempt[T any](ctx context.Context, c *Client, endpoint string) (T, error) {
	var zero T

	reqCtx := ctx
	if c.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.opts.RequestTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return zero, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordFetch("error", time.Since(start))
		if ctx.Err() != nil {
			return zero, backoff.Permanent(ctx.Err())
		}
		return zero, fmt.Errorf("wikidata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordFetch(fmt.Sprintf("%d", resp.StatusCode), time.Since(start))
		serr := &statusError{Code: resp.StatusCode}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return zero, serr
		}
		return zero, backoff.Permanent(serr)
	}

	result, err := common.DecodeJSON[T](resp.Body)
	c.metrics.RecordFetch("ok", time.Since(start))
	if err != nil {
		if reqCtx.Err() != nil && ctx.Err() == nil {
			return zero, fmt.Errorf("wikidata response read timed out: %w", err)
		}
		return zero, backoff.Permanent(err)
	}
	return result, nil
}

func chunk(ids []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}

// IsTransient reports whether err came from a cancelled or expired context
// rather than from Wikidata itself.
func IsTransient(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// CutByDeadline reports whether a request failed only because ctx ran out
// of time, either already or before the rate limiter would have let it
// start. Per-request timeouts are not included.
func CutByDeadline(ctx context.Context, err error) bool {
	if errors.Is(err, ErrDeadlineAhead) {
		return true
	}
	return IsTransient(err) && ctx.Err() != nil
}
