package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/agenthands/kinship/internal/core/dedupe"
	"github.com/agenthands/kinship/internal/core/extraction"
	"github.com/agenthands/kinship/internal/core/model"
	"github.com/agenthands/kinship/internal/core/parser"
	"github.com/agenthands/kinship/internal/core/render"
	"github.com/agenthands/kinship/internal/metrics"
	"github.com/agenthands/kinship/internal/wikidata"
)

var tracer = otel.Tracer("kinship.core")

// ErrSeedUnavailable is returned when the start id itself cannot be fetched.
var ErrSeedUnavailable = errors.New("seed entity unavailable")

// errCapped marks a redirected id whose canonical entity found no room in a
// full frontier.
var errCapped = errors.New("frontier full")

const (
	DefaultMaxNodes = 150
	DefaultDeadline = 60 * time.Second
)

type State int

const (
	StateSeeded State = iota
	StateExpanding
	// StateConverged means nothing is left to fetch and no relative was
	// turned away.
	StateConverged
	// StateCapped means the frontier filled up. Pending entries at that
	// point are never fetched.
	StateCapped
	// StateExpired means the crawl deadline passed. The result holds
	// whatever had been merged by then.
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateSeeded:
		return "seeded"
	case StateExpanding:
		return "expanding"
	case StateConverged:
		return "converged"
	case StateCapped:
		return "capped"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// CrawlContext is the mutable state of one crawl. Only the goroutine
// running Crawl touches it.
type CrawlContext struct {
	ID       string
	Frontier *model.Frontier
	Edges    []model.Edge
	Round    int
	State    State
	// Dropped counts relatives that were discovered while the frontier
	// was full.
	Dropped int

	started time.Time
	logger  *slog.Logger
}

type CrawlResult struct {
	ID       string
	State    State
	Rounds   int
	Frontier *model.Frontier
	Edges    []model.Edge
	Duration time.Duration
}

// Graph serializes the result for the front-end.
func (r *CrawlResult) Graph(s *render.Serializer) model.Graph {
	return s.Serialize(r.Frontier, r.Edges)
}

type crawlOptions struct {
	maxNodes int
	deadline time.Duration
}

type CrawlOption func(*crawlOptions)

func WithMaxNodes(n int) CrawlOption {
	return func(o *crawlOptions) { o.maxNodes = n }
}

// WithDeadline overrides the crawl deadline; zero disables it.
func WithDeadline(d time.Duration) CrawlOption {
	return func(o *crawlOptions) { o.deadline = d }
}

// Crawler expands a family graph outward from one person in rounds: every
// pending id is fetched in parallel, then the results are merged one by
// one. A Crawler holds no per-crawl state and is safe for concurrent use.
type Crawler struct {
	Fetcher   wikidata.EntityFetcher
	Parser    *parser.Parser
	Extractor *extraction.Extractor
	Logger    *slog.Logger
	Metrics   *metrics.Registry
	MaxNodes  int
	Deadline  time.Duration
	NewID     func() string
}

func NewCrawler(fetcher wikidata.EntityFetcher, p *parser.Parser) *Crawler {
	return &Crawler{
		Fetcher:   fetcher,
		Parser:    p,
		Extractor: extraction.NewExtractor(),
		Logger:    slog.Default(),
		MaxNodes:  DefaultMaxNodes,
		Deadline:  DefaultDeadline,
		NewID:     uuid.NewString,
	}
}

func (c *Crawler) newContext(startID string, maxNodes int) *CrawlContext {
	id := uuid.NewString()
	if c.NewID != nil {
		id = c.NewID()
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CrawlContext{
		ID:       id,
		Frontier: model.NewFrontier(startID, maxNodes),
		State:    StateSeeded,
		started:  time.Now(),
		logger:   logger.With("crawl_id", id, "seed", startID),
	}
}

// Crawl builds the family graph around startID, a numeric item id. It
// returns ErrSeedUnavailable when the seed cannot be fetched and ctx.Err()
// when ctx is cancelled; hitting the crawl deadline is not an error.
func (c *Crawler) Crawl(ctx context.Context, startID string, opts ...CrawlOption) (*CrawlResult, error) {
	o := crawlOptions{maxNodes: c.MaxNodes, deadline: c.Deadline}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxNodes < 1 {
		o.maxNodes = DefaultMaxNodes
	}

	cc := c.newContext(startID, o.maxNodes)

	ctx, span := tracer.Start(ctx, "crawl")
	defer span.End()
	span.SetAttributes(
		attribute.String("crawl.id", cc.ID),
		attribute.String("crawl.seed", startID),
		attribute.Int("crawl.max_nodes", o.maxNodes),
	)

	c.Metrics.CrawlStarted()
	defer c.Metrics.CrawlFinished()

	crawlCtx := ctx
	if o.deadline > 0 {
		var cancel context.CancelFunc
		crawlCtx, cancel = context.WithTimeout(ctx, o.deadline)
		defer cancel()
	}

	for cc.State == StateSeeded || cc.State == StateExpanding {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if !cc.Frontier.HasPending() || cc.Frontier.Full() {
			cc.State = c.terminalState(cc)
			break
		}
		if crawlCtx.Err() != nil {
			cc.State = StateExpired
			break
		}

		cc.State = StateExpanding
		cut := c.round(crawlCtx, cc)

		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if err := seedError(cc, startID); err != nil {
			cc.logger.Warn("seed unavailable", "error", err)
			c.Metrics.RecordCrawl("seed_unavailable", time.Since(cc.started), cc.Round, cc.Frontier.Len())
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if cut {
			cc.State = StateExpired
		}
	}

	if cc.State == StateExpired {
		if entry, _ := cc.Frontier.Entry(startID); entry.State == model.StatePending {
			err := fmt.Errorf("%w: %w", ErrSeedUnavailable, context.DeadlineExceeded)
			c.Metrics.RecordCrawl("seed_unavailable", time.Since(cc.started), cc.Round, cc.Frontier.Len())
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		cc.logger.Warn("crawl deadline reached, returning partial graph",
			"round", cc.Round, "frontier", cc.Frontier.Len(), "pending", len(cc.Frontier.Pending()))
	}

	res := &CrawlResult{
		ID:       cc.ID,
		State:    cc.State,
		Rounds:   cc.Round,
		Frontier: cc.Frontier,
		Edges:    cc.Edges,
		Duration: time.Since(cc.started),
	}

	if dups := dedupe.Duplicates(res.Edges); len(dups) > 0 {
		cc.logger.Debug("statement ids seen more than once", "count", len(dups), "first", dups[0])
	}

	counts := cc.Frontier.Count()
	cc.logger.Info("crawl finished",
		"state", res.State.String(),
		"rounds", res.Rounds,
		"frontier", cc.Frontier.Len(),
		"resolved", counts[model.StateResolved],
		"failed", counts[model.StateFailed],
		"edges", len(res.Edges),
		"duration", res.Duration,
	)
	c.Metrics.RecordCrawl(res.State.String(), res.Duration, res.Rounds, cc.Frontier.Len())
	span.SetAttributes(attribute.String("crawl.state", res.State.String()), attribute.Int("crawl.rounds", res.Rounds))
	return res, nil
}

func (c *Crawler) terminalState(cc *CrawlContext) State {
	if cc.Frontier.Full() && (cc.Frontier.HasPending() || cc.Dropped > 0) {
		return StateCapped
	}
	return StateConverged
}

// round fetches every pending id and merges the results. FetchBatch only
// returns once all of its requests are done, so merging never overlaps a
// fetch. It reports whether the deadline kept any id from being fetched.
func (c *Crawler) round(ctx context.Context, cc *CrawlContext) (cut bool) {
	cc.Round++
	pending := cc.Frontier.Pending()

	ctx, span := tracer.Start(ctx, "crawl.round")
	defer span.End()
	span.SetAttributes(attribute.Int("round", cc.Round), attribute.Int("pending", len(pending)))

	cc.logger.Debug("round started", "round", cc.Round, "frontier", cc.Frontier.Len(), "pending", len(pending))

	batch := c.Fetcher.FetchBatch(ctx, pending)

	for _, id := range pending {
		// a redirect merged earlier in this round may have resolved id
		if entry, _ := cc.Frontier.Entry(id); entry.State != model.StatePending {
			continue
		}
		if err, failed := batch.Failures[id]; failed {
			// ids cut off by the deadline stay pending; the crawl ends
			// before they could be retried.
			if wikidata.CutByDeadline(ctx, err) {
				cut = true
				continue
			}
			cc.Frontier.Fail(id, err)
			cc.logger.Debug("entity failed", "id", id, "error", err)
			continue
		}
		rec, ok := batch.Records[id]
		if !ok {
			cc.Frontier.Fail(id, fmt.Errorf("%w: Q%s", wikidata.ErrEntityNotFound, id))
			continue
		}
		c.merge(cc, id, c.Parser.Parse(rec))
	}

	cc.logger.Debug("round merged", "round", cc.Round, "frontier", cc.Frontier.Len(),
		"pending", len(cc.Frontier.Pending()), "edges", len(cc.Edges))
	return cut
}

// merge stores p for the requested id and queues its relatives while there
// is room.
func (c *Crawler) merge(cc *CrawlContext, requested string, p *model.Person) {
	canonical := p.ID
	if canonical == "" {
		canonical = requested
		p.ID = requested
	}

	if canonical != requested {
		if existing, ok := cc.Frontier.Entry(canonical); ok && existing.State == model.StateResolved {
			cc.Frontier.Redirect(requested, canonical)
			return
		}
		if !cc.Frontier.Resolve(canonical, p) {
			cc.Frontier.Fail(requested, fmt.Errorf("redirect to Q%s: %w", canonical, errCapped))
			return
		}
		cc.Frontier.Redirect(requested, canonical)
	} else {
		cc.Frontier.Resolve(requested, p)
	}

	res := c.Extractor.Extract(p)
	cc.Edges = append(cc.Edges, res.Edges...)
	for _, id := range res.NewIDs {
		if !cc.Frontier.Discover(id) {
			cc.Dropped++
		}
	}
}

func seedError(cc *CrawlContext, startID string) error {
	entry, ok := cc.Frontier.Entry(startID)
	if !ok || entry.State != model.StateFailed {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrSeedUnavailable, entry.Err)
}
