package wikidata

import (
	"context"
	"errors"

	"github.com/agenthands/kinship/internal/core/model"
)

var (
	// ErrEntityNotFound means Wikidata has no item for the id. It is never
	// retried.
	ErrEntityNotFound = errors.New("entity not found")
	ErrInvalidID      = errors.New("invalid entity id")
	// ErrDeadlineAhead means a request was never sent because the rate
	// limiter could not admit it before the context deadline.
	ErrDeadlineAhead = errors.New("request would start after the deadline")
)

// EntityFetcher resolves numeric item ids to raw entity records.
type EntityFetcher interface {
	FetchOne(ctx context.Context, id string) (*model.EntityRecord, error)
	// FetchBatch fetches ids concurrently and returns once every request has
	// finished. Each id appears in exactly one of the two result maps.
	FetchBatch(ctx context.Context, ids []string) BatchResult
}

// Searcher looks items up by free text.
type Searcher interface {
	Search(ctx context.Context, term string, limit int) ([]SearchHit, error)
}

// BatchResult is keyed by requested id. A record's own id can differ from
// its key when Wikidata followed a redirect.
type BatchResult struct {
	Records  map[string]*model.EntityRecord
	Failures map[string]error
}

func newBatchResult() BatchResult {
	return BatchResult{
		Records:  make(map[string]*model.EntityRecord),
		Failures: make(map[string]error),
	}
}

type SearchHit struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}
