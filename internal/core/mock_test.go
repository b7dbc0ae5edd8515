package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/agenthands/kinship/internal/core/model"
	"github.com/agenthands/kinship/internal/wikidata"
)

// MockFetcher serves records from memory and remembers every batch it was
// asked for.
type MockFetcher struct {
	mu      sync.Mutex
	Records map[string]*model.EntityRecord
	Errors  map[string]error
	Batches [][]string

	// Hook runs before each batch is answered.
	Hook func(ctx context.Context, ids []string)
}

func NewMockFetcher(records map[string]*model.EntityRecord) *MockFetcher {
	return &MockFetcher{Records: records, Errors: map[string]error{}}
}

func (m *MockFetcher) FetchOne(ctx context.Context, id string) (*model.EntityRecord, error) {
	res := m.FetchBatch(ctx, []string{id})
	if err, ok := res.Failures[id]; ok {
		return nil, err
	}
	return res.Records[id], nil
}

func (m *MockFetcher) FetchBatch(ctx context.Context, ids []string) wikidata.BatchResult {
	m.mu.Lock()
	m.Batches = append(m.Batches, append([]string(nil), ids...))
	m.mu.Unlock()

	if m.Hook != nil {
		m.Hook(ctx, ids)
	}

	res := wikidata.BatchResult{
		Records:  map[string]*model.EntityRecord{},
		Failures: map[string]error{},
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			res.Failures[id] = err
			continue
		}
		if err, ok := m.Errors[id]; ok {
			res.Failures[id] = err
			continue
		}
		if rec, ok := m.Records[id]; ok {
			res.Records[id] = rec
			continue
		}
		res.Failures[id] = fmt.Errorf("%w: Q%s", wikidata.ErrEntityNotFound, id)
	}
	return res
}

// Fetched lists every id requested so far, in request order.
func (m *MockFetcher) Fetched() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, b := range m.Batches {
		ids = append(ids, b...)
	}
	return ids
}
