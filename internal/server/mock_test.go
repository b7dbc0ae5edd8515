package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/agenthands/kinship/internal/core/model"
	"github.com/agenthands/kinship/internal/wikidata"
)

type MockFetcher struct {
	mu      sync.Mutex
	Records map[string]*model.EntityRecord
	Err     error
	Calls   int
	// Hook runs before each batch is answered.
	Hook func(ctx context.Context, ids []string)
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
	m.Calls++
	m.mu.Unlock()

	if m.Hook != nil {
		m.Hook(ctx, ids)
	}

	res := wikidata.BatchResult{Records: map[string]*model.EntityRecord{}, Failures: map[string]error{}}
	for _, id := range ids {
		switch rec, ok := m.Records[id]; {
		case ctx.Err() != nil:
			res.Failures[id] = ctx.Err()
		case m.Err != nil:
			res.Failures[id] = m.Err
		case ok:
			res.Records[id] = rec
		default:
			res.Failures[id] = fmt.Errorf("%w: Q%s", wikidata.ErrEntityNotFound, id)
		}
	}
	return res
}

type MockSearcher struct {
	Hits []wikidata.SearchHit
	Err  error
}

func (m *MockSearcher) Search(ctx context.Context, term string, limit int) ([]wikidata.SearchHit, error) {
	return m.Hits, m.Err
}
