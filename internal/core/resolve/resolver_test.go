package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/kinship/internal/logging"
	"github.com/agenthands/kinship/internal/wikidata"
)

type MockSearcher struct {
	Hits  []wikidata.SearchHit
	Err   error
	Terms []string
}

func (m *MockSearcher) Search(ctx context.Context, term string, limit int) ([]wikidata.SearchHit, error) {
	m.Terms = append(m.Terms, term)
	return m.Hits, m.Err
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"1339", "1339", true},
		{" 42 ", "42", true},
		{"Q42", "42", true},
		{"q42", "42", true},
		{"Q", "", false},
		{"", "", false},
		{"Q42a", "", false},
		{"Douglas Adams", "", false},
		{"-1", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Normalize(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_IDSkipsSearch(t *testing.T) {
	s := &MockSearcher{}
	r := NewResolver(s, logging.Discard())

	id, err := r.Resolve(context.Background(), "Q1339")
	require.NoError(t, err)
	assert.Equal(t, "1339", id)
	assert.Empty(t, s.Terms)
}

func TestResolve_SearchFirstHit(t *testing.T) {
	s := &MockSearcher{Hits: []wikidata.SearchHit{{ID: "Q42", Label: "Douglas Adams"}, {ID: "Q5"}}}
	r := NewResolver(s, logging.Discard())

	id, err := r.Resolve(context.Background(), "  Douglas Adams ")
	require.NoError(t, err)
	assert.Equal(t, "42", id)
	assert.Equal(t, []string{"Douglas Adams"}, s.Terms)
}

func TestResolve_NoHits(t *testing.T) {
	r := NewResolver(&MockSearcher{}, logging.Discard())

	_, err := r.Resolve(context.Background(), "xyzzy plugh")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_SearchFailure(t *testing.T) {
	boom := errors.New("connection refused")
	r := NewResolver(&MockSearcher{Err: boom}, logging.Discard())

	_, err := r.Resolve(context.Background(), "someone")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, boom)
}

func TestResolve_BlankInput(t *testing.T) {
	s := &MockSearcher{}
	r := NewResolver(s, logging.Discard())

	_, err := r.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, s.Terms)
}
