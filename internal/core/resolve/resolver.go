package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agenthands/kinship/internal/core/model"
	"github.com/agenthands/kinship/internal/wikidata"
)

// ErrNotFound means the input named no Wikidata item.
var ErrNotFound = errors.New("no entry found")

// Resolver turns user input into a numeric item id.
type Resolver struct {
	Searcher wikidata.Searcher
	Logger   *slog.Logger
}

func NewResolver(searcher wikidata.Searcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{Searcher: searcher, Logger: logger}
}

// Resolve accepts "42", "Q42"/"q42" or free text. Free text costs one
// search request and takes the first hit; a miss or a failed search
// reports ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, input string) (string, error) {
	if id, ok := Normalize(input); ok {
		return id, nil
	}

	term := strings.TrimSpace(input)
	if term == "" || r.Searcher == nil {
		return "", fmt.Errorf("%w for %q", ErrNotFound, input)
	}

	hits, err := r.Searcher.Search(ctx, term, 1)
	if err != nil {
		r.Logger.Warn("search failed", "term", term, "error", err)
		return "", fmt.Errorf("%w for %q: %w", ErrNotFound, input, err)
	}
	for _, hit := range hits {
		if id := model.NumericID(hit.ID); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w for %q", ErrNotFound, input)
}

// Normalize recognizes ids without touching the network.
func Normalize(input string) (string, bool) {
	s := strings.TrimSpace(input)
	if len(s) > 1 && (s[0] == 'Q' || s[0] == 'q') {
		s = s[1:]
	}
	if s == "" {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return s, true
}
