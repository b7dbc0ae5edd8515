package dedupe

import (
	"github.com/agenthands/kinship/internal/core/model"
)

// Edges drops every edge whose id was already seen, keeping the first
// occurrence and the original order. Two persons that both state the same
// relation produce different statement ids and are both kept.
func Edges(edges []model.Edge) []model.Edge {
	out := make([]model.Edge, 0, len(edges))
	seen := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Duplicates returns the ids that occur more than once, in first-repeat
// order. It is used to log statement id collisions.
func Duplicates(edges []model.Edge) []string {
	counts := make(map[string]int, len(edges))
	var dups []string
	for _, e := range edges {
		counts[e.ID]++
		if counts[e.ID] == 2 {
			dups = append(dups, e.ID)
		}
	}
	return dups
}
