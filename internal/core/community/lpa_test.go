package community

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/kinship/internal/core/model"
)

func TestLPA_DisconnectedComponents(t *testing.T) {
	// Graph: [1-2-3-1] (Triangle A) ... [4-5-6-4] (Triangle B)
	ids := []string{"1", "2", "3", "4", "5", "6"}
	edges := []model.Edge{
		{Source: "1", Target: "2"}, {Source: "2", Target: "3"}, {Source: "3", Target: "1"},
		{Source: "4", Target: "5"}, {Source: "5", Target: "6"}, {Source: "6", Target: "4"},
	}

	communities := NewLabelPropagationDetector().Detect(ids, edges)

	assert.Equal(t, [][]string{{"1", "2", "3"}, {"4", "5", "6"}}, communities)
}

func TestLPA_BridgeNode(t *testing.T) {
	// Graph: [1-2-3-1] --(3-4)-- [4-5-6-4]
	// 3 and 4 each have two strong neighbours against one bridge neighbour.
	ids := []string{"1", "2", "3", "4", "5", "6"}
	edges := []model.Edge{
		{Source: "1", Target: "2"}, {Source: "2", Target: "3"}, {Source: "3", Target: "1"},
		// Bridge
		{Source: "3", Target: "4"},
		// Triangle 2
		{Source: "4", Target: "5"}, {Source: "5", Target: "6"}, {Source: "6", Target: "4"},
	}

	communities := NewLabelPropagationDetector().Detect(ids, edges)

	assert.Len(t, communities, 2)
}

func TestLPA_LargeClique(t *testing.T) {
	ids := []string{"1", "2", "3", "4", "5"}
	var edges []model.Edge
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			edges = append(edges, model.Edge{Source: ids[i], Target: ids[j]})
		}
	}

	communities := NewLabelPropagationDetector().Detect(ids, edges)

	assert.Len(t, communities, 1)
	assert.Len(t, communities[0], 5)
}

func TestLPA_SpouseDoubleEdgeBindsCouple(t *testing.T) {
	// A couple linked by forward and reverse spouse edges, plus a loose
	// in-law hanging off one of them.
	ids := []string{"h", "w", "x"}
	edges := []model.Edge{
		{ID: "s", Source: "h", Target: "w"},
		{ID: "REV-s", Source: "w", Target: "h"},
		{ID: "c", Source: "x", Target: "w"},
	}

	communities := NewLabelPropagationDetector().Detect(ids, edges)

	var together bool
	for _, c := range communities {
		members := map[string]bool{}
		for _, id := range c {
			members[id] = true
		}
		if members["h"] && members["w"] {
			together = true
		}
	}
	assert.True(t, together)
}

func TestLPA_Empty(t *testing.T) {
	assert.Nil(t, NewLabelPropagationDetector().Detect(nil, nil))
}
