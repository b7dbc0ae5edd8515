package render

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/kinship/internal/core/community"
	"github.com/agenthands/kinship/internal/core/model"
)

func newTestSerializer() *Serializer {
	s := NewSerializer(community.NewLabelPropagationDetector())
	s.Rand = rand.New(rand.NewPCG(1, 2))
	return s
}

func TestSerialize_DropsUnresolvedAndDanglingEdges(t *testing.T) {
	f := model.NewFrontier("1", 10)
	f.Discover("2")
	f.Discover("3")
	f.Discover("4")
	f.Resolve("1", &model.Person{ID: "1", Name: "Dad", Gender: model.GenderMale, ProfileURL: "https://en.wikipedia.org/wiki/Dad"})
	f.Resolve("2", &model.Person{ID: "2", Name: "Mum", Gender: model.GenderFemale})
	f.Fail("3", errors.New("gone"))
	// 4 stays pending

	edges := []model.Edge{
		{ID: "s1", Source: "1", Target: "2", Label: "Husband of", Type: "arrow"},
		{ID: "REV-s1", Source: "2", Target: "1", Label: "Wife of", Type: "arrow"},
		{ID: "c1", Source: "1", Target: "3", Label: "Father of", Type: "arrow"},
		{ID: "c2", Source: "2", Target: "4", Label: "Mother of", Type: "arrow"},
		{ID: "s1", Source: "1", Target: "2", Label: "Husband of", Type: "arrow"},
	}

	g := newTestSerializer().Serialize(f, edges)

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "1", g.Nodes[0].ID)
	assert.Equal(t, "Dad", g.Nodes[0].Label)
	assert.Equal(t, ColorMale, g.Nodes[0].Color)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Dad", g.Nodes[0].WikiURL)
	assert.Equal(t, ColorFemale, g.Nodes[1].Color)

	require.Len(t, g.Edges, 2)
	assert.Equal(t, "s1", g.Edges[0].ID)
	assert.Equal(t, "REV-s1", g.Edges[1].ID)

	assert.Equal(t, 1, g.Nodes[0].Size)
	assert.Equal(t, 1, g.Nodes[1].Size)
}

func TestSerialize_WeightCountsIncomingEdges(t *testing.T) {
	f := model.NewFrontier("p", 10)
	for _, id := range []string{"a", "b", "c"} {
		f.Discover(id)
	}
	for _, id := range f.IDs() {
		f.Resolve(id, &model.Person{ID: id, Name: id})
	}
	edges := []model.Edge{
		{ID: "1", Source: "a", Target: "p"},
		{ID: "2", Source: "b", Target: "p"},
		{ID: "3", Source: "c", Target: "p"},
		{ID: "4", Source: "p", Target: "a"},
	}

	g := newTestSerializer().Serialize(f, edges)

	sizes := map[string]int{}
	for _, n := range g.Nodes {
		sizes[n.ID] = n.Size
	}
	assert.Equal(t, map[string]int{"p": 3, "a": 1, "b": 1, "c": 1}, sizes)
	assert.Equal(t, ColorUnknown, g.Nodes[0].Color)
}

func TestSerialize_FollowsRedirects(t *testing.T) {
	f := model.NewFrontier("1", 10)
	f.Discover("2")
	f.Resolve("1", &model.Person{ID: "1", Name: "One"})
	f.Redirect("2", "3")
	f.Resolve("3", &model.Person{ID: "3", Name: "Three"})

	g := newTestSerializer().Serialize(f, []model.Edge{{ID: "e", Source: "1", Target: "2"}})

	require.Len(t, g.Edges, 1)
	assert.Equal(t, "3", g.Edges[0].Target)
	assert.Len(t, g.Nodes, 2)
	assert.Equal(t, 1, g.Nodes[1].Size)
}

func TestSerialize_SingleStub(t *testing.T) {
	f := model.NewFrontier("7", 10)
	f.Resolve("7", &model.Person{ID: "7", Name: "7"})

	g := newTestSerializer().Serialize(f, nil)

	require.Len(t, g.Nodes, 1)
	assert.NotNil(t, g.Edges)
	assert.Empty(t, g.Edges)
	assert.Equal(t, 1, g.Nodes[0].Size)
}

func TestSerialize_CoordinatesWithinBands(t *testing.T) {
	f := model.NewFrontier("1", 10)
	for _, id := range []string{"2", "3", "4"} {
		f.Discover(id)
	}
	for _, id := range f.IDs() {
		f.Resolve(id, &model.Person{ID: id})
	}
	// two separate couples: two bands
	edges := []model.Edge{
		{ID: "a", Source: "1", Target: "2"},
		{ID: "b", Source: "3", Target: "4"},
	}

	g := newTestSerializer().Serialize(f, edges)

	for _, n := range g.Nodes {
		assert.GreaterOrEqual(t, n.Y, 0)
		assert.Less(t, n.Y, bandWidth)
	}
	assert.Less(t, g.Nodes[0].X, bandWidth)
	assert.Less(t, g.Nodes[1].X, bandWidth)
	assert.GreaterOrEqual(t, g.Nodes[2].X, bandWidth)
	assert.GreaterOrEqual(t, g.Nodes[3].X, bandWidth)
}

func TestSerialize_NilDetector(t *testing.T) {
	f := model.NewFrontier("1", 10)
	f.Resolve("1", &model.Person{ID: "1"})
	s := &Serializer{Rand: rand.New(rand.NewPCG(3, 4))}

	g := s.Serialize(f, nil)
	require.Len(t, g.Nodes, 1)
	assert.Less(t, g.Nodes[0].X, bandWidth)
}
