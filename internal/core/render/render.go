package render

import (
	"math/rand/v2"

	"github.com/agenthands/kinship/internal/core/community"
	"github.com/agenthands/kinship/internal/core/dedupe"
	"github.com/agenthands/kinship/internal/core/model"
)

const (
	ColorMale    = "rgb(125,125,255)"
	ColorFemale  = "rgb(255,125,125)"
	ColorUnknown = "rgb(125,125,125)"

	// bandWidth is the x span given to one community; y spans the same range.
	bandWidth = 10
)

// Serializer turns a finished crawl into the graph the front-end draws.
// Coordinates carry no meaning beyond keeping a family branch in one
// vertical band.
type Serializer struct {
	Detector community.Detector
	Rand     *rand.Rand
}

func NewSerializer(detector community.Detector) *Serializer {
	return &Serializer{
		Detector: detector,
		Rand:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Serialize drops unresolved entries, keeps only edges between resolved
// persons (following redirects), removes duplicate edge ids and sizes each
// node by its incoming edge count.
func (s *Serializer) Serialize(frontier *model.Frontier, edges []model.Edge) model.Graph {
	graph := model.Graph{
		Nodes: make([]model.VisualNode, 0, frontier.Len()),
		Edges: FilterEdges(frontier, edges),
	}

	weights := Weights(graph.Edges)

	var ids []string
	for _, id := range frontier.IDs() {
		entry, _ := frontier.Entry(id)
		if entry.State != model.StateResolved {
			continue
		}
		ids = append(ids, id)
		p := entry.Person
		graph.Nodes = append(graph.Nodes, model.VisualNode{
			ID:      id,
			Label:   p.Name,
			Size:    weightOf(weights, id),
			Color:   Color(p.Gender),
			WikiURL: p.ProfileURL,
		})
	}

	s.place(graph.Nodes, ids, graph.Edges)
	return graph
}

// FilterEdges rewrites endpoints to canonical ids, drops edges touching an
// id that did not resolve and then removes duplicate ids.
func FilterEdges(frontier *model.Frontier, edges []model.Edge) []model.Edge {
	kept := make([]model.Edge, 0, len(edges))
	for _, e := range edges {
		e.Source = frontier.Canonical(e.Source)
		e.Target = frontier.Canonical(e.Target)
		if _, ok := frontier.Person(e.Source); !ok {
			continue
		}
		if _, ok := frontier.Person(e.Target); !ok {
			continue
		}
		kept = append(kept, e)
	}
	return dedupe.Edges(kept)
}

// Weights counts incoming edges per target id.
func Weights(edges []model.Edge) map[string]int {
	w := make(map[string]int)
	for _, e := range edges {
		w[e.Target]++
	}
	return w
}

func weightOf(weights map[string]int, id string) int {
	if n := weights[id]; n > 0 {
		return n
	}
	return 1
}

func Color(g model.Gender) string {
	switch g {
	case model.GenderMale:
		return ColorMale
	case model.GenderFemale:
		return ColorFemale
	default:
		return ColorUnknown
	}
}

func (s *Serializer) place(nodes []model.VisualNode, ids []string, edges []model.Edge) {
	band := make(map[string]int, len(ids))
	if s.Detector != nil {
		for i, members := range s.Detector.Detect(ids, edges) {
			for _, id := range members {
				band[id] = i
			}
		}
	}
	for i := range nodes {
		nodes[i].X = band[nodes[i].ID]*bandWidth + s.Rand.IntN(bandWidth)
		nodes[i].Y = s.Rand.IntN(bandWidth)
	}
}
