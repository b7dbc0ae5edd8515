package community

import (
	"github.com/agenthands/kinship/internal/core/model"
)

// Detector groups node ids into communities. Communities come back ordered
// by the position of their first member in ids, members in ids order.
type Detector interface {
	Detect(ids []string, edges []model.Edge) [][]string
}

// New returns the detector registered under name, defaulting to label
// propagation.
func New(name string) Detector {
	switch name {
	case "components":
		return NewComponentDetector()
	default:
		return NewLabelPropagationDetector()
	}
}

// ComponentDetector treats each weakly connected component as a community.
type ComponentDetector struct {
	MinSize int
}

func NewComponentDetector() *ComponentDetector {
	return &ComponentDetector{MinSize: 1}
}

func (d *ComponentDetector) Detect(ids []string, edges []model.Edge) [][]string {
	adj := undirected(ids, edges)

	visited := make(map[string]bool)
	labels := make(map[string]string, len(ids))
	for _, id := range ids {
		if visited[id] {
			continue
		}
		var component []string
		d.dfs(id, adj, visited, &component)
		for _, member := range component {
			labels[member] = id
		}
	}

	return group(ids, labels, d.MinSize)
}

func (d *ComponentDetector) dfs(u string, adj map[string]map[string]int, visited map[string]bool, component *[]string) {
	visited[u] = true
	*component = append(*component, u)
	for v := range adj[u] {
		if !visited[v] {
			d.dfs(v, adj, visited, component)
		}
	}
}

// undirected builds a weighted adjacency map restricted to ids. Parallel
// edges add weight, which is how a spouse pair's double edge counts more.
func undirected(ids []string, edges []model.Edge) map[string]map[string]int {
	adj := make(map[string]map[string]int, len(ids))
	for _, id := range ids {
		adj[id] = make(map[string]int)
	}
	for _, e := range edges {
		if _, ok := adj[e.Source]; !ok {
			continue
		}
		if _, ok := adj[e.Target]; !ok {
			continue
		}
		if e.Source == e.Target {
			continue
		}
		adj[e.Source][e.Target]++
		adj[e.Target][e.Source]++
	}
	return adj
}

// group collects ids by label, dropping communities smaller than minSize.
func group(ids []string, labels map[string]string, minSize int) [][]string {
	index := make(map[string]int)
	var out [][]string
	for _, id := range ids {
		label := labels[id]
		i, ok := index[label]
		if !ok {
			i = len(out)
			index[label] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], id)
	}

	kept := out[:0]
	for _, c := range out {
		if len(c) >= minSize {
			kept = append(kept, c)
		}
	}
	return kept
}
