package model

// EdgeTypeArrow is the only render kind the front-end understands for
// relations.
const EdgeTypeArrow = "arrow"

// ReverseEdgePrefix marks synthetic spouse edges derived from a statement.
const ReverseEdgePrefix = "REV-"

// Edge is a directed, labelled relation between two person ids. ID is the
// Wikidata statement id it came from.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
	Type   string `json:"type"`
}

type Graph struct {
	Nodes []VisualNode `json:"nodes"`
	Edges []Edge       `json:"edges"`
}
