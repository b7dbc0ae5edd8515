package extraction

import (
	"github.com/agenthands/kinship/internal/core/model"
)

const (
	LabelHusband = "Husband of"
	LabelWife    = "Wife of"
	LabelSpouse  = "Spouse of"
	LabelFather  = "Father of"
	LabelMother  = "Mother of"
	LabelParent  = "Parent of"
)

// Result holds what one person contributes to a crawl. NewIDs keeps first
// mention order and has no repeats.
type Result struct {
	NewIDs []string
	Edges  []model.Edge
}

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract emits the relation edges of p. Spouse statements produce an extra
// reverse edge so marriages weigh double in degree-based node sizing.
func (e *Extractor) Extract(p *model.Person) Result {
	var res Result
	seen := make(map[string]bool)

	for _, rel := range Decode(p.Statements) {
		if rel.Kind == KindUnrecognized {
			continue
		}
		if !seen[rel.Target] {
			seen[rel.Target] = true
			res.NewIDs = append(res.NewIDs, rel.Target)
		}

		switch rel.Kind {
		case KindSpouse:
			forward, reverse := spouseLabels(p.Gender)
			res.Edges = append(res.Edges,
				edge(rel.StatementID, p.ID, rel.Target, forward),
				edge(model.ReverseEdgePrefix+rel.StatementID, rel.Target, p.ID, reverse),
			)
		case KindChild:
			res.Edges = append(res.Edges, edge(rel.StatementID, p.ID, rel.Target, parentLabel(p.Gender)))
		case KindFather:
			res.Edges = append(res.Edges, edge(rel.StatementID, rel.Target, p.ID, LabelFather))
		case KindMother:
			res.Edges = append(res.Edges, edge(rel.StatementID, rel.Target, p.ID, LabelMother))
		}
	}

	return res
}

func edge(id, source, target, label string) model.Edge {
	return model.Edge{
		ID:     id,
		Source: source,
		Target: target,
		Label:  label,
		Type:   model.EdgeTypeArrow,
	}
}

func spouseLabels(g model.Gender) (forward, reverse string) {
	switch g {
	case model.GenderMale:
		return LabelHusband, LabelWife
	case model.GenderFemale:
		return LabelWife, LabelHusband
	default:
		return LabelSpouse, LabelSpouse
	}
}

func parentLabel(g model.Gender) string {
	switch g {
	case model.GenderMale:
		return LabelFather
	case model.GenderFemale:
		return LabelMother
	default:
		return LabelParent
	}
}
