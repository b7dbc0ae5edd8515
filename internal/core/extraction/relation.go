package extraction

import (
	"sort"

	"github.com/agenthands/kinship/internal/core/model"
)

type Kind int

const (
	KindUnrecognized Kind = iota
	KindSpouse
	KindChild
	KindFather
	KindMother
)

func (k Kind) String() string {
	switch k {
	case KindSpouse:
		return "spouse"
	case KindChild:
		return "child"
	case KindFather:
		return "father"
	case KindMother:
		return "mother"
	default:
		return "unrecognized"
	}
}

var kindByProperty = map[string]Kind{
	"P26": KindSpouse,
	"P40": KindChild,
	"P22": KindFather,
	"P25": KindMother,
}

// Relation is one decoded family statement. Target is empty for
// KindUnrecognized.
type Relation struct {
	Kind        Kind
	StatementID string
	Target      string
}

// Decode turns raw claims into relations. Properties are visited in sorted
// order and statements in API order, so the result is deterministic.
// Statements of a family property whose value does not name an item decode
// as KindUnrecognized; claims of other properties are not returned at all.
func Decode(claims model.Claims) []Relation {
	props := make([]string, 0, len(claims))
	for prop := range claims {
		if _, ok := kindByProperty[prop]; ok {
			props = append(props, prop)
		}
	}
	sort.Strings(props)

	var out []Relation
	for _, prop := range props {
		kind := kindByProperty[prop]
		for _, c := range claims[prop] {
			target, ok := c.MainSnak.TargetID()
			if !ok {
				out = append(out, Relation{Kind: KindUnrecognized, StatementID: c.ID})
				continue
			}
			out = append(out, Relation{Kind: kind, StatementID: c.ID, Target: target})
		}
	}
	return out
}
