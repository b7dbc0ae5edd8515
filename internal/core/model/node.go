package model

type Gender int

const (
	GenderUnknown Gender = iota
	GenderMale
	GenderFemale
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "unknown"
	}
}

// Person is one individual resolved from Wikidata. A stub person (record
// without claims) has nil Statements.
type Person struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Gender      Gender `json:"gender"`
	ProfileURL  string `json:"profile_url"`
	Statements  Claims `json:"-"`
}

// VisualNode is a person as the graph front-end draws it.
type VisualNode struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Size    int    `json:"size"`
	Color   string `json:"color"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	WikiURL string `json:"wiki_url"`
}
