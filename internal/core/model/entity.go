package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// EntityRecord mirrors one entry of a wbgetentities response. Every field is
// optional; Wikidata omits empty sections.
type EntityRecord struct {
	ID           string               `json:"id"`
	Type         string               `json:"type,omitempty"`
	Missing      *string              `json:"missing,omitempty"`
	Redirects    *Redirect            `json:"redirects,omitempty"`
	Labels       map[string]LangValue `json:"labels,omitempty"`
	Descriptions map[string]LangValue `json:"descriptions,omitempty"`
	SiteLinks    map[string]SiteLink  `json:"sitelinks,omitempty"`
	Claims       Claims               `json:"claims,omitempty"`
	LastRevID    int64                `json:"lastrevid,omitempty"`
}

// Redirect is set when the requested key was merged into another item.
type Redirect struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type LangValue struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

type SiteLink struct {
	Site  string `json:"site"`
	Title string `json:"title"`
}

// Claims maps a property id such as "P26" to its statements in API order.
type Claims map[string][]Claim

type Claim struct {
	ID       string `json:"id"`
	Rank     string `json:"rank,omitempty"`
	MainSnak Snak   `json:"mainsnak"`
}

type Snak struct {
	SnakType  string     `json:"snaktype"`
	Property  string     `json:"property"`
	DataValue *DataValue `json:"datavalue,omitempty"`
}

type DataValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type entityIDValue struct {
	NumericID *int64 `json:"numeric-id"`
	ID        string `json:"id"`
}

// TargetID returns the numeric id of the item a snak points at. Snaks
// without a value, or whose value is not an item reference, report false.
func (s Snak) TargetID() (string, bool) {
	if s.DataValue == nil || len(s.DataValue.Value) == 0 {
		return "", false
	}
	var v entityIDValue
	if err := json.Unmarshal(s.DataValue.Value, &v); err != nil {
		return "", false
	}
	if v.NumericID != nil && *v.NumericID > 0 {
		return strconv.FormatInt(*v.NumericID, 10), true
	}
	if id := NumericID(v.ID); id != "" {
		return id, true
	}
	return "", false
}

// NumericID strips an entity key down to its digits ("Q42" -> "42"). It
// returns "" when no digits are present.
func NumericID(key string) string {
	var b strings.Builder
	for _, r := range key {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EntityKey is the inverse of NumericID for items.
func EntityKey(id string) string {
	return "Q" + id
}

// IsMissing reports whether the API flagged the entity as nonexistent.
func (r *EntityRecord) IsMissing() bool {
	return r == nil || r.Missing != nil
}
