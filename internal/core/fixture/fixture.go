// Package fixture builds Wikidata entity records for tests.
package fixture

import (
	"encoding/json"
	"fmt"

	"github.com/agenthands/kinship/internal/core/model"
)

const (
	Male   = "6581097"
	Female = "6581072"
)

type Builder struct {
	rec  *model.EntityRecord
	next int
}

// Entity starts a record for id ("1339" or "Q1339") labelled name in English.
func Entity(id, name string) *Builder {
	key := model.EntityKey(model.NumericID(id))
	rec := &model.EntityRecord{ID: key, Type: "item"}
	if name != "" {
		rec.Labels = map[string]model.LangValue{"en": {Language: "en", Value: name}}
	}
	return &Builder{rec: rec}
}

func (b *Builder) Description(lang, text string) *Builder {
	if b.rec.Descriptions == nil {
		b.rec.Descriptions = map[string]model.LangValue{}
	}
	b.rec.Descriptions[lang] = model.LangValue{Language: lang, Value: text}
	return b
}

func (b *Builder) Label(lang, text string) *Builder {
	if b.rec.Labels == nil {
		b.rec.Labels = map[string]model.LangValue{}
	}
	b.rec.Labels[lang] = model.LangValue{Language: lang, Value: text}
	return b
}

func (b *Builder) SiteLink(site, title string) *Builder {
	if b.rec.SiteLinks == nil {
		b.rec.SiteLinks = map[string]model.SiteLink{}
	}
	b.rec.SiteLinks[site] = model.SiteLink{Site: site, Title: title}
	return b
}

func (b *Builder) Sex(target string) *Builder { return b.Item("P21", target) }

func (b *Builder) Spouse(target string) *Builder { return b.Item("P26", target) }

func (b *Builder) Child(target string) *Builder { return b.Item("P40", target) }

func (b *Builder) Father(target string) *Builder { return b.Item("P22", target) }

func (b *Builder) Mother(target string) *Builder { return b.Item("P25", target) }

// Item appends an item-valued statement with a predictable statement id
// "Q<id>$<n>".
func (b *Builder) Item(property, target string) *Builder {
	value, _ := json.Marshal(map[string]any{
		"entity-type": "item",
		"numeric-id":  json.Number(model.NumericID(target)),
		"id":          model.EntityKey(model.NumericID(target)),
	})
	return b.claim(property, model.Snak{
		SnakType:  "value",
		Property:  property,
		DataValue: &model.DataValue{Type: "wikibase-entityid", Value: value},
	})
}

// NoValue appends a statement without a datavalue.
func (b *Builder) NoValue(property string) *Builder {
	return b.claim(property, model.Snak{SnakType: "novalue", Property: property})
}

// Raw appends a statement whose value is the given JSON verbatim.
func (b *Builder) Raw(property, value string) *Builder {
	return b.claim(property, model.Snak{
		SnakType:  "value",
		Property:  property,
		DataValue: &model.DataValue{Type: "string", Value: json.RawMessage(value)},
	})
}

func (b *Builder) claim(property string, snak model.Snak) *Builder {
	if b.rec.Claims == nil {
		b.rec.Claims = model.Claims{}
	}
	b.next++
	b.rec.Claims[property] = append(b.rec.Claims[property], model.Claim{
		ID:       StatementID(b.rec.ID, b.next),
		Rank:     "normal",
		MainSnak: snak,
	})
	return b
}

func (b *Builder) Record() *model.EntityRecord { return b.rec }

// StatementID is the id Builder gives the n-th statement of an entity.
func StatementID(key string, n int) string {
	return fmt.Sprintf("%s$%d", key, n)
}

// Missing is the record wbgetentities returns for an unknown id.
func Missing(id string) *model.EntityRecord {
	empty := ""
	return &model.EntityRecord{ID: model.EntityKey(model.NumericID(id)), Missing: &empty}
}

// Response wraps records the way wbgetentities does.
func Response(records ...*model.EntityRecord) []byte {
	entities := make(map[string]*model.EntityRecord, len(records))
	for _, r := range records {
		entities[r.ID] = r
	}
	data, _ := json.Marshal(map[string]any{"entities": entities, "success": 1})
	return data
}

// Family is a small household around a stub president, seed 1339:
// 1339 (male) married to 1340, children 1341 and 1342; 1341 names 1339 as
// father; 1340 names 1339 as spouse.
func Family() map[string]*model.EntityRecord {
	recs := []*model.EntityRecord{
		Entity("1339", "President").Sex(Male).Spouse("1340").Child("1341").Child("1342").
			SiteLink("enwiki", "The President").Record(),
		Entity("1340", "First Lady").Sex(Female).Spouse("1339").Child("1341").Record(),
		Entity("1341", "Elder Child").Sex(Female).Father("1339").Mother("1340").Record(),
		Entity("1342", "Younger Child").Father("1339").Record(),
	}
	out := make(map[string]*model.EntityRecord, len(recs))
	for _, r := range recs {
		out[model.NumericID(r.ID)] = r
	}
	return out
}
