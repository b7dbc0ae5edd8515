package parser

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/agenthands/kinship/internal/core/model"
)

const propertySex = "P21"

var (
	maleIDs   = map[string]bool{"6581097": true, "44148": true}
	femaleIDs = map[string]bool{"6581072": true, "43445": true}
)

// Sitelinks that belong to non-language projects have no Wikipedia article
// to link to.
var nonLanguageSites = map[string]bool{
	"commonswiki":   true,
	"specieswiki":   true,
	"metawiki":      true,
	"wikidatawiki":  true,
	"mediawikiwiki": true,
	"sourceswiki":   true,
	"outreachwiki":  true,
	"wikimaniawiki": true,
}

// Parser turns raw entity records into persons.
type Parser struct {
	// Language is preferred when picking a label or description.
	Language string
	// Mobile selects the m. subdomain for Wikipedia links.
	Mobile bool
}

func NewParser(language string, mobile bool) *Parser {
	return &Parser{Language: language, Mobile: mobile}
}

// Parse never fails: fields missing from the record leave the matching
// Person field empty, and a record without claims yields a stub.
func (p *Parser) Parse(record *model.EntityRecord) *model.Person {
	id := model.NumericID(record.ID)
	person := &model.Person{
		ID:         id,
		Name:       p.pick(record.Labels),
		Statements: record.Claims,
	}
	if person.Name == "" {
		person.Name = id
	}
	person.Description = p.pick(record.Descriptions)
	person.ProfileURL = p.profileURL(id, record.SiteLinks)
	person.Gender = genderOf(record.Claims)
	return person
}

func (p *Parser) pick(values map[string]model.LangValue) string {
	if len(values) == 0 {
		return ""
	}
	if v, ok := values[p.Language]; ok && v.Value != "" {
		return v.Value
	}
	langs := make([]string, 0, len(values))
	for lang := range values {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		if v := values[lang].Value; v != "" {
			return v
		}
	}
	return ""
}

func (p *Parser) profileURL(id string, links map[string]model.SiteLink) string {
	if link, ok := links["enwiki"]; ok && link.Title != "" {
		return p.wikipediaURL("en", link.Title)
	}

	sites := make([]string, 0, len(links))
	for site := range links {
		sites = append(sites, site)
	}
	sort.Strings(sites)
	for _, site := range sites {
		lang, ok := siteLanguage(site)
		if !ok || links[site].Title == "" {
			continue
		}
		return p.wikipediaURL(lang, links[site].Title)
	}

	return FallbackURL(id)
}

func (p *Parser) wikipediaURL(lang, title string) string {
	host := lang + ".wikipedia.org"
	if p.Mobile {
		host = lang + ".m.wikipedia.org"
	}
	return fmt.Sprintf("https://%s/wiki/%s", host, url.PathEscape(strings.ReplaceAll(title, " ", "_")))
}

// FallbackURL is the link used for persons without any Wikipedia article.
func FallbackURL(id string) string {
	return "https://www.wikidata.org/wiki/" + model.EntityKey(id)
}

// siteLanguage maps a sitelink key such as "zh_yuewiki" to the Wikipedia
// subdomain "zh-yue". Keys of sister projects ("enwikiquote") are rejected.
func siteLanguage(site string) (string, bool) {
	if nonLanguageSites[site] || !strings.HasSuffix(site, "wiki") {
		return "", false
	}
	lang := strings.TrimSuffix(site, "wiki")
	if lang == "" {
		return "", false
	}
	return strings.ReplaceAll(lang, "_", "-"), true
}

// genderOf only consults the first sex-or-gender statement.
func genderOf(claims model.Claims) model.Gender {
	statements := claims[propertySex]
	if len(statements) == 0 {
		return model.GenderUnknown
	}
	target, ok := statements[0].MainSnak.TargetID()
	if !ok {
		return model.GenderUnknown
	}
	switch {
	case maleIDs[target]:
		return model.GenderMale
	case femaleIDs[target]:
		return model.GenderFemale
	default:
		return model.GenderUnknown
	}
}
