package wikidata

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/agenthands/kinship/internal/core/model"
)

const apiPath = "/w/api.php"

// entitiesQuery builds a wbgetentities request for item ids.
func entitiesQuery(ids []string, language string) url.Values {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = model.EntityKey(id)
	}
	return url.Values{
		"action":    {"wbgetentities"},
		"ids":       {strings.Join(keys, "|")},
		"languages": {language},
		"redirects": {"yes"},
		"format":    {"json"},
	}
}

func searchQuery(term, language string, limit int) url.Values {
	return url.Values{
		"action":   {"wbsearchentities"},
		"search":   {term},
		"language": {language},
		"type":     {"item"},
		"limit":    {strconv.Itoa(limit)},
		"format":   {"json"},
	}
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type entitiesResponse struct {
	Entities map[string]*model.EntityRecord `json:"entities"`
	Error    *apiError                      `json:"error,omitempty"`
}

type searchResponse struct {
	Search []SearchHit `json:"search"`
	Error  *apiError   `json:"error,omitempty"`
}
