package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Entities map[string]struct {
		ID string `json:"id"`
	} `json:"entities"`
}

func TestDecodeJSON(t *testing.T) {
	got, err := DecodeJSON[payload](strings.NewReader(`  {"entities":{"Q1":{"id":"Q1"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "Q1", got.Entities["Q1"].ID)
}

func TestDecodeJSON_NotAnObject(t *testing.T) {
	_, err := DecodeJSON[payload](strings.NewReader(`<html>rate limited</html>`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "<html>")
}

func TestDecodeJSON_Malformed(t *testing.T) {
	_, err := DecodeJSON[payload](strings.NewReader(`{"entities": [}`))
	assert.Error(t, err)
}
