//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/kinship/internal/config"
	"github.com/agenthands/kinship/internal/core/resolve"
	"github.com/agenthands/kinship/internal/logging"
	"github.com/agenthands/kinship/internal/wikidata"
)

func setup(t *testing.T) (*config.Config, *wikidata.Client) {
	t.Helper()
	_ = godotenv.Load("../../.env")

	cfg, err := config.LoadOrDefault("../../config/config.toml")
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyEnv())
	if os.Getenv("KINSHIP_LOG_LEVEL") == "" {
		cfg.Log.Level = "warn"
	}
	cfg.Log.File = ""

	opts := wikidata.OptionsFromConfig(cfg.Wikidata)
	opts.Logger = logging.New(cfg.Log)
	return cfg, wikidata.NewClient(opts)
}

func TestLiveFetch(t *testing.T) {
	_, client := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Douglas Adams
	rec, err := client.FetchOne(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Q42", rec.ID)
	assert.NotEmpty(t, rec.Labels["en"].Value)
	assert.NotEmpty(t, rec.Claims["P21"])

	res := client.FetchBatch(ctx, []string{"42", "1339", "999999999999"})
	assert.Contains(t, res.Records, "42")
	assert.Contains(t, res.Records, "1339")
	assert.ErrorIs(t, res.Failures["999999999999"], wikidata.ErrEntityNotFound)
}

func TestLiveSearch(t *testing.T) {
	_, client := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id, err := resolve.NewResolver(client, logging.Discard()).Resolve(ctx, "Douglas Adams")
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	_, err = resolve.NewResolver(client, logging.Discard()).Resolve(ctx, "qzxqzxqzx no such person qzxqzx")
	assert.ErrorIs(t, err, resolve.ErrNotFound)
}
