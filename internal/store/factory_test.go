package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subseek/subseek/internal/config"
	apperrors "github.com/subseek/subseek/internal/errors"
)

func TestOpen_EmbeddedBackend(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Backend = config.BackendEmbedded
	cfg.Embedded.IndexPath = ""  // in-memory
	cfg.Embedded.SQLitePath = "" // in-memory

	index, videos, err := Open(cfg)
	require.NoError(t, err)
	defer func() {
		_ = index.Close()
		_ = videos.Close()
	}()

	assert.IsType(t, &BleveCaptionIndex{}, index)

	// Metadata caching is on by default
	assert.IsType(t, &CachedVideoStore{}, videos)
}

func TestOpen_EmbeddedBackend_CacheDisabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Backend = config.BackendEmbedded
	cfg.Embedded.IndexPath = ""
	cfg.Embedded.SQLitePath = ""
	cfg.Cache.Enabled = false

	index, videos, err := Open(cfg)
	require.NoError(t, err)
	defer func() {
		_ = index.Close()
		_ = videos.Close()
	}()

	assert.IsType(t, &SQLiteVideoStore{}, videos)
}

func TestOpen_ElasticsearchBackend(t *testing.T) {
	// Construction is lazy (no healthcheck), so no cluster is needed
	cfg := config.NewConfig()
	cfg.Backend = config.BackendElasticsearch

	index, videos, err := Open(cfg)
	require.NoError(t, err)
	defer func() {
		_ = index.Close()
		_ = videos.Close()
	}()

	assert.IsType(t, &ElasticCaptionIndex{}, index)
	assert.IsType(t, &CachedVideoStore{}, videos)
}

func TestOpen_BackendNameIsCaseInsensitive(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Backend = "Embedded"
	cfg.Embedded.IndexPath = ""
	cfg.Embedded.SQLitePath = ""

	index, videos, err := Open(cfg)
	require.NoError(t, err)
	_ = index.Close()
	_ = videos.Close()
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Backend = "postgres"

	_, _, err := Open(cfg)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeBackendUnknown, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "postgres")
}
