package store

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/subseek/subseek/internal/config"
	apperrors "github.com/subseek/subseek/internal/errors"
)

// Open builds the caption index and video store for the configured
// backend. The caller owns both and must Close them.
func Open(cfg *config.Config) (CaptionIndex, VideoStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case config.BackendEmbedded:
		index, err := NewBleveCaptionIndex(cfg.Embedded.IndexPath, cfg.Search.MaxVideos)
		if err != nil {
			return nil, nil, err
		}
		videos, err := NewSQLiteVideoStore(cfg.Embedded.SQLitePath)
		if err != nil {
			_ = index.Close()
			return nil, nil, err
		}
		slog.Info("store_opened",
			slog.String("backend", config.BackendEmbedded),
			slog.String("index_path", cfg.Embedded.IndexPath),
			slog.String("sqlite_path", cfg.Embedded.SQLitePath))
		return index, withCache(cfg, videos), nil

	case config.BackendElasticsearch:
		opts := ElasticOptions{
			Addresses:       cfg.Elasticsearch.Addresses,
			Username:        cfg.Elasticsearch.Username,
			Password:        cfg.Elasticsearch.Password,
			CaptionsIndex:   cfg.Elasticsearch.CaptionsIndex,
			VideosIndex:     cfg.Elasticsearch.VideosIndex,
			Retries:         cfg.Elasticsearch.Retries,
			MaxVideos:       cfg.Search.MaxVideos,
			BreakerFailures: cfg.Elasticsearch.BreakerFailures,
			BreakerReset:    cfg.BreakerReset(),
		}
		client, err := NewElasticClient(opts)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("store_opened",
			slog.String("backend", config.BackendElasticsearch),
			slog.String("addresses", strings.Join(opts.Addresses, ",")),
			slog.String("captions_index", opts.CaptionsIndex),
			slog.String("videos_index", opts.VideosIndex))
		return NewElasticCaptionIndex(client, opts), withCache(cfg, NewElasticVideoStore(client, opts)), nil

	default:
		return nil, nil, apperrors.New(apperrors.ErrCodeBackendUnknown,
			fmt.Sprintf("unknown backend %q (valid options: %s, %s)",
				cfg.Backend, config.BackendEmbedded, config.BackendElasticsearch), nil).
			WithSuggestion(`Set backend to "embedded" or "elasticsearch" in your config`)
	}
}

// withCache wraps the video store in the metadata LRU when enabled.
func withCache(cfg *config.Config, inner VideoStore) VideoStore {
	if !cfg.Cache.Enabled {
		return inner
	}
	return NewCachedVideoStore(inner, cfg.Cache.Size, cfg.CacheTTL())
}
