package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/olivere/elastic/v7"

	apperrors "github.com/subseek/subseek/internal/errors"
)

// captionsIndexMapping keeps caption text searchable both raw and through
// an English stemmer ("text.stemmed"); video_id is a keyword for exact
// filtering.
const captionsIndexMapping = `{
  "settings": {
    "analysis": {
      "filter": {
        "english_stemmer": {"type": "stemmer", "language": "english"}
      },
      "analyzer": {
        "caption_english": {
          "tokenizer": "standard",
          "filter": ["lowercase", "english_stemmer"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "video_id": {"type": "keyword"},
      "text": {
        "type": "text",
        "analyzer": "standard",
        "fields": {
          "stemmed": {"type": "text", "analyzer": "caption_english"}
        }
      },
      "start_time": {"type": "double"},
      "end_time": {"type": "double"}
    }
  }
}`

// videosIndexMapping stores video metadata documents keyed by video id.
const videosIndexMapping = `{
  "mappings": {
    "properties": {
      "video_id": {"type": "keyword"},
      "title": {"type": "text"},
      "channel_id": {"type": "keyword"},
      "channel_name": {"type": "text"},
      "upload_date": {"type": "long"},
      "duration": {"type": "double"},
      "views": {"type": "long"},
      "likes": {"type": "long"},
      "comment_count": {"type": "long"},
      "tags": {"type": "keyword"}
    }
  }
}`

// ElasticOptions configures the Elasticsearch backend adapters.
type ElasticOptions struct {
	Addresses       []string
	Username        string
	Password        string
	CaptionsIndex   string
	VideosIndex     string
	Retries         int
	MaxVideos       int
	BreakerFailures int
	BreakerReset    time.Duration
}

// NewElasticClient dials the cluster shared by both adapters. Sniffing and
// the startup healthcheck are disabled so a single-node setup works and the
// process starts even while the cluster is down; the circuit breaker covers
// outages at request time.
func NewElasticClient(opts ElasticOptions) (*elastic.Client, error) {
	clientOpts := []elastic.ClientOptionFunc{
		elastic.SetURL(opts.Addresses...),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
	}
	if opts.Username != "" {
		clientOpts = append(clientOpts, elastic.SetBasicAuth(opts.Username, opts.Password))
	}

	client, err := elastic.NewClient(clientOpts...)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeIndexUnavailable,
			fmt.Sprintf("cannot create Elasticsearch client for %s", strings.Join(opts.Addresses, ", ")), err).
			WithSuggestion("Check elasticsearch.addresses in your config")
	}
	return client, nil
}

// retryConfigFor builds the per-request retry policy from the options.
// Elasticsearch round trips are user-facing, so backoff stays short.
func retryConfigFor(opts ElasticOptions) apperrors.RetryConfig {
	cfg := apperrors.DefaultRetryConfig()
	if opts.Retries >= 0 {
		cfg.MaxRetries = opts.Retries
	}
	cfg.InitialDelay = 250 * time.Millisecond
	cfg.MaxDelay = 2 * time.Second
	cfg.Jitter = true
	return cfg
}

// breakerFor builds a named circuit breaker from the options.
func breakerFor(name string, opts ElasticOptions) *apperrors.CircuitBreaker {
	var cbOpts []apperrors.CircuitBreakerOption
	if opts.BreakerFailures > 0 {
		cbOpts = append(cbOpts, apperrors.WithMaxFailures(opts.BreakerFailures))
	}
	if opts.BreakerReset > 0 {
		cbOpts = append(cbOpts, apperrors.WithResetTimeout(opts.BreakerReset))
	}
	return apperrors.NewCircuitBreaker(name, cbOpts...)
}

// elasticDo runs one Elasticsearch round trip through the circuit breaker
// and retry policy. The breaker sits outside so a run of failed retries
// counts as a single trip.
func elasticDo[T any](ctx context.Context, breaker *apperrors.CircuitBreaker, retry apperrors.RetryConfig, op string, fn func() (T, error)) (T, error) {
	return apperrors.CircuitExecuteWithResult(breaker, func() (T, error) {
		return apperrors.RetryWithResult(ctx, retry, func() (T, error) {
			res, err := fn()
			return res, classifyElasticErr(op, err)
		})
	})
}

// classifyElasticErr maps transport failures onto retryable index errors so
// the retry loop and circuit breaker can tell outages from permanent
// failures.
func classifyElasticErr(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.New(apperrors.ErrCodeIndexTimeout,
			fmt.Sprintf("%s timed out", op), err)
	case elastic.IsConnErr(err) || elastic.IsTimeout(err) ||
		elastic.IsStatusCode(err, http.StatusServiceUnavailable) ||
		elastic.IsStatusCode(err, http.StatusTooManyRequests):
		return apperrors.New(apperrors.ErrCodeIndexUnavailable,
			fmt.Sprintf("%s: search backend unavailable", op), err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// ElasticCaptionIndex implements CaptionIndex against an Elasticsearch
// captions index.
type ElasticCaptionIndex struct {
	client    *elastic.Client
	index     string
	maxVideos int
	retry     apperrors.RetryConfig
	breaker   *apperrors.CircuitBreaker

	ensure    sync.Once
	ensureErr error
}

// Verify interface implementation at compile time
var _ CaptionIndex = (*ElasticCaptionIndex)(nil)

// NewElasticCaptionIndex wraps a shared client for caption operations.
func NewElasticCaptionIndex(client *elastic.Client, opts ElasticOptions) *ElasticCaptionIndex {
	maxVideos := opts.MaxVideos
	if maxVideos <= 0 {
		maxVideos = 10000
	}
	return &ElasticCaptionIndex{
		client:    client,
		index:     opts.CaptionsIndex,
		maxVideos: maxVideos,
		retry:     retryConfigFor(opts),
		breaker:   breakerFor("elasticsearch-captions", opts),
	}
}

// AggregateVideos runs one terms aggregation over video_id with scripted
// avg/max score metrics, plus a cardinality aggregation for the exact
// distinct video count (the terms bucket list is capped at maxVideos).
func (e *ElasticCaptionIndex) AggregateVideos(ctx context.Context, clause Clause) (*VideoAggregation, error) {
	q, err := toElasticQuery(clause)
	if err != nil {
		return nil, err
	}

	videosAgg := elastic.NewTermsAggregation().
		Field(FieldVideoID).
		Size(e.maxVideos).
		SubAggregation("avg_score", elastic.NewAvgAggregation().Script(elastic.NewScript("_score"))).
		SubAggregation("max_score", elastic.NewMaxAggregation().Script(elastic.NewScript("_score")))
	countAgg := elastic.NewCardinalityAggregation().Field(FieldVideoID)

	res, err := elasticDo(ctx, e.breaker, e.retry, "aggregate videos", func() (*elastic.SearchResult, error) {
		return e.client.Search().
			Index(e.index).
			Query(q).
			Size(0).
			TrackTotalHits(true).
			Aggregation("videos", videosAgg).
			Aggregation("video_count", countAgg).
			Do(ctx)
	})
	if err != nil {
		return nil, err
	}

	agg := &VideoAggregation{TotalCaptions: res.TotalHits()}

	terms, ok := res.Aggregations.Terms("videos")
	if !ok {
		return nil, fmt.Errorf("aggregate videos: response missing videos aggregation")
	}
	agg.Stats = make([]VideoStats, 0, len(terms.Buckets))
	for _, bucket := range terms.Buckets {
		vid, _ := bucket.Key.(string)
		if vid == "" {
			continue
		}
		stats := VideoStats{VideoID: vid, MatchCount: bucket.DocCount}
		if avg, ok := bucket.Avg("avg_score"); ok && avg.Value != nil {
			stats.AvgScore = *avg.Value
		}
		if max, ok := bucket.Max("max_score"); ok && max.Value != nil {
			stats.MaxScore = *max.Value
		}
		agg.Stats = append(agg.Stats, stats)
	}

	// Cardinality is the full distinct count even when buckets are capped
	agg.TotalVideos = int64(len(agg.Stats))
	if card, ok := res.Aggregations.Cardinality("video_count"); ok && card.Value != nil {
		agg.TotalVideos = int64(*card.Value)
	}

	return agg, nil
}

// MatchingCaptions returns one video's matching captions with sentence
// bounded highlight fragments in the caller's markers.
func (e *ElasticCaptionIndex) MatchingCaptions(ctx context.Context, clause Clause, videoID string, spec HighlightSpec) ([]CaptionHit, error) {
	q, err := toElasticQuery(clause)
	if err != nil {
		return nil, err
	}

	boolQ := elastic.NewBoolQuery().
		Must(q).
		Filter(elastic.NewTermQuery(FieldVideoID, videoID))

	numFragments := spec.NumFragments
	if numFragments <= 0 {
		numFragments = 1
	}
	hl := elastic.NewHighlight().
		Fields(elastic.NewHighlighterField(FieldText)).
		PreTags(spec.PreTag).
		PostTags(spec.PostTag).
		NumOfFragments(numFragments).
		BoundaryScannerType("sentence")
	if spec.FragmentSize > 0 {
		hl = hl.FragmentSize(spec.FragmentSize)
	}
	if spec.NoMatchSize > 0 {
		hl = hl.NoMatchSize(spec.NoMatchSize)
	}

	res, err := elasticDo(ctx, e.breaker, e.retry, "match captions", func() (*elastic.SearchResult, error) {
		return e.client.Search().
			Index(e.index).
			Query(boolQ).
			Size(MaxVideoHits).
			Highlight(hl).
			Sort("_score", false).
			Sort(FieldStartTime, true).
			Do(ctx)
	})
	if err != nil {
		return nil, err
	}

	hits := make([]CaptionHit, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var c Caption
		if err := json.Unmarshal(hit.Source, &c); err != nil {
			return nil, fmt.Errorf("match captions: decode hit %s: %w", hit.Id, err)
		}
		ch := CaptionHit{Caption: c}
		if hit.Score != nil {
			ch.Score = *hit.Score
		}
		if frags := hit.Highlight[FieldText]; len(frags) > 0 {
			ch.Highlight = frags[0]
		}
		hits = append(hits, ch)
	}
	return hits, nil
}

// CaptionsBetween returns all captions of a video with start_time in
// [from, to], ascending.
func (e *ElasticCaptionIndex) CaptionsBetween(ctx context.Context, videoID string, from, to float64) ([]Caption, error) {
	boolQ := elastic.NewBoolQuery().Filter(
		elastic.NewTermQuery(FieldVideoID, videoID),
		elastic.NewRangeQuery(FieldStartTime).Gte(from).Lte(to),
	)

	res, err := elasticDo(ctx, e.breaker, e.retry, "context window", func() (*elastic.SearchResult, error) {
		return e.client.Search().
			Index(e.index).
			Query(boolQ).
			Size(MaxVideoHits).
			Sort(FieldStartTime, true).
			Do(ctx)
	})
	if err != nil {
		return nil, err
	}

	captions := make([]Caption, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var c Caption
		if err := json.Unmarshal(hit.Source, &c); err != nil {
			return nil, fmt.Errorf("context window: decode hit %s: %w", hit.Id, err)
		}
		captions = append(captions, c)
	}
	return captions, nil
}

// IndexCaptions bulk-writes captions, creating the index with its mapping
// on first use. The bulk request is rebuilt per attempt because a bulk
// service cannot be replayed after Do.
func (e *ElasticCaptionIndex) IndexCaptions(ctx context.Context, captions []Caption) error {
	if len(captions) == 0 {
		return nil
	}
	if err := e.ensureIndex(ctx); err != nil {
		return err
	}

	res, err := elasticDo(ctx, e.breaker, e.retry, "index captions", func() (*elastic.BulkResponse, error) {
		bulk := e.client.Bulk().Index(e.index)
		for _, c := range captions {
			bulk.Add(elastic.NewBulkIndexRequest().
				Id(CaptionID(c.VideoID, c.StartTime)).
				Doc(c))
		}
		return bulk.Do(ctx)
	})
	if err != nil {
		return err
	}
	if res.Errors {
		failed := res.Failed()
		return apperrors.New(apperrors.ErrCodeIndexFailed,
			fmt.Sprintf("%d of %d captions failed to index", len(failed), len(captions)), nil).
			WithDetail("index", e.index)
	}
	return nil
}

// ensureIndex creates the captions index with its mapping once.
func (e *ElasticCaptionIndex) ensureIndex(ctx context.Context) error {
	e.ensure.Do(func() {
		e.ensureErr = createIndexIfMissing(ctx, e.client, e.index, captionsIndexMapping)
	})
	return e.ensureErr
}

// CaptionCount returns the number of indexed captions.
func (e *ElasticCaptionIndex) CaptionCount(ctx context.Context) (uint64, error) {
	count, err := elasticDo(ctx, e.breaker, e.retry, "count captions", func() (int64, error) {
		return e.client.Count(e.index).Do(ctx)
	})
	if err != nil {
		return 0, err
	}
	return uint64(count), nil
}

// Close stops the shared client. Stop is idempotent, so the paired video
// store closing the same client is fine.
func (e *ElasticCaptionIndex) Close() error {
	e.client.Stop()
	return nil
}

// ElasticVideoStore implements VideoStore against an Elasticsearch videos
// index.
type ElasticVideoStore struct {
	client  *elastic.Client
	index   string
	retry   apperrors.RetryConfig
	breaker *apperrors.CircuitBreaker

	ensure    sync.Once
	ensureErr error
}

// Verify interface implementation at compile time
var _ VideoStore = (*ElasticVideoStore)(nil)

// NewElasticVideoStore wraps a shared client for metadata operations.
func NewElasticVideoStore(client *elastic.Client, opts ElasticOptions) *ElasticVideoStore {
	return &ElasticVideoStore{
		client:  client,
		index:   opts.VideosIndex,
		retry:   retryConfigFor(opts),
		breaker: breakerFor("elasticsearch-videos", opts),
	}
}

// GetVideos multi-gets metadata documents. Unknown ids and unreadable
// documents are skipped, never an error.
func (s *ElasticVideoStore) GetVideos(ctx context.Context, ids []string) (map[string]VideoMeta, error) {
	if len(ids) == 0 {
		return map[string]VideoMeta{}, nil
	}

	res, err := elasticDo(ctx, s.breaker, s.retry, "fetch videos", func() (*elastic.MgetResponse, error) {
		svc := s.client.Mget()
		for _, id := range ids {
			svc.Add(elastic.NewMultiGetItem().Index(s.index).Id(id))
		}
		return svc.Do(ctx)
	})
	if err != nil {
		return nil, err
	}

	videos := make(map[string]VideoMeta, len(ids))
	for _, doc := range res.Docs {
		if doc == nil || !doc.Found || doc.Source == nil {
			continue
		}
		var v VideoMeta
		if err := json.Unmarshal(doc.Source, &v); err != nil {
			slog.Warn("video_doc_unreadable",
				slog.String("video_id", doc.Id),
				slog.String("error", err.Error()))
			continue
		}
		if v.VideoID == "" {
			v.VideoID = doc.Id
		}
		videos[v.VideoID] = v
	}
	return videos, nil
}

// PutVideos bulk-upserts metadata documents, creating the index with its
// mapping on first use.
func (s *ElasticVideoStore) PutVideos(ctx context.Context, videos []VideoMeta) error {
	if len(videos) == 0 {
		return nil
	}
	if err := s.ensureIndex(ctx); err != nil {
		return err
	}

	res, err := elasticDo(ctx, s.breaker, s.retry, "store videos", func() (*elastic.BulkResponse, error) {
		bulk := s.client.Bulk().Index(s.index)
		for _, v := range videos {
			bulk.Add(elastic.NewBulkIndexRequest().Id(v.VideoID).Doc(v))
		}
		return bulk.Do(ctx)
	})
	if err != nil {
		return err
	}
	if res.Errors {
		failed := res.Failed()
		return apperrors.New(apperrors.ErrCodeIndexFailed,
			fmt.Sprintf("%d of %d videos failed to index", len(failed), len(videos)), nil).
			WithDetail("index", s.index)
	}
	return nil
}

// ensureIndex creates the videos index with its mapping once.
func (s *ElasticVideoStore) ensureIndex(ctx context.Context) error {
	s.ensure.Do(func() {
		s.ensureErr = createIndexIfMissing(ctx, s.client, s.index, videosIndexMapping)
	})
	return s.ensureErr
}

// VideoCount returns the number of stored videos.
func (s *ElasticVideoStore) VideoCount(ctx context.Context) (uint64, error) {
	count, err := elasticDo(ctx, s.breaker, s.retry, "count videos", func() (int64, error) {
		return s.client.Count(s.index).Do(ctx)
	})
	if err != nil {
		return 0, err
	}
	return uint64(count), nil
}

// Close stops the shared client.
func (s *ElasticVideoStore) Close() error {
	s.client.Stop()
	return nil
}

// createIndexIfMissing creates an index with the given mapping; a conflict
// means another process won the race, which is fine.
func createIndexIfMissing(ctx context.Context, client *elastic.Client, index, mapping string) error {
	exists, err := client.IndexExists(index).Do(ctx)
	if err != nil {
		return classifyElasticErr(fmt.Sprintf("check index %s", index), err)
	}
	if exists {
		return nil
	}
	_, err = client.CreateIndex(index).BodyString(mapping).Do(ctx)
	if err != nil && !elastic.IsConflict(err) {
		return classifyElasticErr(fmt.Sprintf("create index %s", index), err)
	}
	return nil
}

// toElasticQuery translates an engine-neutral clause into the
// Elasticsearch query DSL.
func toElasticQuery(clause Clause) (elastic.Query, error) {
	switch c := clause.(type) {
	case *PhraseClause:
		if len(c.Fields) == 1 {
			q := elastic.NewMatchPhraseQuery(c.Fields[0], c.Phrase)
			if c.Slop > 0 {
				q.Slop(c.Slop)
			}
			if c.Boost > 0 {
				q.Boost(c.Boost)
			}
			return q, nil
		}
		q := elastic.NewMultiMatchQuery(c.Phrase, c.Fields...).Type("phrase")
		if c.Slop > 0 {
			q.Slop(c.Slop)
		}
		if c.Boost > 0 {
			q.Boost(c.Boost)
		}
		return q, nil

	case *MatchClause:
		q := elastic.NewMultiMatchQuery(c.Query, c.Fields...)
		if c.Operator == OperatorAnd {
			q.Operator("and")
		}
		if c.Fuzziness != "" && c.Fuzziness != "0" {
			q.Fuzziness(c.Fuzziness)
		}
		if c.PrefixLength > 0 {
			q.PrefixLength(c.PrefixLength)
		}
		if c.MaxExpansions > 0 {
			q.MaxExpansions(c.MaxExpansions)
		}
		if c.MinimumShouldMatch != "" {
			q.MinimumShouldMatch(c.MinimumShouldMatch)
		}
		if c.Boost > 0 {
			q.Boost(c.Boost)
		}
		return q, nil

	case *TermClause:
		return elastic.NewTermQuery(c.Field, c.Value), nil

	case *RangeClause:
		return elastic.NewRangeQuery(c.Field).Gte(c.From).Lte(c.To), nil

	case *BoolClause:
		bq := elastic.NewBoolQuery()
		for _, m := range c.Must {
			sub, err := toElasticQuery(m)
			if err != nil {
				return nil, err
			}
			bq.Must(sub)
		}
		for _, s := range c.Should {
			sub, err := toElasticQuery(s)
			if err != nil {
				return nil, err
			}
			bq.Should(sub)
		}
		for _, f := range c.Filter {
			sub, err := toElasticQuery(f)
			if err != nil {
				return nil, err
			}
			bq.Filter(sub)
		}
		if c.MinimumShouldMatch != "" {
			bq.MinimumShouldMatch(c.MinimumShouldMatch)
		}
		return bq, nil

	default:
		return nil, fmt.Errorf("unsupported clause type %T", clause)
	}
}
