package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/gofrs/flock"

	apperrors "github.com/subseek/subseek/internal/errors"
)

// stemmedFieldName is the bleve-internal name of the stemmed text field.
// Clauses address it as FieldTextStemmed ("text.stemmed"); fieldName maps
// between the two so the planner stays backend-neutral.
const stemmedFieldName = "text_stemmed"

// bleve's HTML formatter wraps matched terms in these markers; fragments
// are retagged with the caller's HighlightSpec markers before returning.
const (
	bleveMarkPre  = "<mark>"
	bleveMarkPost = "</mark>"
)

// BleveCaptionIndex wraps Bleve v2 as the embedded caption index.
type BleveCaptionIndex struct {
	mu        sync.RWMutex
	index     bleve.Index
	path      string
	lock      *flock.Flock
	maxVideos int
	closed    bool
}

// validateIndexIntegrity checks if a Bleve index is valid before opening.
// Returns nil if valid, error describing corruption if not. A half-written
// index (killed process, full disk) is detected here and auto-recovered by
// the constructor.
func validateIndexIntegrity(path string) error {
	// Check if index directory exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // Index doesn't exist, will be created
	}

	// Check 1: index_meta.json exists and is non-empty
	metaPath := filepath.Join(path, "index_meta.json")
	info, err := os.Stat(metaPath)
	if os.IsNotExist(err) {
		// index_meta.json missing means index is incomplete/corrupted
		return fmt.Errorf("index_meta.json missing (corrupted index)")
	}
	if err != nil {
		return fmt.Errorf("cannot stat index_meta.json: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("index_meta.json is empty (corrupted)")
	}

	// Check 2: Validate JSON is parseable
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("cannot read index_meta.json: %w", err)
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("index_meta.json is corrupt: %w", err)
	}

	return nil
}

// isCorruptionError checks if an error indicates Bleve index corruption.
func isCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "unexpected end of JSON") ||
		strings.Contains(errStr, "error parsing mapping JSON") ||
		strings.Contains(errStr, "failed to load segment") ||
		strings.Contains(errStr, "error opening bolt") ||
		strings.Contains(errStr, "no such file or directory") ||
		err == bleve.ErrorIndexMetaCorrupt
}

// NewBleveCaptionIndex opens or creates the caption index at path.
// If path is empty, creates an in-memory index. Disk indexes take an
// exclusive flock on a sibling lock file so two processes never share one
// bleve directory, and are validated before opening with auto-recovery
// from corruption.
func NewBleveCaptionIndex(path string, maxVideos int) (*BleveCaptionIndex, error) {
	if maxVideos <= 0 {
		maxVideos = 10000
	}
	indexMapping := createCaptionMapping()

	var idx bleve.Index
	var err error
	var lock *flock.Flock

	if path == "" {
		// In-memory index for testing
		idx, err = bleve.NewMemOnly(indexMapping)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory index: %w", err)
		}
		return &BleveCaptionIndex{index: idx, maxVideos: maxVideos}, nil
	}

	// Create directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// One writer per index directory, across processes
	lock = flock.New(path + ".lock")
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire index lock: %w", err)
	}
	if !acquired {
		return nil, apperrors.New(apperrors.ErrCodeIndexLocked,
			fmt.Sprintf("caption index at %s is locked by another process", path), nil).
			WithDetail("path", path).
			WithSuggestion("Stop the other subseek process or point embedded.index_path elsewhere")
	}

	// Validate integrity before opening
	if validErr := validateIndexIntegrity(path); validErr != nil {
		slog.Warn("captions_index_corrupted",
			slog.String("path", path),
			slog.String("error", validErr.Error()))

		// Auto-clear corrupted index
		if removeErr := os.RemoveAll(path); removeErr != nil {
			_ = lock.Unlock()
			return nil, apperrors.New(apperrors.ErrCodeCorruptIndex,
				fmt.Sprintf("caption index corrupted at %s and cannot remove: %v (original error: %v)", path, removeErr, validErr), validErr).
				WithDetail("path", path).
				WithSuggestion("Remove the index directory manually and reindex")
		}
		slog.Info("captions_index_cleared",
			slog.String("path", path),
			slog.String("reason", "corruption detected, please reindex"))
	}

	// Try to open existing index first
	idx, err = bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		// Create new index
		idx, err = bleve.New(path, indexMapping)
	} else if err != nil && isCorruptionError(err) {
		// Handle corruption errors from Bleve.Open()
		slog.Warn("captions_index_open_failed",
			slog.String("path", path),
			slog.String("error", err.Error()))

		// Clear and recreate
		if removeErr := os.RemoveAll(path); removeErr != nil {
			_ = lock.Unlock()
			return nil, apperrors.New(apperrors.ErrCodeCorruptIndex,
				fmt.Sprintf("caption index corrupted, cannot clear: %v (original: %v)", removeErr, err), err).
				WithDetail("path", path).
				WithSuggestion("Remove the index directory manually and reindex")
		}
		slog.Info("captions_index_cleared",
			slog.String("path", path),
			slog.String("reason", "open failed with corruption, please reindex"))

		// Create fresh index
		idx, err = bleve.New(path, indexMapping)
	}
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("failed to create/open index: %w", err)
	}

	return &BleveCaptionIndex{
		index:     idx,
		path:      path,
		lock:      lock,
		maxVideos: maxVideos,
	}, nil
}

// createCaptionMapping maps caption documents: keyword video_id, caption
// text indexed twice (standard analyzer plus an English-stemmed variant
// under "text_stemmed"), numeric start/end times.
func createCaptionMapping() *mapping.IndexMappingImpl {
	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name

	// Second field mapping on the same source value; Name redirects the
	// stemmed terms to their own field.
	stemmedField := bleve.NewTextFieldMapping()
	stemmedField.Name = stemmedFieldName
	stemmedField.Analyzer = en.AnalyzerName
	stemmedField.Store = false
	stemmedField.IncludeTermVectors = false

	videoIDField := bleve.NewTextFieldMapping()
	videoIDField.Analyzer = keyword.Name

	startField := bleve.NewNumericFieldMapping()
	endField := bleve.NewNumericFieldMapping()

	captionMapping := bleve.NewDocumentMapping()
	captionMapping.AddFieldMappingsAt(FieldText, textField, stemmedField)
	captionMapping.AddFieldMappingsAt(FieldVideoID, videoIDField)
	captionMapping.AddFieldMappingsAt(FieldStartTime, startField)
	captionMapping.AddFieldMappingsAt(FieldEndTime, endField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = captionMapping
	indexMapping.DefaultAnalyzer = standard.Name

	return indexMapping
}

// AggregateVideos groups all captions matching clause by video id.
// Bleve has no server-side terms aggregation, so every matching hit is
// fetched with just its video_id field and grouped here. Totals are exact;
// Stats is capped at maxVideos after a deterministic video_id sort.
func (b *BleveCaptionIndex) AggregateVideos(ctx context.Context, clause Clause) (*VideoAggregation, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("index is closed")
	}

	q, err := toBleveQuery(clause)
	if err != nil {
		return nil, err
	}

	docCount, err := b.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	req := bleve.NewSearchRequest(q)
	req.Size = int(docCount)
	req.Fields = []string{FieldVideoID}

	result, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("aggregation search failed: %w", err)
	}

	type group struct {
		sum   float64
		max   float64
		count int64
	}
	groups := make(map[string]*group)
	for _, hit := range result.Hits {
		vid := fieldString(hit.Fields, FieldVideoID)
		if vid == "" {
			continue
		}
		g := groups[vid]
		if g == nil {
			g = &group{}
			groups[vid] = g
		}
		g.sum += hit.Score
		g.count++
		if hit.Score > g.max {
			g.max = hit.Score
		}
	}

	stats := make([]VideoStats, 0, len(groups))
	for vid, g := range groups {
		stats = append(stats, VideoStats{
			VideoID:    vid,
			AvgScore:   g.sum / float64(g.count),
			MaxScore:   g.max,
			MatchCount: g.count,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].VideoID < stats[j].VideoID
	})

	agg := &VideoAggregation{
		Stats:         stats,
		TotalVideos:   int64(len(groups)),
		TotalCaptions: int64(result.Total),
	}
	if len(agg.Stats) > b.maxVideos {
		agg.Stats = agg.Stats[:b.maxVideos]
	}
	return agg, nil
}

// MatchingCaptions returns the captions of one video matching clause, each
// with its highlight fragment retagged to spec's markers.
func (b *BleveCaptionIndex) MatchingCaptions(ctx context.Context, clause Clause, videoID string, spec HighlightSpec) ([]CaptionHit, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("index is closed")
	}

	q, err := toBleveQuery(clause)
	if err != nil {
		return nil, err
	}

	vidQ := bleve.NewTermQuery(videoID)
	vidQ.SetField(FieldVideoID)

	boolQ := bleve.NewBooleanQuery()
	boolQ.AddMust(q, vidQ)

	req := bleve.NewSearchRequest(boolQ)
	req.Size = MaxVideoHits
	req.Fields = []string{FieldVideoID, FieldText, FieldStartTime, FieldEndTime}
	req.Highlight = bleve.NewHighlightWithStyle("html")
	req.Highlight.Fields = []string{FieldText}

	result, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("caption search failed: %w", err)
	}

	hits := make([]CaptionHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ch := CaptionHit{
			Caption: captionFromFields(hit.Fields),
			Score:   hit.Score,
		}
		if frags := hit.Fragments[FieldText]; len(frags) > 0 {
			ch.Highlight = retagFragment(frags[0], spec)
		}
		hits = append(hits, ch)
	}
	return hits, nil
}

// CaptionsBetween returns all captions of a video with start_time in
// [from, to], ascending.
func (b *BleveCaptionIndex) CaptionsBetween(ctx context.Context, videoID string, from, to float64) ([]Caption, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("index is closed")
	}

	vidQ := bleve.NewTermQuery(videoID)
	vidQ.SetField(FieldVideoID)

	incl := true
	rangeQ := bleve.NewNumericRangeInclusiveQuery(&from, &to, &incl, &incl)
	rangeQ.SetField(FieldStartTime)

	boolQ := bleve.NewBooleanQuery()
	boolQ.AddMust(vidQ, rangeQ)

	req := bleve.NewSearchRequest(boolQ)
	req.Size = MaxVideoHits
	req.Fields = []string{FieldVideoID, FieldText, FieldStartTime, FieldEndTime}
	req.SortBy([]string{FieldStartTime})

	result, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("context window search failed: %w", err)
	}

	captions := make([]Caption, 0, len(result.Hits))
	for _, hit := range result.Hits {
		captions = append(captions, captionFromFields(hit.Fields))
	}
	return captions, nil
}

// IndexCaptions adds captions to the index in one batch.
func (b *BleveCaptionIndex) IndexCaptions(ctx context.Context, captions []Caption) error {
	if len(captions) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("index is closed")
	}

	batch := b.index.NewBatch()
	for _, c := range captions {
		id := CaptionID(c.VideoID, c.StartTime)
		if err := batch.Index(id, c); err != nil {
			return fmt.Errorf("failed to index caption %s: %w", id, err)
		}
	}

	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}

	return nil
}

// CaptionCount returns the number of indexed captions.
func (b *BleveCaptionIndex) CaptionCount(ctx context.Context) (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0, fmt.Errorf("index is closed")
	}
	return b.index.DocCount()
}

// Close closes the index and releases the directory lock.
func (b *BleveCaptionIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true
	var closeErr error
	if b.index != nil {
		closeErr = b.index.Close()
	}
	if b.lock != nil {
		_ = b.lock.Unlock()
	}
	return closeErr
}

// toBleveQuery translates an engine-neutral clause into bleve's query
// language. Two approximations against the Elasticsearch backend: phrase
// slop falls back to an AND match (bleve phrases have no slop), and filter
// context joins must (bleve has no non-scoring filter).
func toBleveQuery(clause Clause) (query.Query, error) {
	switch c := clause.(type) {
	case *PhraseClause:
		qs := make([]query.Query, 0, len(c.Fields))
		for _, f := range c.Fields {
			if c.Slop > 0 {
				mq := bleve.NewMatchQuery(c.Phrase)
				mq.SetField(fieldName(f))
				mq.SetOperator(query.MatchQueryOperatorAnd)
				qs = append(qs, mq)
			} else {
				pq := bleve.NewMatchPhraseQuery(c.Phrase)
				pq.SetField(fieldName(f))
				qs = append(qs, pq)
			}
		}
		return withBoost(disjunctOf(qs), c.Boost), nil

	case *MatchClause:
		qs := make([]query.Query, 0, len(c.Fields))
		for _, f := range c.Fields {
			qs = append(qs, matchFieldQuery(c, fieldName(f)))
		}
		return withBoost(disjunctOf(qs), c.Boost), nil

	case *TermClause:
		tq := bleve.NewTermQuery(c.Value)
		tq.SetField(fieldName(c.Field))
		return tq, nil

	case *RangeClause:
		from, to := c.From, c.To
		incl := true
		rq := bleve.NewNumericRangeInclusiveQuery(&from, &to, &incl, &incl)
		rq.SetField(fieldName(c.Field))
		return rq, nil

	case *BoolClause:
		bq := bleve.NewBooleanQuery()
		for _, m := range c.Must {
			sub, err := toBleveQuery(m)
			if err != nil {
				return nil, err
			}
			bq.AddMust(sub)
		}
		for _, s := range c.Should {
			sub, err := toBleveQuery(s)
			if err != nil {
				return nil, err
			}
			bq.AddShould(sub)
		}
		for _, f := range c.Filter {
			sub, err := toBleveQuery(f)
			if err != nil {
				return nil, err
			}
			bq.AddMust(sub)
		}
		if min := minShouldCount(c.MinimumShouldMatch, len(c.Should)); min > 0 {
			bq.SetMinShould(float64(min))
		}
		return bq, nil

	default:
		return nil, fmt.Errorf("unsupported clause type %T", clause)
	}
}

// matchFieldQuery builds the single-field query for a MatchClause. An OR
// match with minimum_should_match becomes a per-term disjunction with a
// floor, since bleve's MatchQuery has no minimum clause support.
func matchFieldQuery(c *MatchClause, field string) query.Query {
	if c.Operator == OperatorOr {
		terms := strings.Fields(c.Query)
		if min := minShouldCount(c.MinimumShouldMatch, len(terms)); min > 0 {
			dq := bleve.NewDisjunctionQuery()
			for _, term := range terms {
				mq := bleve.NewMatchQuery(term)
				mq.SetField(field)
				applyFuzziness(mq, c.Fuzziness, c.PrefixLength)
				dq.AddQuery(mq)
			}
			dq.SetMin(float64(min))
			return dq
		}
	}

	mq := bleve.NewMatchQuery(c.Query)
	mq.SetField(field)
	if c.Operator == OperatorAnd {
		mq.SetOperator(query.MatchQueryOperatorAnd)
	}
	applyFuzziness(mq, c.Fuzziness, c.PrefixLength)
	return mq
}

// applyFuzziness maps the clause fuzziness ("AUTO", "0".."2", "") onto a
// bleve match query.
func applyFuzziness(q *query.MatchQuery, fuzziness string, prefixLength int) {
	switch strings.ToUpper(strings.TrimSpace(fuzziness)) {
	case "", "0":
		// exact matching
	case "AUTO":
		q.SetAutoFuzziness(true)
	default:
		if n, err := strconv.Atoi(fuzziness); err == nil && n > 0 {
			q.SetFuzziness(n)
		}
	}
	if prefixLength > 0 {
		q.SetPrefix(prefixLength)
	}
}

// minShouldCount resolves an Elasticsearch-style minimum_should_match
// value ("75%" or an absolute count) against the number of clauses.
// Percentages floor like Elasticsearch does, with a minimum of one.
func minShouldCount(spec string, clauses int) int {
	spec = strings.TrimSpace(spec)
	if spec == "" || clauses == 0 {
		return 0
	}

	if strings.HasSuffix(spec, "%") {
		pct, err := strconv.Atoi(strings.TrimSuffix(spec, "%"))
		if err != nil || pct <= 0 {
			return 0
		}
		n := clauses * pct / 100
		if n < 1 {
			n = 1
		}
		if n > clauses {
			n = clauses
		}
		return n
	}

	n, err := strconv.Atoi(spec)
	if err != nil || n <= 0 {
		return 0
	}
	if n > clauses {
		n = clauses
	}
	return n
}

// disjunctOf ORs per-field queries together; a single query passes through.
func disjunctOf(qs []query.Query) query.Query {
	if len(qs) == 1 {
		return qs[0]
	}
	return bleve.NewDisjunctionQuery(qs...)
}

// withBoost applies a positive boost to a boostable query.
func withBoost(q query.Query, boost float64) query.Query {
	if boost > 0 {
		if bq, ok := q.(query.BoostableQuery); ok {
			bq.SetBoost(boost)
		}
	}
	return q
}

// retagFragment swaps bleve's <mark> markers for the caller's. Adjacent
// marked terms merge into one span first, so a phrase match carries a
// single marker pair like the Elasticsearch highlighter produces.
func retagFragment(frag string, spec HighlightSpec) string {
	frag = strings.ReplaceAll(frag, bleveMarkPost+" "+bleveMarkPre, " ")
	frag = strings.ReplaceAll(frag, bleveMarkPre, spec.PreTag)
	return strings.ReplaceAll(frag, bleveMarkPost, spec.PostTag)
}

// fieldString reads a stored string field, tolerating bleve's
// []interface{} form for multi-valued fields.
func fieldString(fields map[string]interface{}, name string) string {
	switch v := fields[name].(type) {
	case string:
		return v
	case []interface{}:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// fieldFloat reads a stored numeric field.
func fieldFloat(fields map[string]interface{}, name string) float64 {
	switch v := fields[name].(type) {
	case float64:
		return v
	case []interface{}:
		if len(v) > 0 {
			if f, ok := v[0].(float64); ok {
				return f
			}
		}
	}
	return 0
}

// captionFromFields rebuilds a Caption from stored search fields.
func captionFromFields(fields map[string]interface{}) Caption {
	return Caption{
		VideoID:   fieldString(fields, FieldVideoID),
		Text:      fieldString(fields, FieldText),
		StartTime: fieldFloat(fields, FieldStartTime),
		EndTime:   fieldFloat(fields, FieldEndTime),
	}
}

// Verify interface implementation
var _ CaptionIndex = (*BleveCaptionIndex)(nil)
