package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCmd_HumanOutput(t *testing.T) {
	// Given: a loaded embedded corpus
	dir := t.TempDir()
	writeTestConfig(t, dir)
	loadFixtureCorpus(t, dir)

	// When: searching for a phrase that hits one caption
	out, _, err := runRoot(t, "search", "hello world", "--config", dir)

	// Then: the hit renders with its video, timestamp, and clean snippet
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 captions in 1 videos", "Header should count hits")
	assert.Contains(t, out, "v1 [0:02]", "Result line should locate the caption")
	assert.Contains(t, out, "hello world", "Snippet should carry the matched text")
	assert.NotContains(t, out, "<strong>", "Terminal output should not leak highlight markup")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	// Given: a loaded embedded corpus
	dir := t.TempDir()
	writeTestConfig(t, dir)
	loadFixtureCorpus(t, dir)

	// When: searching with --json
	out, _, err := runRoot(t, "search", "hello world", "--config", dir, "--json")

	// Then: the raw response round-trips
	require.NoError(t, err)
	assert.Contains(t, out, `"video_id": "v1"`)
	assert.Contains(t, out, `"total_videos": 1`)
	assert.Contains(t, out, `"snippet_html"`)
}

func TestSearchCmd_NoMatches(t *testing.T) {
	// Given: a loaded embedded corpus
	dir := t.TempDir()
	writeTestConfig(t, dir)
	loadFixtureCorpus(t, dir)

	// When: searching for a term the corpus does not contain
	out, _, err := runRoot(t, "search", "zebra", "--config", dir)

	// Then: the empty page renders as a friendly message
	require.NoError(t, err)
	assert.Contains(t, out, `No captions found for "zebra"`)
}

func TestSearchCmd_BlankQuery(t *testing.T) {
	// Given: a configured corpus directory
	dir := t.TempDir()
	writeTestConfig(t, dir)

	// When: the query is only whitespace
	_, errOut, err := runRoot(t, "search", "   ", "--config", dir)

	// Then: the engine's validation error prints in CLI format
	require.Error(t, err)
	assert.Contains(t, errOut, "query must not be empty")
	assert.Contains(t, errOut, "ERR_404_QUERY_EMPTY")
}

func TestSearchCmd_WideMode(t *testing.T) {
	// Given: a loaded embedded corpus
	dir := t.TempDir()
	writeTestConfig(t, dir)
	loadFixtureCorpus(t, dir)

	// When: searching wide with a one-character typo
	out, _, err := runRoot(t, "search", "helo", "--config", dir, "--wide", "--fuzziness", "1")

	// Then: the fuzzy match still finds the caption
	require.NoError(t, err)
	assert.Contains(t, out, "v1 [0:02]")
}
