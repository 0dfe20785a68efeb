package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestConfig points .subseek.yaml in dir at embedded storage under
// the same directory and isolates the user config via XDG_CONFIG_HOME.
func writeTestConfig(t *testing.T, dir string) {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	yaml := fmt.Sprintf(`version: 1
backend: embedded
embedded:
  index_path: %s
  sqlite_path: %s
`, filepath.Join(dir, "captions.bleve"), filepath.Join(dir, "videos.db"))

	writeFile(t, filepath.Join(dir, ".subseek.yaml"), yaml)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// runRoot executes the CLI with args and returns stdout, stderr, and
// the execution error.
func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCmd()
	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

// loadFixtureCorpus bulk-loads a three-caption, one-video corpus into
// the embedded backend configured for dir.
func loadFixtureCorpus(t *testing.T, dir string) {
	t.Helper()

	captionsPath := filepath.Join(dir, "captions.jsonl")
	writeFile(t, captionsPath, `{"video_id": "v1", "text": "hi", "start_time": 0, "end_time": 2}
{"video_id": "v1", "text": "hello world", "start_time": 2, "end_time": 4}
{"video_id": "v1", "text": "bye", "start_time": 4, "end_time": 6}
`)

	videosPath := filepath.Join(dir, "videos.jsonl")
	writeFile(t, videosPath, `{"video_id": "v1", "title": "First", "upload_date": 1700000000, "duration": 300, "views": 1200, "likes": 45}
`)

	out, _, err := runRoot(t, "load", "--config", dir, "--captions", captionsPath, "--videos", videosPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 3 captions", "Load should report the caption count")
	assert.Contains(t, out, "Stored 1 videos", "Load should report the video count")
}

func TestLoadCmd_RequiresInput(t *testing.T) {
	// Given: a configured corpus directory
	dir := t.TempDir()
	writeTestConfig(t, dir)

	// When: running load with neither --captions nor --videos
	_, _, err := runRoot(t, "load", "--config", dir)

	// Then: it should refuse
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to load")
}

func TestLoadCmd_MissingFile(t *testing.T) {
	// Given: a configured corpus directory
	dir := t.TempDir()
	writeTestConfig(t, dir)

	// When: pointing --captions at a file that does not exist
	_, _, err := runRoot(t, "load", "--config", dir, "--captions", filepath.Join(dir, "nope.jsonl"))

	// Then: it should fail with the open error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open captions file")
}

func TestLoadCmd_RoundTrip(t *testing.T) {
	// Given: a configured corpus directory with JSONL fixtures

	// When: loading them (assertions inside)
	dir := t.TempDir()
	writeTestConfig(t, dir)
	loadFixtureCorpus(t, dir)

	// Then: the embedded stores exist on disk
	assert.DirExists(t, filepath.Join(dir, "captions.bleve"))
	assert.FileExists(t, filepath.Join(dir, "videos.db"))
}

func TestLoadCmd_MalformedCaptions(t *testing.T) {
	// Given: a captions file with a broken second line
	dir := t.TempDir()
	writeTestConfig(t, dir)

	captionsPath := filepath.Join(dir, "captions.jsonl")
	writeFile(t, captionsPath, `{"video_id": "v1", "text": "ok", "start_time": 0, "end_time": 2}
{not json
`)

	// When: loading
	_, _, err := runRoot(t, "load", "--config", dir, "--captions", captionsPath)

	// Then: the error names the offending line
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
