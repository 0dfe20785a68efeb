package ui

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusRenderer_Embedded(t *testing.T) {
	// Given: an embedded backend status
	var buf bytes.Buffer
	r := NewStatusRenderer(&buf, NoColorStyles())

	// When: rendering
	err := r.Render(StatusInfo{
		Backend:       "embedded",
		BackendStatus: "ready",
		CaptionCount:  42,
		VideoCount:    7,
		IndexPath:     "/data/captions.bleve",
		IndexSize:     2 * 1024 * 1024,
		ConfigPath:    "/home/u/.config/subseek/config.yaml",
	})

	// Then: every populated section appears
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Backend Status")
	assert.Contains(t, out, "embedded")
	assert.Contains(t, out, "ready")
	assert.Contains(t, out, "Captions: 42")
	assert.Contains(t, out, "Videos:   7")
	assert.Contains(t, out, "/data/captions.bleve")
	assert.Contains(t, out, "2.0 MB")
	assert.Contains(t, out, "config.yaml")
}

func TestStatusRenderer_ElasticsearchOmitsStorage(t *testing.T) {
	var buf bytes.Buffer
	r := NewStatusRenderer(&buf, NoColorStyles())

	err := r.Render(StatusInfo{
		Backend:       "elasticsearch",
		BackendStatus: "offline",
	})

	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "Storage:")
	assert.Contains(t, buf.String(), "offline")
}

func TestStatusRenderer_JSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewStatusRenderer(&buf, NoColorStyles())
	info := StatusInfo{Backend: "embedded", BackendStatus: "ready", CaptionCount: 1}

	require.NoError(t, r.RenderJSON(info))

	var decoded StatusInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, info, decoded)
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.bytes))
	}
}
