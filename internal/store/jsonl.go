package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	apperrors "github.com/subseek/subseek/internal/errors"
)

// jsonl line limit. Caption text is short, but video metadata can carry
// long tag lists.
const maxJSONLLine = 1024 * 1024

// ReadCaptionsJSONL parses captions from r, one JSON object per line.
// Blank lines are skipped; a malformed line fails the whole read with
// its line number.
func ReadCaptionsJSONL(r io.Reader) ([]Caption, error) {
	var captions []Caption
	err := eachJSONLLine(r, func(line int, raw []byte) error {
		var c Caption
		if err := json.Unmarshal(raw, &c); err != nil {
			return apperrors.New(apperrors.ErrCodeFileCorrupt,
				fmt.Sprintf("malformed caption record on line %d", line), err)
		}
		if c.VideoID == "" {
			return apperrors.ValidationError(
				fmt.Sprintf("caption on line %d has no video_id", line), nil)
		}
		if c.EndTime < c.StartTime {
			return apperrors.ValidationError(
				fmt.Sprintf("caption on line %d ends before it starts", line), nil)
		}
		captions = append(captions, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return captions, nil
}

// ReadVideosJSONL parses video metadata from r, one JSON object per line.
func ReadVideosJSONL(r io.Reader) ([]VideoMeta, error) {
	var videos []VideoMeta
	err := eachJSONLLine(r, func(line int, raw []byte) error {
		var v VideoMeta
		if err := json.Unmarshal(raw, &v); err != nil {
			return apperrors.New(apperrors.ErrCodeFileCorrupt,
				fmt.Sprintf("malformed video record on line %d", line), err)
		}
		if v.VideoID == "" {
			return apperrors.ValidationError(
				fmt.Sprintf("video on line %d has no video_id", line), nil)
		}
		videos = append(videos, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return videos, nil
}

// eachJSONLLine scans r line by line, skipping blanks, and hands each
// non-empty line to fn with its one-based line number.
func eachJSONLLine(r io.Reader, fn func(line int, raw []byte) error) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, maxJSONLLine)
	scanner.Buffer(buf, maxJSONLLine)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		if err := fn(line, raw); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read jsonl input: %w", err)
	}
	return nil
}
