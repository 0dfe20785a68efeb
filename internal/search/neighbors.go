package search

import (
	"context"
	"math"
	"strings"

	"github.com/subseek/subseek/internal/store"
)

const (
	// anchorEpsilon is the start-time tolerance when locating the anchor
	// caption inside its neighbor window.
	anchorEpsilon = 0.1

	// captionPace is the assumed seconds per caption used to size the
	// neighbor window.
	captionPace = 6.0

	// minWindowPad is the smallest half-window fetched around an anchor.
	minWindowPad = 30.0
)

// fetchNeighbors returns up to before/after captions temporally adjacent
// to the anchor in the same video. It fetches one time window sized to
// comfortably contain the requested counts and splits it around the
// anchor. Read-only and independent per result item.
func (e *Engine) fetchNeighbors(ctx context.Context, videoID string, anchorStart, anchorEnd float64, before, after int) ([]store.Caption, []store.Caption, error) {
	if before <= 0 && after <= 0 {
		return nil, nil, nil
	}

	pad := captionPace * float64(before+after)
	if pad < minWindowPad {
		pad = minWindowPad
	}

	window, err := e.index.CaptionsBetween(ctx, videoID, anchorStart-pad, anchorEnd+pad)
	if err != nil {
		return nil, nil, err
	}

	prev, next := splitNeighbors(window, anchorStart, anchorEnd, before, after)
	return prev, next, nil
}

// splitNeighbors picks the neighbor captions out of a window sorted by
// start time. When the anchor itself is present the neighbors are taken
// by array position (exact, gap-free adjacency). When it is absent, e.g.
// clock drift pushed it past a window edge, the window is split by time
// instead: strictly before the anchor start and strictly after the anchor
// end, keeping the captions closest to the anchor.
func splitNeighbors(window []store.Caption, anchorStart, anchorEnd float64, before, after int) (prev, next []store.Caption) {
	if idx := anchorIndex(window, anchorStart); idx >= 0 {
		lo := idx - before
		if lo < 0 {
			lo = 0
		}
		hi := idx + 1 + after
		if hi > len(window) {
			hi = len(window)
		}
		return window[lo:idx], window[idx+1 : hi]
	}

	for _, c := range window {
		switch {
		case c.StartTime < anchorStart:
			prev = append(prev, c)
		case c.StartTime > anchorEnd:
			next = append(next, c)
		}
	}
	if len(prev) > before {
		prev = prev[len(prev)-before:]
	}
	if len(next) > after {
		next = next[:after]
	}
	return prev, next
}

// anchorIndex finds the window position of the caption whose start time
// matches the anchor within anchorEpsilon, or -1.
func anchorIndex(window []store.Caption, anchorStart float64) int {
	for i, c := range window {
		if math.Abs(c.StartTime-anchorStart) < anchorEpsilon {
			return i
		}
	}
	return -1
}

// joinCaptions concatenates neighbor caption texts with single spaces.
func joinCaptions(captions []store.Caption) string {
	if len(captions) == 0 {
		return ""
	}
	parts := make([]string, len(captions))
	for i, c := range captions {
		parts[i] = c.Text
	}
	return strings.Join(parts, " ")
}
