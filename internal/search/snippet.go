package search

import "strings"

const (
	// ellipsis marks stitch junctions and truncation cuts.
	ellipsis = "…"

	// truncateBuffer is held back from each context half so boundary
	// snapping has room without blowing the budget.
	truncateBuffer = 20

	// sentenceSnapWindow and wordSnapWindow bound how far a cut point may
	// move to land on a sentence or word boundary.
	sentenceSnapWindow = 30
	wordSnapWindow     = 20
)

// cleanCaptionText normalizes auto-generated caption text: repeated
// whitespace collapses to single spaces and stray spaces before
// punctuation are removed.
func cleanCaptionText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	for _, p := range []string{",", ".", "!", "?", ";", ":"} {
		s = strings.ReplaceAll(s, " "+p, p)
	}
	return s
}

// stitch joins the neighbor and anchor blocks into one readable snippet.
// Blocks are cleaned first and empty blocks are skipped. An ellipsis is
// inserted at a junction only when the left-hand text does not already
// end with sentence punctuation, so ".…" never appears.
func stitch(prev, anchor, next string) string {
	prev = cleanCaptionText(prev)
	anchor = cleanCaptionText(anchor)
	next = cleanCaptionText(next)

	var b strings.Builder
	if prev != "" {
		b.WriteString(prev)
		if !endsWithSentencePunct(prev) {
			b.WriteString(" " + ellipsis)
		}
	}
	if anchor != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(anchor)
	}
	if next != "" {
		if b.Len() > 0 {
			if !endsWithSentencePunct(anchor) {
				b.WriteString(" " + ellipsis)
			}
			b.WriteString(" ")
		}
		b.WriteString(next)
	}
	return b.String()
}

func endsWithSentencePunct(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

func isSentencePunct(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// truncateAroundHighlight shortens s to roughly maxChars characters while
// keeping the first preTag…postTag span whole. The remaining budget is
// split between prefix and suffix context, redistributing whatever one
// side cannot use, and the final cut points are snapped to a sentence
// boundary, falling back to a word boundary. An ellipsis marks whichever
// side was actually cut. All offset math is over runes, never bytes, so a
// cut can never land inside a multi-byte character.
//
// Inputs at or under the budget are returned unchanged. The highlighted
// span is always emitted whole, even when that leaves the result a few
// characters over maxChars.
func truncateAroundHighlight(s string, maxChars int, preTag, postTag string) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}

	hlStart, hlEnd := highlightSpan(runes, []rune(preTag), []rune(postTag))
	if hlStart < 0 {
		// No marker pair: plain head truncation.
		cut := maxChars
		if cut < 0 {
			cut = 0
		}
		return string(runes[:cut]) + ellipsis
	}

	// Split what the span leaves of the budget between the two context
	// sides, holding back a buffer per side for boundary snapping.
	remaining := maxChars - (hlEnd - hlStart)
	half := remaining/2 - truncateBuffer
	if half < 0 {
		half = 0
	}

	prefixAvail := hlStart
	suffixAvail := len(runes) - hlEnd
	prefixTake, suffixTake := half, half
	if prefixAvail < prefixTake {
		suffixTake += prefixTake - prefixAvail
		prefixTake = prefixAvail
	}
	if suffixAvail < suffixTake {
		spare := suffixTake - suffixAvail
		suffixTake = suffixAvail
		if prefixTake+spare <= prefixAvail {
			prefixTake += spare
		} else {
			prefixTake = prefixAvail
		}
	}

	cutStart := hlStart - prefixTake
	cutEnd := hlEnd + suffixTake
	if cutStart > 0 {
		cutStart = snapStart(runes, cutStart, hlStart)
	}
	if cutEnd < len(runes) {
		cutEnd = snapEnd(runes, cutEnd, hlEnd)
	}

	var b strings.Builder
	if cutStart > 0 {
		b.WriteString(ellipsis)
	}
	b.WriteString(string(runes[cutStart:cutEnd]))
	if cutEnd < len(runes) {
		b.WriteString(ellipsis)
	}
	return b.String()
}

// highlightSpan locates the first preTag…postTag pair and returns its
// rune bounds (start of preTag, one past postTag), or -1, -1.
func highlightSpan(runes, pre, post []rune) (int, int) {
	start := runeIndex(runes, pre, 0)
	if start < 0 {
		return -1, -1
	}
	end := runeIndex(runes, post, start+len(pre))
	if end < 0 {
		return -1, -1
	}
	return start, end + len(post)
}

// runeIndex returns the rune offset of the first occurrence of needle in
// haystack at or after from, or -1.
func runeIndex(haystack, needle []rune, from int) int {
	if len(needle) == 0 {
		return -1
	}
outer:
	for i := from; i+len(needle) <= len(haystack); i++ {
		for j := range needle {
			if haystack[i+j] != needle[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

// snapStart moves a left cut point forward onto a natural boundary: just
// past the nearest sentence end within sentenceSnapWindow runes, else
// just past a space within wordSnapWindow runes. limit caps the search so
// the cut never enters the highlighted span.
func snapStart(runes []rune, cut, limit int) int {
	end := cut + sentenceSnapWindow
	if end > limit {
		end = limit
	}
	for i := cut; i < end; i++ {
		if isSentencePunct(runes[i]) {
			return skipSpaces(runes, i+1, limit)
		}
	}

	end = cut + wordSnapWindow
	if end > limit {
		end = limit
	}
	for i := cut; i < end; i++ {
		if runes[i] == ' ' {
			return skipSpaces(runes, i+1, limit)
		}
	}
	return skipSpaces(runes, cut, limit)
}

// snapEnd moves a right cut point backward onto a natural boundary: just
// past the nearest sentence end within sentenceSnapWindow runes, else
// onto a word end within wordSnapWindow runes. limit keeps the cut out of
// the highlighted span.
func snapEnd(runes []rune, cut, limit int) int {
	low := cut - sentenceSnapWindow
	if low < limit {
		low = limit
	}
	for i := cut - 1; i >= low; i-- {
		if isSentencePunct(runes[i]) {
			return i + 1
		}
	}

	low = cut - wordSnapWindow
	if low < limit {
		low = limit
	}
	for i := cut - 1; i >= low; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return cut
}

func skipSpaces(runes []rune, i, limit int) int {
	for i < limit && runes[i] == ' ' {
		i++
	}
	return i
}
