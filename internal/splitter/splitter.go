// Package splitter turns extracted document text into an ordered sequence
// of overlapping chunks along semantic boundaries.
package splitter

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 1000
	// DefaultOverlap is the number of trailing characters of a chunk that
	// are re-included at the start of the next chunk.
	DefaultOverlap = 200
)

var (
	manyNewlines  = regexp.MustCompile(`\n{3,}`)
	twoNewlines   = regexp.MustCompile(`\n{2,}`)
	spacesAndTabs = regexp.MustCompile(`[ \t]+`)
	gluedSentence = regexp.MustCompile(`\.([A-Z])`)
)

// Normalize collapses whitespace so boundary detection counts paragraph
// breaks correctly. Line endings become \n, runs of blank lines become a
// single paragraph break, line-wrap newlines become spaces, runs of spaces
// and tabs become one space, and a period glued to a capital letter gets a
// space after it.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = manyNewlines.ReplaceAllString(text, "\n\n")

	// Single newlines are line wraps, not paragraph breaks. Shield the
	// paragraph breaks, flatten the rest, restore.
	text = strings.ReplaceAll(text, "\n\n", "\x00")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\x00", "\n\n")

	text = spacesAndTabs.ReplaceAllString(text, " ")
	text = gluedSentence.ReplaceAllString(text, ". $1")
	text = twoNewlines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// Splitter splits normalized text into overlapping chunks. Chunk ends are
// chosen at paragraph breaks where possible, then sentence ends, then a
// hard character cut. Every chunk except the first starts with the trailing
// Overlap characters of its predecessor, so retrieval context is not
// truncated exactly at a chunk edge.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

// New creates a Splitter. Non-positive chunkSize or negative overlap fall
// back to the defaults; overlap is clamped below chunkSize.
func New(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	return &Splitter{ChunkSize: chunkSize, Overlap: overlap}
}

// Split normalizes text and cuts it into chunks. Sizes and the overlap are
// counted in characters (runes), not bytes. It never returns an empty chunk
// or a chunk of pure whitespace; a document shorter than ChunkSize yields a
// single chunk with no overlap.
func (s *Splitter) Split(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	runes := []rune(normalized)
	if len(runes) <= s.ChunkSize {
		return []string{normalized}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		windowEnd := start + s.ChunkSize
		if windowEnd >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		end := s.closeChunk(runes, start, windowEnd)

		// A trailing remainder shorter than the overlap would add almost no
		// new content; the current chunk absorbs it instead.
		if len(runes)-end < s.Overlap {
			end = len(runes)
		}

		chunk := runes[start:end]
		if isWhitespace(chunk) {
			// Cannot happen with realistic sizes, but never emit a
			// whitespace-only chunk.
			end = windowEnd
			chunk = runes[start:end]
		}
		chunks = append(chunks, string(chunk))

		if end >= len(runes) {
			break
		}
		start = end - s.Overlap
	}

	return chunks
}

// closeChunk picks the end position for a chunk starting at start, looking
// backwards from windowEnd for a paragraph break, then a sentence end. A
// boundary inside the overlap region would make no forward progress, so
// only positions past start+Overlap qualify; failing both, the chunk is cut
// hard at windowEnd.
func (s *Splitter) closeChunk(runes []rune, start, windowEnd int) int {
	minEnd := start + s.Overlap + 1

	if p := lastParagraphBreak(runes, minEnd, windowEnd); p >= 0 {
		return p
	}
	if p := lastSentenceEnd(runes, minEnd, windowEnd); p >= 0 {
		return p
	}
	return windowEnd
}

// lastParagraphBreak returns the position just after the last "\n\n" that
// ends at or before limit, or -1. The returned end must be >= min.
func lastParagraphBreak(runes []rune, min, limit int) int {
	for i := limit; i >= min; i-- {
		if runes[i-1] == '\n' && i >= 2 && runes[i-2] == '\n' {
			return i
		}
	}
	return -1
}

// lastSentenceEnd returns the position just after the last ". ", "! " or
// "? " whose space falls at or before limit, or -1.
func lastSentenceEnd(runes []rune, min, limit int) int {
	for i := limit; i >= min; i-- {
		if runes[i-1] != ' ' || i < 2 {
			continue
		}
		switch runes[i-2] {
		case '.', '!', '?':
			return i
		}
	}
	return -1
}

func isWhitespace(runes []rune) bool {
	for _, r := range runes {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
