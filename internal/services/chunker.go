package services

import (
	"fmt"
	"strings"
)

type TextChunker interface {
	ChunkText(text string, maxTokens int, overlap int) ([]TextChunk, error)
}

// TextChunk is one bounded segment of a document. Start and End are rune
// offsets into the cleaned text, so ordered chunks reconstruct the original
// exactly: each chunk overlaps the previous one by prevEnd - Start runes.
type TextChunk struct {
	Index int
	Start int
	End   int
	Text  string
}

// Separators ordered from best to worst semantic boundary.
var chunkSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", " "}

type textChunker struct {
	lookback int
}

// NewTextChunker returns a chunker that prefers breaking on paragraph and
// sentence boundaries found within the last `lookback` runes of a segment,
// falling back to a hard cut at maxTokens when no boundary exists there.
func NewTextChunker(lookback int) TextChunker {
	if lookback <= 0 {
		lookback = 100
	}
	return &textChunker{lookback: lookback}
}

// ChunkText implements TextChunker.
func (tc *textChunker) ChunkText(text string, maxTokens int, overlap int) ([]TextChunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", ErrInvalidInput)
	}
	if maxTokens <= 0 {
		return nil, fmt.Errorf("%w: max tokens must be positive, got %d", ErrInvalidInput, maxTokens)
	}
	if overlap < 0 || overlap >= maxTokens {
		return nil, fmt.Errorf("%w: overlap must be in [0, max tokens), got %d", ErrInvalidInput, overlap)
	}

	runes := []rune(text)

	var chunks []TextChunk
	start := 0

	for start < len(runes) {
		end := start + maxTokens
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = tc.boundaryBreak(runes, start, end, maxTokens)
		}

		chunks = append(chunks, TextChunk{
			Index: len(chunks),
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})

		if end == len(runes) {
			break
		}

		next := end - overlap
		if next <= start {
			// Boundary break shortened the chunk below the overlap; skip
			// the overlap rather than stall.
			next = end
		}
		start = next
	}

	return chunks, nil
}

// boundaryBreak moves a hard cut at `end` back to the nearest semantic
// boundary inside the lookback window, keeping the separator with the left
// chunk. Returns the original end when the window holds no boundary.
func (tc *textChunker) boundaryBreak(runes []rune, start, end, maxTokens int) int {
	lookback := tc.lookback
	if lookback > maxTokens/2 {
		lookback = maxTokens / 2
	}

	windowStart := end - lookback
	if windowStart <= start {
		windowStart = start + 1
	}

	window := string(runes[windowStart:end])
	for _, sep := range chunkSeparators {
		if idx := strings.LastIndex(window, sep); idx != -1 {
			sepRunes := len([]rune(window[:idx])) + len([]rune(sep))
			cut := windowStart + sepRunes
			if cut > start && cut <= end {
				return cut
			}
		}
	}

	return end
}
