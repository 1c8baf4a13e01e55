package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidChunkConfig means the chunking parameters would produce a
// non-advancing or negative window step.
var ErrInvalidChunkConfig = errors.New("invalid chunking configuration")

// Chunker splits raw document text into overlapping fixed-size word
// windows. Identical input and parameters always yield identical
// segments.
type Chunker struct {
	chunkSize int
	overlap   int
}

// NewChunker validates the parameters up front so a bad deployment
// fails at process start instead of looping during indexing.
func NewChunker(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size %d must be positive: %w", chunkSize, ErrInvalidChunkConfig)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("overlap %d must be in [0, %d): %w", overlap, chunkSize, ErrInvalidChunkConfig)
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// Split tokenizes text by whitespace and windows the words
// [start, start+chunkSize), advancing by chunkSize-overlap. The final
// segment may be shorter than chunkSize; whitespace-only segments are
// dropped.
func (c *Chunker) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.chunkSize - c.overlap
	segments := make([]string, 0, (len(words)+step-1)/step)

	// A window starting inside the previous window's overlap tail holds
	// no new words; stop before emitting it.
	for start := 0; start == 0 || start+c.overlap < len(words); start += step {
		end := start + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		segment := strings.Join(words[start:end], " ")
		if strings.TrimSpace(segment) == "" {
			continue
		}
		segments = append(segments, segment)
	}

	return segments
}
