package chunking

import (
	"fmt"

	"coursecompass/internal/core/domain"
)

// Splitter cuts text into fixed-size rune windows sharing overlap runes
// between consecutive windows. Windows carry exact offsets and never trim or
// drop text, so the non-overlapping portions concatenate back to the input.
type Splitter struct {
	chunkSize int
	overlap   int
}

func NewSplitter(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, domain.WrapError(domain.ErrInvalidConfig, "new splitter",
			fmt.Errorf("chunk size must be positive, got %d", chunkSize))
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, domain.WrapError(domain.ErrInvalidConfig, "new splitter",
			fmt.Errorf("overlap %d must be in [0, chunk size %d)", overlap, chunkSize))
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}, nil
}

func (s *Splitter) Split(text string) []domain.Window {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := s.chunkSize - s.overlap
	out := make([]domain.Window, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, domain.Window{
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})
		if end == len(runes) {
			break
		}
	}
	return out
}
