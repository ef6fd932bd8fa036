package document

import (
	"strings"
	"unicode/utf8"
)

// defaultSeparators is the separator hierarchy: paragraphs, then lines,
// then words, then individual characters.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter breaks text into overlapping chunks. It recursively descends a
// separator hierarchy so chunk boundaries fall on paragraph or line breaks
// wherever possible, only cutting mid-word as a last resort.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewSplitter creates a Splitter. chunkSize and overlap are measured in
// characters (runes); overlap must be smaller than chunkSize.
func NewSplitter(chunkSize, overlap int) *Splitter {
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split breaks text into chunks of at most chunkSize characters with
// roughly overlap characters shared between consecutive chunks.
// Whitespace-only fragments are dropped.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	// Pick the first separator that appears in the text; the empty
	// separator always matches and splits into single characters.
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" {
			separator = ""
			remaining = nil
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	splits := splitOn(text, separator)

	var chunks []string
	var good []string
	for _, piece := range splits {
		if utf8.RuneCountInString(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}

		// Piece is too large on its own: flush accumulated small pieces,
		// then descend with the finer separators.
		if len(good) > 0 {
			chunks = append(chunks, s.merge(good, separator)...)
			good = nil
		}
		if remaining == nil {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, s.split(piece, remaining)...)
		}
	}
	if len(good) > 0 {
		chunks = append(chunks, s.merge(good, separator)...)
	}

	return chunks
}

// merge greedily joins small pieces into chunks of at most chunkSize,
// carrying a tail of pieces totalling at most overlap into the next chunk.
func (s *Splitter) merge(pieces []string, separator string) []string {
	sepLen := utf8.RuneCountInString(separator)

	var chunks []string
	var current []string
	total := 0

	for _, piece := range pieces {
		pieceLen := utf8.RuneCountInString(piece)

		joinLen := 0
		if len(current) > 0 {
			joinLen = sepLen
		}

		if total+pieceLen+joinLen > s.chunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, separator)); chunk != "" {
				chunks = append(chunks, chunk)
			}

			// Slide the window: drop leading pieces until the retained
			// tail fits the overlap budget and leaves room for the next
			// piece.
			for len(current) > 0 && (total > s.overlap || total+pieceLen+sepLen > s.chunkSize) {
				removed := utf8.RuneCountInString(current[0])
				if len(current) > 1 {
					removed += sepLen
				}
				total -= removed
				current = current[1:]
			}
		}

		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, piece)
		total += pieceLen
	}

	if chunk := strings.TrimSpace(strings.Join(current, separator)); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}

// splitOn splits text on the separator, dropping empty fragments.
// The empty separator splits into individual characters.
func splitOn(text, separator string) []string {
	var raw []string
	if separator == "" {
		raw = make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			raw = append(raw, string(r))
		}
	} else {
		raw = strings.Split(text, separator)
	}

	result := make([]string, 0, len(raw))
	for _, piece := range raw {
		if piece != "" {
			result = append(result, piece)
		}
	}
	return result
}
