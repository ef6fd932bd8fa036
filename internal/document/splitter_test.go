package document

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitter_Empty(t *testing.T) {
	t.Parallel()

	s := NewSplitter(1000, 200)

	if got := s.Split(""); got != nil {
		t.Errorf("Split(\"\") = %v, want nil", got)
	}
	if got := s.Split("   \n\n  "); got != nil {
		t.Errorf("Split(whitespace) = %v, want nil", got)
	}
}

func TestSplitter_ShortTextSingleChunk(t *testing.T) {
	t.Parallel()

	s := NewSplitter(1000, 200)

	chunks := s.Split("This policy covers hospitalization expenses.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "This policy covers hospitalization expenses." {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}

func TestSplitter_RespectsChunkSize(t *testing.T) {
	t.Parallel()

	s := NewSplitter(100, 20)

	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString("The insured person must submit claims within thirty days. ")
	}

	chunks := s.Split(sb.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if n := utf8.RuneCountInString(chunk); n > 100 {
			t.Errorf("chunk %d has %d chars, want <= 100", i, n)
		}
	}
}

func TestSplitter_PrefersParagraphBoundaries(t *testing.T) {
	t.Parallel()

	s := NewSplitter(50, 10)

	text := "First paragraph about waiting periods.\n\nSecond paragraph about exclusions."
	chunks := s.Split(text)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(chunks), chunks)
	}
	if chunks[0] != "First paragraph about waiting periods." {
		t.Errorf("chunk 0 = %q", chunks[0])
	}
	if chunks[1] != "Second paragraph about exclusions." {
		t.Errorf("chunk 1 = %q", chunks[1])
	}
}

func TestSplitter_OverlapCarriesContext(t *testing.T) {
	t.Parallel()

	s := NewSplitter(40, 15)

	text := "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima"
	chunks := s.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Each chunk after the first should start with a word from the tail of
	// the previous chunk.
	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1])
		firstWord := strings.Fields(chunks[i])[0]

		found := false
		for _, w := range prevWords {
			if w == firstWord {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("chunk %d does not overlap with its predecessor: %q then %q", i, chunks[i-1], chunks[i])
		}
	}
}

func TestSplitter_NoTextLost(t *testing.T) {
	t.Parallel()

	s := NewSplitter(60, 12)

	text := "one two three four five six seven eight nine ten eleven twelve thirteen fourteen"
	chunks := s.Split(text)

	joined := strings.Join(chunks, " ")
	for _, word := range strings.Fields(text) {
		if !strings.Contains(joined, word) {
			t.Errorf("word %q missing from chunks", word)
		}
	}
}

func TestSplitter_UnbrokenTextHardCut(t *testing.T) {
	t.Parallel()

	s := NewSplitter(10, 2)

	text := strings.Repeat("x", 35)
	chunks := s.Split(text)

	if len(chunks) < 3 {
		t.Fatalf("expected hard-cut chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 10 {
			t.Errorf("chunk %d has %d chars, want <= 10", i, len(chunk))
		}
	}
}

func TestSplitter_UnicodeLengths(t *testing.T) {
	t.Parallel()

	s := NewSplitter(10, 0)

	// 30 multibyte runes with no separators: must cut by rune count, not bytes.
	text := strings.Repeat("ü", 30)
	chunks := s.Split(text)

	for i, chunk := range chunks {
		if n := utf8.RuneCountInString(chunk); n > 10 {
			t.Errorf("chunk %d has %d runes, want <= 10", i, n)
		}
	}
}
