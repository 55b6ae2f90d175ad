package textproc

import (
	"fmt"
	"strings"
	"testing"
)

// numberedPolicy builds non-repeating sentence text so overlap regions are
// unique within the document.
func numberedPolicy(sentences int) string {
	var builder strings.Builder
	for i := 0; i < sentences; i++ {
		fmt.Fprintf(&builder, "Rule %03d must be followed by every resident at all times. ", i)
	}
	return strings.TrimSpace(builder.String())
}

func TestChunkShortText(t *testing.T) {
	chunks := Chunk("Short policy text.", 500, 100)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk got %d", len(chunks))
	}
	if chunks[0] != "Short policy text." {
		t.Fatalf("unexpected chunk: %q", chunks[0])
	}
}

func TestChunkEmptyInput(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t  "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if chunks := Chunk(tc.text, 500, 100); chunks != nil {
				t.Fatalf("expected no chunks got %d", len(chunks))
			}
		})
	}
}

func TestChunkOverlap(t *testing.T) {
	text := numberedPolicy(60)

	chunks := Chunk(text, 500, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 500 {
			t.Fatalf("chunk %d exceeds size: %d", i, len(chunk))
		}
	}
	// Each chunk's tail should reappear at the head of its successor.
	for i := 0; i < len(chunks)-1; i++ {
		tail := chunks[i][len(chunks[i])-40:]
		head := chunks[i+1]
		if len(head) > 120 {
			head = head[:120]
		}
		if !strings.Contains(head, strings.TrimSpace(tail)) {
			t.Fatalf("chunk %d tail not found in chunk %d head", i, i+1)
		}
	}
}

func TestChunkBreaksAtSentence(t *testing.T) {
	sentence := "Candles are prohibited in every room. "
	text := strings.Repeat(sentence, 30)

	chunks := Chunk(text, 500, 100)
	for i, chunk := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(chunk, ".") {
			t.Fatalf("chunk %d does not end at sentence boundary: %q", i, chunk[len(chunk)-20:])
		}
	}
}

func TestMergeReconstructs(t *testing.T) {
	text := numberedPolicy(50)

	chunks := Chunk(text, 500, 100)
	merged := Merge(chunks)
	if merged != text {
		t.Fatalf("merge did not reconstruct text: want %d chars got %d", len(text), len(merged))
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"collapses whitespace", "a  b\n\nc", "a b c"},
		{"strips null bytes", "a\x00b", "ab"},
		{"form feed to space", "a\x0cb", "a b"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clean(tc.in); got != tc.expected {
				t.Fatalf("expected %q got %q", tc.expected, got)
			}
		})
	}
}
