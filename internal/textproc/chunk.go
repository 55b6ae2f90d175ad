package textproc

import "strings"

// Chunk splits text into windows of at most size characters with the given
// overlap between successive windows. When a window would cut mid-sentence,
// the break is moved back to the nearest sentence-ending punctuation within
// the last 100 characters of the window.
func Chunk(text string, size, overlap int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if size <= 0 {
		size = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end < len(text) {
			floor := end - 100
			if floor < start {
				floor = start
			}
			for i := end; i > floor; i-- {
				if c := text[i]; c == '.' || c == '!' || c == '?' {
					end = i + 1
					break
				}
			}
		} else {
			end = len(text)
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		start = end - overlap
		if start >= len(text) || end == len(text) {
			break
		}
	}
	return chunks
}

// Merge joins chunks back together, removing the overlap between adjacent
// chunks where one exists.
func Merge(chunks []string) string {
	if len(chunks) == 0 {
		return ""
	}
	merged := chunks[0]
	for _, chunk := range chunks[1:] {
		max := len(chunk)
		if len(merged) < max {
			max = len(merged)
		}
		joined := false
		for j := max; j > 0; j-- {
			if strings.HasSuffix(merged, chunk[:j]) {
				merged += chunk[j:]
				joined = true
				break
			}
		}
		if !joined {
			merged += " " + chunk
		}
	}
	return merged
}

// Clean collapses whitespace and strips common PDF artifacts from extracted
// policy text.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.ReplaceAll(text, "\x0c", " ")
	return strings.Join(strings.Fields(text), " ")
}
