package scan

import (
	"regexp"
	"strings"
)

// Segmenter splits text into sentences. The pipeline is agnostic to which
// implementation is active; a coarser segmenter only makes contexts less
// granular, never structurally different.
type Segmenter interface {
	Segment(text string) []string
}

// Sentence boundary: terminal punctuation followed by whitespace. Requiring
// the trailing whitespace keeps decimal field ids like "100-0.0" intact.
var sentenceBoundary = regexp.MustCompile(`[.!?]+\s+`)

// RegexSegmenter splits on terminal punctuation. It is the default.
type RegexSegmenter struct{}

func (RegexSegmenter) Segment(text string) []string {
	parts := sentenceBoundary.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimRight(p, ".!?"))
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// WholeTextSegmenter is the trivial fallback: the entire text is one
// sentence. Used when proper segmentation is unavailable.
type WholeTextSegmenter struct{}

func (WholeTextSegmenter) Segment(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return []string{text}
}

// segmentSafe runs the segmenter and falls back to the whole text if it
// panics or returns nothing for non-empty input. Malformed punctuation must
// never abort a scan.
func segmentSafe(seg Segmenter, text string) (sentences []string) {
	defer func() {
		if r := recover(); r != nil {
			sentences = WholeTextSegmenter{}.Segment(text)
		}
	}()

	sentences = seg.Segment(text)
	if len(sentences) == 0 {
		sentences = WholeTextSegmenter{}.Segment(text)
	}
	return sentences
}
