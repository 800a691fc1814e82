package orchestration

import (
	"regexp"
	"strings"
)

// sentencePattern matches one speakable sentence: a body followed by one or
// more terminators. Matching is greedy and leftmost-first.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// sentenceSegmenter extracts completed sentences from incrementally appended
// response text. The unconsumed suffix is retained, so at all times the
// concatenation of emitted sentences plus the buffer equals the appended
// text. Not safe for concurrent use; a turn owns exactly one segmenter.
type sentenceSegmenter struct {
	buffer string
}

func newSentenceSegmenter() *sentenceSegmenter {
	return &sentenceSegmenter{}
}

// Push appends text and returns the sentences it completed, in order. Only
// matches forming a contiguous run from the start of the buffer are consumed;
// their exact spans are removed from the buffer.
func (s *sentenceSegmenter) Push(text string) []string {
	s.buffer += text

	spans := sentencePattern.FindAllStringIndex(s.buffer, -1)
	if len(spans) == 0 || spans[0][0] != 0 {
		return nil
	}

	var sentences []string
	consumed := 0
	for _, span := range spans {
		if span[0] != consumed {
			break
		}
		sentences = append(sentences, s.buffer[span[0]:span[1]])
		consumed = span[1]
	}

	s.buffer = s.buffer[consumed:]
	return sentences
}

// Flush empties the buffer and returns the trimmed residual fragment, if any.
// Called once at the natural end of a turn; interrupted turns never flush.
func (s *sentenceSegmenter) Flush() string {
	residue := strings.TrimSpace(s.buffer)
	s.buffer = ""
	return residue
}

// Buffered returns the suffix not yet resolved into sentences.
func (s *sentenceSegmenter) Buffered() string {
	return s.buffer
}
