package orchestration

import (
	"slices"
	"strings"
	"testing"
)

func TestSegmenterEmitsSentenceCompletedAcrossChunks(t *testing.T) {
	segmenter := newSentenceSegmenter()

	if sentences := segmenter.Push("Boa tar"); len(sentences) != 0 {
		t.Fatalf("expected no sentences from incomplete chunk, got %v", sentences)
	}
	if buffered := segmenter.Buffered(); buffered != "Boa tar" {
		t.Fatalf("expected buffer to hold the incomplete chunk, got %q", buffered)
	}

	sentences := segmenter.Push("de. Como posso ajudar?")
	expected := []string{"Boa tarde.", " Como posso ajudar?"}
	if !slices.Equal(sentences, expected) {
		t.Fatalf("expected %v, got %v", expected, sentences)
	}
	if buffered := segmenter.Buffered(); buffered != "" {
		t.Fatalf("expected empty buffer, got %q", buffered)
	}
}

func TestSegmenterKeepsUnterminatedSuffixUntilFlush(t *testing.T) {
	segmenter := newSentenceSegmenter()

	sentences := segmenter.Push("Olá. Tudo bem")
	if !slices.Equal(sentences, []string{"Olá."}) {
		t.Fatalf("expected [Olá.], got %v", sentences)
	}
	if buffered := segmenter.Buffered(); buffered != " Tudo bem" {
		t.Fatalf("expected buffer %q, got %q", " Tudo bem", buffered)
	}

	if residue := segmenter.Flush(); residue != "Tudo bem" {
		t.Fatalf("expected trimmed residue %q, got %q", "Tudo bem", residue)
	}
	if buffered := segmenter.Buffered(); buffered != "" {
		t.Fatalf("expected empty buffer after flush, got %q", buffered)
	}
}

func TestSegmenterFlushOnEmptyBuffer(t *testing.T) {
	segmenter := newSentenceSegmenter()
	if residue := segmenter.Flush(); residue != "" {
		t.Fatalf("expected empty residue, got %q", residue)
	}
}

func TestSegmenterGreedyTerminatorRuns(t *testing.T) {
	segmenter := newSentenceSegmenter()

	sentences := segmenter.Push("Sério?! Sim... talvez")
	expected := []string{"Sério?!", " Sim..."}
	if !slices.Equal(sentences, expected) {
		t.Fatalf("expected %v, got %v", expected, sentences)
	}
	if buffered := segmenter.Buffered(); buffered != " talvez" {
		t.Fatalf("expected buffer %q, got %q", " talvez", buffered)
	}
}

// The concatenation of everything emitted plus the buffer must always equal
// the appended text, whatever the chunking.
func TestSegmenterEmittedPlusBufferEqualsAppended(t *testing.T) {
	chunks := []string{"Primeira fra", "se. Seg", "unda!", " E a ter", "ceira? Resto sem fim"}

	segmenter := newSentenceSegmenter()
	var appended, emitted strings.Builder
	for _, chunk := range chunks {
		appended.WriteString(chunk)
		for _, sentence := range segmenter.Push(chunk) {
			emitted.WriteString(sentence)
		}

		if got := emitted.String() + segmenter.Buffered(); got != appended.String() {
			t.Fatalf("accounting broken after %q: %q != %q", chunk, got, appended.String())
		}
	}
}

// The same text must produce the same sentences whether it arrives in one
// piece or split at arbitrary points within sentence bodies.
func TestSegmenterIsChunkBoundaryAgnostic(t *testing.T) {
	text := "Boa tarde. Como posso ajudar? Estou à disposição, Senhor. Resto"

	segment := func(chunks []string) []string {
		segmenter := newSentenceSegmenter()
		var sentences []string
		for _, chunk := range chunks {
			sentences = append(sentences, segmenter.Push(chunk)...)
		}
		if residue := segmenter.Flush(); residue != "" {
			sentences = append(sentences, residue)
		}
		return sentences
	}

	atOnce := segment([]string{text})

	splits := [][]string{
		{"Boa tar", "de. Como posso ajudar? Estou à disposição, Senhor. Resto"},
		{"Boa tarde. Como posso aj", "udar? Estou à disposição, Senhor", ". Resto"},
		{"B", "oa tarde. Como posso ajudar? Estou à disposição, S", "enhor. Resto"},
	}
	for _, chunks := range splits {
		if got := segment(chunks); !slices.Equal(got, atOnce) {
			t.Fatalf("chunking %v changed segmentation: %v != %v", chunks, got, atOnce)
		}
	}
}
