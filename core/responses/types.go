package responses

import (
	"context"
	"iter"
)

// Role identifies which side of the conversation produced a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one prior conversation entry, sent back to the remote endpoint
// as context for a new turn.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// WebSource describes the web resource behind a citation.
type WebSource struct {
	URI   string `json:"uri,omitempty"`
	Title string `json:"title,omitempty"`
}

// GroundingChunk is one citation attached to a streamed response. Only chunks
// that carry a web URI are usable as sources; the rest are dropped during
// merging.
type GroundingChunk struct {
	Web *WebSource `json:"web,omitempty"`
}

// record is the wire payload of a single framed stream record.
type record struct {
	Text       string `json:"text"`
	Candidates []struct {
		GroundingMetadata *struct {
			GroundingChunks []GroundingChunk `json:"groundingChunks"`
		} `json:"groundingMetadata,omitempty"`
	} `json:"candidates,omitempty"`
}

func (r record) groundingChunks() []GroundingChunk {
	if len(r.Candidates) == 0 || r.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	return r.Candidates[0].GroundingMetadata.GroundingChunks
}

// Chunk is a single decoded stream element.
type Chunk interface {
	isChunk()
}

// NewContentChunk wraps an incremental piece of response text. Exposed so
// alternative stream implementations can produce the same chunk types.
func NewContentChunk(content string) ContentChunk {
	return ContentChunk{content: content}
}

// NewSourcesChunk wraps a set of citations.
func NewSourcesChunk(sources []GroundingChunk) SourcesChunk {
	return SourcesChunk{sources: sources}
}

// ContentChunk carries an incremental piece of response text.
type ContentChunk struct {
	content string
}

func (c ContentChunk) isChunk() {}

func (c ContentChunk) Content() string {
	return c.content
}

// SourcesChunk carries the citations attached to a stream record.
type SourcesChunk struct {
	sources []GroundingChunk
}

func (c SourcesChunk) isChunk() {}

func (c SourcesChunk) Sources() []GroundingChunk {
	return c.sources
}

// Stream is a lazy, finite, single-use sequence of response chunks. Iterating
// Chunks drives the underlying feed; a terminal failure is yielded as the
// final element's error.
type Stream interface {
	Chunks(ctx context.Context) iter.Seq2[Chunk, error]
}
