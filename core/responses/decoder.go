package responses

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"strings"
)

const (
	recordPrefix  = "data:"
	maxRecordSize = 1024 * 1024
)

var recordDelimiter = []byte("\n\n")

// Decoder turns a raw incremental response feed into decoded chunks.
//
// The feed is framed as records separated by a blank line, each prefixed with
// "data:". Records are decoded independently: a malformed record is skipped
// with a warning and decoding continues. Framing happens on raw bytes before
// any text decoding, so multi-byte characters split across reads are
// reassembled before they are interpreted.
type Decoder struct {
	scanner *bufio.Scanner

	incomplete bool
}

func NewDecoder(r io.Reader) *Decoder {
	decoder := &Decoder{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxRecordSize)
	scanner.Split(decoder.scanRecords)
	decoder.scanner = scanner

	return decoder
}

// scanRecords splits the feed on blank-line delimiters. An incomplete
// trailing record is buffered, never emitted, and flagged so Chunks can warn
// once the feed ends.
func (d *Decoder) scanRecords(data []byte, atEOF bool) (int, []byte, error) {
	if i := bytes.Index(data, recordDelimiter); i >= 0 {
		return i + len(recordDelimiter), data[:i], nil
	}

	if atEOF {
		if len(bytes.TrimSpace(data)) > 0 {
			d.incomplete = true
		}
		return len(data), nil, bufio.ErrFinalToken
	}

	return 0, nil, nil
}

// Incomplete reports whether the feed ended while a partial record remained
// in the buffer. Only meaningful after the sequence returned by Chunks has
// been fully consumed.
func (d *Decoder) Incomplete() bool {
	return d.incomplete
}

// Chunks returns the decoded sequence. The sequence is finite, lazy and not
// restartable; a failure of the underlying reader is yielded as the last
// element's error.
func (d *Decoder) Chunks() iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		for d.scanner.Scan() {
			raw := strings.TrimSpace(d.scanner.Text())
			if raw == "" {
				continue
			}

			if !strings.HasPrefix(raw, recordPrefix) {
				logger.Warn("skipping stream record without data prefix")
				continue
			}

			payload := strings.TrimSpace(strings.TrimPrefix(raw, recordPrefix))
			if payload == "" {
				continue
			}

			var rec record
			if err := json.Unmarshal([]byte(payload), &rec); err != nil {
				logger.Warn("skipping undecodable stream record", "error", err)
				continue
			}

			if rec.Text != "" {
				if !yield(ContentChunk{content: rec.Text}, nil) {
					return
				}
			}
			if sources := rec.groundingChunks(); len(sources) > 0 {
				if !yield(SourcesChunk{sources: sources}, nil) {
					return
				}
			}
		}

		if err := d.scanner.Err(); err != nil {
			yield(nil, fmt.Errorf("failed to read streamed response: %w", err))
			return
		}

		if d.incomplete {
			logger.Warn("stream ended with an incomplete record in the buffer")
		}
	}
}
