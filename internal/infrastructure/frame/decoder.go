// ABOUTME: Frame decoders turning raw TCP chunks into JSON documents
// ABOUTME: Chunk mode trusts one document per write; stream mode reassembles
package frame

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/harper/snapmeta/internal/domain"
)

// MaxFrameBytes bounds how much partial input StreamDecoder will hold.
const MaxFrameBytes = 1 << 20

var errFrameTooLarge = fmt.Errorf("partial frame exceeds %d bytes", MaxFrameBytes)

// Mode selects a framing strategy.
type Mode string

const (
	// ModeChunk treats every chunk as exactly one JSON document. A document
	// split across TCP segments, or two documents coalesced into one
	// segment, is reported as malformed.
	ModeChunk Mode = "chunk"
	// ModeStream buffers across chunks and emits every complete document.
	ModeStream Mode = "stream"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeChunk:
		return ModeChunk, nil
	case ModeStream:
		return ModeStream, nil
	default:
		return "", domain.InvalidArgument("unknown framing mode %q", s)
	}
}

// Decoder converts a chunk into zero or more JSON documents. Failures are
// *domain.MalformedFrameError; documents decoded before a failure in the
// same chunk are still returned.
type Decoder interface {
	Decode(chunk []byte) ([]json.RawMessage, error)
}

func New(mode Mode) Decoder {
	if mode == ModeStream {
		return &StreamDecoder{}
	}
	return ChunkDecoder{}
}

type ChunkDecoder struct{}

func (ChunkDecoder) Decode(chunk []byte) ([]json.RawMessage, error) {
	var doc json.RawMessage
	if err := json.Unmarshal(chunk, &doc); err != nil {
		return nil, &domain.MalformedFrameError{Frame: chunk, Err: err}
	}
	return []json.RawMessage{doc}, nil
}

// StreamDecoder is not safe for concurrent use; the transport feeds it from
// a single goroutine.
type StreamDecoder struct {
	buf []byte
}

func (d *StreamDecoder) Decode(chunk []byte) ([]json.RawMessage, error) {
	d.buf = append(d.buf, chunk...)

	var docs []json.RawMessage
	for {
		trimmed := bytes.TrimLeft(d.buf, " \t\r\n")
		if len(trimmed) == 0 {
			d.buf = d.buf[:0]
			return docs, nil
		}

		dec := json.NewDecoder(bytes.NewReader(trimmed))
		var doc json.RawMessage
		err := dec.Decode(&doc)
		switch {
		case err == nil:
			docs = append(docs, doc)
			d.buf = trimmed[dec.InputOffset():]
		case errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF):
			if len(trimmed) > MaxFrameBytes {
				return docs, d.fail(errFrameTooLarge)
			}
			d.buf = append(d.buf[:0], trimmed...)
			return docs, nil
		default:
			return docs, d.fail(err)
		}
	}
}

// Pending reports how many bytes of an incomplete document are buffered.
func (d *StreamDecoder) Pending() int { return len(d.buf) }

func (d *StreamDecoder) fail(err error) error {
	frame := make([]byte, len(d.buf))
	copy(frame, d.buf)
	d.buf = d.buf[:0]
	return &domain.MalformedFrameError{Frame: frame, Err: err}
}
