// ABOUTME: ICY metadata strings and blocks for Shoutcast/Icecast consumers
// ABOUTME: Builds StreamTitle/StreamUrl text and the 16-byte padded wire block
package icy

import "strings"

const (
	blockUnit = 16
	maxBlocks = 255
	// MaxPayload is the largest text a single block can carry.
	MaxPayload = maxBlocks * blockUnit
)

// Text renders the semicolon-separated ICY metadata string. Single quotes
// inside values would terminate the field early, so they are dropped. An
// empty url omits StreamUrl.
func Text(title, url string) string {
	var b strings.Builder
	b.WriteString("StreamTitle='")
	b.WriteString(strings.ReplaceAll(title, "'", ""))
	b.WriteString("';")
	if url != "" {
		b.WriteString("StreamUrl='")
		b.WriteString(strings.ReplaceAll(url, "'", ""))
		b.WriteString("';")
	}
	return b.String()
}

// Block encodes text as a length byte (count of 16-byte units) followed by
// the zero-padded payload. Text beyond MaxPayload is truncated.
func Block(text string) []byte {
	if len(text) > MaxPayload {
		text = text[:MaxPayload]
	}

	units := (len(text) + blockUnit - 1) / blockUnit
	out := make([]byte, 1+units*blockUnit)
	out[0] = byte(units)
	copy(out[1:], text)
	return out
}
