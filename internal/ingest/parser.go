package ingest

import (
	"errors"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const dataPrefix = "data: "

// Parser turns raw stream chunks into progress messages.
//
// Each chunk is decoded as UTF-8 and split on "\n". Lines starting with
// "data: " yield the remainder; any other non-blank line yields itself,
// trimmed. Text is not carried across chunks, so a line split over two
// chunks surfaces as two messages. Only an incomplete multi-byte sequence at
// the end of a chunk is held back for the next one.
type Parser struct {
	decoder transform.Transformer
	carry   []byte
}

// NewParser returns a parser ready for the first chunk.
func NewParser() *Parser {
	return &Parser{decoder: unicode.UTF8.NewDecoder()}
}

// Feed decodes chunk and returns the messages it contains, in order.
func (p *Parser) Feed(chunk []byte) []string {
	return parseLines(p.decode(chunk, false))
}

// Flush decodes whatever bytes are still held back at end of stream.
func (p *Parser) Flush() []string {
	if len(p.carry) == 0 {
		return nil
	}
	return parseLines(p.decode(nil, true))
}

func (p *Parser) decode(chunk []byte, atEOF bool) string {
	src := make([]byte, 0, len(p.carry)+len(chunk))
	src = append(src, p.carry...)
	src = append(src, chunk...)
	p.carry = nil
	if len(src) == 0 {
		return ""
	}

	// Every invalid byte becomes U+FFFD, at most three bytes.
	dst := make([]byte, 3*len(src))
	nDst, nSrc, err := p.decoder.Transform(dst, src, atEOF)
	if err != nil && !errors.Is(err, transform.ErrShortSrc) {
		p.decoder.Reset()
		return string(src)
	}
	if nSrc < len(src) {
		p.carry = append([]byte(nil), src[nSrc:]...)
	}
	return string(dst[:nDst])
}

func parseLines(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if msg, ok := ParseLine(line); ok {
			out = append(out, msg)
		}
	}
	return out
}

// ParseLine classifies a single line. It reports false for lines that carry
// no message.
func ParseLine(line string) (string, bool) {
	line = strings.TrimSuffix(line, "\r")
	if strings.HasPrefix(line, dataPrefix) {
		return line[len(dataPrefix):], true
	}
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}
