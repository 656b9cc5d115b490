// internal/processors/document/rawscan.go
package document

import (
	"bytes"
	"compress/zlib"
	"io"
	"os"
	"strings"
)

// rawEngine recovers text without parsing the document structure: it scans
// the file for stream...endstream blocks, inflates the deflated ones, and
// feeds whatever decodes to the content-stream operator parser. It yields no
// metadata. Used as the fallback when structural parsing fails or is
// disabled.
type rawEngine struct{}

func (e *rawEngine) Name() string { return EngineRaw }

var (
	streamStart = []byte("stream")
	streamEnd   = []byte("endstream")
)

func (e *rawEngine) ExtractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range streamBlocks(data) {
		text := extractTextFromStream(inflate(block))
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func (e *rawEngine) ExtractMetadata(path string) (map[string]string, error) {
	return map[string]string{}, nil
}

// streamBlocks returns the payloads between stream/endstream keywords.
func streamBlocks(data []byte) [][]byte {
	var blocks [][]byte
	rest := data
	for {
		start := bytes.Index(rest, streamStart)
		if start < 0 {
			break
		}
		rest = rest[start+len(streamStart):]

		// The keyword is followed by an EOL before the payload.
		rest = bytes.TrimLeft(rest, "\r\n")

		end := bytes.Index(rest, streamEnd)
		if end < 0 {
			break
		}
		blocks = append(blocks, rest[:end])
		rest = rest[end+len(streamEnd):]
	}
	return blocks
}

// inflate attempts FlateDecode and falls back to the raw bytes when the
// block is not deflated.
func inflate(block []byte) []byte {
	r, err := zlib.NewReader(bytes.NewReader(block))
	if err != nil {
		return block
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil || len(out) == 0 {
		return block
	}
	return out
}
