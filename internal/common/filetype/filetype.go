// internal/common/filetype/filetype.go
package filetype

import (
	"bytes"
	"encoding/json"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"docrouter/internal/models"
)

// extensionFormats maps well-known file extensions to pipeline formats.
var extensionFormats = map[string]models.Format{
	".json": models.FormatStructuredData,
	".eml":  models.FormatMessage,
	".msg":  models.FormatMessage,
	".pdf":  models.FormatDocument,
}

var headerPattern = regexp.MustCompile(`(?im)^(from|to|subject):`)

// Detect resolves the format of a file on disk. Extension wins, then the
// registered MIME type, then a sniff of the first kilobyte of content.
// Content that resists all three checks is reported as unknown.
func Detect(path string) models.Format {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensionFormats[ext]; ok {
		return f
	}

	switch mime.TypeByExtension(ext) {
	case "application/json":
		return models.FormatStructuredData
	case "application/pdf":
		return models.FormatDocument
	case "message/rfc822":
		return models.FormatMessage
	}

	head, err := readHead(path, 1024)
	if err != nil {
		return models.FormatUnknown
	}
	return Sniff(head)
}

// Sniff inspects raw content without any filename hints.
func Sniff(content []byte) models.Format {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return models.FormatUnknown
	}

	if trimmed[0] == '{' || trimmed[0] == '[' {
		var v interface{}
		if json.Unmarshal(trimmed, &v) == nil {
			return models.FormatStructuredData
		}
	}

	if bytes.HasPrefix(trimmed, []byte("%PDF-")) {
		return models.FormatDocument
	}

	if headerPattern.Match(trimmed) {
		return models.FormatMessage
	}

	return models.FormatUnknown
}

func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := f.Read(buf)
	if read > 0 {
		return buf[:read], nil
	}
	return nil, err
}
