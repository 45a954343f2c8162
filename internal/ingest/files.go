package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeText converts file bytes to a UTF-8 string, honoring UTF-8 and UTF-16
// byte order marks and falling back to Windows-1252 for invalid UTF-8.
func DecodeText(data []byte) (string, error) {
	switch {
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		return string(data[3:]), nil
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder(), data)
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder(), data)
	case utf8.Valid(data):
		return string(data), nil
	}
	return decodeWith(charmap.Windows1252.NewDecoder(), data)
}

func decodeWith(t transform.Transformer, data []byte) (string, error) {
	out, _, err := transform.Bytes(t, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ReadFeedbackFiles expands glob patterns and reads every .txt match, one
// feedback entry per non-blank line. Each entry carries its source file in
// metadata under "source".
func ReadFeedbackFiles(patterns []string) ([]string, []map[string]any, error) {
	var texts []string
	var metadata []map[string]any
	for _, p := range patterns {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if !strings.HasSuffix(strings.ToLower(m), ".txt") {
				continue
			}
			data, err := os.ReadFile(m)
			if err != nil {
				return nil, nil, err
			}
			content, err := DecodeText(data)
			if err != nil {
				return nil, nil, fmt.Errorf("decode %s: %w", m, err)
			}
			content = strings.ReplaceAll(content, "\r\n", "\n")
			for _, line := range strings.Split(content, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					texts = append(texts, line)
					metadata = append(metadata, map[string]any{"source": filepath.Base(m)})
				}
			}
		}
	}
	if len(texts) == 0 {
		return nil, nil, fmt.Errorf("no feedback found in .txt files")
	}
	return texts, metadata, nil
}
