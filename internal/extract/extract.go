// Package extract pulls plain text out of uploaded material files for the
// generation pipeline.
package extract

import (
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"
)

// maxTextBytes caps how much of a file is read as text. Generation prompts
// carry the extracted content, so unbounded reads are unsafe.
const maxTextBytes = 1 << 20 // 1 MiB

// Text returns the textual content of an uploaded file. Plain-text formats
// are read directly; binary formats get a placeholder so uploads never fail
// on extraction, they just generate from the title alone.
func Text(r io.Reader, filename string) (string, error) {
	switch ext := strings.ToLower(path.Ext(filename)); ext {
	case ".txt", ".md", ".markdown", ".csv", ".html", ".htm":
		b, err := io.ReadAll(io.LimitReader(r, maxTextBytes))
		if err != nil {
			return "", err
		}
		if !utf8.Valid(b) {
			return placeholder(filename), nil
		}
		return strings.TrimSpace(string(b)), nil
	default:
		return placeholder(filename), nil
	}
}

func placeholder(filename string) string {
	return fmt.Sprintf("[Content from file: %s]", path.Base(filename))
}
