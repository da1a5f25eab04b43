// Package formatter renders search results for the command line.
package formatter

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Content is anything that can be rendered in every output format.
type Content interface {
	ToText() (string, error)
	ToMarkdown() (string, error)
	ToHTML() (string, error)
	ToJSON() ([]byte, error)
	ToCSV() (string, error)
}

// Formats lists the supported output formats.
var Formats = []string{"text", "markdown", "json", "csv", "html"}

func Format(content Content, format string) (string, error) {
	switch format {
	case "html":
		return content.ToHTML()
	case "text":
		return content.ToText()
	case "markdown":
		return content.ToMarkdown()
	case "csv":
		return content.ToCSV()
	case "json":
		b, err := content.ToJSON()
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// Valid reports whether format is supported.
func Valid(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// InferFormat infers the output format from a file extension. It returns ""
// for unknown extensions.
func InferFormat(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return "markdown"
	case ".json":
		return "json"
	case ".html", ".htm":
		return "html"
	case ".txt":
		return "text"
	case ".csv":
		return "csv"
	default:
		return ""
	}
}
