// Package ingestion turns uploaded CV files and fetched job postings into
// clean plain text for the parsing and matching layers.
package ingestion

import (
	"regexp"
	"strings"
)

var multiSpaceRe = regexp.MustCompile(`\s+`)
var blankLinesRe = regexp.MustCompile(`\n\n\n+`)

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	// Normalize line endings (CRLF → LF)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")

	// Reduce runs of blank lines to at most one blank line
	result = blankLinesRe.ReplaceAllString(result, "\n\n")

	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving structure
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")

	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")

	// Preserve bullet lists, normalizing the marker's leading whitespace
	if isBulletLine(line) {
		indent := len(line) - len(trimmed)
		content := multiSpaceRe.ReplaceAllString(trimmed, " ")
		if indent > 0 {
			return strings.Repeat(" ", indent) + content
		}
		return content
	}

	// Regular lines: collapse internal runs of whitespace, keep indentation
	leadingSpace := len(line) - len(trimmed)
	content := multiSpaceRe.ReplaceAllString(strings.TrimSpace(line), " ")
	if leadingSpace > 0 {
		return strings.Repeat(" ", leadingSpace) + content
	}
	return content
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "• ") || strings.HasPrefix(trimmed, "· ")
}

// WordCount counts whitespace-separated tokens in cleaned text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
