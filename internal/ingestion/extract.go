package ingestion

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Content types accepted for CV uploads.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeText = "text/plain"
)

// SupportedCVType reports whether contentType is a format ExtractText can handle.
func SupportedCVType(contentType string) bool {
	switch normalizeContentType(contentType) {
	case ContentTypePDF, ContentTypeDocx, ContentTypeText:
		return true
	}
	return false
}

// ExtractText pulls the plain text out of an uploaded CV document.
// The returned text is raw; callers run it through CleanText before parsing.
func ExtractText(contentType string, data []byte) (string, error) {
	switch normalizeContentType(contentType) {
	case ContentTypeText:
		return string(data), nil
	case ContentTypePDF:
		return extractPDFText(data)
	case ContentTypeDocx:
		return extractDocxText(data)
	default:
		return "", fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// normalizeContentType strips parameters like "; charset=utf-8".
func normalizeContentType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("pdf contains no extractable text")
	}
	return b.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	return docxContentToText(content), nil
}

// docxContentToText flattens the raw document XML body into line-separated
// plain text. The docx library returns the document.xml content verbatim,
// so paragraph boundaries have to be recovered from the markup.
func docxContentToText(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = strings.ReplaceAll(content, "<w:br/>", "\n")
	content = strings.ReplaceAll(content, "<w:tab/>", "\t")

	var b strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return xmlUnescape(b.String())
}

func xmlUnescape(s string) string {
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
	return replacer.Replace(s)
}
