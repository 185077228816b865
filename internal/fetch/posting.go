package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Posting is the content pulled from a job posting URL.
type Posting struct {
	URL         string
	Title       string
	Company     string
	Description string
	// ContentHash fingerprints the description so re-ingesting an unchanged
	// posting is a no-op.
	ContentHash string
}

// FetchPosting fetches a job posting URL and extracts its title, company and
// description text. When useBrowser is set, or the plain fetch yields too
// little text, the page is re-rendered in a headless browser.
func FetchPosting(ctx context.Context, urlStr string, useBrowser bool, logger *zap.Logger) (*Posting, error) {
	var html string

	if !useBrowser {
		result, err := URL(ctx, urlStr, nil)
		if err != nil {
			return nil, err
		}
		html = result.HTML

		text, err := ExtractMainText(html, JobPostingSelectors())
		if err != nil {
			return nil, err
		}
		if !ShouldUseBrowser(text) {
			return buildPosting(urlStr, html, text), nil
		}
		logger.Info("static fetch yielded little text, falling back to browser",
			zap.String("url", urlStr),
			zap.Int("text_len", len(text)))
	}

	rendered, err := WithBrowser(ctx, urlStr, DefaultTimeout)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "browser fetch failed", Cause: err}
	}

	text, err := ExtractMainText(rendered, JobPostingSelectors())
	if err != nil {
		return nil, err
	}
	return buildPosting(urlStr, rendered, text), nil
}

func buildPosting(urlStr, html, text string) *Posting {
	hash := sha256.Sum256([]byte(text))
	return &Posting{
		URL:         urlStr,
		Title:       extractTitle(html),
		Company:     extractCompany(html),
		Description: text,
		ContentHash: hex.EncodeToString(hash[:]),
	}
}

// extractTitle prefers the og:title meta tag, then the first h1, then the
// document title. Job boards commonly suffix the title with "| Company";
// the suffix is dropped.
func extractTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		return trimTitleSuffix(og)
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return trimTitleSuffix(h1)
	}
	return trimTitleSuffix(strings.TrimSpace(doc.Find("title").First().Text()))
}

// extractCompany reads the og:site_name meta tag when present.
func extractCompany(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	site, _ := doc.Find(`meta[property="og:site_name"]`).Attr("content")
	return strings.TrimSpace(site)
}

func trimTitleSuffix(title string) string {
	for _, sep := range []string{" | ", " – ", " - "} {
		if idx := strings.Index(title, sep); idx > 0 {
			title = title[:idx]
			break
		}
	}
	return strings.TrimSpace(title)
}
