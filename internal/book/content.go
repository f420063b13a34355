package book

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	openTagPattern  = regexp.MustCompile(`(?i)<(p|br|div|h[1-6]|em|strong|i|b|span|ul|ol|li|blockquote)(\s[^<>]*)?/?>`)
	closeTagPattern = regexp.MustCompile(`(?i)</(p|div|h[1-6]|em|strong|i|b|span|ul|ol|li|blockquote)\s*>`)
)

const blockSelector = "p, br, div, h1, h2, h3, h4, h5, h6, li, blockquote"

// isMarkup reports whether content holds at least one known element that is
// both opened and closed. A lone "<b and q>" in prose does not count.
func isMarkup(content string) bool {
	opened := make(map[string]bool)
	for _, m := range openTagPattern.FindAllStringSubmatch(content, -1) {
		opened[strings.ToLower(m[1])] = true
	}
	for _, m := range closeTagPattern.FindAllStringSubmatch(content, -1) {
		if opened[strings.ToLower(m[1])] {
			return true
		}
	}
	return false
}

// NormalizeContent turns generated chapter content into plain prose. Models
// occasionally answer with HTML; such content is reduced to its text with
// block elements kept apart. Plain text is returned unchanged.
func NormalizeContent(content string) (string, error) {
	if !isMarkup(content) {
		return content, nil
	}

	document, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse chapter markup: %w", err)
	}

	document.Find("script, style").Remove()
	document.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml("\n")
	})
	return strings.TrimSpace(document.Find("body").Text()), nil
}
