package scraper

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Paragraphs shorter than this are navigation crumbs, not article text.
const minParagraphLen = 10

var whitespaceRE = regexp.MustCompile(`\s+`)

// ExtractParagraphs pulls text paragraphs out of a page. Only text inside
// <article> counts; script and style contents are skipped. Paragraph breaks
// fall on <p> and <div> boundaries.
func ExtractParagraphs(page string) []string {
	tokenizer := html.NewTokenizer(strings.NewReader(page))

	var paragraphs []string
	var current []string
	inArticle := 0
	inRawText := 0

	flush := func() {
		text := strings.TrimSpace(strings.Join(current, " "))
		current = current[:0]
		if len(text) > minParagraphLen {
			paragraphs = append(paragraphs, cleanText(text))
		}
	}

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way, keep what we have.
			flush()
			return paragraphs

		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style":
				inRawText++
			case "article":
				inArticle++
			case "p", "div":
				flush()
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style":
				if inRawText > 0 {
					inRawText--
				}
			case "article":
				if inArticle > 0 {
					inArticle--
				}
			case "p", "div":
				flush()
			}

		case html.TextToken:
			if inArticle > 0 && inRawText == 0 {
				if text := strings.TrimSpace(string(tokenizer.Text())); text != "" {
					current = append(current, text)
				}
			}
		}
	}
}

func cleanText(text string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
}
