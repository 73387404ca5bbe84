// Package docs cleans uploaded submission material (pitch decks, pasted
// HTML) into plain text suitable for the extraction prompt.
package docs

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	rpdf "rsc.io/pdf"
)

// maxDocumentChars bounds how much of one document reaches the prompt.
const maxDocumentChars = 20000

// ExtractPDFText pulls the text fragments out of a PDF upload. The
// underlying parser panics on some malformed files, so the call is
// recover-guarded and reports a normal error instead.
func ExtractPDFText(content []byte) (text string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("pdf parser panic: %v", recovered)
			text = ""
		}
	}()

	reader, err := rpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		for _, fragment := range page.Content().Text {
			builder.WriteString(fragment.S)
			builder.WriteString(" ")
		}
		builder.WriteString("\n")
	}

	return normalizeSpace(builder.String()), nil
}

// HTMLToText converts HTML to plain text, collapsing whitespace.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html // Fallback to original if parsing fails
	}
	return normalizeSpace(doc.Text())
}

// SanitizeHTML strips unsafe tags and attributes from pasted content.
func SanitizeHTML(html string) string {
	p := bluemonday.UGCPolicy()
	return p.Sanitize(html)
}

// CleanDocument prepares one uploaded text or HTML document for the
// extraction prompt: strips markup when present, collapses whitespace
// and truncates oversized content.
func CleanDocument(raw string) string {
	cleaned := raw
	if strings.Contains(raw, "<") && strings.Contains(raw, ">") {
		cleaned = HTMLToText(SanitizeHTML(raw))
	} else {
		cleaned = normalizeSpace(raw)
	}
	return TruncateText(cleaned, maxDocumentChars)
}

// TruncateText cuts a string to max length, appending ellipsis if truncated.
func TruncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen > 3 {
		return text[:maxLen-3] + "..."
	}
	return text[:maxLen]
}

// normalizeSpace collapses multiple spaces into one and trims the string.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
