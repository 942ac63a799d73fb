package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// uploadDateLen is the length of the YYYY-MM-DD prefix kept from the meta content.
const uploadDateLen = 10

// ParseUploadDate reads the upload date from a video detail page's
// <meta itemprop="uploadDate"> element.
func ParseUploadDate(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse detail page: %w", err)
	}

	content, ok := doc.Find(`meta[itemprop="uploadDate"]`).First().Attr("content")
	content = strings.TrimSpace(content)

	if !ok || content == "" {
		return "", ErrUploadDateMissing
	}

	if runes := []rune(content); len(runes) > uploadDateLen {
		content = string(runes[:uploadDateLen])
	}

	return content, nil
}

// FetchUploadDate fetches a video detail page and returns its upload date.
func (c *Client) FetchUploadDate(ctx context.Context, pageURL string) (string, error) {
	resp, err := c.session.Get(ctx, pageURL)
	if err != nil {
		return "", err
	}

	date, err := ParseUploadDate(bytes.NewReader(resp.Body))
	if err != nil {
		return "", fmt.Errorf("%s: %w", pageURL, err)
	}

	return date, nil
}
