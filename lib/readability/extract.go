// Package readability turns the article page into plain text and a publish date.
package readability

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/CodeAndCandlesticks/market-sentiment/lib/types"
)

// PublishedMarker precedes the publish timestamp on the article page.
const PublishedMarker = "Published as of:"

// DateKeyLayout is the canonical layout of a date key.
const DateKeyLayout = "2006-01-02"

const shortDateLayout = "January 2, 2006"

// ErrExtractionFailed means the page did not yield a body or a parseable publish date.
var ErrExtractionFailed = errors.New("extraction failed")

var (
	shortDateRe = regexp.MustCompile(regexp.QuoteMeta(PublishedMarker) + ` ([A-Za-z]+ \d{1,2}, \d{4})`)
	fullDateRe  = regexp.MustCompile(regexp.QuoteMeta(PublishedMarker) + ` (.+)`)
)

// Extract builds a snapshot from raw markup. It fails rather than guessing a date.
func Extract(markup string) (types.ArticleSnapshot, error) {
	snapshot := types.ArticleSnapshot{RawMarkup: markup}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return snapshot, fmt.Errorf("%w: parsing markup: %v", ErrExtractionFailed, err)
	}

	snapshot.BodyText = BodyText(doc)
	if snapshot.BodyText == "" {
		return snapshot, fmt.Errorf("%w: no paragraph text found", ErrExtractionFailed)
	}

	dateKey, raw, err := PublishDate(doc)
	if err != nil {
		return snapshot, err
	}
	snapshot.PublishDateKey = dateKey
	snapshot.PublishDateRaw = raw
	snapshot.ContentHash = ContentHash(snapshot.BodyText)

	return snapshot, nil
}

// BodyText joins the text of every non-blank <p>, in document order. Paragraph text is
// kept as is so ContentHash matches hashes already in the log.
func BodyText(doc *goquery.Document) string {
	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if strings.TrimSpace(text) != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n")
}

// PublishDate finds the marker text and returns the date key (YYYY-MM-DD) and the raw
// timestamp that follows the marker, e.g. "April 17, 2025, 9:15 a.m. ET".
func PublishDate(doc *goquery.Document) (string, string, error) {
	text, ok := findMarkerText(doc)
	if !ok {
		return "", "", fmt.Errorf("%w: %q not found", ErrExtractionFailed, PublishedMarker)
	}
	return ParsePublishedText(text)
}

// ParsePublishedText parses the text node that holds the marker.
func ParsePublishedText(text string) (string, string, error) {
	text = strings.ReplaceAll(text, "\u00a0", " ")

	short := shortDateRe.FindStringSubmatch(text)
	full := fullDateRe.FindStringSubmatch(text)
	if short == nil || full == nil {
		return "", "", fmt.Errorf("%w: no date after %q in %q", ErrExtractionFailed, PublishedMarker, strings.TrimSpace(text))
	}

	published, err := time.Parse(shortDateLayout, strings.TrimSpace(short[1]))
	if err != nil {
		return "", "", fmt.Errorf("%w: parsing %q: %v", ErrExtractionFailed, short[1], err)
	}
	return published.Format(DateKeyLayout), strings.TrimSpace(full[1]), nil
}

func findMarkerText(doc *goquery.Document) (string, bool) {
	for _, root := range doc.Nodes {
		if text, ok := walkText(root); ok {
			return text, true
		}
	}
	return "", false
}

func walkText(n *html.Node) (string, bool) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return "", false
	}
	if n.Type == html.TextNode && strings.Contains(n.Data, PublishedMarker) {
		return n.Data, true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text, ok := walkText(c); ok {
			return text, true
		}
	}
	return "", false
}

// ContentHash is the hex MD5 of the article text, kept in the log for auditing.
func ContentHash(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
