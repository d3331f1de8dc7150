package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// UserAgent is sent with every request; the article host rejects the default Go agent.
const UserAgent = "Mozilla/5.0"

// Get fetches a page the way a browser would and returns the body of a 200 response.
func Get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: http status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", url, err)
	}
	return body, nil
}

// PostForm sends an urlencoded form and returns the status code and body.
// Non-2xx statuses are not turned into errors; callers decide.
func PostForm(ctx context.Context, client *http.Client, endpoint string, form url.Values) (int, []byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, fmt.Errorf("building request for %s: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("POST %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading body of %s: %w", endpoint, err)
	}
	return resp.StatusCode, body, nil
}

/* Html cleanup functions */
func stripScriptsStylesAndInlineStyles(r io.Reader) (string, error) {
	var b bytes.Buffer
	z := html.NewTokenizer(r)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return b.String(), nil
			}
			return "", z.Err()

		case html.StartTagToken, html.SelfClosingTagToken:
			token := z.Token()
			if token.Data == "script" || token.Data == "style" || token.Data == "noscript" {
				if tt == html.StartTagToken {
					findAndSkip(z, token.Data)
				}
				continue
			}
			b.WriteString(removeStyleAttribute(token).String())

		case html.CommentToken:
			// dropped

		default:
			b.WriteString(z.Token().String())
		}
	}
}

func findAndSkip(z *html.Tokenizer, tagName string) {
	depth := 1
	for depth > 0 {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return
		case html.StartTagToken:
			if z.Token().Data == tagName {
				depth++
			}
		case html.EndTagToken:
			if z.Token().Data == tagName {
				depth--
			}
		}
	}
}

func removeStyleAttribute(token html.Token) html.Token {
	for i := 0; i < len(token.Attr); i++ {
		if token.Attr[i].Key == "style" || token.Attr[i].Key == "class" || token.Attr[i].Key == "id" {
			token.Attr = append(token.Attr[:i], token.Attr[i+1:]...)
			i--
		}
	}
	return token
}

// CompressHtml drops scripts, styles, comments and presentational attributes.
// The result is what gets written to the debug dump.
func CompressHtml(markup string) (string, error) {
	return stripScriptsStylesAndInlineStyles(strings.NewReader(markup))
}
