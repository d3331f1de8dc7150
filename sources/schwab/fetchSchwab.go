package main

import (
	"context"
	"net/http"

	"github.com/CodeAndCandlesticks/market-sentiment/lib/web"
)

// ArticleSource downloads the Schwab "stock market update" page.
type ArticleSource struct {
	URL    string
	Client *http.Client
}

func (s *ArticleSource) Fetch(ctx context.Context) (string, error) {
	body, err := web.Get(ctx, s.Client, s.URL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
