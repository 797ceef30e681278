package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const duckDuckGoBaseURL = "https://html.duckduckgo.com/html/"

// DuckDuckGoEngine scrapes the keyless HTML endpoint.
type DuckDuckGoEngine struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewDuckDuckGoEngine() *DuckDuckGoEngine {
	return &DuckDuckGoEngine{
		baseURL:   duckDuckGoBaseURL,
		userAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
		client:    &http.Client{},
	}
}

func (d *DuckDuckGoEngine) UseDefaultClient() {
	d.client = http.DefaultClient
}

func (d *DuckDuckGoEngine) Name() string { return "duckduckgo" }

func (d *DuckDuckGoEngine) Query(ctx context.Context, q Query) ([]Hit, error) {
	u, _ := url.Parse(d.baseURL)
	params := u.Query()
	params.Set("q", q.Text)
	if q.Locale != "" {
		params.Set("kl", strings.ToLower(strings.ReplaceAll(q.Locale, "_", "-")))
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp, body); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse duckduckgo results: %w", err)
	}

	var hits []Hit
	doc.Find("div.result").Each(func(_ int, s *goquery.Selection) {
		if q.Count > 0 && len(hits) >= q.Count {
			return
		}
		if s.HasClass("result--ad") {
			return
		}

		link := s.Find("a.result__a").First()
		href, _ := link.Attr("href")
		target := unwrapRedirect(href)
		if target == "" {
			return
		}

		hits = append(hits, Hit{
			Title:   strings.TrimSpace(link.Text()),
			URL:     target,
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
		})
	})
	return hits, nil
}

// unwrapRedirect resolves "//duckduckgo.com/l/?uddg=<target>" links.
func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return href
	}
	return ""
}
