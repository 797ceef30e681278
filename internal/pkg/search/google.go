package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const googleBaseURL = "https://www.googleapis.com/customsearch/v1"

// GoogleEngine queries the Custom Search JSON API.
type GoogleEngine struct {
	key     string
	cx      string
	baseURL string
	client  *http.Client
}

type googleResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

func NewGoogleEngine(key, cx string) *GoogleEngine {
	return &GoogleEngine{key: key, cx: cx, baseURL: googleBaseURL, client: &http.Client{}}
}

func (g *GoogleEngine) UseDefaultClient() {
	g.client = http.DefaultClient
}

func (g *GoogleEngine) Name() string { return "google" }

func (g *GoogleEngine) Query(ctx context.Context, q Query) ([]Hit, error) {
	if g.key == "" || g.cx == "" {
		return nil, ErrMissingKey
	}

	u, _ := url.Parse(g.baseURL)
	params := u.Query()
	params.Set("key", g.key)
	params.Set("cx", g.cx)
	params.Set("q", q.Text)
	// the API caps num at 10
	params.Set("num", strconv.Itoa(min(max(q.Count, 1), 10)))
	if country := localeCountry(q.Locale); country != "" {
		params.Set("gl", country)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(req)
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

	var out googleResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode google response: %w", err)
	}

	hits := make([]Hit, 0, len(out.Items))
	for _, it := range out.Items {
		hits = append(hits, Hit{Title: it.Title, URL: it.Link, Snippet: it.Snippet})
	}
	return hits, nil
}

// localeCountry turns "lv-LV" or "lv" into "lv".
func localeCountry(locale string) string {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, "-_"); i >= 0 {
		locale = locale[i+1:]
	}
	return strings.ToLower(locale)
}
