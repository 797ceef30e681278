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

const bingBaseURL = "https://api.bing.microsoft.com/v7.0/search"

// BingEngine queries the Bing Web Search v7 API.
type BingEngine struct {
	key     string
	baseURL string
	client  *http.Client
}

type bingResponse struct {
	WebPages struct {
		Value []struct {
			Name    string `json:"name"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"value"`
	} `json:"webPages"`
}

func NewBingEngine(key string) *BingEngine {
	return &BingEngine{key: key, baseURL: bingBaseURL, client: &http.Client{}}
}

func (b *BingEngine) UseDefaultClient() {
	b.client = http.DefaultClient
}

func (b *BingEngine) Name() string { return "bing" }

func (b *BingEngine) Query(ctx context.Context, q Query) ([]Hit, error) {
	if b.key == "" {
		return nil, ErrMissingKey
	}

	u, _ := url.Parse(b.baseURL)
	params := u.Query()
	params.Set("q", q.Text)
	params.Set("count", strconv.Itoa(min(max(q.Count, 1), 50)))
	params.Set("responseFilter", "Webpages")
	if strings.ContainsAny(q.Locale, "-_") {
		params.Set("mkt", strings.ReplaceAll(q.Locale, "_", "-"))
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", b.key)

	resp, err := b.client.Do(req)
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

	var out bingResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode bing response: %w", err)
	}

	hits := make([]Hit, 0, len(out.WebPages.Value))
	for _, v := range out.WebPages.Value {
		hits = append(hits, Hit{Title: v.Name, URL: v.URL, Snippet: v.Snippet})
	}
	return hits, nil
}
