package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// HTTPRenderer fetches server-rendered registry pages.
type HTTPRenderer struct {
	client    *http.Client
	userAgent string
}

func NewHTTPRenderer() *HTTPRenderer {
	return &HTTPRenderer{
		client:    &http.Client{},
		userAgent: defaultUserAgent,
	}
}

func (r *HTTPRenderer) UseDefaultClient() {
	r.client = http.DefaultClient
}

func (r *HTTPRenderer) Navigate(ctx context.Context, pageURL string, wait WaitCondition, timeout time.Duration) (*Page, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept-Language", "lv,en;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrNavigationTimeout, pageURL)
		}
		return nil, fmt.Errorf("get %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("get %s: status %d: %s", pageURL, resp.StatusCode, string(body))
	}

	page, err := NewPage(pageURL, resp.Body)
	if err != nil {
		return nil, err
	}
	if !page.Has(wait) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, pageURL)
	}
	return page, nil
}
