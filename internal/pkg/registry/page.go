package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"zvaintel/internal/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	ErrTableNotFound     = errors.New("registry table not found")
	ErrNavigationTimeout = errors.New("navigation timed out")
)

// DefaultSelectors are tried in order until one yields data rows.
var DefaultSelectors = []string{
	"table#permissions tbody tr",
	"table.table tbody tr",
	"div.table-responsive table tr",
	"table tr",
}

// WaitCondition is a CSS selector that must be present before a page counts
// as loaded.
type WaitCondition string

// Renderer loads one registry page.
type Renderer interface {
	Navigate(ctx context.Context, pageURL string, wait WaitCondition, timeout time.Duration) (*Page, error)
}

// Page is a loaded registry page.
type Page struct {
	URL    string
	Number int
	doc    *goquery.Document
}

func NewPage(pageURL string, r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return &Page{URL: pageURL, doc: doc}, nil
}

// Has reports whether the page contains the wait condition.
func (p *Page) Has(wait WaitCondition) bool {
	return wait == "" || p.doc.Find(string(wait)).Length() > 0
}

// Rows returns the data rows of the first selector that matches any. Rows
// made only of <th> cells are headers and skipped.
func (p *Page) Rows(selectors []string) ([]models.RawTableRow, error) {
	for _, sel := range selectors {
		var rows []models.RawTableRow

		p.doc.Find(sel).Each(func(_ int, tr *goquery.Selection) {
			tds := tr.ChildrenFiltered("td")
			if tds.Length() == 0 {
				return
			}

			cells := make([]string, 0, tds.Length())
			tds.Each(func(_ int, td *goquery.Selection) {
				cells = append(cells, cellText(td))
			})

			rows = append(rows, models.RawTableRow{
				Index: len(rows),
				Page:  p.Number,
				Cells: cells,
			})
		})

		if len(rows) > 0 {
			return rows, nil
		}
	}
	return nil, ErrTableNotFound
}

// PageCount is the highest page number linked from the pagination, 0 when
// the page has no pagination.
func (p *Page) PageCount() int {
	highest := 0
	p.doc.Find(".pagination a, a.page-link, a[href*='page=']").Each(func(_ int, a *goquery.Selection) {
		if n, err := strconv.Atoi(strings.TrimSpace(a.Text())); err == nil && n > highest {
			highest = n
		}

		href, ok := a.Attr("href")
		if !ok {
			return
		}
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		if n, err := strconv.Atoi(u.Query().Get("page")); err == nil && n > highest {
			highest = n
		}
	})
	return highest
}

var blockTags = map[string]bool{"p": true, "div": true, "li": true, "br": true}

// cellText keeps <br> and block boundaries as newlines so multi-line cells
// survive.
func cellText(s *goquery.Selection) string {
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if blockTags[n.Data] {
				b.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] && n.Data != "br" {
			b.WriteString("\n")
		}
	}

	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	return strings.TrimSpace(b.String())
}
