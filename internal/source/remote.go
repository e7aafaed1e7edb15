package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// RemoteSource collects the images referenced by an HTML page.
type RemoteSource struct {
	PageURL string
	Client  *http.Client
}

// List implements Source.
func (r RemoteSource) List(ctx context.Context, limit int) ([]Item, error) {
	base, err := url.Parse(r.PageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.PageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	items, err := ParseHTMLImages(resp.Body, base)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// ParseHTMLImages returns the <img> sources of a document in order, resolved
// against base and without duplicates. The alt text is used as the name.
func ParseHTMLImages(r io.Reader, base *url.URL) ([]Item, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var items []Item
	seen := make(map[string]bool)

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "img") {
			src := strings.TrimSpace(getAttr(n, "src"))
			if src == "" || strings.HasPrefix(src, "data:") {
				return
			}

			ref, err := url.Parse(src)
			if err != nil {
				return
			}
			abs := ref.String()
			if base != nil {
				abs = base.ResolveReference(ref).String()
			}
			if seen[abs] {
				return
			}
			seen[abs] = true

			name := strings.TrimSpace(getAttr(n, "alt"))
			if name == "" {
				name = path.Base(ref.Path)
			}
			items = append(items, Item{URL: abs, Name: name})
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return items, nil
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}
