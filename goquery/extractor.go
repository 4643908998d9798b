// Package goquery provides CSS-selector based HTML extraction for crawled
// pages and articles.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mliang/docspider"
	"golang.org/x/net/html"
)

// Compile-time interface verification.
var _ docspider.Extractor = (*Extractor)(nil)

// defaultContentSelectors locate the main content region, most specific
// first, falling back to the whole body.
var defaultContentSelectors = []string{".article-content", "main", "body"}

// Extractor extracts title, main content, and outbound links from rendered
// HTML.
type Extractor struct {
	contentSelectors []string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithContentSelectors overrides the content root selector priority list.
func WithContentSelectors(selectors ...string) Option {
	return func(e *Extractor) {
		e.contentSelectors = selectors
	}
}

// NewExtractor creates an Extractor with the default selector priority.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{contentSelectors: defaultContentSelectors}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses the HTML and returns the page title, the inner markup of
// the main content region, and same-host links resolved against pageURL.
// A page without a usable title yields ENOTFOUND: that is how a soft 404
// rendered with HTTP 200 is detected.
func (e *Extractor) Extract(rawHTML string, pageURL string) (*docspider.Page, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, docspider.Errorf(docspider.EINVALID, "invalid page URL %q: %v", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, docspider.Errorf(docspider.EINVALID, "failed to parse HTML: %v", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		return nil, docspider.Errorf(docspider.ENOTFOUND, "no usable title at %s", pageURL)
	}

	// Links are collected before content cleanup so navigation anchors
	// survive even when they sit outside the content root.
	links := extractLinks(doc, base)

	var root *goquery.Selection
	for _, sel := range e.contentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			root = s
			break
		}
	}
	if root == nil {
		root = doc.Selection
	}

	stripNodes(root)

	contentHTML, err := root.Html()
	if err != nil {
		return nil, docspider.Errorf(docspider.EINTERNAL, "rendering content markup: %v", err)
	}

	return &docspider.Page{
		Title:       title,
		ContentHTML: contentHTML,
		Links:       links,
	}, nil
}

// extractLinks enumerates anchors, resolves them against base, and keeps
// same-hostname http/https URLs with fragments stripped, deduplicated in
// document order.
func extractLinks(doc *goquery.Document, base *url.URL) []string {
	var links []string
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || href == "" || isNonHTTPLink(href) {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if resolved.Hostname() != base.Hostname() {
			return
		}
		resolved.Fragment = ""

		u := resolved.String()
		if !seen[u] {
			seen[u] = true
			links = append(links, u)
		}
	})

	return links
}

// stripNodes removes script, style, noscript, and comment nodes below the
// selection. The walk uses an explicit stack rather than recursion, so
// deeply nested markup cannot exhaust the call stack.
func stripNodes(sel *goquery.Selection) {
	var doomed []*html.Node

	stack := make([]*html.Node, len(sel.Nodes))
	copy(stack, sel.Nodes)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch {
		case n.Type == html.CommentNode:
			doomed = append(doomed, n)
		case n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript"):
			doomed = append(doomed, n)
		default:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				stack = append(stack, c)
			}
		}
	}

	for _, n := range doomed {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
}

// isNonHTTPLink reports whether a href is a non-HTTP link to skip outright.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
