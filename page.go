package docspider

// Page holds the result of extracting a fetched documentation page.
type Page struct {
	// Title is the page title. Extraction fails with ENOTFOUND when no
	// usable title is found; a soft 404 rendered with HTTP 200 surfaces
	// this way.
	Title string

	// ContentHTML is the inner markup of the main content region with
	// script, style, and comment nodes removed.
	ContentHTML string

	// Links are the same-host http/https URLs discovered on the page,
	// resolved against the page URL, fragment-stripped, and deduplicated
	// in document order.
	Links []string
}

// Extractor turns raw rendered HTML into a Page.
type Extractor interface {
	// Extract parses the HTML, locating the title and main content and
	// resolving outbound links against pageURL as base.
	Extract(html string, pageURL string) (*Page, error)
}
