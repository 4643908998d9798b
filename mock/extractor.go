package mock

import "github.com/mliang/docspider"

var _ docspider.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of docspider.Extractor.
type Extractor struct {
	ExtractFn func(html string, pageURL string) (*docspider.Page, error)
}

func (e *Extractor) Extract(html string, pageURL string) (*docspider.Page, error) {
	return e.ExtractFn(html, pageURL)
}

var _ docspider.ArticleParser = (*ArticleParser)(nil)

// ArticleParser is a mock implementation of docspider.ArticleParser.
type ArticleParser struct {
	ParseFn func(html string, id int, url string) (*docspider.Article, error)
}

func (p *ArticleParser) Parse(html string, id int, url string) (*docspider.Article, error) {
	return p.ParseFn(html, id, url)
}
