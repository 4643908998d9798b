package goquery

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mliang/docspider"
)

// Article page selectors. These target the generated class names of the
// community site's article template.
const (
	articleContentSelector = ".style_article__content__richtext__1R31p"
	articleMetaSelector    = ".style_article__content__follow__1TzQY span"
	articleDateSelector    = ".style_article__content__follow__1TzQY span.style_marginright24__1REsu"
	articleAuthorSelector  = ".style_author__name__3Rpg1"
)

var nonDigits = regexp.MustCompile(`\D`)

// ArticleParser parses community article pages fetched by numeric ID.
type ArticleParser struct{}

// NewArticleParser creates an ArticleParser.
func NewArticleParser() *ArticleParser {
	return &ArticleParser{}
}

// Parse extracts an Article from a rendered article page. A page without an
// h1 title is reported as ENOTFOUND: article IDs that do not exist render an
// empty shell with HTTP 200.
func (p *ArticleParser) Parse(rawHTML string, id int, articleURL string) (*docspider.Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, docspider.Errorf(docspider.EINVALID, "failed to parse article %d: %v", id, err)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		return nil, docspider.Errorf(docspider.ENOTFOUND, "article %d has no title", id)
	}

	content, _ := doc.Find(articleContentSelector).First().Html()

	dateStr := strings.TrimSpace(doc.Find(articleDateSelector).Text())

	author := strings.TrimSpace(doc.Find(articleAuthorSelector).Text())
	if author == "" {
		author = "unknown"
	}

	meta := doc.Find(articleMetaSelector)
	views := parseCount(meta.Eq(1).Text())
	likes := parseCount(meta.Eq(2).Find("span").Last().Text())

	return &docspider.Article{
		ID:               id,
		URL:              articleURL,
		Title:            title,
		Content:          content,
		PublishTimestamp: parsePublishTimestamp(dateStr),
		PublishDateStr:   dateStr,
		Author:           author,
		Views:            views,
		Likes:            likes,
	}, nil
}

// parsePublishTimestamp converts a "2006-01-02 15:04:05" date string to a
// Unix timestamp, returning 0 when the string cannot be parsed.
func parsePublishTimestamp(dateStr string) int64 {
	if dateStr == "" {
		return 0
	}
	t, err := time.Parse("2006-01-02 15:04:05", dateStr)
	if err != nil {
		return 0
	}
	return t.Unix()
}

// parseCount extracts the numeric value from a stats label like "1,024 views".
func parseCount(s string) int {
	digits := nonDigits.ReplaceAllString(strings.TrimSpace(s), "")
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
