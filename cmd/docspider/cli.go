package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/mliang/docspider"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Fetcher   docspider.Fetcher
	Extractor docspider.Extractor
	URLs      docspider.URLStore
	Documents docspider.DocumentService
	Articles  docspider.ArticleService
	Parser    docspider.ArticleParser
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	MeiliHost   string `env:"MEILI_HOST" default:"http://localhost:7700" help:"Meilisearch host URL"`
	MeiliAPIKey string `env:"MEILI_API_KEY" help:"Meilisearch API key"`
	Cookie      string `env:"DOCSPIDER_COOKIE" help:"Cookie header sent with every page fetch"`
	Verbose     bool   `short:"v" help:"Enable debug logging"`

	Crawl    CrawlCmd    `cmd:"" help:"Crawl a documentation site into the search index"`
	Articles ArticlesCmd `cmd:"" help:"Scan and index community articles by ID"`
	Search   SearchCmd   `cmd:"" help:"Query the search index"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL         string        `arg:"" help:"Seed URL to crawl from"`
	Blacklist   []string      `short:"b" name:"blacklist" default:"/workspace,/community/article,/community/person" help:"Path prefixes excluded from crawling (repeatable)"`
	Concurrency int           `short:"c" default:"5" help:"Concurrent fetch limit"`
	BatchSize   int           `default:"50" help:"Documents buffered per index write"`
	RPS         float64       `default:"0" help:"Per-domain request rate limit, 0 disables"`
	Timeout     time.Duration `default:"60s" help:"Per-page fetch timeout"`
}

// ArticlesCmd groups the article scan subcommands.
type ArticlesCmd struct {
	New    NewArticlesCmd    `cmd:"" help:"Discover and index articles published since the last scan"`
	Update UpdateArticlesCmd `cmd:"" help:"Re-fetch every indexed article"`
}

// NewArticlesCmd is the "articles new" subcommand.
type NewArticlesCmd struct {
	URL         string  `arg:"" help:"Article base URL, the numeric ID is appended as a path segment"`
	Concurrency int     `short:"c" default:"20" help:"Concurrent fetch limit"`
	MissLimit   int     `default:"50" help:"Consecutive missing IDs that end the scan"`
	RPS         float64 `default:"0" help:"Per-domain request rate limit, 0 disables"`
}

// UpdateArticlesCmd is the "articles update" subcommand.
type UpdateArticlesCmd struct {
	URL         string  `arg:"" help:"Article base URL, the numeric ID is appended as a path segment"`
	Concurrency int     `short:"c" default:"20" help:"Concurrent fetch limit"`
	Limit       int     `default:"100000" help:"Maximum number of articles to re-fetch"`
	RPS         float64 `default:"0" help:"Per-domain request rate limit, 0 disables"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query    string   `arg:"" optional:"" help:"Full-text query"`
	Articles bool     `help:"Search articles instead of documentation pages"`
	Limit    int64    `default:"10" help:"Maximum number of hits"`
	Offset   int64    `default:"0" help:"Number of hits to skip"`
	Filter   string   `help:"Filter expression, e.g. 'author = alice'"`
	Sort     []string `help:"Sort expressions, e.g. 'publishTimestamp:desc' (repeatable)"`
}
