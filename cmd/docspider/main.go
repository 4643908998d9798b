// Command docspider crawls a documentation site with a headless browser and
// indexes the pages, plus the ID-enumerated community articles, into
// Meilisearch.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mliang/docspider"
	"github.com/mliang/docspider/goquery"
	dochttp "github.com/mliang/docspider/http"
	"github.com/mliang/docspider/meili"
	"github.com/mliang/docspider/rod"
	docslog "github.com/mliang/docspider/slog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Closers collected while wiring, released after the command runs.
	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close releases resources acquired while wiring commands.
func (m *Main) Close() error {
	var firstErr error
	for _, close := range m.closers {
		if err := close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docspider"),
		kong.Description("Documentation site crawler and article indexer."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docspider --help' to see available commands")
	}
	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	client := meili.NewClient(cli.MeiliHost, cli.MeiliAPIKey)
	deps.Documents = meili.NewDocumentService(client, meili.DefaultDocumentIndex,
		meili.WithDocumentLogger(logger))
	deps.Articles = meili.NewArticleService(client, meili.DefaultArticleIndex,
		meili.WithArticleLogger(logger))

	cmd := kongCtx.Command()

	if strings.HasPrefix(cmd, "crawl") {
		urlStore := meili.NewURLStore(client, meili.DefaultURLIndex)
		if err := urlStore.Init(ctx); err != nil {
			fmt.Fprintf(stderr, "Hint: check MEILI_HOST and MEILI_API_KEY\n")
			return fmt.Errorf("failed to prepare URL index at %q: %w", cli.MeiliHost, err)
		}
		deps.URLs = docslog.NewLoggingURLStore(urlStore, logger)

		opts := []rod.Option{rod.WithFetchTimeout(cli.Crawl.Timeout)}
		if cli.Cookie != "" {
			opts = append(opts, rod.WithCookie(cli.Cookie))
		}
		fetcher, err := rod.NewFetcher(opts...)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		m.closers = append(m.closers, fetcher.Close)
		deps.Fetcher = docslog.NewLoggingFetcher(fetcher, logger)
		deps.Extractor = goquery.NewExtractor()
	}

	if strings.HasPrefix(cmd, "articles") {
		deps.Parser = goquery.NewArticleParser()
	}
	defer m.Close()

	return kongCtx.Run(deps)
}

// newArticleFetcher wires the plain-HTTP article fetcher shared by the
// article subcommands.
func newArticleFetcher(baseURL string, parser docspider.ArticleParser) *dochttp.ArticleFetcher {
	return dochttp.NewArticleFetcher(dochttp.NewClient(), parser, strings.TrimRight(baseURL, "/"))
}
