package http_test

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mliang/docspider"
	dochttp "github.com/mliang/docspider/http"
	"github.com/mliang/docspider/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passthroughParser() *mock.ArticleParser {
	return &mock.ArticleParser{
		ParseFn: func(html string, id int, url string) (*docspider.Article, error) {
			return &docspider.Article{ID: id, URL: url, Title: html}, nil
		},
	}
}

func TestArticleFetcher_FetchArticle(t *testing.T) {
	t.Parallel()

	t.Run("fetches and parses by ID", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			assert.Equal(t, "/community/article/42", r.URL.Path)
			fmt.Fprint(w, "Answer")
		}))
		defer srv.Close()

		f := dochttp.NewArticleFetcher(dochttp.NewClient(), passthroughParser(), srv.URL+"/community/article")
		article, err := f.FetchArticle(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, 42, article.ID)
		assert.Equal(t, "Answer", article.Title)
	})

	t.Run("404 is terminal and not retried", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			calls.Add(1)
			w.WriteHeader(nethttp.StatusNotFound)
		}))
		defer srv.Close()

		f := dochttp.NewArticleFetcher(dochttp.NewClient(), passthroughParser(), srv.URL,
			dochttp.WithArticleRetryBase(time.Millisecond))
		_, err := f.FetchArticle(context.Background(), 1)
		assert.Equal(t, docspider.ENOTFOUND, docspider.ErrorCode(err))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("transient 5xx succeeds after retries", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(nethttp.StatusServiceUnavailable)
				return
			}
			fmt.Fprint(w, "Recovered")
		}))
		defer srv.Close()

		f := dochttp.NewArticleFetcher(dochttp.NewClient(), passthroughParser(), srv.URL,
			dochttp.WithArticleRetries(3), dochttp.WithArticleRetryBase(time.Millisecond))
		article, err := f.FetchArticle(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Recovered", article.Title)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("retry exhaustion surfaces the transient error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			w.WriteHeader(nethttp.StatusInternalServerError)
		}))
		defer srv.Close()

		f := dochttp.NewArticleFetcher(dochttp.NewClient(), passthroughParser(), srv.URL,
			dochttp.WithArticleRetries(2), dochttp.WithArticleRetryBase(time.Millisecond))
		_, err := f.FetchArticle(context.Background(), 1)
		assert.Equal(t, docspider.EUNAVAILABLE, docspider.ErrorCode(err))
	})

	t.Run("parser not-found propagates", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			fmt.Fprint(w, "<html>empty shell</html>")
		}))
		defer srv.Close()

		parser := &mock.ArticleParser{
			ParseFn: func(html string, id int, url string) (*docspider.Article, error) {
				return nil, docspider.Errorf(docspider.ENOTFOUND, "article %d has no title", id)
			},
		}
		f := dochttp.NewArticleFetcher(dochttp.NewClient(), parser, srv.URL)
		_, err := f.FetchArticle(context.Background(), 9)
		assert.Equal(t, docspider.ENOTFOUND, docspider.ErrorCode(err))
	})
}
