package http_test

import (
	"context"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mliang/docspider"
	dochttp "github.com/mliang/docspider/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Get(t *testing.T) {
	t.Parallel()

	t.Run("returns body and sends user agent", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			gotUA = r.Header.Get("User-Agent")
			_, _ = w.Write([]byte("<html>hello</html>"))
		}))
		defer srv.Close()

		body, err := dochttp.NewClient().Get(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html>hello</html>", body)
		assert.Equal(t, dochttp.DefaultUserAgent, gotUA)
	})

	t.Run("404 is not found", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			w.WriteHeader(nethttp.StatusNotFound)
		}))
		defer srv.Close()

		_, err := dochttp.NewClient().Get(context.Background(), srv.URL)
		assert.Equal(t, docspider.ENOTFOUND, docspider.ErrorCode(err))
	})

	t.Run("500 is unavailable, not not-found", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			w.WriteHeader(nethttp.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := dochttp.NewClient().Get(context.Background(), srv.URL)
		assert.Equal(t, docspider.EUNAVAILABLE, docspider.ErrorCode(err))
	})

	t.Run("other client errors are invalid", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			w.WriteHeader(nethttp.StatusForbidden)
		}))
		defer srv.Close()

		_, err := dochttp.NewClient().Get(context.Background(), srv.URL)
		assert.Equal(t, docspider.EINVALID, docspider.ErrorCode(err))
	})

	t.Run("connection failure is unavailable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {}))
		srv.Close() // refuse connections

		_, err := dochttp.NewClient(dochttp.WithTimeout(time.Second)).Get(context.Background(), srv.URL)
		assert.Equal(t, docspider.EUNAVAILABLE, docspider.ErrorCode(err))
	})
}
