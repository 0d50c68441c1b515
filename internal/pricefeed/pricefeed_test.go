package pricefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bitcoin-watcher-go/internal/models"
	"bitcoin-watcher-go/internal/store"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupFeed(t *testing.T, handler http.Handler) (*Feed, *store.PriceStore, *httptest.Server) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.PricePoint{}))

	server := httptest.NewServer(handler)
	prices := store.NewPriceStore(db)

	feed := New(prices, nil, "bitcoin", "usd", time.Minute, zap.NewNop())
	feed.client.SetBaseURL(server.URL)

	return feed, prices, server
}

func TestFetchPrice(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/simple/price", r.URL.Path)
			assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
			assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"bitcoin": {"usd": 61234.5}}`))
		})

		feed, _, server := setupFeed(t, handler)
		defer server.Close()

		price, err := feed.FetchPrice(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 61234.5, price)
	})

	t.Run("MissingAsset", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		})

		feed, _, server := setupFeed(t, handler)
		defer server.Close()

		_, err := feed.FetchPrice(context.Background())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "price missing")
	})

	t.Run("UpstreamError", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		feed, _, server := setupFeed(t, handler)
		defer server.Close()

		_, err := feed.FetchPrice(context.Background())

		assert.Error(t, err)
	})
}

func TestPoll(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bitcoin": {"usd": 61000}}`))
	})

	feed, prices, server := setupFeed(t, handler)
	defer server.Close()

	assert.NoError(t, feed.Poll(context.Background()))

	latest, err := prices.Latest()
	assert.NoError(t, err)
	if assert.NotNil(t, latest) {
		assert.Equal(t, 61000.0, latest.Price)
	}
}
