package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photogrid/internal/domain"
	"photogrid/internal/metrics"
	"photogrid/internal/query"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&Config{
		Endpoint: srv.URL + "/api/",
		APIKey:   "secret",
		Timeout:  2 * time.Second,
	})
}

func encode(t *testing.T, text string) domain.SearchRequest {
	t.Helper()
	req, err := query.NewEncoder(200, true, "").Encode(text)
	require.NoError(t, err)
	return req
}

func TestSearch_DecodesHits(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/api/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"total": 2, "totalHits": 2,
			"hits": [
				{"id": 1, "webformatURL": "https://cdn/1.jpg", "previewURL": "https://cdn/1_p.jpg",
				 "pageURL": "https://pixabay/1", "tags": "red, car", "user": "ann", "likes": 7, "views": 99},
				{"id": 2, "webformatURL": "https://cdn/2.jpg"}
			]
		}`))
	})

	photos, err := client.Search(context.Background(), encode(t, "red car"))
	require.NoError(t, err)

	assert.Equal(t, "key=secret&per_page=200&safesearch=true&q=red+car", gotQuery)
	require.Len(t, photos, 2)
	assert.Equal(t, domain.Photo{
		ID:         1,
		ImageURL:   "https://cdn/1.jpg",
		PreviewURL: "https://cdn/1_p.jpg",
		PageURL:    "https://pixabay/1",
		Tags:       "red, car",
		User:       "ann",
		Likes:      7,
	}, photos[0])
	assert.Equal(t, 2, photos[1].ID)
	assert.Equal(t, "https://cdn/2.jpg", photos[1].ImageURL)
}

func TestSearch_EmptyHitsIsSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"total":0,"totalHits":0,"hits":[]}`))
	})

	photos, err := client.Search(context.Background(), encode(t, "zzzz"))
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestSearch_NonSuccessStatusIsNetworkError(t *testing.T) {
	before := testutil.ToFloat64(metrics.GatewayRequestsTotal.WithLabelValues("network_error"))
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "[ERROR 429] Too many requests", http.StatusTooManyRequests)
	})

	_, err := client.Search(context.Background(), encode(t, "cats"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.GatewayRequestsTotal.WithLabelValues("network_error")))
}

func TestSearch_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"hits": [`},
		{"hits missing", `{"total": 0}`},
		{"hits null", `{"hits": null}`},
		{"hits not array", `{"hits": {"id": 1}}`},
		{"hit without id", `{"hits": [{"webformatURL": "https://cdn/1.jpg"}]}`},
		{"hit without image", `{"hits": [{"id": 1}]}`},
		{"wrong field type", `{"hits": [{"id": "one", "webformatURL": "x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Search(context.Background(), encode(t, "cats"))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrDecode)
		})
	}
}

func TestSearch_TransportErrorDoesNotLeakKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	client := NewClient(&Config{Endpoint: endpoint, APIKey: "secret"})
	_, err := client.Search(context.Background(), encode(t, "cats"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.NotContains(t, err.Error(), "secret")
}

func TestSearch_CancelledContext(t *testing.T) {
	started := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := client.Search(ctx, encode(t, "cats"))
		errCh <- err
	}()

	<-started
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, domain.ErrNetwork)
	case <-time.After(5 * time.Second):
		t.Fatal("search did not return after cancel")
	}
}

func TestSearch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewClient(&Config{Endpoint: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond})
	_, err := client.Search(context.Background(), encode(t, "cats"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestSearch_RateLimiterWaitHonoursContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hits":[]}`))
	})
	client.limiter = nil
	_, err := client.Search(context.Background(), encode(t, "a"))
	require.NoError(t, err)

	limited := NewClient(&Config{Endpoint: "http://127.0.0.1:1", APIKey: "k", RatePerMinute: 1})
	// first token is available immediately, the second is a minute away
	require.True(t, limited.limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limited.Search(ctx, encode(t, "b"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Contains(t, err.Error(), "rate limit")
}
