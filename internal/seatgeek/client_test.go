package seatgeek

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(WithBaseURL(server.URL), WithCredentials("id123", "secret456"))
}

func TestNewClient(t *testing.T) {
	t.Run("creates client with defaults", func(t *testing.T) {
		client := NewClient()
		assert.Equal(t, DefaultBaseURL, client.Config().BaseURL)
		assert.Equal(t, 30*time.Second, client.Config().Timeout)
	})

	t.Run("creates client with custom timeout", func(t *testing.T) {
		client := NewClient(WithTimeout(5 * time.Second))
		assert.Equal(t, 5*time.Second, client.Config().Timeout)
	})

	t.Run("custom http client inherits timeout", func(t *testing.T) {
		hc := &http.Client{}
		NewClient(WithTimeout(7*time.Second), WithHTTPClient(hc))
		assert.Equal(t, 7*time.Second, hc.Timeout)
	})
}

func TestClient_URL(t *testing.T) {
	client := NewClient(WithBaseURL("https://api.example.com/2/"), WithCredentials("id123", "secret456"))

	t.Run("credentials only", func(t *testing.T) {
		assert.Equal(t,
			"https://api.example.com/2/events?client_id=id123&client_secret=secret456",
			client.URL("/events", nil))
	})

	t.Run("options follow credentials in key order", func(t *testing.T) {
		got := client.URL("events", Options{"sort": {"score.desc"}, "page": {"2"}})
		assert.Equal(t,
			"https://api.example.com/2/events?client_id=id123&client_secret=secret456&page=2&sort=score.desc",
			got)
	})

	t.Run("multi-valued options repeat the key", func(t *testing.T) {
		got := client.URL("/events", Options{"id": {"1", "2"}})
		assert.Equal(t,
			"https://api.example.com/2/events?client_id=id123&client_secret=secret456&id=1&id=2",
			got)
	})

	t.Run("values are escaped", func(t *testing.T) {
		got := client.URL("/venues", Options{"q": {"madison square"}})
		assert.Contains(t, got, "q=madison+square")
	})
}

func TestClient_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes JSON and sends credentials", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/events/7", r.URL.Path)
			assert.Equal(t, "id123", r.URL.Query().Get("client_id"))
			assert.Equal(t, "secret456", r.URL.Query().Get("client_secret"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			_, err := uuid.Parse(r.Header.Get(RequestIDHeader))
			assert.NoError(t, err)

			json.NewEncoder(w).Encode(map[string]string{"name": "John"})
		})

		var out map[string]string
		require.NoError(t, client.Get(ctx, "events/7", nil, &out))
		assert.Equal(t, "John", out["name"])
	})

	t.Run("non-2xx becomes an upstream error with status text", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		err := client.Get(ctx, "/events/404", nil, nil)
		require.Error(t, err)
		assert.Equal(t, "Not Found", err.Error())
		assert.ErrorIs(t, err, ErrUpstream)

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, http.StatusNotFound, upstream.Status)
	})

	t.Run("malformed body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		})

		var out map[string]any
		err := client.Get(ctx, "/events", nil, &out)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("each request gets its own id", func(t *testing.T) {
		var ids []string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			ids = append(ids, r.Header.Get(RequestIDHeader))
			w.Write([]byte("{}"))
		})

		require.NoError(t, client.Get(ctx, "/a", nil, nil))
		require.NoError(t, client.Get(ctx, "/b", nil, nil))
		require.Len(t, ids, 2)
		assert.NotEqual(t, ids[0], ids[1])
	})

	t.Run("rate limiter honours context", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{}"))
		})
		WithRateLimit(0.001, 1)(client)

		require.NoError(t, client.Get(ctx, "/a", nil, nil))

		cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		assert.Error(t, client.Get(cctx, "/b", nil, nil))
	})
}
