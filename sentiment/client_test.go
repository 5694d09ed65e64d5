package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func scoreServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientScore(t *testing.T) {
	srv := scoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "secret", r.Header.Get("Ocp-Apim-Subscription-Key"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req scoreRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Documents, 1)
		require.Equal(t, "1", req.Documents[0].ID)
		require.Equal(t, "en", req.Documents[0].Language)
		require.Equal(t, "great", req.Documents[0].Text)
		fmt.Fprint(w, `{"documents": [{"id": "1", "score": 0.8}]}`)
	})
	c := NewClient(srv.URL, OptKey("secret"))
	score, ok := c.Score(context.Background(), "great").Get()
	require.True(t, ok)
	require.Equal(t, 0.8, score)
}

func TestClientDegradesToNone(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "server error", body: "boom", code: http.StatusInternalServerError},
		{name: "malformed json", body: `{"documents": `, code: http.StatusOK},
		{name: "no documents", body: `{"documents": []}`, code: http.StatusOK},
		{name: "missing score", body: `{"documents": [{"id": "1"}]}`, code: http.StatusOK},
	}
	for _, tst := range tests {
		t.Run(tst.name, func(t *testing.T) {
			var calls int32
			srv := scoreServer(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tst.code)
				fmt.Fprint(w, tst.body)
			})
			c := NewClient(srv.URL, OptRetries(1))
			require.True(t, c.Score(context.Background(), "x").IsAbsent())
			// one attempt plus one retry
			require.Equal(t, int32(2), atomic.LoadInt32(&calls))
		})
	}
}

func TestClientRetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := scoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"documents": [{"id": "1", "score": 0.25}]}`)
	})
	c := NewClient(srv.URL, OptRetries(2))
	score, ok := c.Score(context.Background(), "x").Get()
	require.True(t, ok)
	require.Equal(t, 0.25, score)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientTimeout(t *testing.T) {
	srv := scoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
	})
	c := NewClient(srv.URL, OptTimeout(20*time.Millisecond), OptRetries(0))
	start := time.Now()
	require.True(t, c.Score(context.Background(), "x").IsAbsent())
	require.Less(t, time.Since(start), time.Second)
}

func TestClientStopsRetryingOnCancel(t *testing.T) {
	srv := scoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	ctx, cancel := context.WithCancel(context.Background())
	var attempts int32
	c := NewClient(srv.URL, OptRetries(10), OptHTTPClient(&http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			atomic.AddInt32(&attempts, 1)
			cancel()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}))
	require.True(t, c.Score(ctx, "x").IsAbsent())
	// the first failed attempt sees the canceled context and gives up
	require.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestClientLanguage(t *testing.T) {
	srv := scoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req scoreRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "de", req.Documents[0].Language)
		fmt.Fprint(w, `{"documents": [{"id": "1", "score": 0.5}]}`)
	})
	c := NewClient(srv.URL, OptLanguage("de"))
	require.True(t, c.Score(context.Background(), "prima").IsPresent())
}
