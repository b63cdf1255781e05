package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ampersand-agent/internal/pkg/logger"
	"ampersand-agent/pkg/rag/result"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(endpoint string) *Gateway {
	return NewGateway(Config{APIKey: "key", EngineID: "cx", Endpoint: endpoint}, logger.NewNopLogger())
}

func TestSearchFiltersAndPreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "key", q.Get("key"))
		assert.Equal(t, "cx", q.Get("cx"))
		assert.Equal(t, "capital of france", q.Get("q"))
		assert.Equal(t, "10", q.Get("num"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"link":"https://www.youtube.com/watch?v=1","title":"Video","snippet":"s"},
			{"link":"https://en.wikipedia.org/wiki/Paris","title":"Paris","snippet":"Capital of France"},
			{"link":"https://example.org/no-snippet","title":"Missing"},
			{"link":"https://www.nasa.gov/paris","title":"NASA","snippet":"Paris from orbit"}
		]}`))
	}))
	defer srv.Close()

	res := newTestGateway(srv.URL).Search(context.Background(), "capital of france", 0)

	require.False(t, res.IsDegraded())
	require.Len(t, res.Value, 2)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Paris", res.Value[0].Link)
	assert.Equal(t, "https://www.nasa.gov/paris", res.Value[1].Link)
}

func TestSearchDegrades(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		reason  result.Reason
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"quota"}`))
			},
			reason: result.ReasonStatus,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"items":[`))
			},
			reason: result.ReasonDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			res := newTestGateway(srv.URL).Search(context.Background(), "anything", 5)

			require.True(t, res.IsDegraded())
			assert.Equal(t, tt.reason, res.Degraded.Reason)
			assert.NotNil(t, res.Value)
			assert.Empty(t, res.Value)
		})
	}
}

func TestSearchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	res := newTestGateway(endpoint).Search(context.Background(), "anything", 5)

	require.True(t, res.IsDegraded())
	assert.Equal(t, result.ReasonTransport, res.Degraded.Reason)
}

func TestSearchNotConfigured(t *testing.T) {
	g := NewGateway(Config{}, logger.NewNopLogger())

	res := g.Search(context.Background(), "anything", 5)

	require.True(t, res.IsDegraded())
	assert.Equal(t, result.ReasonNotConfigured, res.Degraded.Reason)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 10, clampLimit(0))
	assert.Equal(t, 10, clampLimit(-3))
	assert.Equal(t, 3, clampLimit(3))
	assert.Equal(t, 10, clampLimit(25))
}

func TestDenied(t *testing.T) {
	assert.True(t, Denied("https://WWW.Reddit.com/r/golang"))
	assert.True(t, Denied("https://feeds.example.org/rss.xml"))
	assert.False(t, Denied("https://www.reuters.com/world"))
}
