package social

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProvider(t *testing.T, handler http.HandlerFunc) *HTTPProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("MAGNATE_SOCIAL_URL", srv.URL)
	t.Setenv("MAGNATE_SOCIAL_KEY", "test-key")
	return NewHTTPProvider("player-1")
}

func TestHTTPProviderUnavailableWithoutConfig(t *testing.T) {
	t.Setenv("MAGNATE_SOCIAL_URL", "")
	t.Setenv("MAGNATE_SOCIAL_KEY", "")
	p := NewHTTPProvider("player-1")

	assert.False(t, p.IsAvailable())
	assert.Error(t, p.SubmitScore(context.Background(), 100))
}

func TestHTTPProviderSubmitScore(t *testing.T) {
	var gotPath, gotKey string
	var gotBody scoreRequest
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, p.SubmitScore(context.Background(), 12345))
	assert.Equal(t, "/v1/leaderboard/submit", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, scoreRequest{PlayerID: "player-1", Score: 12345}, gotBody)

	stats := p.GetUsageStats()
	assert.Equal(t, int64(1), stats.TotalRequests)
	assert.Equal(t, int64(0), stats.FailedRequests)
}

func TestHTTPProviderContributeHitsGuildEndpoint(t *testing.T) {
	var gotPath string
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, p.Contribute(context.Background(), 10))
	assert.Equal(t, "/v1/guild/contribute", gotPath)
}

func TestHTTPProviderCountsFailures(t *testing.T) {
	p := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := p.SubmitScore(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")

	stats := p.GetUsageStats()
	assert.Equal(t, int64(1), stats.TotalRequests)
	assert.Equal(t, int64(1), stats.FailedRequests)
}

func TestOfflineProviderAlwaysSucceeds(t *testing.T) {
	p := NewOfflineProvider()
	ctx := context.Background()

	assert.True(t, p.IsAvailable())
	assert.NoError(t, p.SubmitScore(ctx, 1))
	assert.NoError(t, p.Contribute(ctx, 1))
	assert.NoError(t, p.CheckAndFinalize(ctx))
}
