package hosting

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacedTransportDisabled(t *testing.T) {
	assert.Same(t, http.DefaultTransport, newPacedTransport(nil, 0, 1))
}

func TestPacedTransportSpacesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	client := &http.Client{Transport: newPacedTransport(srv.Client().Transport, 10, 1)}
	start := time.Now()
	for i := 0; i < 3; i++ {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestPacedTransportHonorsCancellation(t *testing.T) {
	tr := newPacedTransport(http.DefaultTransport, 0.001, 1).(*pacedTransport)
	require.True(t, tr.limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://example.invalid", nil)
	require.NoError(t, err)
	_, err = tr.RoundTrip(req)
	assert.Error(t, err)
}
