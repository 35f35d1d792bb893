package offline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectivityMonitorFiresOnRestoredConnectivity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	monitor := NewConnectivityMonitor("http://127.0.0.1:1/v1/health", time.Hour, setupLogger(t))

	fired := 0
	require.NoError(t, monitor.Register(SyncTag, func() { fired++ }))

	// nothing listens on port 1; the first probe marks the link down
	monitor.probe(context.Background())
	assert.Equal(t, 0, fired)

	monitor.probeURL = server.URL
	monitor.probe(context.Background())
	assert.Equal(t, 1, fired)
}

func TestConnectivityMonitorDoesNotFireWhileOnline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	monitor := NewConnectivityMonitor(server.URL, time.Hour, setupLogger(t))

	fired := 0
	require.NoError(t, monitor.Register(SyncTag, func() { fired++ }))

	// the monitor starts online; repeated successful probes are not transitions
	monitor.probe(context.Background())
	monitor.probe(context.Background())
	assert.Equal(t, 0, fired)
}

func TestConnectivityMonitorReplacesCallbackForSameTag(t *testing.T) {
	monitor := NewConnectivityMonitor("http://127.0.0.1:1/v1/health", time.Hour, setupLogger(t))

	firstFired := false
	secondFired := false
	require.NoError(t, monitor.Register(SyncTag, func() { firstFired = true }))
	require.NoError(t, monitor.Register(SyncTag, func() { secondFired = true }))

	monitor.probe(context.Background())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	monitor.probeURL = server.URL
	monitor.probe(context.Background())

	assert.False(t, firstFired)
	assert.True(t, secondFired)
}
