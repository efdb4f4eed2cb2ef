package httpadapter_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/skcc-skimmer-feed/internal/adapter/httpadapter"
	"github.com/couchcryptid/skcc-skimmer-feed/internal/domain"
	"github.com/couchcryptid/skcc-skimmer-feed/internal/observability"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type fixture struct {
	srv     *httpadapter.Server
	hub     *httpadapter.SnapshotHub
	metrics *observability.Metrics
}

func newFixture(readyErr error) fixture {
	hub := httpadapter.NewSnapshotHub(slog.Default())
	metrics := observability.NewMetricsForTesting()
	srv := httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, hub, slog.Default(), metrics)
	return fixture{srv: srv, hub: hub, metrics: metrics}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func sampleSnapshot() domain.Snapshot {
	return domain.Snapshot{
		RBN: []domain.SpotView{{
			Spot:       domain.Spot{Source: domain.SourceRBN, Call: "K4AHO", Frequency: "14059.9", Time: domain.ZuluTime{Hour: 16, Minute: 12}},
			AgeMinutes: 3,
		}},
		Feedback:  "Finished lookup",
		UpdatedAt: time.Date(2024, 4, 26, 16, 15, 0, 0, time.UTC),
	}
}

func TestHealthzReturns200(t *testing.T) {
	f := newFixture(nil)
	assert.Equal(t, http.StatusOK, get(t, f.srv, "/healthz").Code)
}

func TestReadyz(t *testing.T) {
	assert.Equal(t, http.StatusOK, get(t, newFixture(nil).srv, "/readyz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, newFixture(fmt.Errorf("not ready yet")).srv, "/readyz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newFixture(nil).srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestSpotsBeforeFirstRender(t *testing.T) {
	rec := get(t, newFixture(nil).srv, "/spots")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []any{}, body["rbn"])
	assert.Equal(t, []any{}, body["sked"])
}

func TestSpotsReturnsLatestSnapshot(t *testing.T) {
	f := newFixture(nil)
	f.hub.Render(sampleSnapshot())

	rec := get(t, f.srv, "/spots")

	require.Equal(t, http.StatusOK, rec.Code)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.RBN, 1)
	assert.Equal(t, "K4AHO", snap.RBN[0].Call)
	assert.Equal(t, 3, snap.RBN[0].AgeMinutes)
	assert.Equal(t, domain.SourceRBN, snap.RBN[0].Source)
	assert.Empty(t, snap.Sked)
	assert.Equal(t, "Finished lookup", snap.Feedback)
	assert.Contains(t, rec.Body.String(), `"sked":[]`)
}

func TestSpotsRejectsPost(t *testing.T) {
	f := newFixture(nil)
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/spots", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStreamPushesSnapshots(t *testing.T) {
	f := newFixture(nil)
	ts := httptest.NewServer(f.srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/spots/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	readSnap := func() domain.Snapshot {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var snap domain.Snapshot
		require.NoError(t, json.Unmarshal(data, &snap))
		return snap
	}

	// Current state first.
	assert.Empty(t, readSnap().RBN)
	require.Eventually(t, func() bool { return f.hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.StreamClients), 0)

	f.hub.Render(sampleSnapshot())
	snap := readSnap()
	require.Len(t, snap.RBN, 1)
	assert.Equal(t, "K4AHO", snap.RBN[0].Call)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return f.hub.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestStreamClosesOnShutdown(t *testing.T) {
	f := newFixture(nil)
	ts := httptest.NewServer(f.srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/spots/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	_, _, err = conn.ReadMessage()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, f.srv.Shutdown(ctx))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
