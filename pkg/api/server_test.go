package api

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ssargent/bagindex/pkg/bag"
	"github.com/ssargent/bagindex/pkg/codec"
	"github.com/ssargent/bagindex/pkg/metrics"
)

func slot(payload []byte) []byte {
	return append(binary.LittleEndian.AppendUint32(nil, uint32(len(payload))), payload...)
}

func field(name string, value []byte) []byte {
	return slot(append([]byte(name+"="), value...))
}

func u32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

func indexRecord(conn uint32, entries ...codec.IndexDataEntry) []byte {
	var h, payload []byte
	h = append(h, field("op", []byte{codec.OpIndexData})...)
	h = append(h, field("ver", u32(1))...)
	h = append(h, field("conn", u32(conn))...)
	h = append(h, field("count", u32(uint32(len(entries))))...)
	for _, e := range entries {
		payload = e.AppendTo(payload)
	}
	return append(slot(h), slot(payload)...)
}

func chunkRecord() []byte {
	return append(slot(field("op", []byte{bag.OpChunk})), slot([]byte("payload"))...)
}

// setupTestServer scans a small bag and returns a server over it
func setupTestServer(t *testing.T) (*Server, *prometheus.Registry, *observer.ObservedLogs) {
	t.Helper()

	buf := []byte(bag.VersionLine)
	buf = append(buf, chunkRecord()...)
	buf = append(buf, indexRecord(1,
		codec.IndexDataEntry{Time: 100, Offset: 0},
		codec.IndexDataEntry{Time: 300, Offset: 40},
	)...)
	buf = append(buf, indexRecord(2, codec.IndexDataEntry{Time: 200, Offset: 80})...)

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	summary, err := bag.Scan(buf, bag.ScanConfig{Metrics: m})
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	server := NewServer(summary, ServerConfig{Source: "test.bag", EnableMetrics: true}, m, zap.New(core))
	return server, reg, logs
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", path, nil))

	var resp APIResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	}
	return w, resp
}

// decodeData re-decodes the generic Data field of a response into out
func decodeData(t *testing.T, resp APIResponse, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestServer_Health(t *testing.T) {
	server, _, _ := setupTestServer(t)

	w, resp := get(t, server.Router(nil), "/api/v1/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}

func TestServer_Summary(t *testing.T) {
	server, _, _ := setupTestServer(t)

	w, resp := get(t, server.Router(nil), "/api/v1/summary")
	require.Equal(t, http.StatusOK, w.Code)

	var summary SummaryResponse
	decodeData(t, resp, &summary)
	assert.Equal(t, "test.bag", summary.Source)
	assert.Equal(t, 3, summary.Records)
	assert.Equal(t, 2, summary.Connections)
	assert.Equal(t, 3, summary.Entries)
	assert.Equal(t, map[string]int{"chunk": 1, "index_data": 2}, summary.ByOp)
}

func TestServer_ListConnections(t *testing.T) {
	server, _, _ := setupTestServer(t)

	w, resp := get(t, server.Router(nil), "/api/v1/connections")
	require.Equal(t, http.StatusOK, w.Code)

	var conns []ConnectionInfo
	decodeData(t, resp, &conns)
	assert.Equal(t, []ConnectionInfo{{Conn: 1, Entries: 2}, {Conn: 2, Entries: 1}}, conns)
}

func TestServer_Entries(t *testing.T) {
	server, _, _ := setupTestServer(t)
	router := server.Router(nil)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedTimes  []uint64
	}{
		{
			name:           "all entries",
			path:           "/api/v1/connections/1/entries",
			expectedStatus: http.StatusOK,
			expectedTimes:  []uint64{100, 300},
		},
		{
			name:           "time range",
			path:           "/api/v1/connections/1/entries?start=200&end=400",
			expectedStatus: http.StatusOK,
			expectedTimes:  []uint64{300},
		},
		{
			name:           "empty range",
			path:           "/api/v1/connections/1/entries?start=101&end=300",
			expectedStatus: http.StatusOK,
			expectedTimes:  []uint64{},
		},
		{
			name:           "unknown connection",
			path:           "/api/v1/connections/9/entries",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid connection",
			path:           "/api/v1/connections/abc/entries",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid start",
			path:           "/api/v1/connections/1/entries?start=-1",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := get(t, router, tt.path)
			require.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus != http.StatusOK {
				assert.False(t, resp.Success)
				assert.NotEmpty(t, resp.Error)
				return
			}

			var entries []EntryResponse
			decodeData(t, resp, &entries)
			times := make([]uint64, 0, len(entries))
			for _, e := range entries {
				times = append(times, e.Time)
				assert.GreaterOrEqual(t, e.ChunkPos, 0)
			}
			assert.Equal(t, tt.expectedTimes, times)
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	server, reg, logs := setupTestServer(t)
	router := server.Router(reg)

	get(t, router, "/api/v1/connections")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "bagindex_index_entries_total 3")
	assert.Contains(t, string(body), `bagindex_http_requests_total{endpoint="/api/v1/connections",method="GET",status_code="200"} 1`)

	requests := logs.FilterMessage("request").All()
	require.NotEmpty(t, requests)
	assert.Equal(t, "/api/v1/connections", requests[0].ContextMap()["path"])
}

func TestServer_MetricsDisabled(t *testing.T) {
	server, reg, _ := setupTestServer(t)
	server.config.EnableMetrics = false

	w := httptest.NewRecorder()
	server.Router(reg).ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
