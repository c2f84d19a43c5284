package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ssargent/bagindex/pkg/bag"
	"github.com/ssargent/bagindex/pkg/metrics"
)

// Server holds the API server state. The summary is built once and only read
// by handlers.
type Server struct {
	summary *bag.Summary
	config  ServerConfig
	metrics *metrics.Metrics
	sugar   *zap.SugaredLogger
}

// NewServer creates a new API server over a scanned bag
func NewServer(summary *bag.Summary, config ServerConfig, metrics *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		summary: summary,
		config:  config,
		metrics: metrics,
		sugar:   logger.Sugar(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, SummaryResponse{
		Source:      s.config.Source,
		ScanID:      s.summary.ScanID,
		Records:     s.summary.Records,
		Bytes:       s.summary.Bytes,
		ByOp:        s.summary.ByOp,
		Skipped:     s.summary.Skipped,
		Connections: len(s.summary.Index.Connections()),
		Entries:     s.summary.Entries,
	})
}

func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	ix := s.summary.Index
	conns := ix.Connections()
	infos := make([]ConnectionInfo, 0, len(conns))
	for _, conn := range conns {
		infos = append(infos, ConnectionInfo{Conn: conn, Entries: ix.Count(conn)})
	}
	sendSuccess(w, infos)
}

// handleEntries serves the entries of one connection, optionally limited to
// the time range [start, end) given in nanoseconds.
func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	conn, err := strconv.ParseUint(chi.URLParam(r, "conn"), 10, 32)
	if err != nil {
		sendError(w, "Invalid connection id", http.StatusBadRequest)
		return
	}

	ix := s.summary.Index
	if !ix.Has(uint32(conn)) {
		sendError(w, fmt.Sprintf("Connection %d not found", conn), http.StatusNotFound)
		return
	}

	start, err := queryUint(r, "start", 0)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	end, err := queryUint(r, "end", math.MaxUint64)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := ix.Between(uint32(conn), start, end)
	if err != nil {
		s.sugar.Errorw("failed to read index entries", "conn", conn, "error", err)
		sendError(w, "Failed to read index entries", http.StatusInternalServerError)
		return
	}

	resp := make([]EntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = EntryResponse{Time: e.Time, Offset: e.Offset, ChunkPos: e.ChunkPos}
	}
	sendSuccess(w, resp)
}

func queryUint(r *http.Request, name string, def uint64) (uint64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return n, nil
}
