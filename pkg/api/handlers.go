package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ssargent/geostore/pkg/codec"
	"github.com/ssargent/geostore/pkg/index"
	"github.com/ssargent/geostore/pkg/store"
)

// Server holds the API server state
type Server struct {
	records RecordStore
	config  ServerConfig
	metrics *Metrics
	logger  *slog.Logger
}

// NewServer creates a new API server
func NewServer(records RecordStore, config ServerConfig, metrics *Metrics) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if metrics != nil {
		metrics.SetIndexEntries(records.Entries())
	}
	return &Server{
		records: records,
		config:  config,
		metrics: metrics,
		logger:  logger.With("component", "api"),
	}
}

// handleHealth reports that the server is up and how many keys it serves
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.RecordHealthCheck(true)
	}
	sendSuccess(w, map[string]interface{}{
		"status":        "healthy",
		"index_entries": s.records.Entries(),
	})
}

// handleGetRecord returns the record stored under {key}
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key := chi.URLParam(r, "key")
	if err := codec.ValidateKey(key); err != nil {
		s.recordLookup(statusError, start)
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	record, err := s.records.Lookup(key)
	if err != nil {
		status, code, message := classifyLookupError(err)
		s.recordLookup(status, start)
		if code == http.StatusInternalServerError {
			s.logger.Error("lookup failed", "key", key, "error", err)
		}
		sendError(w, message, code)
		return
	}

	s.recordLookup(statusSuccess, start)
	sendSuccess(w, record)
}

// handleHeader describes the store being served
func (s *Server) handleHeader(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, HeaderResponse{
		Header:       s.records.Header(),
		Fields:       store.RecordLayout,
		IndexEntries: s.records.Entries(),
	})
}

func (s *Server) recordLookup(status string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordLookup(status, time.Since(start))
	}
}

// classifyLookupError maps a lookup failure to a metric status, an HTTP
// status code and a client message
func classifyLookupError(err error) (string, int, string) {
	switch {
	case errors.Is(err, index.ErrNotFound):
		return statusNotFound, http.StatusNotFound, "Key not found"
	case errors.Is(err, codec.ErrDecode):
		return statusError, http.StatusUnprocessableEntity, "Stored record could not be decoded"
	default:
		return statusError, http.StatusInternalServerError, "Failed to read record"
	}
}
