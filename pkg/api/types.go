package api

import (
	"log/slog"

	"github.com/ssargent/geostore/pkg/codec"
	"github.com/ssargent/geostore/pkg/store"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HeaderResponse describes the store being served
type HeaderResponse struct {
	store.Header
	Fields       []store.Field `json:"fields"`
	IndexEntries int           `json:"index_entries"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string // Requests must carry X-API-Key when set
	Logger *slog.Logger
}

// RecordStore defines the read operations the API serves
type RecordStore interface {
	Lookup(key string) (*codec.Record, error)
	Header() store.Header
	Entries() int
}
