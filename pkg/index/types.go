// Package index maps record keys to the byte offsets of their frames in a
// store file.
//
// The primary index is a text file with one "<key> <offset>" line per frame,
// in frame order. Lookup scans it top to bottom and stops at the first match,
// so when keys repeat the earliest written frame wins. Table and SortedIndex
// answer the same question from memory and from a pebble database and follow
// the same first-match rule.
package index

import (
	"log/slog"

	"github.com/segmentio/ksuid"
)

// Entry is one index line
type Entry struct {
	Key    string
	Offset int64 // Offset of the frame's length field in the store file
}

// BuildConfig holds configuration for building an index from a store file
type BuildConfig struct {
	StorePath string
	IndexPath string
	TypeTag   string // Expected store type tag, any tag when empty
	Logger    *slog.Logger
}

// BuildResult describes a finished index build
type BuildResult struct {
	Path    string
	Entries int
	BuildID ksuid.KSUID
}

// LookupConfig holds configuration for key lookups
type LookupConfig struct {
	IndexPath string // Text index file, or pebble directory for SortedIndex
	StorePath string

	// DropUndecodable reports a record whose payload does not decode as
	// ErrNotFound instead of returning the codec.ErrDecode failure. Lookups
	// propagate decode failures unless this is set.
	DropUndecodable bool
}

// Errors
var (
	ErrNotFound     = &IndexError{"key not found"}
	ErrCorruptIndex = &IndexError{"corrupt index"}
)

// IndexError represents an index error
type IndexError struct {
	Message string
}

func (e *IndexError) Error() string {
	return e.Message
}

func componentLogger(l *slog.Logger, component string) *slog.Logger {
	if l == nil {
		return slog.Default().With("component", component)
	}
	return l.With("component", component)
}
