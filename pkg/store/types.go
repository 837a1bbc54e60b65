package store

import (
	"fmt"
	"log/slog"
	"strings"
)

const (
	// DefaultTypeTag identifies a postal code store file
	DefaultTypeTag = "ZipCodeLengthIndicated"

	// FormatVersion is the only store format version this package reads or writes
	FormatVersion uint16 = 1

	// MaxTypeTagLength bounds the NUL-terminated type tag
	MaxTypeTagLength = 255

	// frameLengthSize is the size of the u32 length field in front of each frame
	frameLengthSize = 4

	// fixedHeaderFields is version(2) + header length(4) + record count(4)
	fixedHeaderFields = 2 + 4 + 4
)

// DecodeFailurePolicy decides what happens to a frame whose payload does not
// decode. Bulk reads and single lookups default to different policies.
type DecodeFailurePolicy int

const (
	// DropRecord skips the record and keeps going
	DropRecord DecodeFailurePolicy = iota
	// Propagate returns the decode error to the caller
	Propagate
)

func (p DecodeFailurePolicy) String() string {
	switch p {
	case DropRecord:
		return "drop"
	case Propagate:
		return "propagate"
	default:
		return fmt.Sprintf("DecodeFailurePolicy(%d)", int(p))
	}
}

// ParseDecodeFailurePolicy converts a config value to a policy
func ParseDecodeFailurePolicy(s string) (DecodeFailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "drop":
		return DropRecord, nil
	case "propagate":
		return Propagate, nil
	default:
		return DropRecord, fmt.Errorf("unknown decode failure policy %q", s)
	}
}

// StoreWriterConfig holds configuration for the store writer
type StoreWriterConfig struct {
	FilePath   string       // Destination store file
	TypeTag    string       // Type tag written in the header (DefaultTypeTag if empty)
	BufferSize int          // Write buffer size
	Logger     *slog.Logger // Defaults to slog.Default()
}

// FrameReaderConfig holds configuration for sequential frame access
type FrameReaderConfig struct {
	FilePath string // Path to the store file
	TypeTag  string // Expected type tag, any tag is accepted when empty
}

// StoreReaderConfig holds configuration for bulk reads
type StoreReaderConfig struct {
	FilePath        string
	TypeTag         string
	OnDecodeFailure DecodeFailurePolicy // DropRecord unless set
	Logger          *slog.Logger
}

// Errors
var (
	ErrTruncatedStore     = &StoreError{"truncated store"}
	ErrCorruption         = &StoreError{"data corruption detected"}
	ErrUnsupportedVersion = &StoreError{"unsupported store version"}
	ErrTooManyRecords     = &StoreError{"record count exceeds header capacity"}
	ErrWriterClosed       = &StoreError{"store writer is closed"}
)

// StoreError represents a store format error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}

func componentLogger(l *slog.Logger, component string) *slog.Logger {
	if l == nil {
		return slog.Default().With("component", component)
	}
	return l.With("component", component)
}
