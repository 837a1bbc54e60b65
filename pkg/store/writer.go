package store

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/ssargent/geostore/pkg/codec"
)

const defaultBufferSize = 64 * 1024

// StoreWriter builds a store file: a header followed by one length-prefixed
// frame per record, in the order records are appended.
//
// Frames are staged in FilePath+".tmp". The header's record count is filled
// in by Commit, which then syncs and renames the staged file over FilePath, so
// the published file is never modified after it appears.
type StoreWriter struct {
	file    *os.File
	writer  *bufio.Writer
	codec   *codec.RecordCodec
	config  StoreWriterConfig
	logger  *slog.Logger
	header  Header
	tmpPath string
	offset  int64 // Current write offset
	offsets []int64
	closed  bool
}

// WriteResult describes a committed store file
type WriteResult struct {
	Path    string
	Header  Header
	Offsets []int64 // Frame offsets in append order
	Size    int64
}

// NewStoreWriter creates a staged store file and writes its header
func NewStoreWriter(config StoreWriterConfig) (*StoreWriter, error) {
	if config.TypeTag == "" {
		config.TypeTag = DefaultTypeTag
	}
	if config.BufferSize <= 0 {
		config.BufferSize = defaultBufferSize
	}

	header := NewHeader(config.TypeTag, 0)
	preamble, err := header.MarshalBinary()
	if err != nil {
		return nil, err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, err
	}

	tmpPath := config.FilePath + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	w := &StoreWriter{
		file:    file,
		writer:  bufio.NewWriterSize(file, config.BufferSize),
		codec:   codec.NewRecordCodec(),
		config:  config,
		logger:  componentLogger(config.Logger, "store_writer"),
		header:  header,
		tmpPath: tmpPath,
	}

	n, err := w.writer.Write(preamble)
	if err != nil {
		_ = w.Abort()
		return nil, fmt.Errorf("write header: %w", err)
	}
	w.offset = int64(n)

	return w, nil
}

// Append encodes a record, writes it as the next frame and returns the
// frame's offset
func (w *StoreWriter) Append(r *codec.Record) (int64, error) {
	if w.closed {
		return 0, ErrWriterClosed
	}
	if uint64(len(w.offsets)) >= math.MaxUint32 {
		return 0, ErrTooManyRecords
	}

	data, err := w.codec.Encode(r)
	if err != nil {
		return 0, err
	}
	if uint64(len(data)) > math.MaxUint32 {
		return 0, fmt.Errorf("record %q: payload of %d bytes does not fit a frame", r.Key, len(data))
	}

	var lenBuf [frameLengthSize]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(data)))

	frameOffset := w.offset
	if _, err := w.writer.Write(lenBuf[:]); err != nil {
		return 0, fmt.Errorf("write frame length: %w", err)
	}
	if _, err := w.writer.Write(data); err != nil {
		return 0, fmt.Errorf("write frame payload: %w", err)
	}

	w.offset += frameLengthSize + int64(len(data))
	w.offsets = append(w.offsets, frameOffset)
	return frameOffset, nil
}

// Count returns the number of frames appended so far
func (w *StoreWriter) Count() int {
	return len(w.offsets)
}

// Size returns the current size of the staged file
func (w *StoreWriter) Size() int64 {
	return w.offset
}

// Path returns the destination path
func (w *StoreWriter) Path() string {
	return w.config.FilePath
}

// Commit finalizes the header, syncs and publishes the store file
func (w *StoreWriter) Commit() (*WriteResult, error) {
	if w.closed {
		return nil, ErrWriterClosed
	}

	if err := w.writer.Flush(); err != nil {
		_ = w.Abort()
		return nil, err
	}

	w.header.RecordCount = uint32(len(w.offsets))
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], w.header.RecordCount)
	if _, err := w.file.WriteAt(countBuf[:], w.header.recordCountOffset()); err != nil {
		_ = w.Abort()
		return nil, fmt.Errorf("write record count: %w", err)
	}

	if err := w.file.Sync(); err != nil {
		_ = w.Abort()
		return nil, err
	}

	w.closed = true
	if err := w.file.Close(); err != nil {
		_ = os.Remove(w.tmpPath)
		return nil, err
	}

	if err := os.Rename(w.tmpPath, w.config.FilePath); err != nil {
		_ = os.Remove(w.tmpPath)
		return nil, fmt.Errorf("publish store file: %w", err)
	}

	w.logger.Info("store written",
		"path", w.config.FilePath,
		"records", w.header.RecordCount,
		"bytes", w.offset)

	return &WriteResult{
		Path:    w.config.FilePath,
		Header:  w.header,
		Offsets: w.offsets,
		Size:    w.offset,
	}, nil
}

// Abort discards the staged file. The destination is left untouched.
func (w *StoreWriter) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true

	closeErr := w.file.Close()
	if err := os.Remove(w.tmpPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return closeErr
}

// Close aborts the writer unless it was committed
func (w *StoreWriter) Close() error {
	return w.Abort()
}

// WriteStore writes records to a new store file in input order
func WriteStore(config StoreWriterConfig, records []*codec.Record) (*WriteResult, error) {
	w, err := NewStoreWriter(config)
	if err != nil {
		return nil, err
	}

	for i, r := range records {
		if _, err := w.Append(r); err != nil {
			_ = w.Abort()
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}

	return w.Commit()
}
