package store

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ssargent/geostore/pkg/codec"
)

// FrameReader provides sequential access to the frames of a store file.
// Every read is checked against the file size first. A store that declares
// more frames than it holds fails with ErrTruncatedStore, and bytes after the
// last declared frame fail with ErrCorruption.
type FrameReader struct {
	file   *os.File
	reader *bufio.Reader
	config FrameReaderConfig
	header Header
	size   int64 // File size at open
	offset int64 // Offset of the next unread byte

	framesRead  uint32
	frame       []byte
	frameOffset int64
	err         error
}

// NewFrameReader opens a store file and parses its header
func NewFrameReader(config FrameReaderConfig) (*FrameReader, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, err
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	r := &FrameReader{
		file:   file,
		reader: bufio.NewReader(file),
		config: config,
		size:   stat.Size(),
	}

	header, err := readHeader(r.reader, r.size)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", config.FilePath, err)
	}
	if config.TypeTag != "" && header.TypeTag != config.TypeTag {
		file.Close()
		return nil, fmt.Errorf("%s: %w: type tag %q, expected %q", config.FilePath, ErrCorruption, header.TypeTag, config.TypeTag)
	}

	r.header = header
	r.offset = header.Size()
	return r, nil
}

// Header returns the parsed store header
func (r *FrameReader) Header() Header {
	return r.header
}

// Next advances to the next declared frame. It returns false once all
// declared frames have been read or when an error occurs; check Err.
func (r *FrameReader) Next() bool {
	if r.err != nil {
		return false
	}

	r.frame = nil
	if r.framesRead == r.header.RecordCount {
		if r.offset != r.size {
			r.err = fmt.Errorf("%w: %d bytes after frame %d", ErrCorruption, r.size-r.offset, r.framesRead)
		}
		return false
	}

	frameOffset := r.offset
	if r.size-r.offset < frameLengthSize {
		r.err = fmt.Errorf("%w: frame %d of %d at offset %d has no length field", ErrTruncatedStore, r.framesRead+1, r.header.RecordCount, frameOffset)
		return false
	}

	var lenBuf [frameLengthSize]byte
	if _, err := io.ReadFull(r.reader, lenBuf[:]); err != nil {
		r.err = mapReadError(err, "frame length")
		return false
	}
	length := binary.LittleEndian.Uint32(lenBuf[:])

	if int64(length) > r.size-r.offset-frameLengthSize {
		r.err = fmt.Errorf("%w: frame at offset %d declares %d bytes, %d remain", ErrTruncatedStore, frameOffset, length, r.size-r.offset-frameLengthSize)
		return false
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r.reader, data); err != nil {
		r.err = mapReadError(err, "frame payload")
		return false
	}

	r.offset += frameLengthSize + int64(length)
	r.framesRead++
	r.frame = data
	r.frameOffset = frameOffset
	return true
}

// Frame returns the payload of the current frame
func (r *FrameReader) Frame() []byte {
	return r.frame
}

// FrameOffset returns the offset of the current frame's length field
func (r *FrameReader) FrameOffset() int64 {
	return r.frameOffset
}

// FramesRead returns the number of frames consumed so far
func (r *FrameReader) FramesRead() int {
	return int(r.framesRead)
}

// Offset returns the current read offset
func (r *FrameReader) Offset() int64 {
	return r.offset
}

// Err returns the first error encountered by Next
func (r *FrameReader) Err() error {
	return r.err
}

// Close closes the frame reader
func (r *FrameReader) Close() error {
	return r.file.Close()
}

// ReadResult is the outcome of a bulk read
type ReadResult struct {
	Header     Header
	Records    []*codec.Record
	FramesRead int // Frames consumed, equal to Header.RecordCount on success
	Dropped    int // Frames whose payload did not decode
}

// ReadAll reads every declared frame and decodes the records. Frames that do
// not decode are handled per config.OnDecodeFailure, so under DropRecord the
// result can hold fewer records than the header declares.
func ReadAll(config StoreReaderConfig) (*ReadResult, error) {
	logger := componentLogger(config.Logger, "store_reader")

	fr, err := NewFrameReader(FrameReaderConfig{FilePath: config.FilePath, TypeTag: config.TypeTag})
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	// A declared count larger than the file can hold must not size the slice
	capacity := int64(fr.Header().RecordCount)
	if maxFrames := (fr.size - fr.offset) / frameLengthSize; capacity > maxFrames {
		capacity = maxFrames
	}

	c := codec.NewRecordCodec()
	result := &ReadResult{
		Header:  fr.Header(),
		Records: make([]*codec.Record, 0, capacity),
	}

	for fr.Next() {
		record, err := c.Decode(fr.Frame())
		if err != nil {
			if config.OnDecodeFailure == Propagate {
				return nil, fmt.Errorf("frame at offset %d: %w", fr.FrameOffset(), err)
			}
			// Bulk reads drop undecodable records
			logger.Warn("dropping undecodable record",
				"offset", fr.FrameOffset(),
				"key", codec.KeyOf(fr.Frame()),
				"error", err)
			result.Dropped++
			continue
		}
		result.Records = append(result.Records, record)
	}
	if err := fr.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", config.FilePath, err)
	}

	result.FramesRead = fr.FramesRead()
	logger.Debug("store read",
		"path", config.FilePath,
		"frames", result.FramesRead,
		"records", len(result.Records),
		"dropped", result.Dropped)

	return result, nil
}

// ReadHeader parses only the header of a store file
func ReadHeader(path string) (Header, error) {
	fr, err := NewFrameReader(FrameReaderConfig{FilePath: path})
	if err != nil {
		return Header{}, err
	}
	defer fr.Close()
	return fr.Header(), nil
}

// ReadFrameAt reads the frame whose length field starts at offset using
// positioned reads
func ReadFrameAt(path string, offset int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	return readFrameAt(file, stat.Size(), offset)
}

func readFrameAt(r io.ReaderAt, size, offset int64) ([]byte, error) {
	if offset < 0 || offset > size-frameLengthSize {
		return nil, fmt.Errorf("%w: no frame length field at offset %d (file is %d bytes)", ErrTruncatedStore, offset, size)
	}

	var lenBuf [frameLengthSize]byte
	if _, err := r.ReadAt(lenBuf[:], offset); err != nil {
		return nil, mapReadAtError(err, "frame length")
	}
	length := binary.LittleEndian.Uint32(lenBuf[:])

	if int64(length) > size-offset-frameLengthSize {
		return nil, fmt.Errorf("%w: frame at offset %d declares %d bytes, %d remain", ErrTruncatedStore, offset, length, size-offset-frameLengthSize)
	}

	data := make([]byte, length)
	if length == 0 {
		return data, nil
	}
	if _, err := r.ReadAt(data, offset+frameLengthSize); err != nil {
		return nil, mapReadAtError(err, "frame payload")
	}
	return data, nil
}

func mapReadAtError(err error, what string) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s", ErrTruncatedStore, what)
	}
	return fmt.Errorf("read %s: %w", what, err)
}
