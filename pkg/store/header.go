package store

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
)

// Header is the fixed preamble of a store file:
//
//	[TypeTag][0x00][Version(2)][HeaderLength(4)][RecordCount(4)]
//
// All integers are little-endian. HeaderLength is metadata only. Readers
// check that it matches the preamble they parsed but never seek by it.
type Header struct {
	TypeTag      string `json:"type_tag"`
	Version      uint16 `json:"version"`
	HeaderLength uint32 `json:"header_length"`
	RecordCount  uint32 `json:"record_count"`
}

// NewHeader builds a header for the given tag and record count
func NewHeader(typeTag string, recordCount uint32) Header {
	return Header{
		TypeTag:      typeTag,
		Version:      FormatVersion,
		HeaderLength: uint32(preambleSize(typeTag)),
		RecordCount:  recordCount,
	}
}

// Size returns the number of bytes the header occupies on disk
func (h Header) Size() int64 {
	return preambleSize(h.TypeTag)
}

// recordCountOffset is where the record count field starts
func (h Header) recordCountOffset() int64 {
	return h.Size() - 4
}

func preambleSize(typeTag string) int64 {
	return int64(len(typeTag)) + 1 + fixedHeaderFields
}

// MarshalBinary encodes the header in its on-disk layout
func (h Header) MarshalBinary() ([]byte, error) {
	if err := validateTypeTag(h.TypeTag); err != nil {
		return nil, err
	}

	buf := make([]byte, h.Size())
	n := copy(buf, h.TypeTag)
	buf[n] = 0
	n++
	binary.LittleEndian.PutUint16(buf[n:], h.Version)
	binary.LittleEndian.PutUint32(buf[n+2:], h.HeaderLength)
	binary.LittleEndian.PutUint32(buf[n+6:], h.RecordCount)
	return buf, nil
}

func validateTypeTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("type tag is empty")
	}
	if len(tag) > MaxTypeTagLength {
		return fmt.Errorf("type tag longer than %d bytes", MaxTypeTagLength)
	}
	for i := 0; i < len(tag); i++ {
		if tag[i] == 0 {
			return fmt.Errorf("type tag contains a NUL byte")
		}
	}
	return nil
}

// readHeader parses the preamble from r. available is the number of bytes
// left in the file, so a short file is reported as truncated before any
// read runs past the end.
func readHeader(r *bufio.Reader, available int64) (Header, error) {
	var h Header

	tag := make([]byte, 0, len(DefaultTypeTag))
	for {
		if int64(len(tag)) >= available {
			return h, fmt.Errorf("%w: header type tag", ErrTruncatedStore)
		}
		b, err := r.ReadByte()
		if err != nil {
			return h, mapReadError(err, "header type tag")
		}
		if b == 0 {
			break
		}
		if len(tag) == MaxTypeTagLength {
			return h, fmt.Errorf("%w: type tag is not terminated within %d bytes", ErrCorruption, MaxTypeTagLength)
		}
		tag = append(tag, b)
	}
	h.TypeTag = string(tag)

	if available-int64(len(tag))-1 < fixedHeaderFields {
		return h, fmt.Errorf("%w: header fields", ErrTruncatedStore)
	}

	fixed := make([]byte, fixedHeaderFields)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return h, mapReadError(err, "header fields")
	}
	h.Version = binary.LittleEndian.Uint16(fixed[0:2])
	h.HeaderLength = binary.LittleEndian.Uint32(fixed[2:6])
	h.RecordCount = binary.LittleEndian.Uint32(fixed[6:10])

	if h.Version != FormatVersion {
		return h, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if int64(h.HeaderLength) != h.Size() {
		return h, fmt.Errorf("%w: header length field %d, preamble is %d bytes", ErrCorruption, h.HeaderLength, h.Size())
	}

	return h, nil
}

// mapReadError turns an unexpected end of file into ErrTruncatedStore
func mapReadError(err error, what string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: %s", ErrTruncatedStore, what)
	}
	return fmt.Errorf("read %s: %w", what, err)
}

// Field is one labelled line of a header description
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RecordLayout lists the positional payload fields and their types
var RecordLayout = []Field{
	{Name: "Key", Value: "String"},
	{Name: "PlaceLabel", Value: "String"},
	{Name: "Region", Value: "String"},
	{Name: "Subregion", Value: "String"},
	{Name: "Latitude", Value: "Double"},
	{Name: "Longitude", Value: "Double"},
}

// Describe returns the header as labelled fields for display
func (h Header) Describe() []Field {
	return []Field{
		{Name: "File Type", Value: h.TypeTag},
		{Name: "Version", Value: strconv.FormatUint(uint64(h.Version), 10)},
		{Name: "Header Size", Value: strconv.FormatUint(uint64(h.HeaderLength), 10) + " bytes"},
		{Name: "Record Count", Value: strconv.FormatUint(uint64(h.RecordCount), 10)},
		{Name: "Size Format Type", Value: "binary"},
		{Name: "Field Count", Value: strconv.Itoa(len(RecordLayout))},
	}
}
