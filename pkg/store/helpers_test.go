package store

import (
	"encoding/binary"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ssargent/geostore/pkg/codec"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func sampleRecords() []*codec.Record {
	return []*codec.Record{
		{Key: "00001", PlaceLabel: "A", Region: "NY", Subregion: "X", Latitude: 1.0, Longitude: 2.0},
		{Key: "00002", PlaceLabel: "B", Region: "CA", Subregion: "Y", Latitude: 3.0, Longitude: 4.0},
		{Key: "00003", PlaceLabel: "C", Region: "NY", Subregion: "Z", Latitude: 5.0, Longitude: 6.0},
	}
}

func writeSampleStore(t *testing.T) (string, *WriteResult) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "zip.dat")
	result, err := WriteStore(StoreWriterConfig{FilePath: path, Logger: discardLogger}, sampleRecords())
	require.NoError(t, err)
	return path, result
}

// rawStore assembles a store file by hand so tests can produce layouts the
// writer never would
type rawStore struct {
	buf []byte
}

func newRawStore(tag string, version uint16, headerLength, count uint32) *rawStore {
	s := &rawStore{}
	s.buf = append(s.buf, tag...)
	s.buf = append(s.buf, 0)
	s.buf = binary.LittleEndian.AppendUint16(s.buf, version)
	s.buf = binary.LittleEndian.AppendUint32(s.buf, headerLength)
	s.buf = binary.LittleEndian.AppendUint32(s.buf, count)
	return s
}

func newValidRawStore(count uint32) *rawStore {
	return newRawStore(DefaultTypeTag, FormatVersion, uint32(len(DefaultTypeTag)+11), count)
}

func (s *rawStore) frame(payload string) *rawStore {
	s.buf = binary.LittleEndian.AppendUint32(s.buf, uint32(len(payload)))
	s.buf = append(s.buf, payload...)
	return s
}

func (s *rawStore) bytes(b ...byte) *rawStore {
	s.buf = append(s.buf, b...)
	return s
}

func (s *rawStore) save(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.dat")
	require.NoError(t, os.WriteFile(path, s.buf, 0600))
	return path
}
