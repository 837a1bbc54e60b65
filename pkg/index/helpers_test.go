package index

import (
	"encoding/binary"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ssargent/geostore/pkg/codec"
	"github.com/ssargent/geostore/pkg/store"
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

type fixture struct {
	dir       string
	storePath string
	indexPath string
	written   *store.WriteResult
}

func (f *fixture) lookupConfig() LookupConfig {
	return LookupConfig{IndexPath: f.indexPath, StorePath: f.storePath}
}

// newFixture writes records to a store and builds its text index
func newFixture(t *testing.T, records []*codec.Record) *fixture {
	t.Helper()

	dir := t.TempDir()
	f := &fixture{
		dir:       dir,
		storePath: filepath.Join(dir, "zip.dat"),
		indexPath: filepath.Join(dir, "zip.idx"),
	}

	written, err := store.WriteStore(store.StoreWriterConfig{FilePath: f.storePath, Logger: discardLogger}, records)
	require.NoError(t, err)
	f.written = written

	_, err = Build(BuildConfig{StorePath: f.storePath, IndexPath: f.indexPath, Logger: discardLogger})
	require.NoError(t, err)
	return f
}

// writeRawStore writes a valid header followed by the given payloads as frames
func writeRawStore(t *testing.T, path string, declared uint32, payloads ...string) []int64 {
	t.Helper()

	buf := append([]byte(store.DefaultTypeTag), 0)
	buf = binary.LittleEndian.AppendUint16(buf, store.FormatVersion)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(store.DefaultTypeTag)+11))
	buf = binary.LittleEndian.AppendUint32(buf, declared)

	var offsets []int64
	for _, p := range payloads {
		offsets = append(offsets, int64(len(buf)))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p)))
		buf = append(buf, p...)
	}
	require.NoError(t, os.WriteFile(path, buf, 0600))
	return offsets
}
