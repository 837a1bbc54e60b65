package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/geostore/pkg/codec"
	"github.com/ssargent/geostore/pkg/store"
)

const (
	entryPrefix     = "k/"
	metaBuildID     = "m/build_id"
	metaEntries     = "m/entries"
	sortedBatchSize = 10000
)

// SortedIndex keeps key -> offset in a pebble database, so key resolution is
// a sorted search instead of a scan of the text index. It is rebuilt from the
// store wholesale, never updated in place.
type SortedIndex struct {
	db      *pebble.DB
	config  LookupConfig
	buildID ksuid.KSUID
	entries uint64
}

// BuildSorted scans the store and writes the first offset of every key into
// a fresh pebble database at dir. The database is staged in dir+".tmp" and
// only replaces dir once it is complete.
func BuildSorted(config BuildConfig, dir string) (*BuildResult, error) {
	logger := componentLogger(config.Logger, "sorted_index_builder")

	fr, err := store.NewFrameReader(store.FrameReaderConfig{FilePath: config.StorePath, TypeTag: config.TypeTag})
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	stagingDir := dir + ".tmp"
	if err := os.RemoveAll(stagingDir); err != nil {
		return nil, err
	}

	result, err := writeSorted(fr, stagingDir)
	if err != nil {
		_ = os.RemoveAll(stagingDir)
		return nil, err
	}

	if err := replaceDir(stagingDir, dir); err != nil {
		_ = os.RemoveAll(stagingDir)
		return nil, fmt.Errorf("publish sorted index: %w", err)
	}
	result.Path = dir

	logger.Info("sorted index built",
		"build_id", result.BuildID.String(),
		"store", config.StorePath,
		"dir", dir,
		"entries", result.Entries)

	return result, nil
}

// writeSorted fills a new pebble database at dir from fr and closes it
func writeSorted(fr *store.FrameReader, dir string) (*BuildResult, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open sorted index: %w", err)
	}

	entries, err := loadSorted(db, fr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	result := &BuildResult{Path: dir, Entries: entries, BuildID: ksuid.New()}

	meta := db.NewBatch()
	var countBuf [8]byte
	binary.LittleEndian.PutUint64(countBuf[:], uint64(entries))
	_ = meta.Set([]byte(metaEntries), countBuf[:], nil)
	_ = meta.Set([]byte(metaBuildID), result.BuildID.Bytes(), nil)
	if err := meta.Commit(pebble.Sync); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("write sorted index metadata: %w", err)
	}

	if err := db.Close(); err != nil {
		return nil, err
	}
	return result, nil
}

// replaceDir moves src to dst. An existing dst is set aside first and
// restored if the move fails.
func replaceDir(src, dst string) error {
	previous := dst + ".old"
	if err := os.RemoveAll(previous); err != nil {
		return err
	}

	hadPrevious := false
	if _, err := os.Stat(dst); err == nil {
		if err := os.Rename(dst, previous); err != nil {
			return err
		}
		hadPrevious = true
	}

	if err := os.Rename(src, dst); err != nil {
		if hadPrevious {
			_ = os.Rename(previous, dst)
		}
		return err
	}

	if hadPrevious {
		return os.RemoveAll(previous)
	}
	return nil
}

// loadSorted copies every frame's key and offset into db, keeping the first
// offset of a repeated key. It returns the number of frames seen.
func loadSorted(db *pebble.DB, fr *store.FrameReader) (int, error) {
	batch := db.NewIndexedBatch()
	defer func() { _ = batch.Close() }()

	entries := 0
	var offsetBuf [8]byte
	for fr.Next() {
		key := codec.KeyOf(fr.Frame())
		if err := codec.ValidateKey(key); err != nil {
			return 0, fmt.Errorf("frame at offset %d: %w: %v", fr.FrameOffset(), store.ErrCorruption, err)
		}
		entries++

		k := entryKey(key)
		_, closer, err := batch.Get(k)
		if err == nil {
			// An earlier frame already owns this key
			_ = closer.Close()
			continue
		}
		if !errors.Is(err, pebble.ErrNotFound) {
			return 0, err
		}

		binary.LittleEndian.PutUint64(offsetBuf[:], uint64(fr.FrameOffset()))
		if err := batch.Set(k, offsetBuf[:], nil); err != nil {
			return 0, err
		}

		if batch.Count() >= sortedBatchSize {
			if err := batch.Commit(pebble.NoSync); err != nil {
				return 0, err
			}
			_ = batch.Close()
			batch = db.NewIndexedBatch()
		}
	}
	if err := fr.Err(); err != nil {
		return 0, err
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return 0, err
	}
	return entries, nil
}

// OpenSortedIndex opens a sorted index read-only. config.IndexPath is the
// pebble directory.
func OpenSortedIndex(config LookupConfig) (*SortedIndex, error) {
	if _, err := os.Stat(config.IndexPath); err != nil {
		return nil, err
	}

	db, err := pebble.Open(config.IndexPath, &pebble.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("open sorted index: %w", err)
	}

	idx := &SortedIndex{db: db, config: config}

	raw, err := idx.get([]byte(metaBuildID))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: missing build id: %v", ErrCorruptIndex, err)
	}
	if idx.buildID, err = ksuid.FromBytes(raw); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: build id: %v", ErrCorruptIndex, err)
	}

	raw, err = idx.get([]byte(metaEntries))
	if err != nil || len(raw) != 8 {
		_ = db.Close()
		return nil, fmt.Errorf("%w: missing entry count", ErrCorruptIndex)
	}
	idx.entries = binary.LittleEndian.Uint64(raw)

	return idx, nil
}

// get returns a copy of the value for k
func (s *SortedIndex) get(k []byte) ([]byte, error) {
	value, closer, err := s.db.Get(k)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Get retrieves the frame offset for a key
func (s *SortedIndex) Get(key string) (int64, bool, error) {
	raw, err := s.get(entryKey(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if len(raw) != 8 {
		return 0, false, fmt.Errorf("%w: offset for %q is %d bytes", ErrCorruptIndex, key, len(raw))
	}
	return int64(binary.LittleEndian.Uint64(raw)), true, nil
}

// Lookup resolves key and reads its record from the store
func (s *SortedIndex) Lookup(key string) (*codec.Record, error) {
	offset, found, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return readRecord(s.config, key, offset)
}

// BuildID returns the id assigned when the index was built
func (s *SortedIndex) BuildID() ksuid.KSUID {
	return s.buildID
}

// Entries returns the number of frames the index was built from
func (s *SortedIndex) Entries() uint64 {
	return s.entries
}

// Close closes the underlying database
func (s *SortedIndex) Close() error {
	return s.db.Close()
}

func entryKey(key string) []byte {
	return append([]byte(entryPrefix), key...)
}
