package index

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/segmentio/ksuid"
	"github.com/ssargent/geostore/pkg/codec"
	"github.com/ssargent/geostore/pkg/store"
)

// Build scans a store file and writes one "<key> <offset>" line per frame.
// Only the key token of each payload is read, so frames whose coordinates do
// not decode are still indexed. The index is staged next to IndexPath and
// renamed into place when complete.
func Build(config BuildConfig) (*BuildResult, error) {
	logger := componentLogger(config.Logger, "index_builder")

	fr, err := store.NewFrameReader(store.FrameReaderConfig{FilePath: config.StorePath, TypeTag: config.TypeTag})
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	if err := os.MkdirAll(filepath.Dir(config.IndexPath), 0750); err != nil {
		return nil, err
	}

	tmpPath := config.IndexPath + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	abort := func(err error) (*BuildResult, error) {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return nil, err
	}

	w := bufio.NewWriter(file)
	line := make([]byte, 0, 64)
	entries := 0

	for fr.Next() {
		key := codec.KeyOf(fr.Frame())
		if err := codec.ValidateKey(key); err != nil {
			return abort(fmt.Errorf("frame at offset %d: %w: %v", fr.FrameOffset(), store.ErrCorruption, err))
		}

		line = append(line[:0], key...)
		line = append(line, ' ')
		line = strconv.AppendInt(line, fr.FrameOffset(), 10)
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return abort(err)
		}
		entries++
	}
	if err := fr.Err(); err != nil {
		return abort(fmt.Errorf("%s: %w", config.StorePath, err))
	}

	if err := w.Flush(); err != nil {
		return abort(err)
	}
	if err := file.Sync(); err != nil {
		return abort(err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}
	if err := os.Rename(tmpPath, config.IndexPath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("publish index file: %w", err)
	}

	result := &BuildResult{
		Path:    config.IndexPath,
		Entries: entries,
		BuildID: ksuid.New(),
	}
	logger.Info("index built",
		"build_id", result.BuildID.String(),
		"store", config.StorePath,
		"index", config.IndexPath,
		"entries", entries)

	return result, nil
}
