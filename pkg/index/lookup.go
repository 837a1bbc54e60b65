package index

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ssargent/geostore/pkg/codec"
	"github.com/ssargent/geostore/pkg/store"
)

// Lookup resolves key through the text index and reads its record from the
// store with a single positioned read
func Lookup(config LookupConfig, key string) (*codec.Record, error) {
	offset, err := FindOffset(config.IndexPath, key)
	if err != nil {
		return nil, err
	}
	return readRecord(config, key, offset)
}

// FindOffset scans the index file for the first line whose key equals key
func FindOffset(indexPath, key string) (int64, error) {
	file, err := os.Open(indexPath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var found int64 = -1
	err = scanEntries(file, func(e Entry) bool {
		if e.Key == key {
			found = e.Offset
			return false
		}
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", indexPath, err)
	}
	if found < 0 {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return found, nil
}

// scanEntries calls fn for each index line in file order until fn returns
// false. Blank lines are skipped.
func scanEntries(f *os.File, fn func(Entry) bool) error {
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		entry, ok, err := parseLine(scanner.Text())
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if !ok {
			continue
		}
		if !fn(entry) {
			return nil
		}
	}
	return scanner.Err()
}

func parseLine(line string) (Entry, bool, error) {
	fields := strings.Fields(line)
	switch len(fields) {
	case 0:
		return Entry{}, false, nil
	case 2:
	default:
		return Entry{}, false, fmt.Errorf("%w: %q", ErrCorruptIndex, line)
	}

	offset, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || offset < 0 {
		return Entry{}, false, fmt.Errorf("%w: bad offset in %q", ErrCorruptIndex, line)
	}
	return Entry{Key: fields[0], Offset: offset}, true, nil
}

// readRecord reads and strictly decodes the frame at offset. Single lookups
// surface decode failures unless DropUndecodable is set; bulk reads in the
// store package drop them instead.
func readRecord(config LookupConfig, key string, offset int64) (*codec.Record, error) {
	data, err := store.ReadFrameAt(config.StorePath, offset)
	if err != nil {
		return nil, err
	}

	record, err := codec.NewRecordCodec().Decode(data)
	if err != nil {
		if config.DropUndecodable && errors.Is(err, codec.ErrDecode) {
			return nil, fmt.Errorf("%w: %s (record at offset %d does not decode)", ErrNotFound, key, offset)
		}
		return nil, fmt.Errorf("record at offset %d: %w", offset, err)
	}

	if record.Key != key {
		return nil, fmt.Errorf("%w: entry for %q points at record %q (offset %d)", ErrCorruptIndex, key, record.Key, offset)
	}
	return record, nil
}
