// Package ingest loads geographic records from CSV exports.
//
// Rows follow the record layout: key, place label, region, subregion,
// latitude, longitude. The first row is a header and is skipped. Blank
// coordinates read as 0; rows that still cannot become a storable record are
// dropped with a warning rather than failing the whole load.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ssargent/geostore/pkg/codec"
)

// Config holds configuration for a CSV load
type Config struct {
	Logger *slog.Logger
}

// Result is the outcome of a CSV load
type Result struct {
	Records  []*codec.Record
	RowsRead int // Data rows seen, header excluded
	Dropped  int
}

// LoadCSV reads every data row of the CSV file at path
func LoadCSV(path string, config Config) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	result, err := ReadCSV(file, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}

// ReadCSV reads records from r. An input with no rows at all yields an empty
// result.
func ReadCSV(r io.Reader, config Config) (*Result, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "csv_ingest")

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rc := codec.NewIngestCodec()
	result := &Result{}

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		return nil, fmt.Errorf("read header row: %w", err)
	}

	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			result.RowsRead++
			result.Dropped++
			logger.Warn("dropping unreadable row", "line", parseErr.StartLine, "error", parseErr.Err)
			continue
		}
		if err != nil {
			return nil, err
		}

		result.RowsRead++
		line, _ := cr.FieldPos(0)

		record, err := rc.DecodeFields(fields)
		if err == nil {
			err = codec.Validate(record)
		}
		if err != nil {
			result.Dropped++
			logger.Warn("dropping row", "line", line, "error", err)
			continue
		}
		result.Records = append(result.Records, record)
	}

	logger.Debug("csv loaded", "rows", result.RowsRead, "records", len(result.Records), "dropped", result.Dropped)
	return result, nil
}
