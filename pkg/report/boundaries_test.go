package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ssargent/geostore/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(key, place, region string, lat, lng float64) *codec.Record {
	return &codec.Record{Key: key, PlaceLabel: place, Region: region, Latitude: lat, Longitude: lng}
}

func TestBoundaries(t *testing.T) {
	records := []*codec.Record{
		rec("10001", "Manhattan", "NY", 40.75, -73.99),
		rec("14201", "Buffalo", "NY", 42.90, -78.88),
		rec("11954", "Montauk", "NY", 41.04, -71.95),
		rec("10314", "Staten Island", "NY", 40.58, -74.15),
		rec("96101", "Alturas", "CA", 41.48, -120.54),
		rec("92154", "San Diego", "CA", 32.56, -117.01),
	}

	got := Boundaries(records)
	require.Len(t, got, 2)

	ca := got[0]
	assert.Equal(t, "CA", ca.Region)
	assert.Equal(t, 2, ca.Records)
	assert.Equal(t, "92154", ca.Easternmost.Key)
	assert.Equal(t, "96101", ca.Westernmost.Key)
	assert.Equal(t, "96101", ca.Northernmost.Key)
	assert.Equal(t, "92154", ca.Southernmost.Key)

	ny := got[1]
	assert.Equal(t, "NY", ny.Region)
	assert.Equal(t, 4, ny.Records)
	assert.Equal(t, "11954", ny.Easternmost.Key)
	assert.Equal(t, "14201", ny.Westernmost.Key)
	assert.Equal(t, "14201", ny.Northernmost.Key)
	assert.Equal(t, "10314", ny.Southernmost.Key)
}

func TestBoundaries_TiesKeepFirst(t *testing.T) {
	records := []*codec.Record{
		rec("00001", "First", "NY", 1, 1),
		rec("00002", "Second", "NY", 1, 1),
	}

	got := Boundaries(records)
	require.Len(t, got, 1)
	assert.Equal(t, "00001", got[0].Easternmost.Key)
	assert.Equal(t, "00001", got[0].Westernmost.Key)
	assert.Equal(t, "00001", got[0].Northernmost.Key)
	assert.Equal(t, "00001", got[0].Southernmost.Key)
}

func TestBoundaries_Empty(t *testing.T) {
	assert.Empty(t, Boundaries(nil))
}

func TestWriteTable(t *testing.T) {
	records := []*codec.Record{
		rec("00001", "A", "NY", 1.0, 2.0),
		rec("00002", "B", "CA", 3.0, 4.0),
		rec("00003", "C", "NY", 5.0, 6.0),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, Boundaries(records)))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Region | Easternmost | Westernmost | Northernmost | Southernmost", lines[0])
	assert.Equal(t, strings.Repeat("-", len(lines[0])), lines[1])
	assert.Equal(t, "CA | 00002 (B) | 00002 (B) | 00002 (B) | 00002 (B)", lines[2])
	assert.Equal(t, "NY | 00003 (C) | 00001 (A) | 00003 (C) | 00001 (A)", lines[3])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Boundaries([]*codec.Record{rec("00001", "A", "NY", 1, 2)})))

	var decoded []RegionBoundary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "NY", decoded[0].Region)
	assert.Equal(t, "00001", decoded[0].Easternmost.Key)
}
