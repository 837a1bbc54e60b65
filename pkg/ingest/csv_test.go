package ingest

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ssargent/geostore/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const sampleCSV = `"zip_code","place_name","state","county","lat","lng"
00001,A,NY,X,1.0,2.0
00002,B,CA,Y,3.0,4.0
00003,C,NY,Z,5.0,6.0
`

func TestReadCSV(t *testing.T) {
	result, err := ReadCSV(strings.NewReader(sampleCSV), Config{Logger: discardLogger})
	require.NoError(t, err)

	assert.Equal(t, 3, result.RowsRead)
	assert.Equal(t, 0, result.Dropped)
	require.Len(t, result.Records, 3)
	assert.Equal(t, codec.Record{Key: "00002", PlaceLabel: "B", Region: "CA", Subregion: "Y", Latitude: 3.0, Longitude: 4.0}, *result.Records[1])
}

func TestReadCSV_BlankCoordinatesReadAsZero(t *testing.T) {
	input := "zip,place,state,county,lat,lng\n" +
		"00501,Holtsville,NY,Suffolk,,\n" +
		"00544,Holtsville,NY,Suffolk, 40.81 ,\n"

	result, err := ReadCSV(strings.NewReader(input), Config{Logger: discardLogger})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)

	assert.Equal(t, 0.0, result.Records[0].Latitude)
	assert.Equal(t, 0.0, result.Records[0].Longitude)
	assert.Equal(t, 40.81, result.Records[1].Latitude)
}

func TestReadCSV_MissingColumns(t *testing.T) {
	input := "zip,place,state,county,lat,lng\n00601,Adjuntas,PR\n"

	result, err := ReadCSV(strings.NewReader(input), Config{Logger: discardLogger})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, codec.Record{Key: "00601", PlaceLabel: "Adjuntas", Region: "PR"}, *result.Records[0])
}

func TestReadCSV_DropsInvalidRows(t *testing.T) {
	testCases := []struct {
		name string
		row  string
	}{
		{"malformed latitude", "00001,A,NY,X,north,2.0"},
		{"malformed longitude", "00001,A,NY,X,1.0,west"},
		{"NaN latitude", "00001,A,NY,X,NaN,2.0"},
		{"infinite longitude", "00001,A,NY,X,1.0,-Inf"},
		{"empty key", ",A,NY,X,1.0,2.0"},
		{"key with space", "000 01,A,NY,X,1.0,2.0"},
		{"quoted delimiter in place", `00001,"Washington, DC",DC,X,1.0,2.0`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := "h1,h2,h3,h4,h5,h6\n" + tc.row + "\n00002,B,CA,Y,3.0,4.0\n"

			result, err := ReadCSV(strings.NewReader(input), Config{Logger: discardLogger})
			require.NoError(t, err)

			assert.Equal(t, 2, result.RowsRead)
			assert.Equal(t, 1, result.Dropped)
			require.Len(t, result.Records, 1)
			assert.Equal(t, "00002", result.Records[0].Key)
		})
	}
}

func TestReadCSV_Empty(t *testing.T) {
	result, err := ReadCSV(strings.NewReader(""), Config{Logger: discardLogger})
	require.NoError(t, err)
	assert.Empty(t, result.Records)

	result, err = ReadCSV(strings.NewReader("zip,place,state,county,lat,lng\n"), Config{Logger: discardLogger})
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Equal(t, 0, result.RowsRead)
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zips.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0600))

	result, err := LoadCSV(path, Config{Logger: discardLogger})
	require.NoError(t, err)
	assert.Len(t, result.Records, 3)

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), Config{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
