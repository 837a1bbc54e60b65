package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ssargent/geostore/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFrameReader(t *testing.T) {
	path, result := writeSampleStore(t)

	reader, err := NewFrameReader(FrameReaderConfig{FilePath: path})
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, result.Header, reader.Header())
	assert.Equal(t, result.Header.Size(), reader.Offset())
	assert.Equal(t, 0, reader.FramesRead())
}

func TestNewFrameReader_NonExistentFile(t *testing.T) {
	reader, err := NewFrameReader(FrameReaderConfig{FilePath: "/non/existent/file.dat"})
	assert.Error(t, err)
	assert.True(t, os.IsNotExist(err))
	assert.Nil(t, reader)
}

func TestFrameReader_FrameOffsets(t *testing.T) {
	path, result := writeSampleStore(t)

	reader, err := NewFrameReader(FrameReaderConfig{FilePath: path})
	require.NoError(t, err)
	defer reader.Close()

	var offsets []int64
	var keys []string
	for reader.Next() {
		offsets = append(offsets, reader.FrameOffset())
		keys = append(keys, codec.KeyOf(reader.Frame()))
	}
	require.NoError(t, reader.Err())

	assert.Equal(t, result.Offsets, offsets)
	assert.Equal(t, []string{"00001", "00002", "00003"}, keys)
	assert.Equal(t, 3, reader.FramesRead())
	assert.Equal(t, result.Size, reader.Offset())

	// Exhausted reader stays exhausted
	assert.False(t, reader.Next())
	assert.NoError(t, reader.Err())
}

func TestFrameReader_TypeTagMismatch(t *testing.T) {
	path, _ := writeSampleStore(t)

	_, err := NewFrameReader(FrameReaderConfig{FilePath: path, TypeTag: "SomethingElse"})
	assert.ErrorIs(t, err, ErrCorruption)

	reader, err := NewFrameReader(FrameReaderConfig{FilePath: path, TypeTag: DefaultTypeTag})
	require.NoError(t, err)
	assert.NoError(t, reader.Close())
}

func TestReadAll(t *testing.T) {
	path, _ := writeSampleStore(t)

	result, err := ReadAll(StoreReaderConfig{FilePath: path, Logger: discardLogger})
	require.NoError(t, err)

	assert.Equal(t, uint32(3), result.Header.RecordCount)
	assert.Equal(t, 3, result.FramesRead)
	assert.Equal(t, 0, result.Dropped)
	require.Len(t, result.Records, 3)
	for i, want := range sampleRecords() {
		assert.Equal(t, *want, *result.Records[i])
	}
}

func TestReadAll_NonExistentFile(t *testing.T) {
	_, err := ReadAll(StoreReaderConfig{FilePath: filepath.Join(t.TempDir(), "missing.dat")})
	assert.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestReadAll_DropsUndecodableRecords(t *testing.T) {
	path := newValidRawStore(3).
		frame("00001,A,NY,X,1,2").
		frame("00002,B,CA,Y,north,4").
		frame("00003,C,NY,Z,5,6").
		save(t)

	result, err := ReadAll(StoreReaderConfig{FilePath: path, Logger: discardLogger})
	require.NoError(t, err)

	// All frames consumed, one record dropped
	assert.Equal(t, 3, result.FramesRead)
	assert.Equal(t, 1, result.Dropped)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "00001", result.Records[0].Key)
	assert.Equal(t, "00003", result.Records[1].Key)
}

func TestReadAll_PropagatesUndecodableRecords(t *testing.T) {
	path := newValidRawStore(2).
		frame("00001,A,NY,X,1,2").
		frame("00002,B,CA,Y,,").
		save(t)

	result, err := ReadAll(StoreReaderConfig{FilePath: path, OnDecodeFailure: Propagate, Logger: discardLogger})
	assert.ErrorIs(t, err, codec.ErrDecode)
	assert.Nil(t, result)
}

func TestReadAll_Corruption(t *testing.T) {
	testCases := []struct {
		name    string
		store   *rawStore
		wantErr error
	}{
		{
			name:    "empty file",
			store:   &rawStore{},
			wantErr: ErrTruncatedStore,
		},
		{
			name:    "tag without terminator",
			store:   (&rawStore{}).bytes([]byte(DefaultTypeTag)...),
			wantErr: ErrTruncatedStore,
		},
		{
			name:    "header fields cut short",
			store:   (&rawStore{}).bytes(append([]byte(DefaultTypeTag), 0, 1, 0, 33)...),
			wantErr: ErrTruncatedStore,
		},
		{
			name:    "declared count exceeds frames",
			store:   newValidRawStore(3).frame("00001,A,NY,X,1,2").frame("00002,B,CA,Y,3,4"),
			wantErr: ErrTruncatedStore,
		},
		{
			name:    "partial length field",
			store:   newValidRawStore(2).frame("00001,A,NY,X,1,2").bytes(5, 0),
			wantErr: ErrTruncatedStore,
		},
		{
			name:    "payload shorter than length",
			store:   newValidRawStore(1).bytes(100, 0, 0, 0).bytes([]byte("00001,A")...),
			wantErr: ErrTruncatedStore,
		},
		{
			name:    "huge declared length",
			store:   newValidRawStore(1).bytes(0xFF, 0xFF, 0xFF, 0xFF),
			wantErr: ErrTruncatedStore,
		},
		{
			name:    "trailing bytes after last frame",
			store:   newValidRawStore(1).frame("00001,A,NY,X,1,2").bytes(1, 2, 3),
			wantErr: ErrCorruption,
		},
		{
			name:    "header length mismatch",
			store:   newRawStore(DefaultTypeTag, FormatVersion, 99, 0),
			wantErr: ErrCorruption,
		},
		{
			name:    "unsupported version",
			store:   newRawStore(DefaultTypeTag, 2, uint32(len(DefaultTypeTag)+11), 0),
			wantErr: ErrUnsupportedVersion,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := tc.store.save(t)

			result, err := ReadAll(StoreReaderConfig{FilePath: path, Logger: discardLogger})
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, result)
		})
	}
}

func TestReadAll_UnterminatedLongTag(t *testing.T) {
	tag := make([]byte, MaxTypeTagLength+20)
	for i := range tag {
		tag[i] = 'x'
	}
	path := (&rawStore{}).bytes(tag...).bytes(0).save(t)

	_, err := ReadAll(StoreReaderConfig{FilePath: path, Logger: discardLogger})
	assert.ErrorIs(t, err, ErrCorruption)
}

func TestReadAll_EmptyPayloadFrame(t *testing.T) {
	path := newValidRawStore(2).frame("").frame("00002,B,CA,Y,3,4").save(t)

	result, err := ReadAll(StoreReaderConfig{FilePath: path, Logger: discardLogger})
	require.NoError(t, err)
	assert.Equal(t, 2, result.FramesRead)
	assert.Equal(t, 1, result.Dropped)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "00002", result.Records[0].Key)
}

func TestReadHeader(t *testing.T) {
	path, result := writeSampleStore(t)

	header, err := ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, result.Header, header)
	assert.Equal(t, DefaultTypeTag, header.TypeTag)
	assert.Equal(t, FormatVersion, header.Version)
}

func TestReadFrameAt(t *testing.T) {
	path, result := writeSampleStore(t)

	for i, offset := range result.Offsets {
		data, err := ReadFrameAt(path, offset)
		require.NoError(t, err)
		assert.Equal(t, sampleRecords()[i].Key, codec.KeyOf(data))
	}
}

func TestReadFrameAt_OutOfBounds(t *testing.T) {
	path, result := writeSampleStore(t)

	testCases := []struct {
		name   string
		offset int64
	}{
		{"negative", -1},
		{"past end", result.Size + 10},
		{"inside last length field", result.Size - 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadFrameAt(path, tc.offset)
			assert.ErrorIs(t, err, ErrTruncatedStore)
		})
	}
}

func TestReadFrameAt_TruncatedPayload(t *testing.T) {
	path, result := writeSampleStore(t)

	// Cut the last frame in half
	require.NoError(t, os.Truncate(path, result.Size-5))

	_, err := ReadFrameAt(path, result.Offsets[2])
	assert.ErrorIs(t, err, ErrTruncatedStore)

	// Earlier frames are still readable
	data, err := ReadFrameAt(path, result.Offsets[0])
	require.NoError(t, err)
	assert.Equal(t, "00001", codec.KeyOf(data))
}

func TestReadFrameAt_MissingFile(t *testing.T) {
	_, err := ReadFrameAt(filepath.Join(t.TempDir(), "missing.dat"), 0)
	assert.True(t, os.IsNotExist(err))
}
