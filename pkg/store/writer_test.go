package store

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/wbin/pkg/codec"
)

func testHeader() *codec.Header {
	return codec.NewHeader("Timisoara", 45.7558, 21.2322)
}

func testEntry(dt int64, main string) *codec.DataEntry {
	return &codec.DataEntry{
		Dt:          dt,
		DtISO:       "1970-01-01 00:00:00 +0000 UTC",
		CityName:    "Timisoara",
		Temp:        float64(dt) / 100,
		WeatherMain: main,
	}
}

func createArchive(t *testing.T, path string, entries ...*codec.DataEntry) {
	t.Helper()

	w, err := Create(path, testHeader(), WriterConfig{})
	require.NoError(t, err)
	for _, e := range entries {
		require.NoError(t, w.Append(e))
	}
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())
}

func TestCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "weather.wbin")

	hdr := testHeader()
	hdr.RecordCount = 99 // ignored, a new archive is always empty

	w, err := Create(path, hdr, WriterConfig{})
	require.NoError(t, err)
	assert.Equal(t, uint32(0), w.Count())
	assert.Equal(t, path, w.Path())
	require.NoError(t, w.Close())

	assert.FileExists(t, path)
	stat, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(codec.HeaderSize), stat.Size())

	r, err := OpenRead(path)
	require.NoError(t, err)
	defer r.Close()

	got := r.Header()
	assert.Equal(t, uint32(0), got.RecordCount)
	assert.Equal(t, "Timisoara", got.Location)
	assert.Equal(t, hdr.CreatedAt, got.CreatedAt)
}

func TestCreate_StampsMagicAndVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.wbin")

	w, err := Create(path, &codec.Header{Location: "bare"}, WriterConfig{})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := OpenRead(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, codec.CurrentVersion, r.Header().Version)
}

func TestCreate_RejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.wbin")

	hdr := testHeader()
	hdr.Version = codec.CurrentVersion + 6

	w, err := Create(path, hdr, WriterConfig{})
	assert.Nil(t, w)

	var verr *codec.VersionError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, hdr.Version, verr.Version)
	assert.NoFileExists(t, path)
}

func TestCreate_InvalidPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	w, err := Create(filepath.Join(blocker, "sub", "weather.wbin"), testHeader(), WriterConfig{})
	assert.Nil(t, w)

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "create", ioErr.Op)
}

func TestWriter_AppendFinalize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.wbin")

	w, err := Create(path, testHeader(), WriterConfig{BufferSize: 1024, SyncOnFinalize: true})
	require.NoError(t, err)

	const n = 25
	for i := 0; i < n; i++ {
		require.NoError(t, w.Append(testEntry(int64(i*100), "Clear")))
	}
	assert.Equal(t, uint32(n), w.Count())
	assert.Equal(t, uint32(0), w.Header().RecordCount)

	require.NoError(t, w.Finalize())
	assert.Equal(t, uint32(n), w.Header().RecordCount)
	require.NoError(t, w.Close())

	stat, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, codec.RecordOffset(n), stat.Size())

	r, err := OpenRead(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, uint32(n), r.Header().RecordCount)

	it, err := r.ReadAll()
	require.NoError(t, err)
	entries, err := Collect(it)
	require.NoError(t, err)
	require.Len(t, entries, n)
	for i, e := range entries {
		assert.Equal(t, int64(i*100), e.Dt)
	}
}

func TestWriter_FinalizeOnlyTouchesRecordCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.wbin")

	w, err := Create(path, testHeader(), WriterConfig{})
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, w.Append(testEntry(int64(i), "Rain")))
	}
	require.NoError(t, w.Finalize())
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, w.Append(testEntry(3, "Rain")))
	require.NoError(t, w.Finalize())
	after, err := os.ReadFile(path)
	require.NoError(t, err)

	require.Len(t, after, len(before)+codec.RecordSize)
	assert.Equal(t, before[:codec.RecordCountOffset], after[:codec.RecordCountOffset])
	assert.Equal(t, before[codec.RecordCountOffset+4:], after[codec.RecordCountOffset+4:len(before)])
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(before[codec.RecordCountOffset:]))
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(after[codec.RecordCountOffset:]))
}

func TestWriter_UnfinalizedRecordsAreInvisible(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.wbin")

	w, err := Create(path, testHeader(), WriterConfig{})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, w.Append(testEntry(int64(i), "Clear")))
	}
	require.NoError(t, w.Close())

	// The bytes are on disk...
	stat, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, codec.RecordOffset(5), stat.Size())

	// ...but the header still says zero.
	r, err := OpenRead(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, uint32(0), r.Header().RecordCount)

	it, err := r.ReadAll()
	require.NoError(t, err)
	entries, err := Collect(it)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriter_Closed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.wbin")

	w, err := Create(path, testHeader(), WriterConfig{})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	assert.ErrorIs(t, w.Append(testEntry(1, "Rain")), ErrClosed)
	assert.ErrorIs(t, w.Finalize(), ErrClosed)
}

func TestOpenAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.wbin")
	createArchive(t, path, testEntry(100, "Rain"), testEntry(200, "Clear"))

	w, err := OpenAppend(path, WriterConfig{})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), w.Count())

	require.NoError(t, w.Append(testEntry(300, "Snow")))
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())

	r, err := OpenRead(path)
	require.NoError(t, err)
	defer r.Close()

	it, err := r.ReadAll()
	require.NoError(t, err)
	entries, err := Collect(it)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []int64{100, 200, 300}, []int64{entries[0].Dt, entries[1].Dt, entries[2].Dt})
}

func TestOpenAppend_OverwritesUnfinalizedTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.wbin")

	w, err := Create(path, testHeader(), WriterConfig{})
	require.NoError(t, err)
	require.NoError(t, w.Append(testEntry(100, "Rain")))
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Append(testEntry(999, "Garbage")))
	require.NoError(t, w.Close())

	w, err = OpenAppend(path, WriterConfig{})
	require.NoError(t, err)
	require.NoError(t, w.Append(testEntry(200, "Clear")))
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, int(codec.RecordOffset(2)))
	assert.False(t, bytes.Contains(data, []byte("Garbage")))
}

func TestOpenAppend_Truncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.wbin")
	createArchive(t, path, testEntry(100, "Rain"), testEntry(200, "Clear"))
	require.NoError(t, os.Truncate(path, codec.RecordOffset(1)+10))

	_, err := OpenAppend(path, WriterConfig{})
	var terr *TruncatedFileError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, uint32(2), terr.Declared)
	assert.Equal(t, uint32(1), terr.Present)
}
