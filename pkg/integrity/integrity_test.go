package integrity

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/wbin/pkg/codec"
	"github.com/ssargent/wbin/pkg/store"
)

func writeArchive(t *testing.T, n int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "weather.wbin")
	w, err := store.Create(path, codec.NewHeader("Timisoara", 45.7558, 21.2322), store.WriterConfig{})
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, w.Append(&codec.DataEntry{Dt: int64(i), WeatherMain: "Clear"}))
	}
	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())
	return path
}

func requireReason(t *testing.T, err error, reason Reason) {
	t.Helper()

	var ierr *IntegrityError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, reason, ierr.Reason)
}

func TestVerify_Valid(t *testing.T) {
	path := writeArchive(t, 4)

	report, err := Verify(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), report.Header.RecordCount)
	assert.Equal(t, report.ExpectedSize, report.FileSize)
	assert.Equal(t, int64(0), report.TrailingBytes)
}

func TestVerify_EmptyArchive(t *testing.T) {
	report, err := Verify(writeArchive(t, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(codec.HeaderSize), report.FileSize)
}

func TestVerify_BadMagic(t *testing.T) {
	testCases := []struct {
		name  string
		magic string
	}{
		{name: "lowercase", magic: "wbin"},
		{name: "zeroes", magic: "\x00\x00\x00\x00"},
		{name: "other format", magic: "PK\x03\x04"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeArchive(t, 2)
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			copy(data, tc.magic)
			require.NoError(t, os.WriteFile(path, data, 0600))

			_, err = Verify(path)
			requireReason(t, err, ReasonBadMagic)
			assert.ErrorIs(t, err, codec.ErrBadMagic)
		})
	}
}

func TestVerify_BadMagicWinsOverSize(t *testing.T) {
	path := writeArchive(t, 3)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	copy(data, "XXXX")
	require.NoError(t, os.WriteFile(path, data[:codec.HeaderSize], 0600))

	_, err = Verify(path)
	requireReason(t, err, ReasonBadMagic)
}

func TestVerify_BadVersion(t *testing.T) {
	path := writeArchive(t, 1)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(data[4:8], 7)
	require.NoError(t, os.WriteFile(path, data, 0600))

	_, err = Verify(path)
	requireReason(t, err, ReasonBadVersion)
}

func TestVerify_Truncated(t *testing.T) {
	path := writeArchive(t, 3)
	require.NoError(t, os.Truncate(path, codec.RecordOffset(3)-1))

	_, err := Verify(path)
	requireReason(t, err, ReasonTruncated)
}

func TestVerify_Unreadable(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := Verify(filepath.Join(t.TempDir(), "missing.wbin"))
		requireReason(t, err, ReasonUnreadable)
	})

	t.Run("short header", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "short.wbin")
		require.NoError(t, os.WriteFile(path, []byte("WBIN\x01"), 0600))
		_, err := Verify(path)
		requireReason(t, err, ReasonUnreadable)
	})
}

func TestVerify_TrailingBytes(t *testing.T) {
	path := writeArchive(t, 2)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.Write(make([]byte, 2*codec.RecordSize+3))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	t.Run("lenient", func(t *testing.T) {
		report, err := Verify(path)
		require.NoError(t, err)
		assert.Equal(t, int64(2*codec.RecordSize+3), report.TrailingBytes)
		assert.Equal(t, int64(2), report.UnfinalizedRecords())
	})

	t.Run("strict", func(t *testing.T) {
		_, err := (&Checker{Strict: true}).Verify(path)
		requireReason(t, err, ReasonTrailingData)
	})
}

func TestVerify_DoesNotModify(t *testing.T) {
	path := writeArchive(t, 2)
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	statBefore, err := os.Stat(path)
	require.NoError(t, err)

	_, err = Verify(path)
	require.NoError(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	statAfter, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, statBefore.ModTime(), statAfter.ModTime())
}
