package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRows = []FeedRow{
	{Index: 0, Symbol: "FLR/USD", Price: "2345", Decimals: 6, Timestamp: "2023-11-14T22:13:20.000Z"},
	{Index: 1, Symbol: "BTC/USD", Price: "650000000000", Decimals: 8, Timestamp: "2023-11-14T22:13:20.000Z"},
}

func readLines(t *testing.T, path string) []string {
	t.Helper()

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(body), "\n"))

	return strings.Split(strings.TrimSuffix(string(body), "\n"), "\n")
}

func TestStoreCreatesWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	store := NewStore(path, nil, false)

	created, err := store.Write(testRows)
	require.NoError(t, err)
	assert.True(t, created)

	lines := readLines(t, path)
	require.Len(t, lines, 3)
	assert.Equal(t, "index,symbol,price,decimals,timestamp", lines[0])
	assert.Equal(t, "0,FLR/USD,2345,6,2023-11-14T22:13:20.000Z", lines[1])
	assert.Equal(t, "1,BTC/USD,650000000000,8,2023-11-14T22:13:20.000Z", lines[2])
}

func TestStoreAppendsWithoutHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	store := NewStore(path, nil, false)

	_, err := store.Write(testRows)
	require.NoError(t, err)

	created, err := store.Write(testRows)
	require.NoError(t, err)
	assert.False(t, created)

	lines := readLines(t, path)
	require.Len(t, lines, 5)

	headers := 0
	for _, l := range lines {
		if l == "index,symbol,price,decimals,timestamp" {
			headers++
		}
	}
	assert.Equal(t, 1, headers)
	assert.Equal(t, lines[1:3], lines[3:5])
}

func TestStoreAppendsToForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0o644))

	created, err := NewStore(path, nil, false).Write(testRows[:1])
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, []string{"existing", "0,FLR/USD,2345,6,2023-11-14T22:13:20.000Z"}, readLines(t, path))
}

func TestStoreZeroRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	store := NewStore(path, nil, false)

	created, err := store.Write(nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{"index,symbol,price,decimals,timestamp"}, readLines(t, path))

	created, err = store.Write(nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, readLines(t, path), 1)
}

func TestStoreWithLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	store := NewStore(path, NewEncoder(true), true)

	created, err := store.Write(testRows)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.Write(testRows)
	require.NoError(t, err)
	assert.False(t, created)

	assert.Len(t, readLines(t, path), 5)
}

func TestStoreCreatesMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", DefaultFileName)

	created, err := NewStore(path, nil, false).Write(testRows)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, readLines(t, path), 3)
}

func TestStoreFilesystemError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// a regular file used as a directory cannot hold the snapshot
	_, err := NewStore(filepath.Join(blocker, DefaultFileName), nil, false).Write(testRows)
	require.Error(t, err)
	assert.Equal(t, KindFilesystem, KindOf(err))
}

func TestStoreRemovesPartialFileOnCreateFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	store := NewStore(path, nil, false)
	store.writeFn = func(f *os.File, data []byte) error {
		_, _ = f.Write(data[:10])
		_ = f.Close()
		return errors.New("no space left on device")
	}

	_, err := store.Write(testRows)
	require.Error(t, err)
	assert.Equal(t, KindFilesystem, KindOf(err))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	// the next run starts over with a header
	store.writeFn = writeAndClose
	created, err := store.Write(testRows)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, readLines(t, path), 3)
}
