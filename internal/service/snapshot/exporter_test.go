package snapshot

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFetcher struct {
	snap  *FeedsSnapshot
	err   error
	calls int
}

func (f *staticFetcher) FetchAllFeeds(_ context.Context) (*FeedsSnapshot, error) {
	f.calls++
	return f.snap, f.err
}

func btcSnapshot() *FeedsSnapshot {
	return &FeedsSnapshot{
		Indices:    []*big.Int{big.NewInt(7)},
		Symbols:    []string{"BTC/USD"},
		Prices:     []*big.Int{big.NewInt(650000000000)},
		Decimals:   []int8{8},
		Timestamps: []uint64{1700000000},
	}
}

func TestExporterRunCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	fetcher := &staticFetcher{snap: btcSnapshot()}

	res, err := NewExporter(fetcher, NewStore(path, nil, false)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, &Result{Path: path, Created: true, Rows: 1}, res)
	assert.Equal(t, "Created "+path+" with header and 1 rows.", res.Message())

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"index,symbol,price,decimals,timestamp\n"+
			"7,BTC/USD,650000000000,8,2023-11-14T22:13:20.000Z\n",
		string(body),
	)
}

func TestExporterRunTwiceAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	exporter := NewExporter(&staticFetcher{snap: btcSnapshot()}, NewStore(path, nil, false))

	_, err := exporter.Run(context.Background())
	require.NoError(t, err)

	res, err := exporter.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, "Appended 1 rows to "+path+".", res.Message())

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"index,symbol,price,decimals,timestamp\n"+
			"7,BTC/USD,650000000000,8,2023-11-14T22:13:20.000Z\n"+
			"7,BTC/USD,650000000000,8,2023-11-14T22:13:20.000Z\n",
		string(body),
	)
}

func TestExporterRunFetchFailureLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	fetcher := &staticFetcher{err: errors.New("connection refused")}

	res, err := NewExporter(fetcher, NewStore(path, nil, false)).Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Contains(t, err.Error(), "connection refused")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExporterRunKeepsFetcherClassification(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	fetcher := &staticFetcher{err: Classify(KindContract, errors.New("execution reverted"))}

	_, err := NewExporter(fetcher, NewStore(path, nil, false)).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindContract, KindOf(err))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExporterFetchDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	rows, err := NewExporter(&staticFetcher{snap: btcSnapshot()}, NewStore(path, nil, false)).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "BTC/USD", rows[0].Symbol)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
