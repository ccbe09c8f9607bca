package snapshot

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const isoMillisLayout = "2006-01-02T15:04:05.000Z"

// MaxTimestamp is the largest Unix-seconds value whose millisecond form fits in int64.
const MaxTimestamp = uint64(math.MaxInt64 / 1000)

// BuildRows zips the snapshot arrays into rows, keeping the contract order.
func BuildRows(snap *FeedsSnapshot) ([]FeedRow, error) {
	n := snap.Len()
	if n == 0 {
		return []FeedRow{}, nil
	}

	if len(snap.Symbols) < n || len(snap.Prices) < n || len(snap.Decimals) < n || len(snap.Timestamps) < n {
		err := errors.Errorf(
			"misaligned feeds arrays: indices=%d symbols=%d prices=%d decimals=%d timestamps=%d",
			n, len(snap.Symbols), len(snap.Prices), len(snap.Decimals), len(snap.Timestamps),
		)
		return nil, Classify(KindContract, err)
	}

	rows := make([]FeedRow, 0, n)
	for i := 0; i < n; i++ {
		idx := snap.Indices[i]
		if idx == nil || !idx.IsInt64() {
			err := errors.Errorf("feed index at position %d is out of int64 range: %v", i, idx)
			return nil, Classify(KindContract, err)
		}

		price := snap.Prices[i]
		if price == nil {
			err := errors.Errorf("feed price at position %d is missing", i)
			return nil, Classify(KindContract, err)
		}

		ts, err := FormatTimestamp(snap.Timestamps[i])
		if err != nil {
			return nil, Classify(KindContract, errors.Wrapf(err, "feed timestamp at position %d", i))
		}

		rows = append(rows, FeedRow{
			Index:     idx.Int64(),
			Symbol:    snap.Symbols[i],
			Price:     decimal.NewFromBigInt(price, 0).String(),
			Decimals:  int(snap.Decimals[i]),
			Timestamp: ts,
		})
	}

	return rows, nil
}

// FormatTimestamp renders Unix seconds as an ISO-8601 UTC string with milliseconds.
func FormatTimestamp(unixSeconds uint64) (string, error) {
	if unixSeconds > MaxTimestamp {
		return "", errors.Errorf("unix timestamp %d overflows millisecond precision", unixSeconds)
	}

	return time.UnixMilli(int64(unixSeconds) * 1000).UTC().Format(isoMillisLayout), nil
}

// FindRow returns the first row with the given symbol.
func FindRow(rows []FeedRow, symbol string) (FeedRow, bool) {
	for _, r := range rows {
		if r.Symbol == symbol {
			return r, true
		}
	}

	return FeedRow{}, false
}
