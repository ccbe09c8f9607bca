package snapshot

import (
	"context"
	"fmt"
	"math/big"
)

// FeedsFetcher reads the current feeds snapshot from the consumer contract.
type FeedsFetcher interface {
	FetchAllFeeds(ctx context.Context) (*FeedsSnapshot, error)
}

// FeedsSnapshot holds the raw arrays returned by fetchAllFeeds(), positionally aligned.
type FeedsSnapshot struct {
	Indices    []*big.Int
	Symbols    []string
	Prices     []*big.Int
	Decimals   []int8
	Timestamps []uint64
}

// Len returns the number of feeds reported by the contract.
func (s *FeedsSnapshot) Len() int {
	if s == nil {
		return 0
	}

	return len(s.Indices)
}

// FeedRow is a single CSV record.
type FeedRow struct {
	Index  int64
	Symbol string

	// Price is the raw on-chain integer, Decimals is informational and never applied to it.
	Price    string
	Decimals int

	// Timestamp is ISO-8601 in UTC with millisecond precision.
	Timestamp string
}

// Result describes a successful export run.
type Result struct {
	Path    string
	Created bool
	Rows    int
}

func (r *Result) Message() string {
	if r.Created {
		return fmt.Sprintf("Created %s with header and %d rows.", r.Path, r.Rows)
	}

	return fmt.Sprintf("Appended %d rows to %s.", r.Rows, r.Path)
}
