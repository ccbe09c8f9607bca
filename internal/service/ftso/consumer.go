package ftso

import (
	"context"
	"math/big"
	"net"
	"net/url"

	"github.com/InjectiveLabs/metrics"
	log "github.com/InjectiveLabs/suplog"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github.com/InjectiveLabs/feeds-snapshot/internal/service/snapshot"
)

// DefaultConsumerAddress is the FTSOConsumer deployment on Coston2.
const DefaultConsumerAddress = "0x431ac67aCC345d42F27e2119aC92B4f6dAd69Ed4"

type consumer struct {
	address  common.Address
	contract *bind.BoundContract

	logger  log.Logger
	svcTags metrics.Tags
}

// NewConsumer binds the FTSOConsumer at address to caller. A zero-value ABI selects the embedded one.
func NewConsumer(caller bind.ContractCaller, address string, contractABI abi.ABI) (snapshot.FeedsFetcher, error) {
	if !common.IsHexAddress(address) {
		return nil, errors.Errorf("invalid consumer contract address: %s", address)
	}

	if contractABI.Methods == nil {
		parsed, err := ParseConsumerABI()
		if err != nil {
			return nil, err
		}

		contractABI = parsed
	}

	if _, ok := contractABI.Methods[fetchAllFeedsMethod]; !ok {
		return nil, errors.Errorf("consumer ABI has no %s method", fetchAllFeedsMethod)
	}

	addr := common.HexToAddress(address)
	c := &consumer{
		address:  addr,
		contract: bind.NewBoundContract(addr, contractABI, caller, nil, nil),
		logger: log.WithFields(log.Fields{
			"svc":      "ftso",
			"contract": addr.Hex(),
		}),
		svcTags: metrics.Tags{
			"svc": "ftso",
		},
	}

	return c, nil
}

// FetchAllFeeds calls the read-only fetchAllFeeds() method at the latest block.
func (c *consumer) FetchAllFeeds(ctx context.Context) (snap *snapshot.FeedsSnapshot, err error) {
	defer metrics.ReportFuncCallAndTimingWithErr(c.svcTags)(&err)

	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, fetchAllFeedsMethod); err != nil {
		c.logger.WithError(err).Debugln("fetchAllFeeds call failed")
		return nil, classifyCallError(err)
	}

	if len(out) != 5 {
		err := errors.Errorf("fetchAllFeeds returned %d values, expected 5", len(out))
		return nil, snapshot.Classify(snapshot.KindContract, err)
	}

	snap = &snapshot.FeedsSnapshot{}
	converters := []func(interface{}) error{
		func(v interface{}) (err error) {
			snap.Indices, err = convert[[]*big.Int](v, "indices")
			return err
		},
		func(v interface{}) (err error) {
			snap.Symbols, err = convert[[]string](v, "symbols")
			return err
		},
		func(v interface{}) (err error) {
			snap.Prices, err = convert[[]*big.Int](v, "prices")
			return err
		},
		func(v interface{}) (err error) {
			snap.Decimals, err = convert[[]int8](v, "decimals")
			return err
		},
		func(v interface{}) (err error) {
			snap.Timestamps, err = convert[[]uint64](v, "timestamps")
			return err
		},
	}

	for i, fn := range converters {
		if err := fn(out[i]); err != nil {
			return nil, snapshot.Classify(snapshot.KindContract, err)
		}
	}

	c.logger.WithField("feeds", snap.Len()).Debugln("fetched all feeds")

	return snap, nil
}

func convert[T any](v interface{}, name string) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("unexpected type %T for %s", v, name)
		}
	}()

	return *abi.ConvertType(v, new(T)).(*T), nil
}

// classifyCallError tells transport failures apart from errors reported by the node or the ABI layer.
func classifyCallError(err error) error {
	wrapped := errors.Wrap(err, "fetchAllFeeds call failed")

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return snapshot.Classify(snapshot.KindContract, wrapped)
	}

	if errors.Is(err, bind.ErrNoCode) {
		return snapshot.Classify(snapshot.KindContract, wrapped)
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return snapshot.Classify(snapshot.KindNetwork, wrapped)
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return snapshot.Classify(snapshot.KindNetwork, wrapped)
	}

	// remaining failures come from unpacking the returned data
	return snapshot.Classify(snapshot.KindContract, wrapped)
}
