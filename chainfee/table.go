package chainfee

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/xchainjs/xchainjs-lib-sub000/esplora"
	"golang.org/x/sync/errgroup"
)

const (
	// MinTableTarget is the lowest confirmation target in a fee table.
	MinTableTarget uint32 = 1

	// MaxTableTarget is the highest confirmation target in a fee table.
	MaxTableTarget uint32 = 10

	// DefaultBlockInterval is the assumed block spacing when it can't be
	// computed from recent blocks.
	DefaultBlockInterval = 10 * time.Minute
)

// TableSource is the part of the esplora API a fee table is built from.
type TableSource interface {
	EstimateSource

	// GetBlocks returns recent blocks, newest first.
	GetBlocks(ctx context.Context,
		start fn.Option[int64]) ([]*esplora.BlockInfo, error)
}

// FeeEntry is the fee estimate for a single confirmation target.
type FeeEntry struct {
	// Target is the confirmation target in blocks.
	Target uint32

	// FeeRate is the rate needed to confirm within Target blocks.
	FeeRate SatPerVByte

	// Fee is the total fee of the sized transaction at FeeRate.
	Fee btcutil.Amount

	// ConfirmationTime is the expected wait for Target blocks.
	ConfirmationTime time.Duration
}

// FeeTable holds one entry per target, ordered by ascending target.
type FeeTable []FeeEntry

// Entry returns the entry for the given target.
func (t FeeTable) Entry(target uint32) (FeeEntry, bool) {
	for _, e := range t {
		if e.Target == target {
			return e, true
		}
	}

	return FeeEntry{}, false
}

// BlockInterval returns the mean spacing between the timestamps of the
// given blocks. With fewer than two blocks, or non-increasing timestamps,
// DefaultBlockInterval is returned.
func BlockInterval(blocks []*esplora.BlockInfo) time.Duration {
	if len(blocks) < 2 {
		return DefaultBlockInterval
	}

	sorted := make([]*esplora.BlockInfo, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Height < sorted[j].Height
	})

	first, last := sorted[0], sorted[len(sorted)-1]
	span := last.Timestamp - first.Timestamp
	heights := last.Height - first.Height
	if span <= 0 || heights <= 0 {
		return DefaultBlockInterval
	}

	return time.Duration(span) * time.Second / time.Duration(heights)
}

// NewFeeTable builds the table for targets MinTableTarget..MaxTableTarget
// out of raw estimates. Rates are rounded up to whole sat/vb and a lower
// target never gets a lower rate than a higher one.
func NewFeeTable(estimates esplora.FeeEstimates, vsize int64,
	interval time.Duration) (FeeTable, error) {

	if len(estimates.Targets()) == 0 {
		return nil, ErrNoEstimates
	}

	table := make(FeeTable, MaxTableTarget-MinTableTarget+1)

	var floor SatPerVByte
	for target := MaxTableTarget; target >= MinTableTarget; target-- {
		raw, _ := estimates.RateForTarget(target)

		rate := NewSatPerVByte(raw)
		if rate < floor {
			rate = floor
		}
		floor = rate

		table[target-MinTableTarget] = FeeEntry{
			Target:           target,
			FeeRate:          rate,
			Fee:              rate.FeeForVSize(vsize),
			ConfirmationTime: time.Duration(target) * interval,
		}
	}

	return table, nil
}

// BuildFeeTable fetches fee estimates and recent blocks concurrently and
// returns the fee table for a transaction of vsize vbytes. A failure to
// fetch blocks only degrades the confirmation times to DefaultBlockInterval.
func BuildFeeTable(ctx context.Context, src TableSource,
	vsize int64) (FeeTable, error) {

	var (
		estimates esplora.FeeEstimates
		interval  = DefaultBlockInterval
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		estimates, err = src.GetFeeEstimates(gctx)
		if err != nil {
			return fmt.Errorf("unable to fetch fee estimates: %w",
				err)
		}

		return nil
	})
	g.Go(func() error {
		blocks, err := src.GetBlocks(gctx, fn.None[int64]())
		if err != nil {
			log.Warnf("Unable to fetch recent blocks, assuming "+
				"%v block interval: %v", DefaultBlockInterval,
				err)

			return nil
		}
		interval = BlockInterval(blocks)

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return NewFeeTable(estimates, vsize, interval)
}
