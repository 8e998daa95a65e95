package chainfee

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/ticker"
	"github.com/xchainjs/xchainjs-lib-sub000/esplora"
)

const (
	// DefaultUpdateInterval is the default interval at which the esplora
	// estimator refreshes its cached fee estimates.
	DefaultUpdateInterval = 5 * time.Minute

	// DefaultFallbackFeeRate is used when no estimate could be fetched.
	DefaultFallbackFeeRate SatPerVByte = 20

	// fetchTimeout bounds a single refresh of the fee estimates.
	fetchTimeout = 30 * time.Second
)

// ErrNoEstimates is returned when the fee source answers without any usable
// estimate.
var ErrNoEstimates = errors.New("no fee estimates available")

// Estimator provides the ability to estimate on-chain transaction fees for
// various desired confirmation times (measured by number of blocks).
type Estimator interface {
	// EstimateFeePerVByte takes in a target for the number of blocks
	// until an initial confirmation and returns the estimated fee
	// expressed in sat/vb.
	EstimateFeePerVByte(numBlocks uint32) (SatPerVByte, error)

	// Start signals the Estimator to start any processes or goroutines
	// it needs to perform its duty.
	Start() error

	// Stop stops any spawned goroutines and cleans up the resources used
	// by the fee estimator.
	Stop() error

	// RelayFeePerVByte returns the minimum fee rate required for
	// transactions to be relayed.
	RelayFeePerVByte() SatPerVByte
}

// StaticEstimator will return a static value for all fee calculation
// requests.
type StaticEstimator struct {
	// feePerVByte is the static fee rate in sat/vb that will be returned
	// by this fee estimator.
	feePerVByte SatPerVByte

	// relayFee is the minimum fee rate required for transactions to be
	// relayed.
	relayFee SatPerVByte
}

// NewStaticEstimator returns a new static fee estimator instance.
func NewStaticEstimator(feePerVByte, relayFee SatPerVByte) *StaticEstimator {
	return &StaticEstimator{
		feePerVByte: feePerVByte,
		relayFee:    relayFee,
	}
}

// EstimateFeePerVByte will return a static value for fee calculations.
//
// NOTE: This method is part of the Estimator interface.
func (e StaticEstimator) EstimateFeePerVByte(uint32) (SatPerVByte, error) {
	return e.feePerVByte, nil
}

// RelayFeePerVByte returns the minimum fee rate required for transactions to
// be relayed.
//
// NOTE: This method is part of the Estimator interface.
func (e StaticEstimator) RelayFeePerVByte() SatPerVByte {
	return e.relayFee
}

// Start signals the Estimator to start any processes or goroutines it needs
// to perform its duty.
//
// NOTE: This method is part of the Estimator interface.
func (e StaticEstimator) Start() error {
	return nil
}

// Stop stops any spawned goroutines and cleans up the resources used by the
// fee estimator.
//
// NOTE: This method is part of the Estimator interface.
func (e StaticEstimator) Stop() error {
	return nil
}

// A compile-time assertion to ensure that StaticEstimator implements the
// Estimator interface.
var _ Estimator = (*StaticEstimator)(nil)

// EstimateSource is the part of the esplora API the estimator needs.
type EstimateSource interface {
	// GetFeeEstimates returns the fee rate per confirmation target.
	GetFeeEstimates(ctx context.Context) (esplora.FeeEstimates, error)
}

// EsploraEstimatorConfig holds the configuration of the esplora backed fee
// estimator.
type EsploraEstimatorConfig struct {
	// FallbackFeeRate is the fee rate returned when no estimate could be
	// obtained from the API.
	FallbackFeeRate SatPerVByte

	// MinFeeRate is the lowest fee rate that will ever be returned. It
	// is also reported as the relay fee.
	MinFeeRate SatPerVByte

	// UpdateInterval is the interval at which the cached estimates are
	// refreshed.
	UpdateInterval time.Duration

	// Ticker overrides the refresh ticker. If nil, one is created from
	// UpdateInterval.
	Ticker ticker.Ticker

	// Clock is used to timestamp refreshes. Defaults to the system clock.
	Clock clock.Clock
}

// DefaultEsploraEstimatorConfig returns a config with sensible defaults.
func DefaultEsploraEstimatorConfig() *EsploraEstimatorConfig {
	return &EsploraEstimatorConfig{
		FallbackFeeRate: DefaultFallbackFeeRate,
		MinFeeRate:      FeePerVByteFloor,
		UpdateInterval:  DefaultUpdateInterval,
	}
}

// EsploraEstimator is an implementation of the Estimator interface that
// caches the /fee-estimates answer of an esplora API.
type EsploraEstimator struct {
	started int32
	stopped int32

	cfg *EsploraEstimatorConfig

	source EstimateSource

	ticker ticker.Ticker

	// feeCache stores the last fetched estimates keyed by target.
	feeCacheMtx sync.RWMutex
	feeCache    esplora.FeeEstimates
	lastUpdate  time.Time

	quit chan struct{}
	wg   sync.WaitGroup
}

// Compile time check to ensure EsploraEstimator implements Estimator.
var _ Estimator = (*EsploraEstimator)(nil)

// NewEsploraEstimator creates a new estimator fed by the given source.
func NewEsploraEstimator(source EstimateSource,
	cfg *EsploraEstimatorConfig) *EsploraEstimator {

	if cfg == nil {
		cfg = DefaultEsploraEstimatorConfig()
	}
	if cfg.MinFeeRate < FeePerVByteFloor {
		cfg.MinFeeRate = FeePerVByteFloor
	}
	if cfg.FallbackFeeRate < cfg.MinFeeRate {
		cfg.FallbackFeeRate = cfg.MinFeeRate
	}
	if cfg.UpdateInterval <= 0 {
		cfg.UpdateInterval = DefaultUpdateInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewDefaultClock()
	}

	t := cfg.Ticker
	if t == nil {
		t = ticker.New(cfg.UpdateInterval)
	}

	return &EsploraEstimator{
		cfg:    cfg,
		source: source,
		ticker: t,
		quit:   make(chan struct{}),
	}
}

// Start signals the estimator to start any processes or goroutines it needs
// to perform its duty.
//
// NOTE: This is part of the chainfee.Estimator interface.
func (e *EsploraEstimator) Start() error {
	if atomic.AddInt32(&e.started, 1) != 1 {
		return nil
	}

	log.Info("Starting esplora fee estimator")

	// A failed initial fetch isn't fatal, we'll answer with the fallback
	// rate until the next refresh succeeds.
	if err := e.updateFeeCache(); err != nil {
		log.Warnf("Failed to fetch initial fee estimates: %v", err)
	}

	e.ticker.Resume()

	e.wg.Add(1)
	go e.feeUpdateLoop()

	return nil
}

// Stop stops any spawned goroutines and cleans up the resources used by the
// fee estimator.
//
// NOTE: This is part of the chainfee.Estimator interface.
func (e *EsploraEstimator) Stop() error {
	if atomic.AddInt32(&e.stopped, 1) != 1 {
		return nil
	}

	log.Info("Stopping esplora fee estimator")

	close(e.quit)
	e.wg.Wait()
	e.ticker.Stop()

	return nil
}

// EstimateFeePerVByte returns the cached estimate for the largest known
// target not above numBlocks, rounded up to a whole sat/vb and floored at the
// configured minimum. If the cache is empty a fetch is attempted, and if that
// fails the fallback rate is returned.
//
// NOTE: This is part of the chainfee.Estimator interface.
func (e *EsploraEstimator) EstimateFeePerVByte(
	numBlocks uint32) (SatPerVByte, error) {

	if numBlocks == 0 {
		return 0, fmt.Errorf("confirmation target must be positive")
	}

	e.feeCacheMtx.RLock()
	cache := e.feeCache
	e.feeCacheMtx.RUnlock()

	if len(cache) == 0 {
		if err := e.updateFeeCache(); err != nil {
			log.Debugf("Using fallback fee rate %v: %v",
				e.cfg.FallbackFeeRate, err)

			return e.cfg.FallbackFeeRate, nil
		}

		e.feeCacheMtx.RLock()
		cache = e.feeCache
		e.feeCacheMtx.RUnlock()
	}

	rate, ok := cache.RateForTarget(numBlocks)
	if !ok {
		return e.cfg.FallbackFeeRate, nil
	}

	return e.clamp(NewSatPerVByte(rate)), nil
}

// RelayFeePerVByte returns the minimum fee rate required for transactions to
// be relayed.
//
// NOTE: This is part of the chainfee.Estimator interface.
func (e *EsploraEstimator) RelayFeePerVByte() SatPerVByte {
	return e.cfg.MinFeeRate
}

// LastUpdate returns the time of the last successful refresh, or the zero
// time if none happened yet.
func (e *EsploraEstimator) LastUpdate() time.Time {
	e.feeCacheMtx.RLock()
	defer e.feeCacheMtx.RUnlock()

	return e.lastUpdate
}

// clamp applies the configured minimum.
func (e *EsploraEstimator) clamp(rate SatPerVByte) SatPerVByte {
	if rate < e.cfg.MinFeeRate {
		return e.cfg.MinFeeRate
	}

	return rate
}

// updateFeeCache replaces the cached estimates with a fresh answer.
func (e *EsploraEstimator) updateFeeCache() error {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	estimates, err := e.source.GetFeeEstimates(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch fee estimates: %w", err)
	}
	if len(estimates.Targets()) == 0 {
		return ErrNoEstimates
	}

	e.feeCacheMtx.Lock()
	e.feeCache = estimates
	e.lastUpdate = e.cfg.Clock.Now()
	e.feeCacheMtx.Unlock()

	log.Debugf("Updated fee estimates for %d targets",
		len(estimates.Targets()))

	return nil
}

// feeUpdateLoop periodically updates the fee cache.
func (e *EsploraEstimator) feeUpdateLoop() {
	defer e.wg.Done()

	for {
		select {
		case <-e.ticker.Ticks():
			if err := e.updateFeeCache(); err != nil {
				log.Debugf("Failed to update fee cache: %v", err)
			}

		case <-e.quit:
			return
		}
	}
}
