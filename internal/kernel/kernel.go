// Package kernel runs the single-producer/single-consumer backtest
// step loop that couples a Feed, a Broker and a Strategy through a
// feed.Channel: receive the next event (or synthesize a heartbeat on
// timeout), sync the broker, ask the strategy for instructions, place
// them, and journal the result. Grounded on internal/app/app.go's Run
// method: its ticker-driven select loop (risk-sync ticker, heartbeat
// ticker, ctx.Done()) is the direct ancestor of the kernel's
// heartbeat-timeout select between a channel receive and a timer.
package kernel

import (
	"context"
	"time"

	"github.com/roboquant-go/roboquant/internal/errs"
	"github.com/roboquant-go/roboquant/internal/feed"
	"github.com/roboquant-go/roboquant/internal/journal"
	"github.com/roboquant-go/roboquant/internal/ledger"
	"github.com/roboquant-go/roboquant/internal/order"
	"github.com/roboquant-go/roboquant/internal/quant"
	"github.com/roboquant-go/roboquant/internal/strategy"
)

// Broker is the subset of broker.Broker the kernel drives.
type Broker interface {
	Place(instructions []order.Instruction, event quant.Event, now time.Time) (ledger.Account, error)
	Sync(now time.Time) (ledger.Account, error)
	Reset()
}

// DefaultHeartbeatTimeout bounds how long the consumer waits for the
// next event before synthesizing a heartbeat to keep the clock moving.
const DefaultHeartbeatTimeout = time.Second

// Config bundles one run's collaborators.
type Config struct {
	Feed             feed.Feed
	Broker           Broker
	Strategy         strategy.Strategy
	Journal          journal.Journal
	Timeframe        quant.Timeframe
	ChannelCapacity  int
	HeartbeatTimeout time.Duration
}

// Kernel drives one backtest run to completion.
type Kernel struct {
	cfg Config
}

// New builds a Kernel from cfg, filling in the heartbeat timeout default
// if left zero.
func New(cfg Config) *Kernel {
	if cfg.HeartbeatTimeout <= 0 {
		cfg.HeartbeatTimeout = DefaultHeartbeatTimeout
	}
	return &Kernel{cfg: cfg}
}

// Run starts the feed's producer goroutine and drives the consumer loop
// until the feed closes its channel or ctx is cancelled. now seeds the
// kernel's clock before the first event arrives.
func (k *Kernel) Run(ctx context.Context, now time.Time) error {
	ch := feed.NewChannel(k.cfg.ChannelCapacity, k.cfg.Timeframe)

	producerErr := make(chan error, 1)
	go func() {
		producerErr <- k.cfg.Feed.Play(ctx, ch)
	}()

	clock := now
	for {
		event, endOfStream, err := ch.Receive(ctx, k.cfg.HeartbeatTimeout, clock)
		if err != nil {
			return err
		}
		if endOfStream {
			break
		}
		if event.Time.After(clock) {
			clock = event.Time
		}

		if err := k.step(event, clock); err != nil {
			return err
		}
	}

	if err := <-producerErr; err != nil && err != errs.ErrClosedChannel {
		return err
	}
	return k.cfg.Journal.Flush()
}

// step runs one receive(heartbeat) -> sync -> strategy.create -> place
// -> journal.track cycle.
func (k *Kernel) step(event quant.Event, now time.Time) error {
	acc, err := k.cfg.Broker.Sync(now)
	if err != nil {
		return err
	}

	instructions := k.cfg.Strategy.Create(event, acc)

	acc, err = k.cfg.Broker.Place(instructions, event, now)
	if err != nil {
		return err
	}

	return k.cfg.Journal.Track(event, acc)
}

// Reset restores the broker and strategy to their initial state, for
// reuse across a walk-forward or Monte Carlo sweep's successive runs.
func (k *Kernel) Reset() {
	k.cfg.Broker.Reset()
	k.cfg.Strategy.Reset()
}
