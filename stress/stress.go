// Package stress drives a stack with concurrent producers and consumers and
// checks that every pushed value is popped exactly once.
package stress

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/min1324/lfstack/set"
	"github.com/min1324/lfstack/stack"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// A value carries its producer in the high half and its sequence number in
// the low half, so consumers can sum sequences and still spot duplicates.
func pack(producer, seq int) uint64 {
	return uint64(producer)<<32 | uint64(uint32(seq))
}

func unpack(v uint64) (producer, seq int) {
	return int(v >> 32), int(uint32(v))
}

func newStack(impl string, logger log.FieldLogger) stack.Interface[uint64] {
	if impl == ImplMutex {
		return &stack.Locked[uint64]{}
	}
	s := stack.New[uint64]()
	s.SetLogger(logger)
	return s
}

type run struct {
	cfg   Config
	s     stack.Interface[uint64]
	seen  *set.IntSet
	total int64

	pushed atomic.Int64
	popped atomic.Int64
	sum    atomic.Int64

	pushLat []*hdrhistogram.Histogram
	popLat  []*hdrhistogram.Histogram
}

// Run pushes Items values from each of Producers goroutines and pops them
// from Consumers goroutines until all of them have come back. The stack is
// closed before Run returns.
func Run(ctx context.Context, cfg Config, logger log.FieldLogger) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	logger = logger.WithField("impl", cfg.Impl)
	return runOn(ctx, cfg, newStack(cfg.Impl, logger), logger)
}

func runOn(ctx context.Context, cfg Config, s stack.Interface[uint64], logger log.FieldLogger) (*Report, error) {
	r := &run{
		cfg:     cfg,
		s:       s,
		seen:    set.New(cfg.total()),
		total:   int64(cfg.total()),
		pushLat: make([]*hdrhistogram.Histogram, cfg.Producers),
		popLat:  make([]*hdrhistogram.Histogram, cfg.Consumers),
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	logger.WithFields(log.Fields{
		"producers": cfg.Producers,
		"consumers": cfg.Consumers,
		"items":     cfg.Items,
	}).Info("stress: start")

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for p := 0; p < cfg.Producers; p++ {
		p := p
		g.Go(func() error { return r.produce(gctx, p) })
	}
	for c := 0; c < cfg.Consumers; c++ {
		c := c
		g.Go(func() error { return r.consume(gctx, c) })
	}
	err := g.Wait()
	elapsed := time.Since(start)

	rep := r.report(elapsed)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s: popped %d of %d, %d missing",
				ErrTimeout, cfg.Timeout, rep.Popped, r.total, len(r.seen.Missing()))
		}
		logger.WithError(err).Error("stress: failed")
		return rep, err
	}
	if rep.Sum != rep.Want {
		err = fmt.Errorf("%w: got %d, want %d", ErrSum, rep.Sum, rep.Want)
		logger.WithError(err).Error("stress: failed")
		return rep, err
	}

	logger.WithFields(log.Fields{
		"elapsed": elapsed,
		"empty":   rep.Empty,
	}).Info("stress: done")
	return rep, nil
}

func (r *run) produce(ctx context.Context, p int) error {
	h := newHistogram()
	r.pushLat[p] = h
	for i := 0; i < r.cfg.Items; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := time.Now()
		r.s.Push(pack(p, i))
		record(h, time.Since(t))
		r.pushed.Add(1)
	}
	return nil
}

func (r *run) consume(ctx context.Context, c int) error {
	h := newHistogram()
	r.popLat[c] = h
	for r.popped.Load() < r.total {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := time.Now()
		v, ok := r.s.Pop()
		if !ok {
			continue
		}
		record(h, time.Since(t))

		p, i := unpack(v)
		if !r.seen.Add(p*r.cfg.Items + i) {
			return fmt.Errorf("%w: producer %d item %d", ErrDuplicate, p, i)
		}
		r.sum.Add(int64(i))
		r.popped.Add(1)
	}
	return nil
}

// report must only be called once every goroutine has returned.
func (r *run) report(elapsed time.Duration) *Report {
	rep := &Report{
		Impl:      r.cfg.Impl,
		Producers: r.cfg.Producers,
		Consumers: r.cfg.Consumers,
		Items:     r.cfg.Items,
		Pushed:    r.pushed.Load(),
		Popped:    r.popped.Load(),
		Sum:       r.sum.Load(),
		Want:      r.cfg.want(),
		Empty:     r.s.Empty(),
		Elapsed:   elapsed,
		Push:      summarize(r.pushLat),
		Pop:       summarize(r.popLat),
	}
	if s, ok := r.s.(*stack.Stack[uint64]); ok {
		rep.Allocated = s.Stats().Allocated
	}
	rep.Released = r.s.Close()
	if elapsed > 0 {
		rep.OpsPerSec = float64(rep.Pushed+rep.Popped) / elapsed.Seconds()
	}
	return rep
}
