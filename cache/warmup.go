package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/CleanExpo/zenith-cache/logger"
)

// WarmupEntry is one key to pre-populate.
type WarmupEntry struct {
	// Key is the full cache key, including its prefix.
	Key string

	// Fetch produces the value to store.
	Fetch FetchFunc
}

// WarmupOptions control one warmup run.
type WarmupOptions struct {
	// TTL for every warmed entry; must be positive.
	TTL time.Duration

	// Tags attached to every warmed entry.
	Tags []string

	// Concurrency bounds parallel fetches (default 4).
	Concurrency int

	// EntryTimeout bounds each fetch individually, so one hung fetch
	// cannot stall the run. Zero means no per-entry deadline.
	EntryTimeout time.Duration
}

// WarmupResult is the outcome for one entry.
type WarmupResult struct {
	Key     string
	Err     error
	Elapsed time.Duration
}

// WarmupReport summarizes a run. Failed counts entries whose fetch or
// store failed; those failures are logged, never propagated.
type WarmupReport struct {
	Attempted int
	Succeeded int
	Failed    int
	Results   []WarmupResult
}

// Warmer pre-populates the store for known-hot keys. Warmup is best
// effort: one entry failing never aborts its siblings.
type Warmer struct {
	store      Store
	serializer Serializer
	log        *logger.CtxZapLogger
}

// NewWarmer creates a warmer over the store.
func NewWarmer(store Store, log *logger.CtxZapLogger) *Warmer {
	return &Warmer{
		store:      store,
		serializer: NewJSONSerializer(),
		log:        log,
	}
}

// Warm fetches and stores every entry, bounded by opts.Concurrency, and
// returns once all entries have been attempted.
func (w *Warmer) Warm(ctx context.Context, entries []WarmupEntry, opts WarmupOptions) *WarmupReport {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	runID := uuid.NewString()
	report := &WarmupReport{
		Attempted: len(entries),
		Results:   make([]WarmupResult, len(entries)),
	}

	g := &errgroup.Group{}
	g.SetLimit(opts.Concurrency)

	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			start := time.Now()
			err := w.warmOne(ctx, entry, opts)
			report.Results[i] = WarmupResult{
				Key:     entry.Key,
				Err:     err,
				Elapsed: time.Since(start),
			}
			if err != nil {
				w.log.WarnCtx(ctx, "warmup entry failed",
					zap.String("warmup_id", runID),
					zap.String("key", entry.Key),
					zap.Error(err),
				)
			}
			// Failures stay in the report; never abort siblings.
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range report.Results {
		if r.Err == nil {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	w.log.InfoCtx(ctx, "warmup complete",
		zap.String("warmup_id", runID),
		zap.Int("attempted", report.Attempted),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
	)
	return report
}

func (w *Warmer) warmOne(ctx context.Context, entry WarmupEntry, opts WarmupOptions) error {
	if opts.EntryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.EntryTimeout)
		defer cancel()
	}

	value, err := entry.Fetch(ctx)
	if err != nil {
		return err
	}

	data, err := w.serializer.Serialize(value)
	if err != nil {
		return err
	}
	return w.store.Set(ctx, entry.Key, data, opts.TTL, opts.Tags...)
}
