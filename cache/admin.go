package cache

import (
	"context"

	"go.uber.org/zap"

	"github.com/CleanExpo/zenith-cache/logger"
)

// Admin is the administration facade, the only surface monitoring and
// operator tooling calls. Bulk operations report success as a boolean:
// unexpected store errors are logged and surface as false, never as a
// panic or propagated error.
type Admin struct {
	store  Store
	warmer *Warmer
	cfg    *Config
	log    *logger.CtxZapLogger
}

// NewAdmin creates the facade over a store.
func NewAdmin(store Store, cfg *Config, log *logger.CtxZapLogger) *Admin {
	return &Admin{
		store:  store,
		warmer: NewWarmer(store, log),
		cfg:    cfg,
		log:    log,
	}
}

// Stats returns a point-in-time statistics snapshot.
func (a *Admin) Stats(ctx context.Context) (*StatsSnapshot, error) {
	snap, err := a.store.Snapshot(ctx)
	if err != nil {
		a.log.ErrorCtx(ctx, "stats snapshot failed", zap.Error(err))
		return nil, err
	}
	return snap, nil
}

// ClearAll removes every entry and the whole tag index. Idempotent.
func (a *Admin) ClearAll(ctx context.Context) bool {
	if err := a.store.Flush(ctx); err != nil {
		a.log.ErrorCtx(ctx, "cache clear failed", zap.Error(err))
		return false
	}
	a.log.InfoCtx(ctx, "cache cleared", zap.String("store", a.store.Name()))
	return true
}

// InvalidateByTags removes every entry carrying any of the tags. An
// empty tag list is a no-op success with zero affected entries.
func (a *Admin) InvalidateByTags(ctx context.Context, tags []string) bool {
	if len(tags) == 0 {
		return true
	}

	removed, err := a.store.DeleteByTags(ctx, tags...)
	if err != nil {
		a.log.ErrorCtx(ctx, "tag invalidation failed",
			zap.Strings("tags", tags),
			zap.Error(err),
		)
		return false
	}
	a.log.InfoCtx(ctx, "tags invalidated",
		zap.Strings("tags", tags),
		zap.Int("removed", removed),
	)
	return true
}

// Warmup pre-populates the given entries. When opts.TTL is unset, the
// expiration tier resolves against the configured tiers.
func (a *Admin) Warmup(ctx context.Context, entries []WarmupEntry, tier Expiration, opts WarmupOptions) *WarmupReport {
	if opts.TTL <= 0 {
		opts.TTL = a.cfg.Expirations.TTL(tier)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = a.cfg.WarmupConcurrency
	}
	return a.warmer.Warm(ctx, entries, opts)
}

// Expirations exposes the configured TTL tiers for read-only display.
func (a *Admin) Expirations() ExpirationConfig {
	return a.cfg.Expirations
}

// ResetCounters zeroes the cumulative hit/miss counters.
func (a *Admin) ResetCounters() {
	a.store.ResetCounters()
}
