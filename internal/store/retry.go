package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
)

// RetryConfig controls how often a failing store call is attempted
type RetryConfig struct {
	Attempts uint
	Delay    time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Attempts: 3, Delay: 50 * time.Millisecond}
}

// Retrying retries failed Load and Save calls of the wrapped store.
// ErrNotFound is final and never retried.
type Retrying struct {
	next   Store
	cfg    RetryConfig
	logger *slog.Logger
}

func WithRetry(next Store, cfg RetryConfig, logger *slog.Logger) *Retrying {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 1
	}
	return &Retrying{next: next, cfg: cfg, logger: logger}
}

// Unwrap returns the decorated store
func (r *Retrying) Unwrap() Store { return r.next }

func (r *Retrying) options(ctx context.Context, op, key string) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(r.cfg.Attempts),
		retry.Delay(r.cfg.Delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return !errors.Is(err, ErrNotFound) }),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Debug("store call failed, retrying", "op", op, "key", key, "attempt", n+1, "error", err)
		}),
	}
}

func (r *Retrying) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := retry.Do(func() error {
		v, err := r.next.Load(ctx, key)
		if err != nil {
			return err
		}
		value = v
		return nil
	}, r.options(ctx, "load", key)...)
	return value, err
}

func (r *Retrying) Save(ctx context.Context, key string, value []byte) error {
	return retry.Do(func() error {
		return r.next.Save(ctx, key, value)
	}, r.options(ctx, "save", key)...)
}

func (r *Retrying) Close() error { return r.next.Close() }
