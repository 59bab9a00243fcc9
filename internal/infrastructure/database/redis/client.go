// Package redis provides an optional cross-run molecule registry backed by
// Redis.  When enabled, every canonical SMILES the generator accepts is
// recorded in a shared set, so that concurrent or successive runs can query
// how much of chemical space they have collectively covered.  The training
// loop treats the registry as best-effort: registry failures are logged and
// never abort a run.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/MolGrammar-Learner/internal/config"
	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// pingTimeout bounds the connectivity probe during construction.
const pingTimeout = 5 * time.Second

// NewClient dials a standalone Redis instance from the harness configuration
// and verifies connectivity with a ping before returning.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New(errors.ErrCodeValidation, "redis addr must not be empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "redis ping failed")
	}
	return rdb, nil
}

// commands is the subset of the go-redis API the registry uses.  Tests
// substitute a fake; production code passes a *redis.Client.
type commands interface {
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SIsMember(ctx context.Context, key string, member interface{}) *redis.BoolCmd
	SCard(ctx context.Context, key string) *redis.IntCmd
	IncrBy(ctx context.Context, key string, value int64) *redis.IntCmd
	Close() error
}

//Personal.AI order the ending
