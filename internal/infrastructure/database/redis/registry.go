package redis

import (
	"context"

	"github.com/turtacn/MolGrammar-Learner/internal/config"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// defaultKeyPrefix namespaces registry keys when the configuration leaves the
// prefix empty.
const defaultKeyPrefix = "molgrammar:"

const (
	seenKeySuffix      = "seen"
	generatedKeySuffix = "generated_total"
)

// Registry records which canonical SMILES strings any run has ever generated,
// plus a global counter of accepted molecules.  Both live under a common key
// prefix so several deployments can share one Redis instance.
type Registry struct {
	rdb    commands
	prefix string
	log    logging.Logger
}

// NewRegistry dials Redis per cfg and wraps the connection in a Registry.
func NewRegistry(cfg config.RedisConfig, log logging.Logger) (*Registry, error) {
	rdb, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewRegistryWithClient(rdb, cfg.KeyPrefix, log)
}

// NewRegistryWithClient builds a Registry around an existing connection.
// Tests use it to inject a fake.
func NewRegistryWithClient(rdb commands, keyPrefix string, log logging.Logger) (*Registry, error) {
	if rdb == nil {
		return nil, errors.New(errors.ErrCodeValidation, "redis client must not be nil")
	}
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Registry{rdb: rdb, prefix: keyPrefix, log: log}, nil
}

// seenKey returns the set key holding all canonical SMILES ever accepted.
func (r *Registry) seenKey() string { return r.prefix + seenKeySuffix }

// generatedKey returns the counter key for the global accepted-molecule total.
func (r *Registry) generatedKey() string { return r.prefix + generatedKeySuffix }

// MarkSeen adds the canonical SMILES to the shared seen-set and returns how
// many of them were new to the registry.
func (r *Registry) MarkSeen(ctx context.Context, canonical ...string) (int64, error) {
	if len(canonical) == 0 {
		return 0, nil
	}
	members := make([]interface{}, len(canonical))
	for i, s := range canonical {
		members[i] = s
	}
	added, err := r.rdb.SAdd(ctx, r.seenKey(), members...).Result()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeCacheError, "failed to record seen molecules")
	}
	return added, nil
}

// Seen reports whether the canonical SMILES has been generated by any run.
func (r *Registry) Seen(ctx context.Context, canonical string) (bool, error) {
	member, err := r.rdb.SIsMember(ctx, r.seenKey(), canonical).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to query seen molecules")
	}
	return member, nil
}

// SeenCount returns the size of the shared seen-set.
func (r *Registry) SeenCount(ctx context.Context) (int64, error) {
	n, err := r.rdb.SCard(ctx, r.seenKey()).Result()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeCacheError, "failed to count seen molecules")
	}
	return n, nil
}

// AddGenerated increments the global accepted-molecule counter by n and
// returns the new total.
func (r *Registry) AddGenerated(ctx context.Context, n int64) (int64, error) {
	if n == 0 {
		total, err := r.rdb.IncrBy(ctx, r.generatedKey(), 0).Result()
		if err != nil {
			return 0, errors.Wrap(err, errors.ErrCodeCacheError, "failed to read generated counter")
		}
		return total, nil
	}
	total, err := r.rdb.IncrBy(ctx, r.generatedKey(), n).Result()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeCacheError, "failed to advance generated counter")
	}
	return total, nil
}

// Close releases the underlying connection pool.
func (r *Registry) Close() error {
	if err := r.rdb.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to close redis client")
	}
	return nil
}

//Personal.AI order the ending
