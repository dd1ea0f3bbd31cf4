package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/lsbsteg/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

// Redis stores carriers as binary-safe string values, shared across processes.
// Redis strings hold at most 512MB, which bounds the largest carrier.
type Redis struct {
	rdb         goredis.UniversalClient
	prefix      string
	maxCarrier  int
	closeClient bool
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client goredis.UniversalClient

	// Prefix is prepended to every key, for sharing a database with other data.
	Prefix string
	// MaxCarrier rejects (ok=false) carriers larger than this many bytes without
	// a round trip; 0 => no limit.
	MaxCarrier int

	CloseClient bool // set true only if this provider exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	if cfg.MaxCarrier < 0 {
		return nil, errors.New("redis provider: MaxCarrier must be >= 0")
	}
	return &Redis{
		rdb:         cfg.Client,
		prefix:      cfg.Prefix,
		maxCarrier:  cfg.MaxCarrier,
		closeClient: cfg.CloseClient,
	}, nil
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, p.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, carrier []byte, _ int64, ttl time.Duration) (bool, error) {
	if p.maxCarrier > 0 && len(carrier) > p.maxCarrier {
		return false, nil
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := p.rdb.Set(ctx, p.prefix+key, carrier, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Redis) Del(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, p.prefix+key).Err()
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times.
func (p *Redis) Close(context.Context) error {
	if !p.closeClient {
		return nil
	}
	if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
		return err
	}
	return nil
}
