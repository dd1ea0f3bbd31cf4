package ristretto

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	pr "github.com/unkn0wn-root/lsbsteg/provider"
)

// Provider keeps carriers in an in-process Ristretto cache. Cost is the carrier
// size by default, so MaxCost bounds memory in bytes.
//
// Carriers are copied on Set and on Get: Hide writes into carriers in place, and a
// caller doing that on a cached slice would corrupt the stored value.
type Provider struct {
	c          *rc.Cache
	maxCarrier int
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64 // ~10x the number of carriers expected to be live
	MaxCost     int64 // total cost budget; bytes with the default cost func
	BufferItems int64 // 64 is a good default
	Metrics     bool

	// MaxCarrier rejects (ok=false) carriers larger than this many bytes; 0 => no limit.
	MaxCarrier int
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: NumCounters, MaxCost and BufferItems must be > 0")
	}
	if cfg.MaxCarrier < 0 {
		return nil, errors.New("ristretto: MaxCarrier must be >= 0")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{c: c, maxCarrier: cfg.MaxCarrier}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		p.c.Del(key)
		return nil, false, nil
	}
	return clone(b), true, nil
}

// Set is asynchronous in Ristretto; the value may not be visible to Get until
// the write buffers drain (see Wait). ok=false means the carrier was dropped by
// the admission policy or exceeds MaxCarrier.
func (p *Provider) Set(_ context.Context, key string, carrier []byte, cost int64, ttl time.Duration) (bool, error) {
	if p.maxCarrier > 0 && len(carrier) > p.maxCarrier {
		return false, nil
	}
	if ttl < 0 {
		ttl = 0
	}
	return p.c.SetWithTTL(key, clone(carrier), cost, ttl), nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Del(key)
	return nil
}

// Wait blocks until pending Sets are applied.
func (p *Provider) Wait() { p.c.Wait() }

func (p *Provider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Metrics is nil unless Config.Metrics was set.
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
