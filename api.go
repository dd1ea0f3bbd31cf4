package lsbsteg

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/lsbsteg/codec"
	pr "github.com/unkn0wn-root/lsbsteg/provider"
)

// SetCostFunc computes the cost passed to Provider.Set for a stored carrier.
type SetCostFunc func(storageKey string, carrier []byte) int64

// Steg hides typed values in carriers. V is the caller's value type;
// serialization is handled by a pluggable Codec[V].
type Steg[V any] interface {
	// Capacity returns the largest encoded value (in bytes, after the codec)
	// that Hide can fit into a carrier of carrierLen bytes.
	// MaxPayload, when set, caps it as well.
	Capacity(carrierLen int) int

	// Carrier only
	Hide(carrier []byte, value V) (rest []byte, err error)
	Reveal(carrier []byte) (V, error)
	HideBulk(carrier []byte, items map[string]V) (rest []byte, err error)
	RevealBulk(carrier []byte) (map[string]V, error)

	// Provider backed. Put hides into a copy of carrier; the caller's buffer is not modified.
	Put(ctx context.Context, key string, carrier []byte, value V, ttl time.Duration) error
	Get(ctx context.Context, key string) (v V, ok bool, err error)
	Load(ctx context.Context, key string) (carrier []byte, ok bool, err error)
	Del(ctx context.Context, key string) error

	Close(context.Context) error
}

// Options tune a Steg. Step and Codec are required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Step  Step
	Codec c.Codec[V]

	Namespace      string      // storage key namespace; "" => "default"
	Provider       pr.Provider // nil => Put/Get/Load/Del return ErrNoProvider
	Logger         Logger      // if nil, NopLogger is used
	Hooks          Hooks       // if nil, NopHooks is used
	MaxPayload     int         // upper bound on a revealed frame in bytes; 0 => unlimited
	ComputeSetCost SetCostFunc // default len(carrier)
}

func New[V any](opts Options[V]) (Steg[V], error) {
	return newSteg[V](opts)
}
