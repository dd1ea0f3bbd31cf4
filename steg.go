package lsbsteg

import (
	"context"
	"errors"
	"fmt"
	"time"

	c "github.com/unkn0wn-root/lsbsteg/codec"
	"github.com/unkn0wn-root/lsbsteg/internal/util"
	"github.com/unkn0wn-root/lsbsteg/internal/wire"
	pr "github.com/unkn0wn-root/lsbsteg/provider"
)

type steg[V any] struct {
	ns             string
	step           Step
	codec          c.Codec[V]
	provider       pr.Provider
	log            Logger
	hooks          Hooks
	maxPayload     int
	computeSetCost SetCostFunc
}

func newSteg[V any](opts Options[V]) (*steg[V], error) {
	if !opts.Step.Valid() {
		return nil, &StepError{Step: opts.Step}
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("lsbsteg: codec is required")
	}
	if opts.MaxPayload < 0 {
		return nil, fmt.Errorf("lsbsteg: invalid max payload %d", opts.MaxPayload)
	}

	s := &steg[V]{
		step:       opts.Step,
		codec:      opts.Codec,
		provider:   opts.Provider,
		maxPayload: opts.MaxPayload,
	}

	// defaults
	s.ns = coalesce(opts.Namespace, defaultNamespace)
	s.log = coalesce[Logger](opts.Logger, NopLogger{})
	s.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})

	if opts.ComputeSetCost != nil {
		s.computeSetCost = opts.ComputeSetCost
	} else {
		s.computeSetCost = func(_ string, carrier []byte) int64 { return int64(len(carrier)) }
	}

	return s, nil
}

func (s *steg[V]) Capacity(carrierLen int) int {
	n := MaxFramedPayload(carrierLen, s.step)
	if s.maxPayload > 0 && n > s.maxPayload {
		n = s.maxPayload
	}
	n -= wire.SingleOverhead
	if n < 0 {
		return 0
	}
	return n
}

func (s *steg[V]) Hide(carrier []byte, value V) ([]byte, error) {
	payload, err := s.codec.Encode(value)
	if err != nil {
		return carrier, err
	}
	return s.encode("hide", carrier, wire.EncodeSingle(payload))
}

func (s *steg[V]) Reveal(carrier []byte) (V, error) {
	var zero V
	env, err := s.decode(carrier)
	if err != nil {
		return zero, err
	}
	payload, err := wire.DecodeSingle(env)
	if err != nil {
		s.hooks.RevealFailed("envelope", err)
		return zero, err
	}
	v, err := s.codec.Decode(payload)
	if err != nil {
		s.hooks.RevealFailed("value_decode", err)
		return zero, err
	}
	return v, nil
}

func (s *steg[V]) HideBulk(carrier []byte, items map[string]V) ([]byte, error) {
	wireItems := make([]wire.BulkItem, 0, len(items))
	for name, v := range items {
		payload, err := s.codec.Encode(v)
		if err != nil {
			return carrier, fmt.Errorf("lsbsteg: encode %q: %w", name, err)
		}
		wireItems = append(wireItems, wire.BulkItem{Name: name, Payload: payload})
	}
	env, err := wire.EncodeBulk(wireItems)
	if err != nil {
		return carrier, err
	}
	return s.encode("hide_bulk", carrier, env)
}

func (s *steg[V]) RevealBulk(carrier []byte) (map[string]V, error) {
	env, err := s.decode(carrier)
	if err != nil {
		return nil, err
	}
	items, err := wire.DecodeBulk(env)
	if err != nil {
		s.hooks.RevealFailed("envelope", err)
		return nil, err
	}
	out := make(map[string]V, len(items))
	for _, it := range items {
		v, err := s.codec.Decode(it.Payload)
		if err != nil {
			s.hooks.RevealFailed("value_decode", err)
			return nil, fmt.Errorf("lsbsteg: decode %q: %w", it.Name, err)
		}
		out[it.Name] = v
	}
	return out, nil
}

func (s *steg[V]) Put(ctx context.Context, key string, carrier []byte, value V, ttl time.Duration) error {
	if s.provider == nil {
		return ErrNoProvider
	}
	buf := make([]byte, len(carrier))
	copy(buf, carrier)

	payload, err := s.codec.Encode(value)
	if err != nil {
		return err
	}
	if _, err := s.encode("put", buf, wire.EncodeSingle(payload)); err != nil {
		return err
	}

	k := s.storageKey(key)
	ok, err := s.provider.Set(ctx, k, buf, s.computeSetCost(k, buf), ttl)
	if err != nil {
		return err
	}
	if !ok {
		s.hooks.ProviderSetRejected(k)
		s.log.Debug("Put rejected by provider (pressure)", Fields{"key": key})
	}
	return nil
}

func (s *steg[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if s.provider == nil {
		return zero, false, ErrNoProvider
	}
	k := s.storageKey(key)
	raw, ok, err := s.provider.Get(ctx, k)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := s.Reveal(raw)
	if err != nil {
		s.selfHeal(ctx, k, revealReason(err))
		return zero, false, nil
	}
	return v, true, nil
}

func (s *steg[V]) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if s.provider == nil {
		return nil, false, ErrNoProvider
	}
	return s.provider.Get(ctx, s.storageKey(key))
}

func (s *steg[V]) Del(ctx context.Context, key string) error {
	if s.provider == nil {
		return ErrNoProvider
	}
	return s.provider.Del(ctx, s.storageKey(key))
}

func (s *steg[V]) Close(ctx context.Context) error {
	if s.provider != nil {
		return s.provider.Close(ctx)
	}
	return nil
}

// encode frames env into carrier and reports capacity failures to hooks.
// Envelopes over maxPayload are refused so that everything written stays revealable.
func (s *steg[V]) encode(op string, carrier, env []byte) ([]byte, error) {
	if s.maxPayload > 0 && len(env) > s.maxPayload {
		s.log.Debug("envelope over max payload", Fields{"op": op, "size": len(env), "max": s.maxPayload})
		return carrier, fmt.Errorf("%w: %s envelope is %d bytes, limit is %d", ErrPayloadTooLarge, op, len(env), s.maxPayload)
	}
	rest, err := Encode(carrier, env, s.step)
	if err != nil {
		var ce *CapacityError
		if errors.As(err, &ce) {
			s.hooks.CapacityExceeded(op, ce.Actual, ce.Required)
			s.log.Debug("carrier too small", Fields{"op": op, "actual": ce.Actual, "required": ce.Required})
		}
		return carrier, err
	}
	return rest, nil
}

func (s *steg[V]) decode(carrier []byte) ([]byte, error) {
	var (
		env []byte
		err error
	)
	if s.maxPayload > 0 {
		env, err = DecodeLimit(carrier, s.step, s.maxPayload)
	} else {
		env, err = Decode(carrier, s.step)
	}
	if err != nil {
		s.hooks.RevealFailed(revealReason(err), err)
		return nil, err
	}
	return env, nil
}

func (s *steg[V]) selfHeal(ctx context.Context, storageKey, reason string) {
	s.hooks.SelfHeal(storageKey, reason)
	if err := s.provider.Del(ctx, storageKey); err != nil {
		s.log.Warn("self-heal delete failed", Fields{"key": storageKey, "reason": reason, "err": err})
		return
	}
	s.log.Debug("deleted unreadable carrier", Fields{"key": storageKey, "reason": reason})
}

func (s *steg[V]) storageKey(key string) string {
	return util.StorageKey(s.ns, key)
}

func revealReason(err error) string {
	switch {
	case errors.Is(err, ErrPayloadTooLarge):
		return "too_large"
	case errors.Is(err, ErrCarrierTooSmall):
		return "framing"
	case errors.Is(err, wire.ErrCorrupt):
		return "envelope"
	default:
		return "value_decode"
	}
}
