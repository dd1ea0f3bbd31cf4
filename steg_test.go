package lsbsteg

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	c "github.com/unkn0wn-root/lsbsteg/codec"
	"github.com/unkn0wn-root/lsbsteg/internal/wire"
	pr "github.com/unkn0wn-root/lsbsteg/provider"
)

type memEntry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

type memProvider struct {
	mu     sync.Mutex
	m      map[string]memEntry
	reject bool
}

var _ pr.Provider = (*memProvider)(nil)

func newMemProvider() *memProvider { return &memProvider{m: make(map[string]memEntry)} }

func (p *memProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.m[key]
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		delete(p.m, key)
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *memProvider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reject {
		return false, nil
	}
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	p.m[key] = memEntry{v: value, exp: exp}
	return true, nil
}

func (p *memProvider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.m, key)
	return nil
}
func (p *memProvider) Close(_ context.Context) error { return nil }

type recHooks struct {
	mu       sync.Mutex
	capacity []string
	reveal   []string
	heal     []string
	rejected []string
}

func (h *recHooks) CapacityExceeded(op string, _, _ int) {
	h.mu.Lock()
	h.capacity = append(h.capacity, op)
	h.mu.Unlock()
}
func (h *recHooks) RevealFailed(reason string, _ error) {
	h.mu.Lock()
	h.reveal = append(h.reveal, reason)
	h.mu.Unlock()
}
func (h *recHooks) SelfHeal(k, reason string) {
	h.mu.Lock()
	h.heal = append(h.heal, k+"|"+reason)
	h.mu.Unlock()
}
func (h *recHooks) ProviderSetRejected(k string) {
	h.mu.Lock()
	h.rejected = append(h.rejected, k)
	h.mu.Unlock()
}

type note struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

func newTestSteg(t *testing.T, mp pr.Provider, optsOpt func(*Options[note])) Steg[note] {
	t.Helper()
	opts := Options[note]{
		Step:      Step2,
		Codec:     c.JSON[note]{},
		Namespace: "test",
		Provider:  mp,
	}
	if optsOpt != nil {
		optsOpt(&opts)
	}
	s, err := New[note](opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New[note](Options[note]{Step: 3, Codec: c.JSON[note]{}})
	var se *StepError
	if !errors.As(err, &se) || se.Step != 3 {
		t.Fatalf("expected *StepError, got %v", err)
	}
	if _, err := New[note](Options[note]{Step: Step1}); err == nil {
		t.Fatalf("expected error for missing codec")
	}
	if _, err := New[note](Options[note]{Step: Step1, Codec: c.JSON[note]{}, MaxPayload: -1}); err == nil {
		t.Fatalf("expected error for negative MaxPayload")
	}
}

func TestHideReveal(t *testing.T) {
	s := newTestSteg(t, nil, nil)
	in := note{ID: "n1", Body: "meet at noon"}

	carrier := make([]byte, 512)
	if _, err := s.Hide(carrier, in); err != nil {
		t.Fatalf("Hide: %v", err)
	}
	out, err := s.Reveal(carrier)
	if err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if out != in {
		t.Fatalf("got %+v want %+v", out, in)
	}
}

func TestCapacityMatchesHide(t *testing.T) {
	s, err := New[[]byte](Options[[]byte]{Step: Step4, Codec: c.Bytes{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	const carrierLen = 100
	n := s.Capacity(carrierLen)
	if n != carrierLen/2-WordSize-wire.SingleOverhead {
		t.Fatalf("Capacity: got %d", n)
	}

	if _, err := s.Hide(make([]byte, carrierLen), bytes.Repeat([]byte{1}, n)); err != nil {
		t.Fatalf("Hide at capacity: %v", err)
	}
	if _, err := s.Hide(make([]byte, carrierLen), bytes.Repeat([]byte{1}, n+1)); !errors.Is(err, ErrCarrierTooSmall) {
		t.Fatalf("Hide over capacity: expected ErrCarrierTooSmall, got %v", err)
	}
	if s.Capacity(4) != 0 {
		t.Fatalf("tiny carrier should have zero capacity")
	}
}

func TestHideCapacityHook(t *testing.T) {
	h := &recHooks{}
	s := newTestSteg(t, nil, func(o *Options[note]) { o.Hooks = h })

	carrier := bytes.Repeat([]byte{0x0f}, 16)
	orig := append([]byte(nil), carrier...)
	_, err := s.Hide(carrier, note{ID: "x", Body: "too long for this carrier"})

	var ce *CapacityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CapacityError, got %v", err)
	}
	if !bytes.Equal(carrier, orig) {
		t.Fatalf("carrier modified on failure")
	}
	if len(h.capacity) != 1 || h.capacity[0] != "hide" {
		t.Fatalf("capacity hook: %v", h.capacity)
	}
}

func TestRevealFailures(t *testing.T) {
	h := &recHooks{}
	s := newTestSteg(t, nil, func(o *Options[note]) { o.Hooks = h })

	// zero carrier: frame of length 0, which is not a valid envelope
	if _, err := s.Reveal(make([]byte, 128)); !errors.Is(err, wire.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	// too short to hold the length field
	if _, err := s.Reveal(make([]byte, 3)); !errors.Is(err, ErrCarrierTooSmall) {
		t.Fatalf("expected ErrCarrierTooSmall, got %v", err)
	}
	// valid envelope, wrong value encoding
	carrier := make([]byte, 256)
	if _, err := Encode(carrier, wire.EncodeSingle([]byte("{not json")), Step2); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := s.Reveal(carrier); err == nil {
		t.Fatalf("expected value decode error")
	}

	want := []string{"envelope", "framing", "value_decode"}
	if len(h.reveal) != len(want) {
		t.Fatalf("reveal hooks: got %v want %v", h.reveal, want)
	}
	for i := range want {
		if h.reveal[i] != want[i] {
			t.Fatalf("reveal hooks: got %v want %v", h.reveal, want)
		}
	}
}

func TestRevealMaxPayload(t *testing.T) {
	h := &recHooks{}
	s := newTestSteg(t, nil, func(o *Options[note]) {
		o.MaxPayload = 16
		o.Hooks = h
	})

	// written by an unlimited writer with the same step
	w := newTestSteg(t, nil, nil)
	carrier := make([]byte, 512)
	if _, err := w.Hide(carrier, note{ID: "big", Body: "more than sixteen bytes"}); err != nil {
		t.Fatalf("Hide: %v", err)
	}
	if _, err := s.Reveal(carrier); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if len(h.reveal) != 1 || h.reveal[0] != "too_large" {
		t.Fatalf("reveal hooks: %v", h.reveal)
	}
}

func TestHideRespectsMaxPayload(t *testing.T) {
	s := newTestSteg(t, nil, func(o *Options[note]) { o.MaxPayload = 16 })

	carrier := bytes.Repeat([]byte{0x3c}, 512)
	orig := append([]byte(nil), carrier...)
	if _, err := s.Hide(carrier, note{ID: "big", Body: "more than sixteen bytes"}); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("Hide: expected ErrPayloadTooLarge, got %v", err)
	}
	if !bytes.Equal(carrier, orig) {
		t.Fatalf("carrier modified on refused Hide")
	}
	if _, err := s.HideBulk(carrier, map[string]note{"a": {Body: "more than sixteen bytes"}}); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("HideBulk: expected ErrPayloadTooLarge, got %v", err)
	}
	if n := s.Capacity(512); n != 16-wire.SingleOverhead {
		t.Fatalf("Capacity under MaxPayload: got %d", n)
	}
}

func TestPutOverMaxPayloadStoresNothing(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	s := newTestSteg(t, mp, func(o *Options[note]) { o.MaxPayload = 48 })

	err := s.Put(ctx, "k", make([]byte, 512), note{Body: string(bytes.Repeat([]byte{'x'}, 64))}, 0)
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("Put: expected ErrPayloadTooLarge, got %v", err)
	}
	if _, ok, _ := s.Load(ctx, "k"); ok {
		t.Fatalf("refused value was stored")
	}

	// {"id":"s","body":""} plus envelope fits in 48
	small := note{ID: "s"}
	if err := s.Put(ctx, "k", make([]byte, 512), small, 0); err != nil {
		t.Fatalf("Put small: %v", err)
	}
	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || got != small {
		t.Fatalf("Get: %+v ok=%v err=%v", got, ok, err)
	}
}

func TestHideRevealBulk(t *testing.T) {
	s := newTestSteg(t, nil, nil)
	in := map[string]note{
		"b": {ID: "2", Body: "second"},
		"a": {ID: "1", Body: "first"},
		"c": {ID: "3"},
	}
	carrier := make([]byte, 1024)
	if _, err := s.HideBulk(carrier, in); err != nil {
		t.Fatalf("HideBulk: %v", err)
	}
	out, err := s.RevealBulk(carrier)
	if err != nil {
		t.Fatalf("RevealBulk: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d items want %d", len(out), len(in))
	}
	for k, v := range in {
		if out[k] != v {
			t.Fatalf("item %q: got %+v want %+v", k, out[k], v)
		}
	}

	// a single envelope is not a bulk one
	single := make([]byte, 512)
	if _, err := s.Hide(single, note{ID: "x"}); err != nil {
		t.Fatalf("Hide: %v", err)
	}
	if _, err := s.RevealBulk(single); !errors.Is(err, wire.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestHideBulkDeterministic(t *testing.T) {
	s := newTestSteg(t, nil, nil)
	items := map[string]note{}
	for _, k := range []string{"q", "c", "x", "a", "m", "f"} {
		items[k] = note{ID: k}
	}

	first := make([]byte, 2048)
	if _, err := s.HideBulk(first, items); err != nil {
		t.Fatalf("HideBulk: %v", err)
	}
	for i := 0; i < 5; i++ {
		again := make([]byte, 2048)
		if _, err := s.HideBulk(again, items); err != nil {
			t.Fatalf("HideBulk: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("equal item sets produced different carriers")
		}
	}
}

func TestHideChaining(t *testing.T) {
	s := newTestSteg(t, nil, nil)
	carrier := make([]byte, 1024)

	rest, err := s.Hide(carrier, note{ID: "first"})
	if err != nil {
		t.Fatalf("Hide first: %v", err)
	}
	if _, err := s.Hide(rest, note{ID: "second"}); err != nil {
		t.Fatalf("Hide second: %v", err)
	}

	_, next, err := DecodeNext(carrier, Step2)
	if err != nil {
		t.Fatalf("DecodeNext: %v", err)
	}
	got, err := s.Reveal(next)
	if err != nil || got.ID != "second" {
		t.Fatalf("second value: %+v %v", got, err)
	}
}

func TestPutGetLoadDel(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	s := newTestSteg(t, mp, nil)

	cover := bytes.Repeat([]byte{0xa0}, 512)
	orig := append([]byte(nil), cover...)
	in := note{ID: "k1", Body: "stored"}

	if err := s.Put(ctx, "k1", cover, in, 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !bytes.Equal(cover, orig) {
		t.Fatalf("Put modified the caller's carrier")
	}
	if _, ok := mp.m["carrier:test:k1"]; !ok {
		t.Fatalf("expected namespaced storage key, have %v", mp.m)
	}

	got, ok, err := s.Get(ctx, "k1")
	if err != nil || !ok || got != in {
		t.Fatalf("Get: %+v ok=%v err=%v", got, ok, err)
	}

	raw, ok, err := s.Load(ctx, "k1")
	if err != nil || !ok || len(raw) != len(cover) {
		t.Fatalf("Load: len=%d ok=%v err=%v", len(raw), ok, err)
	}
	for i := range raw {
		if raw[i]&^0x03 != 0xa0 {
			t.Fatalf("stored carrier high bits changed at %d: %#x", i, raw[i])
		}
	}

	if err := s.Del(ctx, "k1"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, ok, err := s.Get(ctx, "k1"); ok || err != nil {
		t.Fatalf("Get after Del: ok=%v err=%v", ok, err)
	}
}

func TestPutCapacityFailureStoresNothing(t *testing.T) {
	mp := newMemProvider()
	h := &recHooks{}
	s := newTestSteg(t, mp, func(o *Options[note]) { o.Hooks = h })

	err := s.Put(context.Background(), "k", make([]byte, 8), note{ID: "x"}, 0)
	if !errors.Is(err, ErrCarrierTooSmall) {
		t.Fatalf("expected ErrCarrierTooSmall, got %v", err)
	}
	if len(mp.m) != 0 {
		t.Fatalf("nothing should be stored: %v", mp.m)
	}
	if len(h.capacity) != 1 || h.capacity[0] != "put" {
		t.Fatalf("capacity hook: %v", h.capacity)
	}
}

func TestPutRejectedByProvider(t *testing.T) {
	mp := newMemProvider()
	mp.reject = true
	h := &recHooks{}
	s := newTestSteg(t, mp, func(o *Options[note]) { o.Hooks = h })

	if err := s.Put(context.Background(), "k", make([]byte, 512), note{ID: "x"}, 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(h.rejected) != 1 || h.rejected[0] != "carrier:test:k" {
		t.Fatalf("rejected hook: %v", h.rejected)
	}
}

func TestGetSelfHealsUnreadableCarrier(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	h := &recHooks{}
	s := newTestSteg(t, mp, func(o *Options[note]) { o.Hooks = h })

	if err := s.Put(ctx, "k", make([]byte, 512), note{ID: "x"}, 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	// a re-encoded image: low bits wiped
	mp.m["carrier:test:k"] = memEntry{v: make([]byte, 512)}

	_, ok, err := s.Get(ctx, "k")
	if ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	if _, still := mp.m["carrier:test:k"]; still {
		t.Fatalf("unreadable carrier not deleted")
	}
	if len(h.heal) != 1 || h.heal[0] != "carrier:test:k|envelope" {
		t.Fatalf("self-heal hook: %v", h.heal)
	}
}

func TestStoreOpsWithoutProvider(t *testing.T) {
	ctx := context.Background()
	s := newTestSteg(t, nil, nil)

	if err := s.Put(ctx, "k", make([]byte, 512), note{}, 0); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("Put: %v", err)
	}
	if _, _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("Get: %v", err)
	}
	if _, _, err := s.Load(ctx, "k"); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Del(ctx, "k"); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("Del: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNamespacesIsolated(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	a := newTestSteg(t, mp, func(o *Options[note]) { o.Namespace = "a" })
	b := newTestSteg(t, mp, func(o *Options[note]) { o.Namespace = "" })

	if err := a.Put(ctx, "k", make([]byte, 512), note{ID: "a"}, 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, _ := b.Get(ctx, "k"); ok {
		t.Fatalf("namespace leak")
	}
	if err := b.Put(ctx, "k", make([]byte, 512), note{ID: "b"}, 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := mp.m["carrier:default:k"]; !ok {
		t.Fatalf("empty namespace should map to default: %v", mp.m)
	}
}
