// Package asynchook moves lsbsteg hook delivery off the caller's goroutine.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{SelfHealEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	s, _ := lsbsteg.New[Note](lsbsteg.Options[Note]{
//	    Step:  lsbsteg.Step2,
//	    Codec: codec.JSON[Note]{},
//	    Hooks: hooks,
//	})
//
// Events are dropped when the queue is full.
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/lsbsteg"
)

type Hooks struct {
	inner lsbsteg.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ lsbsteg.Hooks = (*Hooks)(nil)

func New(inner lsbsteg.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Hooks must not be called after Close.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) CapacityExceeded(op string, actual, required int) {
	h.try(func() { h.inner.CapacityExceeded(op, actual, required) })
}
func (h *Hooks) RevealFailed(reason string, err error) {
	h.try(func() { h.inner.RevealFailed(reason, err) })
}
func (h *Hooks) SelfHeal(k, reason string)     { h.try(func() { h.inner.SelfHeal(k, reason) }) }
func (h *Hooks) ProviderSetRejected(k string) { h.try(func() { h.inner.ProviderSetRejected(k) }) }
