package sloghooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/lsbsteg"
	"github.com/unkn0wn-root/lsbsteg/internal/util"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery     uint64
	RevealFailedEvery uint64
	// Optional key redactor. Defaults to a SHA-256 prefix.
	Redact func(string) string
}

// Hooks logs lsbsteg events to a *slog.Logger.
type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr atomic.Uint64
	revealCtr   atomic.Uint64
}

var _ lsbsteg.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return util.Digest(k)
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) CapacityExceeded(op string, actual, required int) {
	if h.l == nil {
		return
	}
	h.l.Info("lsbsteg.capacity_exceeded",
		"op", op,
		"actual", actual,
		"required", required,
		"shortfall", required-actual)
}

func (h *Hooks) RevealFailed(reason string, err error) {
	if h.l == nil || !sample(h.opts.RevealFailedEvery, &h.revealCtr) {
		return
	}
	h.l.Debug("lsbsteg.reveal_failed",
		"reason", reason,
		"err", err)
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Warn("lsbsteg.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("lsbsteg.provider_set_rejected",
		"key", h.redact(storageKey))
}
