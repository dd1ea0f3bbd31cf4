// Package zap adapts a *zap.Logger to lsbsteg.Logger.
package zap

import (
	"go.uber.org/zap"

	"github.com/unkn0wn-root/lsbsteg"
)

var _ lsbsteg.Logger = ZapLogger{}

// ZapLogger forwards Steg events to L. Sizes (actual, required, size, max) are
// logged as typed ints so they can be aggregated.
type ZapLogger struct{ L *zap.Logger }

func (z ZapLogger) Debug(msg string, f lsbsteg.Fields) {
	if ce := z.L.Check(zap.DebugLevel, msg); ce != nil {
		ce.Write(zf(f)...)
	}
}
func (z ZapLogger) Info(msg string, f lsbsteg.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f lsbsteg.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f lsbsteg.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f lsbsteg.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		switch x := v.(type) {
		case int:
			out = append(out, zap.Int(k, x))
		case string:
			out = append(out, zap.String(k, x))
		case error:
			out = append(out, zap.NamedError(k, x))
		default:
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}
