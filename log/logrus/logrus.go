// Package logrus adapts a *logrus.Entry to lsbsteg.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/lsbsteg"
)

var _ lsbsteg.Logger = LogrusLogger{}

// LogrusLogger forwards Steg events to E. An "err" field is attached with
// WithError so hooks and formatters see it as the entry's error.
type LogrusLogger struct{ E *logrus.Entry }

func (l LogrusLogger) Debug(msg string, f lsbsteg.Fields) { l.entry(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f lsbsteg.Fields)  { l.entry(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f lsbsteg.Fields)  { l.entry(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f lsbsteg.Fields) { l.entry(f).Error(msg) }

func (l LogrusLogger) entry(f lsbsteg.Fields) *logrus.Entry {
	e := l.E
	fields := make(logrus.Fields, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok && k == "err" {
			e = e.WithError(err)
			continue
		}
		fields[k] = v
	}
	return e.WithFields(fields)
}
