package logrus

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/unkn0wn-root/lsbsteg"
)

func TestLogrusLoggerForwardsFields(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := LogrusLogger{E: logrus.NewEntry(base)}

	l.Info("put", lsbsteg.Fields{"key": "cat.png"})

	e := hook.LastEntry()
	if e == nil {
		t.Fatalf("no entry logged")
	}
	if e.Level != logrus.InfoLevel || e.Message != "put" || e.Data["key"] != "cat.png" {
		t.Fatalf("unexpected entry: level=%v msg=%q data=%v", e.Level, e.Message, e.Data)
	}

	l.Error("boom", nil)
	if hook.LastEntry().Level != logrus.ErrorLevel {
		t.Fatalf("expected error level")
	}
	if len(hook.AllEntries()) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(hook.AllEntries()))
	}
}

func TestLogrusLoggerAttachesError(t *testing.T) {
	base, hook := test.NewNullLogger()
	l := LogrusLogger{E: logrus.NewEntry(base)}

	cause := errors.New("connection reset")
	l.Warn("self-heal delete failed", lsbsteg.Fields{"key": "carrier:img:k", "err": cause})

	e := hook.LastEntry()
	if e == nil || e.Data[logrus.ErrorKey] != cause {
		t.Fatalf("error not attached with WithError: %+v", e)
	}
	if _, dup := e.Data["err"]; dup {
		t.Fatalf("error also logged under err: %v", e.Data)
	}
	if e.Data["key"] != "carrier:img:k" {
		t.Fatalf("fields not forwarded: %v", e.Data)
	}
}
