package logging

import "testing"

func TestNewBuildsBothModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "production", "", "unknown"} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		if l == nil {
			t.Fatalf("New(%q): nil logger", mode)
		}
	}
}

func TestNopLoggerIsUsable(t *testing.T) {
	l := Nop()
	child := l.With("component", "test")
	child.Debug("debug", "k", 1)
	child.Info("info")
	child.Warn("warn", "err", "x")
	child.Error("error")
	child.Sync()
}
