package tor

import (
	"errors"
	"testing"
	"time"
)

func TestNewEmbeddedTor(t *testing.T) {
	t.Parallel()

	t.Run("creates with default timeout", func(t *testing.T) {
		t.Parallel()

		e := NewEmbeddedTor()
		if e.startupTimeout != DefaultStartupTimeout {
			t.Errorf("startupTimeout = %v, want %v", e.startupTimeout, DefaultStartupTimeout)
		}
		if e.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithStartupTimeout", func(t *testing.T) {
		t.Parallel()

		e := NewEmbeddedTor(WithStartupTimeout(5 * time.Minute))
		if e.startupTimeout != 5*time.Minute {
			t.Errorf("startupTimeout = %v", e.startupTimeout)
		}
	})

	t.Run("ignores non-positive timeout", func(t *testing.T) {
		t.Parallel()

		e := NewEmbeddedTor(WithStartupTimeout(0))
		if e.startupTimeout != DefaultStartupTimeout {
			t.Errorf("startupTimeout = %v", e.startupTimeout)
		}
	})

	t.Run("nil logger keeps default", func(t *testing.T) {
		t.Parallel()

		if e := NewEmbeddedTor(WithTorLogger(nil)); e.logger == nil {
			t.Error("expected default logger")
		}
	})
}

func TestEmbeddedTorBeforeStart(t *testing.T) {
	t.Parallel()

	e := NewEmbeddedTor()

	if e.IsRunning() {
		t.Error("expected not running")
	}
	if e.SocksAddr() != "" || e.ControlAddr() != "" {
		t.Error("expected empty addresses")
	}
	if err := e.Stop(); err != nil {
		t.Errorf("Stop on unstarted daemon: %v", err)
	}
	if _, err := e.NewClient(time.Second); !errors.Is(err, ErrTorNotRunning) {
		t.Errorf("expected ErrTorNotRunning, got %v", err)
	}
}
