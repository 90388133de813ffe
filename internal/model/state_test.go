package model

import (
	"encoding/json"
	"testing"
)

func TestCrawlStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state CrawlState
		want  string
	}{
		{StateIdle, "idle"},
		{StateRunning, "running"},
		{StateExhausted, "exhausted"},
		{StateBudgetCapped, "budget_capped"},
		{StateCancelled, "cancelled"},
		{CrawlState(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			if got := tt.state.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCrawlStateIsTerminal(t *testing.T) {
	t.Parallel()

	if StateIdle.IsTerminal() || StateRunning.IsTerminal() {
		t.Error("idle and running must not be terminal")
	}
	for _, s := range []CrawlState{StateExhausted, StateBudgetCapped, StateCancelled} {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
}

func TestCrawlStateJSON(t *testing.T) {
	t.Parallel()

	t.Run("marshals by name", func(t *testing.T) {
		t.Parallel()
		data, err := json.Marshal(StateBudgetCapped)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(data) != `"budget_capped"` {
			t.Errorf("unexpected JSON: %s", data)
		}
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		t.Parallel()
		var s CrawlState
		if err := json.Unmarshal([]byte(`"sleeping"`), &s); err == nil {
			t.Error("expected error for unknown state")
		}
	})
}
