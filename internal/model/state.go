package model

import "fmt"

// CrawlState describes the lifecycle position of a crawl.
//
// A crawl starts Idle, becomes Running when the first URL is popped and
// ends in exactly one terminal state.
type CrawlState int

const (
	// StateIdle is a crawl that has been set up but not started.
	StateIdle CrawlState = iota

	// StateRunning is a crawl that is processing its frontier.
	StateRunning

	// StateExhausted means the frontier emptied before the budget ran out.
	StateExhausted

	// StateBudgetCapped means the page budget was reached; remaining
	// frontier entries were abandoned.
	StateBudgetCapped

	// StateCancelled means the caller's context ended the crawl early.
	StateCancelled
)

// String returns the lowercase name of the state.
func (s CrawlState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateExhausted:
		return "exhausted"
	case StateBudgetCapped:
		return "budget_capped"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the crawl has stopped.
func (s CrawlState) IsTerminal() bool {
	return s == StateExhausted || s == StateBudgetCapped || s == StateCancelled
}

// MarshalText implements encoding.TextMarshaler so states serialize by name.
func (s CrawlState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *CrawlState) UnmarshalText(text []byte) error {
	state, err := ParseCrawlState(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}

// ParseCrawlState converts a state name back into a CrawlState.
func ParseCrawlState(name string) (CrawlState, error) {
	for _, s := range []CrawlState{StateIdle, StateRunning, StateExhausted, StateBudgetCapped, StateCancelled} {
		if s.String() == name {
			return s, nil
		}
	}
	return StateIdle, fmt.Errorf("unknown crawl state %q", name)
}
