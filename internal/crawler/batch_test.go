package crawler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/contactcrawl/internal/fetch"
	"github.com/nao1215/contactcrawl/internal/model"
)

func TestNewBatchRunner(t *testing.T) {
	t.Parallel()

	factory := func(string) *Crawler { return New(&fakeFetcher{}, newFakeResolver(nil)) }

	t.Run("uses default concurrency", func(t *testing.T) {
		t.Parallel()
		b := NewBatchRunner(factory)
		if b.concurrency != DefaultConcurrency {
			t.Errorf("concurrency = %d, want %d", b.concurrency, DefaultConcurrency)
		}
		if b.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()
		b := NewBatchRunner(factory, WithConcurrency(0))
		if b.concurrency != DefaultConcurrency {
			t.Errorf("concurrency = %d", b.concurrency)
		}
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		t.Parallel()
		b := NewBatchRunner(factory, WithBatchLogger(nil))
		if b.logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

func TestBatchRunnerRun(t *testing.T) {
	t.Parallel()

	t.Run("returns one result per seed in order", func(t *testing.T) {
		t.Parallel()

		fetcher := &fakeFetcher{pages: map[string]string{
			"http://a.example/": "a@a.com",
			"http://b.example/": "b@b.com",
		}}
		b := NewBatchRunner(func(string) *Crawler {
			return New(fetcher, newFakeResolver(nil))
		}, WithConcurrency(2))

		seeds := []string{"http://a.example/", "http://b.example/", "http://c.example/"}
		results, err := b.Run(context.Background(), seeds)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		for i, seed := range seeds {
			if results[i] == nil || results[i].Seed != seed {
				t.Errorf("results[%d] does not match seed %q", i, seed)
			}
		}
		if got := results[0].Emails(); len(got) != 1 || got[0] != "a@a.com" {
			t.Errorf("seed a emails = %v", got)
		}
		if results[2].State != model.StateExhausted || results[2].PagesAttempted != 1 {
			t.Errorf("unreachable seed result = %+v", results[2])
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32
		slow := &blockingFetcher{delay: 20 * time.Millisecond, current: &current, peak: &peak}

		b := NewBatchRunner(func(string) *Crawler {
			return New(slow, newFakeResolver(nil))
		}, WithConcurrency(2))

		seeds := []string{"http://1/", "http://2/", "http://3/", "http://4/", "http://5/"}
		if _, err := b.Run(context.Background(), seeds); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("peak concurrency = %d, want <= 2", peak.Load())
		}
	})

	t.Run("cancelled context is reported", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		b := NewBatchRunner(func(string) *Crawler {
			return New(&endlessFetcher{}, newFakeResolver(nil))
		})
		_, err := b.Run(ctx, []string{"http://a/", "http://b/"})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestBatchRunnerRunWithCallback(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{pages: map[string]string{"http://a/": "x@y.com"}}
	b := NewBatchRunner(func(string) *Crawler { return New(fetcher, newFakeResolver(nil)) })

	var mu sync.Mutex
	indexes := make(map[int]string)
	err := b.RunWithCallback(context.Background(), []string{"http://a/", "http://b/"}, func(r *model.CrawlResult, i int) {
		mu.Lock()
		defer mu.Unlock()
		indexes[i] = r.Seed
	})
	if err != nil {
		t.Fatalf("RunWithCallback failed: %v", err)
	}
	if indexes[0] != "http://a/" || indexes[1] != "http://b/" {
		t.Errorf("unexpected callback indexes %v", indexes)
	}
}

// blockingFetcher sleeps on every fetch and tracks how many fetches overlap.
type blockingFetcher struct {
	delay   time.Duration
	current *atomic.Int32
	peak    *atomic.Int32
}

func (f *blockingFetcher) Fetch(ctx context.Context, rawURL string) (*fetch.Page, error) {
	n := f.current.Add(1)
	defer f.current.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &fetch.Page{URL: rawURL, FinalURL: rawURL, Body: []byte("done")}, nil
}
