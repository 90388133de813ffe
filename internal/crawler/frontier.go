package crawler

// frontierEntry is one URL awaiting a fetch attempt.
type frontierEntry struct {
	// raw is the URL exactly as discovered. It is the dedup key.
	raw string

	// referrer is the fetched URL of the page that linked to raw.
	// Empty for the seed.
	referrer string
}

// frontier is a FIFO backing list with a cursor. Entries are never removed,
// so the membership set covers every URL ever queued, visited or not.
type frontier struct {
	entries []frontierEntry
	seen    map[string]struct{}
	cursor  int
}

func newFrontier(seed string) *frontier {
	f := &frontier{
		entries: make([]frontierEntry, 0, 16),
		seen:    make(map[string]struct{}),
	}
	f.push(seed, "")
	return f
}

// push appends raw unless the exact string was queued before.
// It reports whether the entry was added.
func (f *frontier) push(raw, referrer string) bool {
	if _, ok := f.seen[raw]; ok {
		return false
	}
	f.seen[raw] = struct{}{}
	f.entries = append(f.entries, frontierEntry{raw: raw, referrer: referrer})
	return true
}

func (f *frontier) hasNext() bool {
	return f.cursor < len(f.entries)
}

func (f *frontier) next() frontierEntry {
	e := f.entries[f.cursor]
	f.cursor++
	return e
}

// pending returns the number of entries not yet popped.
func (f *frontier) pending() int {
	return len(f.entries) - f.cursor
}

// urls returns the backing sequence, seed first.
func (f *frontier) urls() []string {
	out := make([]string, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.raw
	}
	return out
}
