package crawler

// budget counts page-fetch attempts against a fixed cap. It only grows.
type budget struct {
	used int
	max  int
}

func (b *budget) spend() {
	b.used++
}

func (b *budget) exhausted() bool {
	return b.used >= b.max
}
