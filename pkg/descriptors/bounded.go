package descriptors

// Bounded is an insertion-ordered sequence with a fixed capacity. Its storage
// is allocated once by NewBounded and never grows; entries offered past the
// capacity are counted and discarded.
type Bounded[T any] struct {
	items   []T
	dropped int
}

func NewBounded[T any](max int) Bounded[T] {
	if max < 0 {
		max = 0
	}
	return Bounded[T]{items: make([]T, 0, max)}
}

// Push appends v and reports whether it was stored.
func (b *Bounded[T]) Push(v T) bool {
	if len(b.items) == cap(b.items) {
		b.dropped++
		return false
	}
	b.items = append(b.items, v)
	return true
}

func (b *Bounded[T]) Len() int { return len(b.items) }

func (b *Bounded[T]) Cap() int { return cap(b.items) }

func (b *Bounded[T]) Full() bool { return len(b.items) == cap(b.items) }

// Dropped is the number of entries rejected because the sequence was full.
func (b *Bounded[T]) Dropped() int { return b.dropped }

// Seen is the number of entries offered, stored or not.
func (b *Bounded[T]) Seen() int { return len(b.items) + b.dropped }

// At returns a pointer to the i-th stored entry.
func (b *Bounded[T]) At(i int) *T { return &b.items[i] }

// Items returns the stored entries. The slice aliases internal storage and
// must not be appended to.
func (b *Bounded[T]) Items() []T { return b.items[:len(b.items):len(b.items)] }

// Reset empties the sequence, keeping its storage.
func (b *Bounded[T]) Reset() {
	clear(b.items)
	b.items = b.items[:0]
	b.dropped = 0
}
