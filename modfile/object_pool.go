package modfile

// slabPool hands out sub-slices of a few big slabs.
//
// The parser uses it for sample data, so re-parsing with
// the same Parser does not allocate the sample memory again.
type slabPool[T any] struct {
	slabs    []slab[T]
	slabSize int
}

type slab[T any] struct {
	data []T
	used int
}

func (s *slab[T]) available() int {
	return len(s.data) - s.used
}

func (s *slab[T]) take(n int) []T {
	b := s.data[s.used : s.used+n : s.used+n]
	s.used += n
	return b
}

func initSlabPool[T any](p *slabPool[T], slabSize, maxSlabs int) {
	p.slabs = make([]slab[T], 0, maxSlabs)
	p.slabSize = slabSize
}

// Reset marks all slabs as free.
// Slices returned before the reset will be overwritten by the next allocations.
func (p *slabPool[T]) Reset() {
	for i := range p.slabs {
		p.slabs[i].used = 0
	}
}

// MakeSlice returns a zeroed slice of length n.
func (p *slabPool[T]) MakeSlice(n int) []T {
	if n > p.slabSize {
		return make([]T, n)
	}

	for i := range p.slabs {
		s := &p.slabs[i]
		if s.available() >= n {
			b := s.take(n)
			var zero T
			for j := range b {
				b[j] = zero
			}
			return b
		}
	}

	if len(p.slabs) < cap(p.slabs) {
		p.slabs = append(p.slabs, slab[T]{
			data: make([]T, p.slabSize),
		})
		return p.slabs[len(p.slabs)-1].take(n)
	}

	// The pool is exhausted.
	return make([]T, n)
}
