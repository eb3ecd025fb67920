// Package lazyseq holds the small lazy-sequence combinators the
// workload layer needs: chaining multiple query sources end to end, and
// chunking a source into fixed-size batches.
package lazyseq

// Seq is a restartable, lazy sequence: each call to All returns a fresh
// iterator over the same logical sequence, matching the spec's
// "QuerySource... immutable, restartable" requirement (§3, §9).
type Seq[T any] interface {
	All() func(yield func(T) bool)
}

// SliceSeq adapts a fixed slice into a Seq; iterating it twice always
// yields the same elements in the same order.
type SliceSeq[T any] struct {
	Items []T
}

func (s SliceSeq[T]) All() func(yield func(T) bool) {
	items := s.Items
	return func(yield func(T) bool) {
		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
}

// FuncSeq adapts a factory of fresh iterators into a Seq. The factory
// must not capture mutable state across calls — each invocation should
// start from the same snapshot (e.g. a seeded RNG re-created from a
// stored seed), which is exactly what RandomSqlGenerator.All does.
type FuncSeq[T any] struct {
	Factory func() func(yield func(T) bool)
}

func (s FuncSeq[T]) All() func(yield func(T) bool) {
	return s.Factory()
}

// Chain concatenates multiple sequences in order: every element of seqs[0]
// is yielded before any element of seqs[1], and so on. Used by
// Workload.Combine to chain same-user query sources in input order.
func Chain[T any](seqs ...Seq[T]) Seq[T] {
	return FuncSeq[T]{Factory: func() func(yield func(T) bool) {
		return func(yield func(T) bool) {
			for _, s := range seqs {
				cont := true
				s.All()(func(v T) bool {
					if !yield(v) {
						cont = false
						return false
					}
					return true
				})
				if !cont {
					return
				}
			}
		}
	}}
}

// Chunk batches a sequence into fixed-size slices, the last of which may
// be shorter. Used by the generate CLI subcommand to flush output in
// batches rather than one line at a time.
func Chunk[T any](s Seq[T], size int) Seq[[]T] {
	if size <= 0 {
		panic("lazyseq: Chunk size must be positive")
	}
	return FuncSeq[[]T]{Factory: func() func(yield func([]T) bool) {
		return func(yield func([]T) bool) {
			batch := make([]T, 0, size)
			s.All()(func(v T) bool {
				batch = append(batch, v)
				if len(batch) == size {
					next := yield(batch)
					batch = make([]T, 0, size)
					return next
				}
				return true
			})
			if len(batch) > 0 {
				yield(batch)
			}
		}
	}}
}
