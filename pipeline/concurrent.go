package pipeline

import (
	"context"
	"sync"
)

// Buffer adds a buffered channel between pipeline stages, decoupling the
// production rate from the consumption rate.
func Buffer[T any](p *Pipeline[T], size int) *Pipeline[T] {
	if size <= 0 {
		size = 1
	}
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			source := p.create(ctx)
			bufCtx, cancel := context.WithCancel(ctx)
			ch := make(chan result[T], size)

			go func() {
				defer close(ch)
				for {
					val, ok, err := source.Next(bufCtx)
					if err != nil {
						select {
						case ch <- result[T]{err: err}:
						case <-bufCtx.Done():
						}
						return
					}
					if !ok {
						return
					}
					select {
					case ch <- result[T]{val: val, ok: true}:
					case <-bufCtx.Done():
						return
					}
				}
			}()

			return &channelIter[T]{
				ch: ch,
				closer: func() error {
					cancel()
					return source.Close()
				},
			}
		},
	}
}

// Parallel applies fn to each value concurrently with up to n workers.
// Order is NOT preserved. The first error cancels the remaining workers;
// closing the iterator waits for every in-flight fn call to return.
func Parallel[I, O any](p *Pipeline[I], n int, fn func(context.Context, I) (O, error)) *Pipeline[O] {
	if n <= 0 {
		n = 1
	}
	return &Pipeline[O]{
		create: func(ctx context.Context) Iterator[O] {
			source := p.create(ctx)
			workerCtx, cancel := context.WithCancel(ctx)
			out := make(chan result[O], n)
			in := make(chan I, n)

			var wg sync.WaitGroup

			// Producer: pull from source into the input channel.
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer close(in)
				for {
					val, ok, err := source.Next(workerCtx)
					if err != nil {
						select {
						case out <- result[O]{err: err}:
						case <-workerCtx.Done():
						}
						return
					}
					if !ok {
						return
					}
					select {
					case in <- val:
					case <-workerCtx.Done():
						return
					}
				}
			}()

			for range n {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for val := range in {
						if workerCtx.Err() != nil {
							return
						}
						o, err := fn(workerCtx, val)
						if err != nil {
							select {
							case out <- result[O]{err: err}:
							case <-workerCtx.Done():
							}
							cancel()
							return
						}
						select {
						case out <- result[O]{val: o, ok: true}:
						case <-workerCtx.Done():
							return
						}
					}
				}()
			}

			go func() {
				wg.Wait()
				close(out)
			}()

			return &channelIter[O]{
				ch: out,
				// Close returns only after the producer and every worker exit.
				closer: func() error {
					cancel()
					for range out {
					}
					return source.Close()
				},
			}
		},
	}
}

type indexed[T any] struct {
	seq int
	val T
}

// ParallelOrdered is Parallel with results yielded in input order. Results
// that finish early are held until every earlier result has been yielded.
func ParallelOrdered[I, O any](p *Pipeline[I], n int, fn func(context.Context, I) (O, error)) *Pipeline[O] {
	return &Pipeline[O]{
		create: func(ctx context.Context) Iterator[O] {
			seq := 0
			numbered := Map(p, func(_ context.Context, v I) (indexed[I], error) {
				in := indexed[I]{seq: seq, val: v}
				seq++
				return in, nil
			})
			done := Parallel(numbered, n, func(ctx context.Context, in indexed[I]) (indexed[O], error) {
				o, err := fn(ctx, in.val)
				return indexed[O]{seq: in.seq, val: o}, err
			})
			return &reorderIter[O]{source: done.create(ctx), pending: make(map[int]O)}
		},
	}
}

type reorderIter[T any] struct {
	source  Iterator[indexed[T]]
	pending map[int]T
	next    int
}

func (it *reorderIter[T]) Next(ctx context.Context) (T, bool, error) {
	for {
		if v, ok := it.pending[it.next]; ok {
			delete(it.pending, it.next)
			it.next++
			return v, true, nil
		}
		in, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			var zero T
			return zero, false, err
		}
		it.pending[in.seq] = in.val
	}
}

func (it *reorderIter[T]) Close() error { return it.source.Close() }
