package util

import (
	"context"
	"sync"
)

// Parallel runs fn over every input with at most workerLimit goroutines.
// The first error cancels the shared context and is returned after all
// workers finish. A cancelled parent context stops feeding new inputs.
func Parallel[T any](parent context.Context, inputs []T, workerLimit int, fn func(context.Context, T) error) error {
	if len(inputs) == 0 {
		return nil
	}
	if workerLimit <= 0 {
		workerLimit = 1
	}
	if workerLimit > len(inputs) {
		workerLimit = len(inputs)
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	tasks := make(chan T)
	errCh := make(chan error, 1)

	wg := sync.WaitGroup{}
	for i := 0; i < workerLimit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range tasks {
				if err := fn(ctx, item); err != nil {
					select {
					case errCh <- err:
						cancel() // stop others
					default:
					}
					return
				}
			}
		}()
	}

	go func() {
		defer close(tasks)
		for _, item := range inputs {
			select {
			case <-ctx.Done():
				return
			case tasks <- item:
			}
		}
	}()

	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return parent.Err()
	}
}

// ForEach runs fn over every input with at most workerLimit goroutines
// and never stops early: each input is attempted exactly once and all
// errors are discarded. Use this when partial failure is acceptable,
// such as fanning a search out across providers.
func ForEach[T any](parent context.Context, inputs []T, workerLimit int, fn func(context.Context, T)) {
	if len(inputs) == 0 {
		return
	}
	if workerLimit <= 0 || workerLimit > len(inputs) {
		workerLimit = len(inputs)
	}

	tasks := make(chan T)
	wg := sync.WaitGroup{}
	for i := 0; i < workerLimit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range tasks {
				fn(parent, item)
			}
		}()
	}

	for _, item := range inputs {
		tasks <- item
	}
	close(tasks)
	wg.Wait()
}
