package pipeline

import (
	"context"
	"sync"

	"git.home.luguber.info/inful/fmforge/internal/document"
)

// mapItems applies fn to every item, preserving input order in the output.
// With a worker count above one the items are processed concurrently; the
// first error wins and cancels the remaining work. Cancellation is checked
// between items.
func mapItems(ctx context.Context, items []document.Data, opts Options, fn func(document.Data) (document.Data, error)) ([]document.Data, error) {
	if len(items) == 0 {
		return []document.Data{}, nil
	}

	workers := opts.workerCount()
	if workers <= 1 || len(items) == 1 {
		out := make([]document.Data, 0, len(items))
		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			mapped, err := fn(item)
			if err != nil {
				return nil, err
			}
			out = append(out, mapped)
		}
		return out, nil
	}

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make([]document.Data, len(items))
	indexes := make(chan int)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				if workCtx.Err() != nil {
					return
				}
				mapped, err := fn(items[i])
				if err != nil {
					fail(err)
					return
				}
				out[i] = mapped
			}
		}()
	}

	for i := range items {
		select {
		case <-workCtx.Done():
		case indexes <- i:
			continue
		}
		break
	}
	close(indexes)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
