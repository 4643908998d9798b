package mock

import (
	"context"

	"github.com/mliang/docspider"
)

var _ docspider.Frontier = (*Frontier)(nil)

// Frontier is a mock implementation of docspider.Frontier.
type Frontier struct {
	RestoreFn      func(ctx context.Context) (int, error)
	EnqueueFn      func(ctx context.Context, url string) (bool, error)
	EnqueueBatchFn func(ctx context.Context, urls []string) (int, error)
	TakeFn         func() (string, bool)
	LenFn          func() int
}

func (f *Frontier) Restore(ctx context.Context) (int, error) {
	return f.RestoreFn(ctx)
}

func (f *Frontier) Enqueue(ctx context.Context, url string) (bool, error) {
	return f.EnqueueFn(ctx, url)
}

func (f *Frontier) EnqueueBatch(ctx context.Context, urls []string) (int, error) {
	return f.EnqueueBatchFn(ctx, urls)
}

func (f *Frontier) Take() (string, bool) {
	return f.TakeFn()
}

func (f *Frontier) Len() int {
	return f.LenFn()
}
