package batch

import (
	"context"
	"fmt"
)

// Chunk splits items into contiguous slices of at most size elements. The
// slices share the backing array of items.
func Chunk[T any](items []T, size int) ([][]T, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", size)
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end:end])
	}
	return chunks, nil
}

// Upload calls upload once per chunk, in order. The first failure stops the
// remaining chunks and is returned as is.
func Upload[T any](ctx context.Context, items []T, size int, upload func(context.Context, []T) error) error {
	chunks, err := Chunk(items, size)
	if err != nil {
		return err
	}
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := upload(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
