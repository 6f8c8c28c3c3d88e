package batch

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestChunkPartition(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5, 99, 100, 101, 250} {
		for _, size := range []int{1, 3, 100} {
			items := seq(n)
			chunks, err := Chunk(items, size)
			if err != nil {
				t.Fatalf("Chunk(%d, %d): %v", n, size, err)
			}
			want := (n + size - 1) / size
			if len(chunks) != want {
				t.Fatalf("Chunk(%d, %d) gave %d chunks, want %d", n, size, len(chunks), want)
			}

			var joined []int
			for i, c := range chunks {
				if i < len(chunks)-1 && len(c) != size {
					t.Fatalf("chunk %d has %d items, want %d", i, len(c), size)
				}
				if len(c) == 0 || len(c) > size {
					t.Fatalf("chunk %d has %d items", i, len(c))
				}
				joined = append(joined, c...)
			}
			if n > 0 && !reflect.DeepEqual(joined, items) {
				t.Fatalf("concatenation differs from input for n=%d size=%d", n, size)
			}
		}
	}
}

func TestChunkRejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := Chunk(seq(3), size); err == nil {
			t.Fatalf("expected error for size %d", size)
		}
	}
}

func TestChunkDoesNotLeakCapacity(t *testing.T) {
	chunks, _ := Chunk(seq(4), 2)
	first := append(chunks[0], 99)
	if chunks[1][0] != 2 || first[2] != 99 {
		t.Fatalf("append to first chunk overwrote the second: %v", chunks)
	}
}

func TestUploadCallsInOrder(t *testing.T) {
	var calls [][]int
	err := Upload(context.Background(), seq(7), 3, func(_ context.Context, c []int) error {
		calls = append(calls, append([]int(nil), c...))
		return nil
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	want := [][]int{{0, 1, 2}, {3, 4, 5}, {6}}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
}

func TestUploadStopsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Upload(context.Background(), seq(10), 2, func(_ context.Context, c []int) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if calls != 2 {
		t.Fatalf("upload called %d times after failure, want 2", calls)
	}
}

func TestUploadEmptyMakesNoCalls(t *testing.T) {
	err := Upload(context.Background(), []int(nil), 5, func(context.Context, []int) error {
		t.Fatal("upload should not be called")
		return nil
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
}

func TestUploadRejectsBadSize(t *testing.T) {
	err := Upload(context.Background(), seq(3), 0, func(context.Context, []int) error {
		t.Fatal("upload should not be called")
		return nil
	})
	if err == nil {
		t.Fatal("expected error")
	}
}
