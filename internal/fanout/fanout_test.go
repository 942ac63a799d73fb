package fanout

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

var errOdd = errors.New("odd input")

func TestFetchAll_PreservesOrder(t *testing.T) {
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	// Earlier items sleep longer so they complete last.
	results := FetchAll(context.Background(), items, 10, func(_ context.Context, n int) (string, error) {
		time.Sleep(time.Duration(len(items)-n) * time.Millisecond)

		return strconv.Itoa(n), nil
	})

	if len(results) != len(items) {
		t.Fatalf("got %d results, want %d", len(results), len(items))
	}

	for i, r := range results {
		if !r.OK() {
			t.Fatalf("result %d failed: %v", i, r.Err)
		}

		if r.Value != strconv.Itoa(i) {
			t.Errorf("results[%d] = %q, want %q", i, r.Value, strconv.Itoa(i))
		}
	}
}

func TestFetchAll_Empty(t *testing.T) {
	called := false

	results := FetchAll(context.Background(), []string{}, 5, func(context.Context, string) (int, error) {
		called = true

		return 0, nil
	})

	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}

	if called {
		t.Error("fetch should not be called for empty input")
	}
}

func TestFetchAll_FailuresKeepTheirSlot(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	results := FetchAll(context.Background(), items, 2, func(_ context.Context, n int) (int, error) {
		if n%2 == 1 {
			return 0, errOdd
		}

		return n * 10, nil
	})

	if len(results) != len(items) {
		t.Fatalf("got %d results, want %d", len(results), len(items))
	}

	for i, n := range items {
		r := results[i]
		if n%2 == 1 {
			if !errors.Is(r.Err, errOdd) {
				t.Errorf("results[%d].Err = %v, want errOdd", i, r.Err)
			}

			continue
		}

		if r.Err != nil || r.Value != n*10 {
			t.Errorf("results[%d] = (%d, %v), want (%d, nil)", i, r.Value, r.Err, n*10)
		}
	}

	if got := Errors(results); got != 3 {
		t.Errorf("Errors() = %d, want 3", got)
	}
}

func TestFetchAll_RecoversPanics(t *testing.T) {
	results := FetchAll(context.Background(), []int{0, 1, 2}, 3, func(_ context.Context, n int) (int, error) {
		if n == 1 {
			panic("boom")
		}

		return n, nil
	})

	if !errors.Is(results[1].Err, ErrTaskPanicked) {
		t.Errorf("results[1].Err = %v, want ErrTaskPanicked", results[1].Err)
	}

	if results[0].Value != 0 || results[2].Value != 2 {
		t.Errorf("neighbours of the panicking task were affected: %+v", results)
	}
}

func TestFetchAll_RespectsLimit(t *testing.T) {
	const limit = 4

	var inFlight, peak atomic.Int32

	items := make([]int, 40)

	FetchAll(context.Background(), items, limit, func(context.Context, int) (struct{}, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}

		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)

		return struct{}{}, nil
	})

	if got := peak.Load(); got > limit {
		t.Errorf("peak concurrency = %d, want <= %d", got, limit)
	}
}

func TestFetchAll_NonPositiveLimit(t *testing.T) {
	results := FetchAll(context.Background(), []int{1, 2, 3}, 0, func(_ context.Context, n int) (int, error) {
		return n + 1, nil
	})

	for i, r := range results {
		if r.Value != i+2 {
			t.Errorf("results[%d] = %d, want %d", i, r.Value, i+2)
		}
	}
}

func TestFetchAll_CancelledContext(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32

	// With a limit of 1 the tasks run one after another, so everything
	// after the first one starts with a cancelled context.
	results := FetchAll(ctx, items, 1, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		cancel()

		return n, nil
	})

	if len(results) != len(items) {
		t.Fatalf("got %d results, want %d", len(results), len(items))
	}

	if !results[0].OK() || results[0].Value != 0 {
		t.Errorf("results[0] = %+v, want the value of the task that ran", results[0])
	}

	for i, r := range results[1:] {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("results[%d].Err = %v, want context.Canceled", i+1, r.Err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("fetch called %d times, want 1", got)
	}
}

func TestFetchAll_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := FetchAll(ctx, []string{"a", "b", "c"}, 2, func(context.Context, string) (int, error) {
		t.Error("fetch should not run on a cancelled context")

		return 0, nil
	})

	if len(results) != 3 || Errors(results) != 3 {
		t.Fatalf("Expected 3 failed results, got %+v", results)
	}

	for i, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("results[%d].Err = %v, want context.Canceled", i, r.Err)
		}
	}
}
