package ccm

import (
	"context"
	"sort"
	"sync"
	"testing"
)

func TestRunTasksCoversAllPixelsDisjointly(t *testing.T) {
	const pixelCount = 1000
	for _, taskCount := range []int{1, 2, 3, 7, 1000, 5000} {
		t.Run("", func(t *testing.T) {
			var mu sync.Mutex
			var seen []int

			err := runTasks(context.Background(), pixelCount, taskCount, func(start, count int) {
				mu.Lock()
				for i := start; i < start+count; i++ {
					seen = append(seen, i)
				}
				mu.Unlock()
			})
			if err != nil {
				t.Fatalf("runTasks failed: %v", err)
			}

			if len(seen) != pixelCount {
				t.Fatalf("covered %d pixels, want %d", len(seen), pixelCount)
			}
			sort.Ints(seen)
			for i, v := range seen {
				if v != i {
					t.Fatalf("pixel %d missing or duplicated in coverage: %v", i, seen)
				}
			}
		})
	}
}

func TestRunTasksInlineForSingleTask(t *testing.T) {
	called := 0
	err := runTasks(context.Background(), 10, 1, func(start, count int) {
		called++
		if start != 0 || count != 10 {
			t.Errorf("start=%d count=%d, want 0,10", start, count)
		}
	})
	if err != nil {
		t.Fatalf("runTasks failed: %v", err)
	}
	if called != 1 {
		t.Errorf("work called %d times, want 1", called)
	}
}

func TestRunTasksRejectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := runTasks(ctx, 10, 4, func(start, count int) { called = true })
	if err == nil {
		t.Fatal("runTasks with a cancelled context should return an error")
	}
	if called {
		t.Error("work should not run once the context is already cancelled")
	}
}
