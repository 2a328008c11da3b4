package async

import (
	"context"
	"fmt"
	"sync"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunLimited executes tasks concurrently, at most limit at a time, and
// waits for all started tasks to complete. A limit < 1 means no bound.
//
// When the context is cancelled, no further tasks are started; tasks
// already running are left to observe the cancellation through their own
// context. The first task error (or the cancellation error, if tasks were
// skipped) is returned after all started tasks finish.
func RunLimited(ctx context.Context, limit int, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}
	if limit < 1 || limit > len(tasks) {
		limit = len(tasks)
	}

	sem := make(chan struct{}, limit)
	errChan := make(chan error, len(tasks))
	var wg sync.WaitGroup

	var skipped bool
launch:
	for _, task := range tasks {
		// Checked before the select so an already-cancelled context
		// deterministically starts nothing.
		if ctx.Err() != nil {
			skipped = true
			break
		}
		select {
		case <-ctx.Done():
			skipped = true
			break launch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if err := task.Func(ctx); err != nil {
				errChan <- fmt.Errorf("%s: %w", task.Name, err)
			}
		}()
	}

	wg.Wait()
	close(errChan)

	var firstError error
	for err := range errChan {
		if firstError == nil {
			firstError = err
		}
	}
	if firstError == nil && skipped {
		firstError = ctx.Err()
	}
	return firstError
}
