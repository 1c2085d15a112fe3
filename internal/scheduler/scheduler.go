package scheduler

import (
	"context"
	"fmt"

	"pixelmill/internal/services"
)

// Task is one unit of deferred work. Its slot in the task list determines
// where its result lands, independent of completion order.
type Task[T any] func(ctx context.Context) (T, error)

type outcome[T any] struct {
	index int
	value T
	err   error
}

// Throttle runs tasks with at most limit in flight and returns their results
// in input order. A non-positive limit or a nil task is a configuration
// error. The first task failure is returned immediately; siblings already
// running finish in the background and their results are discarded.
func Throttle[T any](ctx context.Context, limit int, tasks []Task[T]) ([]T, error) {
	if limit < 1 {
		return nil, services.Wrap(services.ErrConfiguration, "scheduler", "throttle", fmt.Sprintf("limit must be a positive integer, got %d", limit), nil)
	}
	for i, task := range tasks {
		if task == nil {
			return nil, services.Wrap(services.ErrConfiguration, "scheduler", "throttle", fmt.Sprintf("task at index %d is nil", i), nil)
		}
	}
	if len(tasks) == 0 {
		return []T{}, nil
	}
	if limit > len(tasks) {
		limit = len(tasks)
	}

	indexes := make(chan int, len(tasks))
	for i := range tasks {
		indexes <- i
	}
	close(indexes)

	// Buffered to task count so abandoned workers never block on send
	// after the batch has already failed.
	outcomes := make(chan outcome[T], len(tasks))
	for w := 0; w < limit; w++ {
		go func() {
			for i := range indexes {
				value, err := tasks[i](ctx)
				outcomes <- outcome[T]{index: i, value: value, err: err}
			}
		}()
	}

	results := make([]T, len(tasks))
	for done := 0; done < len(tasks); done++ {
		out := <-outcomes
		if out.err != nil {
			return nil, out.err
		}
		results[out.index] = out.value
	}
	return results, nil
}
