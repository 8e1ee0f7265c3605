package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// Result is the settled outcome of one fan-out task: a value or a captured
// failure, never both.
type Result[T any] struct {
	// Value is the task's result when Err is nil.
	Value T
	// Err is the captured failure marker for a failed task.
	Err error
}

// Failed reports whether the task settled with a failure marker.
func (r Result[T]) Failed() bool { return r.Err != nil }

// RunConcurrent launches the given tasks concurrently, bounded by limit
// simultaneous executions, and returns their settled outcomes in input
// order. Every task is attempted exactly once; a failing or panicking task
// yields a failure marker at its index rather than aborting its siblings,
// and the call returns only when all tasks have settled. A limit <= 0 means
// no bound.
func RunConcurrent[T any](ctx context.Context, tasks []func(context.Context) (T, error), limit int) []Result[T] {
	results := make([]Result[T], len(tasks))
	if len(tasks) == 0 {
		return results
	}

	var sem chan struct{}
	if limit > 0 {
		sem = make(chan struct{}, limit)
	}

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task func(context.Context) (T, error)) {
			defer wg.Done()

			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}

			defer func() {
				if r := recover(); r != nil {
					results[i] = Result[T]{Err: fmt.Errorf("task panicked: %v", r)}
				}
			}()

			value, err := task(ctx)
			if err != nil {
				results[i] = Result[T]{Err: err}
				return
			}
			results[i] = Result[T]{Value: value}
		}(i, task)
	}
	wg.Wait()

	return results
}
