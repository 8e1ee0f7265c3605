package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunConcurrentPreservesOrder(t *testing.T) {
	tasks := make([]func(context.Context) (int, error), 10)
	for i := range tasks {
		i := i
		tasks[i] = func(ctx context.Context) (int, error) {
			// Later tasks finish first to expose ordering bugs.
			time.Sleep(time.Duration(10-i) * time.Millisecond)
			return i * 10, nil
		}
	}

	results := RunConcurrent(context.Background(), tasks, 0)
	if len(results) != len(tasks) {
		t.Fatalf("expected %d results, got %d", len(tasks), len(results))
	}
	for i, res := range results {
		if res.Failed() {
			t.Errorf("task %d: unexpected failure: %v", i, res.Err)
		}
		if res.Value != i*10 {
			t.Errorf("task %d: expected %d, got %d", i, i*10, res.Value)
		}
	}
}

func TestRunConcurrentSingleFailure(t *testing.T) {
	failErr := errors.New("reachability service unreachable")
	tasks := []func(context.Context) (string, error){
		func(ctx context.Context) (string, error) { return "a", nil },
		func(ctx context.Context) (string, error) { return "", failErr },
		func(ctx context.Context) (string, error) { return "c", nil },
	}

	results := RunConcurrent(context.Background(), tasks, 2)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Failed() || results[0].Value != "a" {
		t.Errorf("task 0: expected success 'a', got %+v", results[0])
	}
	if !results[1].Failed() {
		t.Error("task 1: expected failure marker")
	}
	if !errors.Is(results[1].Err, failErr) {
		t.Errorf("task 1: expected wrapped failure, got %v", results[1].Err)
	}
	if results[2].Failed() || results[2].Value != "c" {
		t.Errorf("task 2: expected success 'c', got %+v", results[2])
	}
}

func TestRunConcurrentCapturesPanic(t *testing.T) {
	tasks := []func(context.Context) (int, error){
		func(ctx context.Context) (int, error) { return 1, nil },
		func(ctx context.Context) (int, error) { panic("boom") },
	}

	results := RunConcurrent(context.Background(), tasks, 0)

	if results[0].Failed() {
		t.Errorf("task 0: unexpected failure: %v", results[0].Err)
	}
	if !results[1].Failed() {
		t.Fatal("task 1: expected panic to become a failure marker")
	}
}

func TestRunConcurrentRespectsLimit(t *testing.T) {
	const limit = 3
	var inflight, peak atomic.Int32

	tasks := make([]func(context.Context) (struct{}, error), 12)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) (struct{}, error) {
			cur := inflight.Add(1)
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inflight.Add(-1)
			return struct{}{}, nil
		}
	}

	RunConcurrent(context.Background(), tasks, limit)

	if p := peak.Load(); p > limit {
		t.Errorf("expected at most %d concurrent tasks, observed %d", limit, p)
	}
}

func TestRunConcurrentEmpty(t *testing.T) {
	results := RunConcurrent[int](context.Background(), nil, 4)
	if len(results) != 0 {
		t.Errorf("expected no results for no tasks, got %d", len(results))
	}
}

func TestRunConcurrentAllFail(t *testing.T) {
	tasks := make([]func(context.Context) (int, error), 4)
	for i := range tasks {
		i := i
		tasks[i] = func(ctx context.Context) (int, error) {
			return 0, fmt.Errorf("task %d failed", i)
		}
	}

	results := RunConcurrent(context.Background(), tasks, 2)
	for i, res := range results {
		if !res.Failed() {
			t.Errorf("task %d: expected failure marker", i)
		}
	}
}
