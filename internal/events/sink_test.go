package events

import (
	"fmt"
	"sync"
	"testing"
)

func TestSinkEmitDrainOrder(t *testing.T) {
	s := NewSink()
	s.Emit(NodeScout, "first")
	s.Emit(NodeScout, "second")
	s.Emit(NodeScout, "third")

	if s.Len() != 3 {
		t.Fatalf("expected 3 queued events, got %d", s.Len())
	}

	want := []string{"first", "second", "third"}
	for i, expected := range want {
		ev, ok := s.DrainNowait()
		if !ok {
			t.Fatalf("expected event at index %d", i)
		}
		if ev.Message != expected {
			t.Errorf("event %d: expected %q, got %q", i, expected, ev.Message)
		}
		if ev.Node != NodeScout {
			t.Errorf("event %d: expected node %q, got %q", i, NodeScout, ev.Node)
		}
	}

	if _, ok := s.DrainNowait(); ok {
		t.Error("expected empty sink after draining all events")
	}
}

func TestSinkDrainEmpty(t *testing.T) {
	s := NewSink()
	if _, ok := s.DrainNowait(); ok {
		t.Error("expected no event from a fresh sink")
	}
	if s.Len() != 0 {
		t.Errorf("expected length 0, got %d", s.Len())
	}
}

func TestSinkConcurrentProducers(t *testing.T) {
	s := NewSink()

	const producers = 8
	const perProducer = 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			node := fmt.Sprintf("producer-%d", p)
			for i := 0; i < perProducer; i++ {
				s.Emitf(node, "event %d", i)
			}
		}(p)
	}
	wg.Wait()

	total := producers * perProducer
	if s.Emitted() != total {
		t.Fatalf("expected %d emitted, got %d", total, s.Emitted())
	}

	// Per-producer emission order must be preserved in the drain order.
	lastSeen := make(map[string]int)
	drained := 0
	for {
		ev, ok := s.DrainNowait()
		if !ok {
			break
		}
		drained++
		var idx int
		if _, err := fmt.Sscanf(ev.Message, "event %d", &idx); err != nil {
			t.Fatalf("unexpected message %q: %v", ev.Message, err)
		}
		if prev, seen := lastSeen[ev.Node]; seen && idx != prev+1 {
			t.Errorf("node %s: expected event %d after %d", ev.Node, prev+1, prev)
		}
		lastSeen[ev.Node] = idx
	}

	if drained != total {
		t.Errorf("expected to drain %d events, got %d", total, drained)
	}
}

func TestSinkEmittedCountsDrained(t *testing.T) {
	s := NewSink()
	s.Emit(NodeSystem, "one")
	s.DrainNowait()
	s.Emit(NodeSystem, "two")

	if s.Emitted() != 2 {
		t.Errorf("expected emitted count 2, got %d", s.Emitted())
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 queued event, got %d", s.Len())
	}
}
