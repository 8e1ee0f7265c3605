package pipeline

import (
	"errors"
	"fmt"
	"sync"
)

// ErrCycleDetected indicates a circular dependency in the stage graph.
var ErrCycleDetected = errors.New("circular dependency detected")

// StageGraph is a directed graph of pipeline nodes. Nodes are stage names
// and edges represent "runs after" relationships. The executor walks the
// graph in dependency order; conditional edges (the veto/retry loop and the
// zero-candidate short-circuit) are evaluated by the executor between nodes.
type StageGraph struct {
	mu sync.RWMutex
	// nodes records each node in insertion order, for deterministic walks.
	nodes []string
	// present tracks node membership.
	present map[string]bool
	// edges maps node name to the names of nodes it depends on.
	edges map[string][]string
}

// NewStageGraph creates an empty stage graph.
func NewStageGraph() *StageGraph {
	return &StageGraph{
		present: make(map[string]bool),
		edges:   make(map[string][]string),
	}
}

// AddNode registers a node. Adding the same node twice is a no-op.
func (g *StageGraph) AddNode(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.present[name] {
		return
	}
	g.present[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge records that node depends on dep. Both must already be registered.
func (g *StageGraph) AddEdge(node, dep string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.present[node] {
		return fmt.Errorf("unknown node %q", node)
	}
	if !g.present[dep] {
		return fmt.Errorf("node %q depends on unknown node %q", node, dep)
	}
	g.edges[node] = append(g.edges[node], dep)
	return nil
}

// HasCycle returns true if the graph contains a circular dependency.
// Uses depth-first search with coloring to detect back edges.
func (g *StageGraph) HasCycle() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.hasCycleLocked()
}

// hasCycleLocked assumes the lock is held.
func (g *StageGraph) hasCycleLocked() bool {
	// Color states: 0 = white (unvisited), 1 = gray (in progress), 2 = black (done).
	colors := make(map[string]int, len(g.nodes))

	var visit func(name string) bool
	visit = func(name string) bool {
		colors[name] = 1

		for _, dep := range g.edges[name] {
			switch colors[dep] {
			case 1:
				return true
			case 0:
				if visit(dep) {
					return true
				}
			}
		}

		colors[name] = 2
		return false
	}

	for _, name := range g.nodes {
		if colors[name] == 0 && visit(name) {
			return true
		}
	}
	return false
}

// TopologicalSort returns node names in an order where all dependencies come
// before the nodes that depend on them. Ties follow insertion order, so the
// walk is deterministic. Returns ErrCycleDetected if the graph has a cycle.
func (g *StageGraph) TopologicalSort() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.hasCycleLocked() {
		return nil, ErrCycleDetected
	}

	visited := make(map[string]bool, len(g.nodes))
	result := make([]string, 0, len(g.nodes))

	var visit func(name string)
	visit = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true

		for _, dep := range g.edges[name] {
			visit(dep)
		}
		result = append(result, name)
	}

	for _, name := range g.nodes {
		visit(name)
	}

	return result, nil
}

// Dependencies returns the names a node depends on.
func (g *StageGraph) Dependencies(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edges[name]
}

// Size returns the number of nodes in the graph.
func (g *StageGraph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}
