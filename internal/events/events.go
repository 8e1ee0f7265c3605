// Package events provides the progress event sink and the live feed adapter
// that forwards sink contents to a subscribed observer during a pipeline run.
package events

import "time"

// Node names used as event sources. These mirror the pipeline stages plus
// the executor itself.
const (
	NodeCommander   = "commander"
	NodeScout       = "scout"
	NodeVibe        = "vibe_matcher"
	NodeAccess      = "access_analyst"
	NodeCost        = "cost_analyst"
	NodeCritic      = "critic"
	NodeSynthesiser = "synthesiser"
	NodeGraph       = "graph"
	NodeSystem      = "system"
)

// Event is one structured progress event emitted by a stage or the executor.
type Event struct {
	// Node is the name of the stage or component that emitted the event.
	Node string `json:"node"`
	// Message is the human-readable progress message.
	Message string `json:"message"`
	// Timestamp is when the event was emitted.
	Timestamp time.Time `json:"timestamp"`
}
