package events

import (
	"time"

	"github.com/calebmb/pathfinder/pkg/models"
)

// Observer receives the live feed for one pipeline run: an ordered sequence
// of progress events followed by exactly one terminal outcome.
type Observer interface {
	// Event delivers one progress event in arrival order.
	// Returning an error detaches the observer; no further events or
	// terminal outcome are delivered.
	Event(ev Event) error
	// Done delivers the terminal outcome: either a result or an error,
	// never both. The feed is closed after this call.
	Done(result *models.PlanResult, err error)
}

// defaultPollInterval is how long the feed yields between empty drains.
const defaultPollInterval = 10 * time.Millisecond

// Feed drains a Sink concurrently with pipeline execution and forwards
// events to an Observer. The executor is never coupled to the observer:
// a slow or disconnected observer only affects the feed goroutine.
type Feed struct {
	sink     *Sink
	obs      Observer
	interval time.Duration
	detached bool
}

// NewFeed creates a feed forwarding events from sink to obs.
func NewFeed(sink *Sink, obs Observer) *Feed {
	return &Feed{sink: sink, obs: obs, interval: defaultPollInterval}
}

// SetPollInterval overrides the backoff interval used when the sink is empty.
func (f *Feed) SetPollInterval(d time.Duration) {
	if d > 0 {
		f.interval = d
	}
}

// Stream forwards events until done is closed, performs a final
// drain-to-empty, then delivers the terminal outcome from the outcome
// function. The outcome function is only called after done is closed, so it
// may safely read results written by the executor before it signalled
// completion.
func (f *Feed) Stream(done <-chan struct{}, outcome func() (*models.PlanResult, error)) {
	for {
		if ev, ok := f.sink.DrainNowait(); ok {
			f.forward(ev)
			continue
		}

		select {
		case <-done:
			f.flush()
			if !f.detached {
				result, err := outcome()
				f.obs.Done(result, err)
			}
			return
		case <-time.After(f.interval):
		}
	}
}

// forward delivers one event unless the observer has detached.
func (f *Feed) forward(ev Event) {
	if f.detached {
		return
	}
	if err := f.obs.Event(ev); err != nil {
		f.detached = true
	}
}

// flush drains any trailing events after the executor completed.
func (f *Feed) flush() {
	for {
		ev, ok := f.sink.DrainNowait()
		if !ok {
			return
		}
		f.forward(ev)
	}
}
