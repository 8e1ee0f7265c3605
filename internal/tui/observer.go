package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/calebmb/pathfinder/internal/events"
	"github.com/calebmb/pathfinder/pkg/models"
)

// ProgramObserver forwards pipeline events into a running bubbletea program.
// It implements events.Observer; the live feed adapter calls it from the
// feed goroutine, and program.Send is safe from any goroutine.
type ProgramObserver struct {
	program *tea.Program
}

// NewProgramObserver wraps a bubbletea program as a feed observer.
func NewProgramObserver(program *tea.Program) *ProgramObserver {
	return &ProgramObserver{program: program}
}

// Event implements events.Observer.
func (o *ProgramObserver) Event(ev events.Event) error {
	o.program.Send(EventMsg{Event: ev})
	return nil
}

// Done implements events.Observer.
func (o *ProgramObserver) Done(result *models.PlanResult, err error) {
	o.program.Send(DoneMsg{Result: result, Err: err})
}
