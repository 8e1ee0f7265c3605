package main

import (
	"context"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/calebmb/pathfinder/internal/pipeline"
	"github.com/calebmb/pathfinder/internal/tui"
	"github.com/calebmb/pathfinder/pkg/models"
)

// runPlanTUI executes the pipeline behind the live feed view. The executor
// streams through a program observer; the program owns the terminal until
// the user quits.
func runPlanTUI(ctx context.Context, exec *pipeline.Executor, st *pipeline.State, request string) (*models.PlanResult, error) {
	// Log output corrupts the alternate screen.
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	program := tea.NewProgram(tui.NewModel(request), tea.WithAltScreen())

	runDone := make(chan error, 1)
	go func() {
		runDone <- exec.RunStreaming(ctx, st, tui.NewProgramObserver(program))
	}()

	if _, err := program.Run(); err != nil {
		<-runDone
		return nil, err
	}

	if err := <-runDone; err != nil {
		return nil, err
	}
	return st.Result(), nil
}
