package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/calebmb/pathfinder/internal/events"
	"github.com/calebmb/pathfinder/pkg/models"
)

var nodeColors = map[string]*color.Color{
	events.NodeCommander:   color.New(color.FgBlue),
	events.NodeScout:       color.New(color.FgGreen),
	events.NodeVibe:        color.New(color.FgMagenta),
	events.NodeAccess:      color.New(color.FgCyan),
	events.NodeCost:        color.New(color.FgYellow),
	events.NodeCritic:      color.New(color.FgRed),
	events.NodeSynthesiser: color.New(color.FgHiMagenta),
	events.NodeGraph:       color.New(color.FgHiBlack),
}

// streamPrinter is the plain-terminal observer for --stream runs: one line
// per event, then the final ranking.
type streamPrinter struct{}

func newStreamPrinter() *streamPrinter {
	return &streamPrinter{}
}

// Event implements events.Observer.
func (p *streamPrinter) Event(ev events.Event) error {
	c, ok := nodeColors[ev.Node]
	if !ok {
		c = color.New(color.Reset)
	}
	fmt.Printf("%s %s\n", c.Sprintf("[%s]", ev.Node), ev.Message)
	return nil
}

// Done implements events.Observer.
func (p *streamPrinter) Done(result *models.PlanResult, err error) {
	if err != nil {
		color.Red("run failed: %v", err)
		return
	}
	fmt.Println()
	printResult(result)
}

// printResult renders the final ranking for plain-terminal output.
func printResult(result *models.PlanResult) {
	if result.Degraded {
		color.Yellow("best available despite an unresolved objection: %s", result.VetoReason)
		fmt.Println()
	}
	if len(result.Venues) == 0 {
		fmt.Println("no venues found for this request")
		return
	}

	bold := color.New(color.Bold)
	scoreColor := color.New(color.FgGreen, color.Bold)
	dim := color.New(color.FgHiBlack)

	for _, rv := range result.Venues {
		fmt.Printf("%d. %s  %s\n", rv.Rank, bold.Sprint(rv.Venue.Name), scoreColor.Sprintf("%.2f", rv.Score))
		if rv.Venue.Address != "" {
			dim.Printf("   %s\n", rv.Venue.Address)
		}
		fmt.Printf("   %s\n", rv.Why)
		if rv.WatchOut != "" {
			color.Yellow("   watch out: %s", rv.WatchOut)
		}
	}
	if result.Retries > 0 {
		dim.Printf("\n(%d discovery retries taken)\n", result.Retries)
	}
}
