package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/calebmb/pathfinder/internal/config"
	"github.com/calebmb/pathfinder/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent planning runs",
	Long:  `Display recent planning runs recorded in the local history database.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runHistory(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
}

func runHistory() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dbPath := cfg.History.Path
	if dbPath == "" {
		dbPath = history.DefaultDBPath()
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No planning history yet.")
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrating history: %w", err)
	}

	records, err := store.RecentPlans(historyLimit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No planning history yet.")
		return nil
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	warn := color.New(color.FgYellow)

	for _, rec := range records {
		bold.Printf("%s", rec.Activity)
		if rec.Degraded {
			warn.Printf("  [degraded: %s]", rec.VetoReason)
		}
		fmt.Println()
		dim.Printf("  %s  run %s  retries %d\n",
			rec.CreatedAt.Local().Format(time.DateTime), rec.RunID, rec.Retries)
	}
	return nil
}
