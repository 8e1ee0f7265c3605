package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/calebmb/pathfinder/internal/agents"
	"github.com/calebmb/pathfinder/internal/config"
	"github.com/calebmb/pathfinder/internal/events"
	"github.com/calebmb/pathfinder/internal/history"
	"github.com/calebmb/pathfinder/internal/llm"
	"github.com/calebmb/pathfinder/internal/pipeline"
	"github.com/calebmb/pathfinder/internal/services"
	"github.com/calebmb/pathfinder/pkg/models"
)

var (
	planStream      bool
	planTUI         bool
	planMaxRetries  int
	planConcurrency int
	planProfile     string
	planMembers     []string
)

var planCmd = &cobra.Command{
	Use:   "plan \"<request>\"",
	Short: "Plan a group activity",
	Long: `Plan a group activity from a natural-language request.

Examples:
  pathfinder plan "basketball court for 6, cheap, downtown Toronto"
  pathfinder plan --tui "chill cafe with space for board games"
  pathfinder plan --stream --member 43.65,-79.38 --member 43.70,-79.40 "bouldering gym"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlan(cmd.Context(), args[0])
	},
}

func init() {
	planCmd.Flags().BoolVar(&planStream, "stream", false, "Print progress events as they happen")
	planCmd.Flags().BoolVar(&planTUI, "tui", false, "Show the live planning feed")
	planCmd.Flags().IntVar(&planMaxRetries, "max-retries", -1, "Discovery retries after a veto (-1 uses config)")
	planCmd.Flags().IntVar(&planConcurrency, "concurrency", 0, "Scorer fan-out bound (0 uses config)")
	planCmd.Flags().StringVar(&planProfile, "weights", "", "Scorer weight profile (balanced, frugal, social, ...)")
	planCmd.Flags().StringArrayVar(&planMembers, "member", nil, "Group member location as lat,lng (repeatable)")
}

func runPlan(ctx context.Context, request string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if planMaxRetries >= 0 {
		cfg.Pipeline.MaxRetries = planMaxRetries
	}
	if planConcurrency > 0 {
		cfg.Pipeline.Concurrency = planConcurrency
	}
	if planProfile != "" {
		cfg.Pipeline.WeightProfile = planProfile
	}

	members, err := parseMembers(planMembers)
	if err != nil {
		return err
	}

	exec, store, cleanup, err := buildExecutor(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	st := pipeline.NewState(request, members)
	runID := uuid.NewString()

	var result *models.PlanResult
	switch {
	case planTUI:
		result, err = runPlanTUI(ctx, exec, st, request)
	case planStream:
		err = exec.RunStreaming(ctx, st, newStreamPrinter())
		if err == nil {
			result = st.Result()
		}
	default:
		var terminal *pipeline.State
		terminal, err = exec.Run(ctx, st)
		if err == nil {
			result = terminal.Result()
			printResult(result)
		}
	}
	if err != nil {
		return err
	}

	recordOutcome(store, runID, st, result)
	return nil
}

// buildExecutor wires the configured collaborators into a pipeline executor.
// The returned cleanup closes the logger and history store.
func buildExecutor(cfg *config.Config) (*pipeline.Executor, *history.Store, func(), error) {
	var apiKey string
	if !cfg.Anthropic.Bedrock {
		key, err := config.GetAPIKey(cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		apiKey = key
	}

	gen, err := llm.NewClient(llm.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        apiKey,
		UseAWSBedrock: cfg.Anthropic.Bedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	places := services.NewPlacesClient(cfg.Services.PlacesBaseURL, cfg.Services.PlacesAPIKey)
	mapbox := services.NewMapboxClient(cfg.Services.MapboxBaseURL, cfg.Services.MapboxToken)
	weather := services.NewWeatherClient(cfg.Services.WeatherBaseURL, cfg.Services.WeatherAPIKey)
	nearby := services.NewEventsClient(cfg.Services.EventsBaseURL, cfg.Services.EventsAPIKey)
	reader := services.NewReaderClient(cfg.Services.ReaderBaseURL)

	var store *history.Store
	var hist agents.RiskHistory
	if cfg.History.Enabled {
		path := cfg.History.Path
		if path == "" {
			path = history.DefaultDBPath()
		}
		store, err = history.NewStore(path)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := store.Migrate(); err != nil {
			store.Close()
			return nil, nil, nil, err
		}
		hist = store
	}

	logger, err := pipeline.NewDebugLogger(cfg.Pipeline.DebugLog)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, nil, nil, err
	}

	sink := events.NewSink()
	commander := agents.NewCommander(gen, sink)
	if cfg.Pipeline.WeightProfile != "" {
		weights, err := config.WeightProfile(cfg.Pipeline.WeightProfile)
		if err != nil {
			logger.Close()
			if store != nil {
				store.Close()
			}
			return nil, nil, nil, err
		}
		commander.UseWeightProfile(weights)
	}

	exec, err := pipeline.New(pipeline.RequiredConfig{
		Intent:    commander,
		Discovery: agents.NewScout(places, sink),
		Scorers: []pipeline.Stage{
			agents.NewVibeMatcher(gen, sink),
			agents.NewAccessAnalyst(mapbox, sink),
			agents.NewCostAnalyst(gen, reader, sink),
		},
		Review:    agents.NewCritic(gen, weather, nearby, hist, sink),
		Synthesis: agents.NewSynthesiser(sink),
	},
		pipeline.WithSink(sink),
		pipeline.WithLogger(logger),
		pipeline.WithMaxRetries(cfg.Pipeline.MaxRetries),
		pipeline.WithConcurrency(cfg.Pipeline.Concurrency),
	)
	if err != nil {
		logger.Close()
		if store != nil {
			store.Close()
		}
		return nil, nil, nil, err
	}

	cleanup := func() {
		in, out := gen.Tracker().Total()
		logger.Log("[llm] %s: %d calls, %d input / %d output tokens",
			gen.Model(), gen.Tracker().Calls(), in, out)
		logger.Close()
		if store != nil {
			store.Close()
		}
	}
	return exec, store, cleanup, nil
}

// parseMembers parses repeated "lat,lng" flags.
func parseMembers(raw []string) ([]models.GeoPoint, error) {
	members := make([]models.GeoPoint, 0, len(raw))
	for _, s := range raw {
		parts := strings.SplitN(s, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --member %q: want lat,lng", s)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --member latitude %q: %w", parts[0], err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --member longitude %q: %w", parts[1], err)
		}
		members = append(members, models.GeoPoint{Lat: lat, Lng: lng})
	}
	return members, nil
}

// recordOutcome persists the run for the history command and future critics.
func recordOutcome(store *history.Store, runID string, st *pipeline.State, result *models.PlanResult) {
	if store == nil || result == nil {
		return
	}
	err := store.RecordPlan(&history.PlanRecord{
		RunID:      runID,
		Activity:   st.ParsedIntent.Activity,
		Degraded:   result.Degraded,
		VetoReason: result.VetoReason,
		Retries:    result.Retries,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not record run: %v\n", err)
	}
}
