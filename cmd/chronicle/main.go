package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chronicle-rpg/chronicle/internal/actor"
	"github.com/chronicle-rpg/chronicle/internal/chat"
	"github.com/chronicle-rpg/chronicle/internal/config"
	"github.com/chronicle-rpg/chronicle/internal/consequence"
	"github.com/chronicle-rpg/chronicle/internal/persist"
	"github.com/chronicle-rpg/chronicle/internal/round"
	"github.com/chronicle-rpg/chronicle/internal/scenario"
	"github.com/chronicle-rpg/chronicle/internal/state"
	"github.com/chronicle-rpg/chronicle/internal/store"
)

var (
	configPath   = flag.String("config", "config/config.yaml", "path to configuration file")
	scenarioPath = flag.String("scenario", "", "path to the scenario JSON file")
	gameID       = flag.String("game", "", "game ID; resumes the save with this ID when present")
	resumeRound  = flag.Int("resume-round", -1, "resume from this round instead of the latest saved one")
	version      = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting chronicle",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	if *scenarioPath == "" {
		logger.Fatal("no scenario given, use -scenario")
	}
	scn, err := scenario.Load(*scenarioPath)
	if err != nil {
		logger.Fatal("failed to load scenario", zap.Error(err))
	}
	logger.Info("scenario loaded",
		zap.String("scenario_id", scn.ID),
		zap.String("title", scn.Title),
		zap.Int("characters", len(scn.Characters)),
		zap.Int("stages", len(scn.Stages)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	saver, loader, closeSaver, err := buildPersistence(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize persistence", zap.Error(err))
	}
	defer closeSaver()

	resuming := *gameID != ""
	id := *gameID
	if id == "" {
		id = uuid.NewString()
	}

	registry := consequence.NewRegistry(logger)
	gameState := scenario.NewGameState(scn, cfg.Game.MaxRounds)
	st := store.New(scn, gameState, registry, logger)
	history := chat.NewHistory()
	dispatcher := chat.NewDispatcher(history, logger)

	if resuming {
		if err := restore(ctx, loader, st, history, id, scn.ID, *resumeRound, logger); err != nil {
			logger.Fatal("failed to resume game", zap.Error(err))
		}
	}

	// Spectator view on the terminal: public messages only.
	dispatcher.Subscribe("", chat.SubscriberFunc(func(m chat.Message) error {
		fmt.Printf("[%d] %-18s %s\n", m.RoundID, m.Source+":", m.Content)
		return nil
	}))

	llm := actor.NewLLMClient(actor.LLMConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	exec := round.NewExecutor(&round.Context{
		Store:              st,
		Scenario:           scn,
		Dispatcher:         dispatcher,
		History:            history,
		Narrator:           actor.NewNarratorAgent(llm, scn, logger),
		Decider:            actor.NewCompanionAgent(llm, scn, logger),
		Options:            actor.NewPlayerOptionAgent(llm, scn, logger),
		Chooser:            actor.NewCLIChooser(os.Stdin, os.Stdout),
		Judge:              actor.NewRefereeAgent(llm, scn, logger),
		Logger:             logger,
		NarrationThreshold: cfg.Game.NarrationThreshold,
		HistoryWindow:      cfg.Game.HistoryWindow,
	})

	scheduler := round.NewScheduler(exec, saver, id, logger)
	logger.Info("session ready", zap.String("game_id", id), zap.Bool("resumed", resuming))

	if err := scheduler.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatal("session aborted", zap.Error(err))
	}
}

// loader is the read side of a persistence backend.
type loader interface {
	Load(ctx context.Context, gameID, scenarioID string, target int) (*persist.LoadResult, error)
}

func buildPersistence(ctx context.Context, cfg *config.Config, logger *zap.Logger) (persist.Saver, loader, func(), error) {
	if cfg.Database.Enabled {
		pg, err := persist.NewPGStore(ctx, cfg.Database.URL, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return pg, pg, pg.Close, nil
	}
	fs, err := persist.NewFileStore(cfg.Game.SaveDir, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return fs, fs, func() {}, nil
}

func restore(ctx context.Context, l loader, st *store.Store, history *chat.History, gameID, scenarioID string, target int, logger *zap.Logger) error {
	result, err := l.Load(ctx, gameID, scenarioID, target)
	if err != nil {
		return err
	}
	rec := result.Record

	latest := rec.LatestRound()
	if latest < 0 {
		return fmt.Errorf("save for game %s holds no rounds", gameID)
	}
	st.RestoreState(rec.StateByRound[latest])
	snapshots := make(map[int]*state.GameState, len(rec.StateByRound))
	for r, gs := range rec.StateByRound {
		snapshots[r] = gs
	}
	st.RestoreSnapshots(snapshots)
	history.Restore(rec.ChatByRound)

	logger.Info("game resumed",
		zap.String("game_id", gameID),
		zap.Int("round", latest),
		zap.Bool("scenario_mismatch", result.ScenarioMismatch),
	)
	return nil
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
