package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/anatrav/conclave/config"
	"github.com/anatrav/conclave/game"
	"github.com/anatrav/conclave/gamestats"
	"github.com/anatrav/conclave/llm"
	"github.com/anatrav/conclave/player"
	"github.com/anatrav/conclave/rules"
)

var (
	configPath = flag.String("config", "", "path to YAML config file")
	whiteKind  = flag.String("white", "llm", "white player: llm, random, or engine")
	blackKind  = flag.String("black", "random", "black player: llm, random, or engine")
	startFEN   = flag.String("fen", "", "starting position FEN (default: standard)")
	reportPath = flag.String("report", "", "write a YAML game report to this path")
	maxMoves   = flag.Int("moves", 0, "half-move cutoff, overrides config when > 0")
	seed       = flag.Uint64("seed", 0, "seed for random players (0 = nondeterministic)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if *maxMoves > 0 {
		cfg.MaxMoves = *maxMoves
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	white, err := buildPlayer(ctx, cfg, *whiteKind, rules.White)
	if err != nil {
		log.Fatal().Err(err).Msg("building white player")
	}
	black, err := buildPlayer(ctx, cfg, *blackKind, rules.Black)
	if err != nil {
		log.Fatal().Err(err).Msg("building black player")
	}

	var tracker *gamestats.Tracker
	if cfg.Metrics {
		binary, err := player.FindEngineBinary(cfg.EngineBinary)
		if err != nil {
			log.Fatal().Err(err).Msg("metrics enabled but no analysis engine")
		}
		tracker = gamestats.NewTracker(gamestats.NewEvaluator(binary, cfg.EngineDepth))
	}

	g, err := game.New(white, black, game.Options{
		StartFEN:  *startFEN,
		MaxMoves:  cfg.MaxMoves,
		ShowBoard: cfg.ShowBoard,
		Tracker:   tracker,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("setting up game")
	}
	defer g.Close()

	report, err := g.Play(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("game aborted")
	}

	if *reportPath != "" {
		if err := report.WriteFile(*reportPath); err != nil {
			log.Fatal().Err(err).Msg("writing report")
		}
		log.Info().Str("path", *reportPath).Msg("report written")
	}
	fmt.Println(report.PGN)
}

func buildPlayer(ctx context.Context, cfg *config.Config, kind string, color rules.Color) (player.Player, error) {
	name := fmt.Sprintf("%s-%s", kind, color.Short())
	switch strings.ToLower(kind) {
	case "llm":
		sampler, err := llm.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return player.NewLLMPlayer(name, color, sampler, cfg.SamplesPerRound, cfg.MaxRounds)
	case "random":
		return player.NewRandomPlayer(name, color, *seed), nil
	case "engine":
		return player.NewEnginePlayer(name, color, cfg.EngineBinary, cfg.EngineDepth, cfg.EngineMoveTime)
	}
	return nil, fmt.Errorf("unknown player kind %q (want llm, random, or engine)", kind)
}
