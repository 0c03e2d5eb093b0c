package player

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
	"github.com/rs/zerolog/log"

	"github.com/anatrav/conclave/rules"
)

// common engine install locations checked after PATH.
var commonEngineBinaries = []string{
	"/usr/local/bin/stockfish",
	"/usr/bin/stockfish",
	"/opt/homebrew/bin/stockfish",
}

// EnginePlayer plays moves from a UCI engine such as stockfish. The
// engine subprocess starts lazily on the first move request so a
// failed game setup never leaves a process behind.
type EnginePlayer struct {
	name     string
	color    rules.Color
	binary   string
	depth    int
	moveTime time.Duration
	eng      *uci.Engine
}

// NewEnginePlayer configures an engine player. binary may be empty to
// auto-detect, checking $CONCLAVE_ENGINE_BINARY, PATH, then common
// install locations. A non-zero moveTime limits the search by time
// instead of depth.
func NewEnginePlayer(name string, color rules.Color, binary string, depth int, moveTime time.Duration) (*EnginePlayer, error) {
	resolved, err := FindEngineBinary(binary)
	if err != nil {
		return nil, err
	}
	if depth < 1 {
		depth = 10
	}
	return &EnginePlayer{name: name, color: color, binary: resolved, depth: depth, moveTime: moveTime}, nil
}

func (p *EnginePlayer) Name() string       { return p.name }
func (p *EnginePlayer) Color() rules.Color { return p.color }

func (p *EnginePlayer) ChooseMove(_ context.Context, snap *rules.Snapshot) (Decision, error) {
	if len(snap.LegalMoves) == 0 {
		return Decision{}, fmt.Errorf("engine player asked to move in a terminal position")
	}
	if err := p.start(); err != nil {
		return Decision{}, err
	}

	fen, err := chess.FEN(snap.FEN)
	if err != nil {
		return Decision{}, fmt.Errorf("engine player: %w", err)
	}
	pos := chess.NewGame(fen).Position()

	search := uci.CmdGo{Depth: p.depth}
	if p.moveTime > 0 {
		search = uci.CmdGo{MoveTime: p.moveTime}
	}
	cmds := []uci.Cmd{
		uci.CmdPosition{Position: pos},
		search,
	}
	if err := p.eng.Run(cmds...); err != nil {
		return Decision{}, fmt.Errorf("engine search failed: %w", err)
	}
	best := p.eng.SearchResults().BestMove
	if best == nil {
		return Decision{}, fmt.Errorf("engine returned no best move")
	}
	return Decision{Action: ActionMove, Move: best.String()}, nil
}

func (p *EnginePlayer) start() error {
	if p.eng != nil {
		return nil
	}
	eng, err := uci.New(p.binary)
	if err != nil {
		return fmt.Errorf("starting engine %s: %w", p.binary, err)
	}
	if err := eng.Run(uci.CmdUCI, uci.CmdIsReady, uci.CmdUCINewGame); err != nil {
		eng.Close()
		return fmt.Errorf("initializing engine: %w", err)
	}
	p.eng = eng
	log.Info().Str("binary", p.binary).Int("depth", p.depth).Msg("engine started")
	return nil
}

// Close terminates the engine subprocess if it was started.
func (p *EnginePlayer) Close() error {
	if p.eng == nil {
		return nil
	}
	p.eng.Close()
	p.eng = nil
	return nil
}

// FindEngineBinary resolves a UCI engine binary: the explicit path if
// given, then $CONCLAVE_ENGINE_BINARY, PATH, then common locations.
func FindEngineBinary(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("engine binary not found at %s: %w", explicit, err)
		}
		return explicit, nil
	}
	if env := os.Getenv("CONCLAVE_ENGINE_BINARY"); env != "" {
		if _, err := os.Stat(env); err == nil {
			return env, nil
		}
		log.Warn().Str("path", env).Msg("CONCLAVE_ENGINE_BINARY set but file missing")
	}
	if path, err := exec.LookPath("stockfish"); err == nil {
		return path, nil
	}
	for _, path := range commonEngineBinaries {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no UCI engine found; install stockfish or set engine_binary")
}
