package gamestats

import (
	"fmt"
	"math"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
	"github.com/rs/zerolog/log"

	"github.com/anatrav/conclave/rules"
)

// Evaluator computes move metrics with a UCI analysis engine. The
// engine process starts lazily and must be released with Close.
type Evaluator struct {
	binary string
	depth  int
	eng    *uci.Engine
}

// NewEvaluator configures an evaluator; the binary must exist (the
// caller resolves it, typically via the engine player's lookup).
func NewEvaluator(binary string, depth int) *Evaluator {
	if depth < 1 {
		depth = 10
	}
	return &Evaluator{binary: binary, depth: depth}
}

// EvaluateMove scores moveUCI played from the position in fen against
// the engine's preferred move.
func (e *Evaluator) EvaluateMove(fen, moveUCI string) (*MoveMetrics, error) {
	if err := e.start(); err != nil {
		return nil, err
	}

	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("evaluate move: %w", err)
	}
	pos := chess.NewGame(opt).Position()

	color := rules.White
	if pos.Turn() == chess.Black {
		color = rules.Black
	}

	var played *chess.Move
	for _, m := range pos.ValidMoves() {
		if m.String() == moveUCI {
			played = m
			break
		}
	}
	if played == nil {
		return nil, fmt.Errorf("evaluate move: %s is not legal in position", moveUCI)
	}

	best, err := e.bestMove(pos)
	if err != nil {
		return nil, err
	}
	bestMoveHit := best.String() == moveUCI

	bestCP, bestMate, err := e.scoreAfter(pos, best)
	if err != nil {
		return nil, err
	}
	playedCP, playedMate := bestCP, bestMate
	if !bestMoveHit {
		playedCP, playedMate, err = e.scoreAfter(pos, played)
		if err != nil {
			return nil, err
		}
	}

	loss := math.Max(0, bestCP-playedCP)
	return &MoveMetrics{
		Color:         color,
		MoveUCI:       moveUCI,
		BestMoveUCI:   best.String(),
		CentipawnLoss: loss,
		BestMoveHit:   bestMoveHit,
		Quality:       Classify(bestMoveHit, loss, bestMate, playedMate),
	}, nil
}

func (e *Evaluator) bestMove(pos *chess.Position) (*chess.Move, error) {
	if err := e.eng.Run(uci.CmdPosition{Position: pos}, uci.CmdGo{Depth: e.depth}); err != nil {
		return nil, fmt.Errorf("engine search: %w", err)
	}
	best := e.eng.SearchResults().BestMove
	if best == nil {
		return nil, fmt.Errorf("engine returned no best move")
	}
	return best, nil
}

// scoreAfter evaluates the position reached by playing m from pos,
// from the mover's point of view.
func (e *Evaluator) scoreAfter(pos *chess.Position, m *chess.Move) (float64, bool, error) {
	next := pos.Update(m)

	// Terminal positions need no engine: a delivered mate scores the
	// full mate value, a stalemate is dead equal.
	switch next.Status() {
	case chess.Checkmate:
		return mateScore, true, nil
	case chess.Stalemate:
		return 0, false, nil
	}

	if err := e.eng.Run(uci.CmdPosition{Position: next}, uci.CmdGo{Depth: e.depth}); err != nil {
		return 0, false, fmt.Errorf("engine analysis: %w", err)
	}
	info := e.eng.SearchResults().Info

	// The engine scores from the side to move in next, which is the
	// mover's opponent; negate to get the mover's point of view.
	if info.Score.Mate != 0 {
		cp := float64(mateScore)
		if info.Score.Mate > 0 {
			cp = -mateScore
		}
		return cp, info.Score.Mate < 0, nil
	}
	return -float64(info.Score.CP), false, nil
}

func (e *Evaluator) start() error {
	if e.eng != nil {
		return nil
	}
	eng, err := uci.New(e.binary)
	if err != nil {
		return fmt.Errorf("starting analysis engine %s: %w", e.binary, err)
	}
	if err := eng.Run(uci.CmdUCI, uci.CmdIsReady, uci.CmdUCINewGame); err != nil {
		eng.Close()
		return fmt.Errorf("initializing analysis engine: %w", err)
	}
	e.eng = eng
	log.Info().Str("binary", e.binary).Int("depth", e.depth).Msg("analysis engine started")
	return nil
}

// Close shuts the analysis engine down.
func (e *Evaluator) Close() {
	if e.eng == nil {
		return
	}
	e.eng.Close()
	e.eng = nil
}
