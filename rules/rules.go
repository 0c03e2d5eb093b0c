// Package rules adapts the external chess rules engine. It owns
// position snapshots, move legality, canonicalization of move tokens
// to UCI, and the lifecycle of a live game. Everything above this
// package deals in plain strings: FENs, UCI moves, and colors.
package rules

import (
	"errors"
	"fmt"

	"github.com/notnil/chess"
)

// Color of a player's pieces.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Short returns "W" or "B" for display.
func (c Color) Short() string {
	if c == White {
		return "W"
	}
	return "B"
}

// Other returns the opposing color.
func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

var (
	// ErrIllegalMove means a recognized move token that is not legal in
	// the current position.
	ErrIllegalMove = errors.New("illegal move in current position")
	// ErrAmbiguousMove means a SAN token that more than one legal move
	// satisfies.
	ErrAmbiguousMove = errors.New("ambiguous move")
	// ErrBadNotation means the token is not recognizable move notation.
	ErrBadNotation = errors.New("unrecognized move notation")
)

// Snapshot is a read-only view of a position, taken once per ply.
// LegalMoves preserves the engine's generation order. Callers must not
// modify the slices.
type Snapshot struct {
	FEN        string
	Turn       Color
	LegalMoves []string // canonical UCI
	History    []string // canonical UCI, in play order
}

// Game wraps a live game owned by the rules engine.
type Game struct {
	g *chess.Game
}

// NewGame starts a game from the standard initial position.
func NewGame() *Game {
	return &Game{g: chess.NewGame()}
}

// NewGameFromFEN starts a game from an arbitrary position.
func NewGameFromFEN(fen string) (*Game, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("invalid FEN %q: %w", fen, err)
	}
	return &Game{g: chess.NewGame(opt)}, nil
}

// Snapshot captures the current position, legal-move set, and history.
func (g *Game) Snapshot() *Snapshot {
	pos := g.g.Position()
	valid := g.g.ValidMoves()
	legal := make([]string, len(valid))
	for i, m := range valid {
		legal[i] = m.String()
	}
	past := g.g.Moves()
	history := make([]string, len(past))
	for i, m := range past {
		history[i] = m.String()
	}
	turn := White
	if pos.Turn() == chess.Black {
		turn = Black
	}
	return &Snapshot{
		FEN:        pos.String(),
		Turn:       turn,
		LegalMoves: legal,
		History:    history,
	}
}

// PushUCI applies a canonical UCI move to the game.
func (g *Game) PushUCI(uci string) error {
	for _, m := range g.g.ValidMoves() {
		if m.String() == uci {
			return g.g.Move(m)
		}
	}
	return fmt.Errorf("%w: %s", ErrIllegalMove, uci)
}

// Finished reports whether the game has an outcome.
func (g *Game) Finished() bool {
	return g.g.Outcome() != chess.NoOutcome
}

// Result returns the PGN result string ("1-0", "0-1", "1/2-1/2", "*").
func (g *Game) Result() string {
	return g.g.Outcome().String()
}

// Termination names how the game ended, or "NoMethod" while running.
func (g *Game) Termination() string {
	return g.g.Method().String()
}

// Winner returns the winning color if the game ended decisively.
func (g *Game) Winner() (Color, bool) {
	switch g.g.Outcome() {
	case chess.WhiteWon:
		return White, true
	case chess.BlackWon:
		return Black, true
	}
	return "", false
}

// Resign ends the game with a loss for the given color. Also used for
// forfeits after an unplayable decision, which the rules engine has no
// separate termination for.
func (g *Game) Resign(c Color) {
	if c == White {
		g.g.Resign(chess.White)
	} else {
		g.g.Resign(chess.Black)
	}
}

// DrawByAgreement ends the game as a draw, used for move-limit cutoffs.
func (g *Game) DrawByAgreement() error {
	return g.g.Draw(chess.DrawOffer)
}

// Plies returns the number of half-moves played.
func (g *Game) Plies() int {
	return len(g.g.Moves())
}

// PGN renders the game in PGN format.
func (g *Game) PGN() string {
	return g.g.String()
}

// DrawBoard renders the current board as ASCII art.
func (g *Game) DrawBoard() string {
	return g.g.Position().Board().Draw()
}

func positionFromFEN(fen string) (*chess.Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("invalid FEN %q: %w", fen, err)
	}
	return chess.NewGame(opt).Position(), nil
}
