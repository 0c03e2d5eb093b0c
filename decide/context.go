package decide

import (
	"fmt"
	"strings"

	"github.com/anatrav/conclave/rules"
)

// Context is the immutable decision context for one ply: position,
// side to move, legal-move set, and move history. It is built exactly
// once per ply and reused unchanged across retry rounds; only the
// feedback passed to Prompt grows between rounds.
type Context struct {
	fen        string
	turn       rules.Color
	legalMoves []string
	legalSet   map[string]struct{}
	history    []string
}

// NewContext builds a decision context from a position snapshot. A
// snapshot with no legal moves is a terminal position and is rejected
// with a ContextError: the caller must detect game end before asking
// for a decision.
func NewContext(snap *rules.Snapshot) (*Context, error) {
	if snap == nil {
		return nil, &ContextError{Reason: "nil position snapshot"}
	}
	if snap.FEN == "" {
		return nil, &ContextError{Reason: "snapshot has no position"}
	}
	if len(snap.LegalMoves) == 0 {
		return nil, &ContextError{Reason: "no legal moves; the game is already over"}
	}
	c := &Context{
		fen:        snap.FEN,
		turn:       snap.Turn,
		legalMoves: append([]string(nil), snap.LegalMoves...),
		legalSet:   make(map[string]struct{}, len(snap.LegalMoves)),
		history:    append([]string(nil), snap.History...),
	}
	for _, m := range c.legalMoves {
		c.legalSet[m] = struct{}{}
	}
	return c, nil
}

// FEN returns the position the decision is about.
func (c *Context) FEN() string { return c.fen }

// Turn returns the side to move.
func (c *Context) Turn() rules.Color { return c.turn }

// LegalMoves returns the legal-move set in engine generation order.
// Callers must not modify the returned slice.
func (c *Context) LegalMoves() []string { return c.legalMoves }

// HasLegal reports whether a canonical UCI move is legal here.
func (c *Context) HasLegal(uci string) bool {
	_, ok := c.legalSet[uci]
	return ok
}

const promptTemplate = `Let's play chess. The current game state in FEN is:
{board_in_fen}
The moves played so far are:
{move_history}
You are playing as player {player_color}.
It is now your turn. Play your strongest move. The move MUST be legal. Reason step by step to come up with your move, then output your final answer in the format "Final Answer: X" where X is your chosen move in standard algebraic notation (e.g., e4, Nf3, O-O).`

// Prompt derives the sampling prompt for a round. The base prompt is a
// pure function of the context; accumulated retry feedback, when
// non-empty, is appended without touching the context itself.
func (c *Context) Prompt(feedback string) string {
	p := strings.ReplaceAll(promptTemplate, "{board_in_fen}", c.fen)
	p = strings.ReplaceAll(p, "{move_history}", flattenHistory(c.history))
	p = strings.ReplaceAll(p, "{player_color}", string(c.turn))
	if feedback != "" {
		p += "\n\n" + feedback
	}
	return p
}

// flattenHistory renders UCI history with move numbers, e.g.
// "1. e2e4 e7e5 2. g1f3".
func flattenHistory(history []string) string {
	if len(history) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for i, m := range history {
		if i%2 == 0 {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%d.", i/2+1)
		}
		b.WriteByte(' ')
		b.WriteString(m)
	}
	return b.String()
}
