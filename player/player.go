// Package player defines the player abstraction the game driver talks
// to, and the concrete players: LLM-backed, random, and UCI engine.
package player

import (
	"context"

	"github.com/anatrav/conclave/decide"
	"github.com/anatrav/conclave/rules"
)

// Action is what a player decided to do on its turn.
type Action int

const (
	ActionMove Action = iota
	ActionResign
)

func (a Action) String() string {
	if a == ActionResign {
		return "resign"
	}
	return "move"
}

// Decision is a player's answer for one ply. Move is canonical UCI and
// set only for ActionMove. Provenance carries the full voting trail
// for players that have one.
type Decision struct {
	Action     Action
	Move       string
	Provenance *decide.Decision
}

// Player chooses moves for one color. ChooseMove may return an error
// only for failures the game cannot absorb (transport, terminal
// position); a player that merely cannot find a good move resigns.
type Player interface {
	Name() string
	Color() rules.Color
	ChooseMove(ctx context.Context, snap *rules.Snapshot) (Decision, error)
	Close() error
}
