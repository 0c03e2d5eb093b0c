package player

import (
	"context"
	"encoding/binary"

	"lukechampine.com/frand"

	"github.com/anatrav/conclave/decide"
	"github.com/anatrav/conclave/rules"
)

// RandomPlayer picks a uniformly random legal move. Baseline opponent
// for testing and benchmarking.
type RandomPlayer struct {
	name  string
	color rules.Color
	rng   *frand.RNG
}

// NewRandomPlayer creates a random player. A non-zero seed makes its
// move sequence reproducible.
func NewRandomPlayer(name string, color rules.Color, seed uint64) *RandomPlayer {
	rng := frand.New()
	if seed != 0 {
		var key [32]byte
		binary.LittleEndian.PutUint64(key[:], seed)
		rng = frand.NewCustom(key[:], 1024, 12)
	}
	return &RandomPlayer{name: name, color: color, rng: rng}
}

func (p *RandomPlayer) Name() string       { return p.name }
func (p *RandomPlayer) Color() rules.Color { return p.color }

func (p *RandomPlayer) ChooseMove(_ context.Context, snap *rules.Snapshot) (Decision, error) {
	if _, err := decide.NewContext(snap); err != nil {
		return Decision{}, err
	}
	move := snap.LegalMoves[p.rng.Intn(len(snap.LegalMoves))]
	return Decision{Action: ActionMove, Move: move}, nil
}

func (p *RandomPlayer) Close() error { return nil }
