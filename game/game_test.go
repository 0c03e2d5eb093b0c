package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatrav/conclave/decide"
	"github.com/anatrav/conclave/player"
	"github.com/anatrav/conclave/rules"
)

// scriptedPlayer plays a fixed UCI move sequence, then resigns.
type scriptedPlayer struct {
	name  string
	color rules.Color
	moves []string
	next  int
}

func (p *scriptedPlayer) Name() string       { return p.name }
func (p *scriptedPlayer) Color() rules.Color { return p.color }
func (p *scriptedPlayer) Close() error       { return nil }

func (p *scriptedPlayer) ChooseMove(context.Context, *rules.Snapshot) (player.Decision, error) {
	if p.next >= len(p.moves) {
		return player.Decision{Action: player.ActionResign}, nil
	}
	move := p.moves[p.next]
	p.next++
	return player.Decision{Action: player.ActionMove, Move: move}, nil
}

func TestPlayFoolsMate(t *testing.T) {
	white := &scriptedPlayer{name: "w", color: rules.White, moves: []string{"f2f3", "g2g4"}}
	black := &scriptedPlayer{name: "b", color: rules.Black, moves: []string{"e7e5", "d8h4"}}

	g, err := New(white, black, Options{})
	require.NoError(t, err)

	report, err := g.Play(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "0-1", report.Result)
	assert.Equal(t, "black", report.Winner)
	assert.Equal(t, 4, report.Plies)
	require.Len(t, report.Moves, 4)
	assert.Equal(t, "f2f3", report.Moves[0].Move)
	assert.Equal(t, rules.White, report.Moves[0].Color)
	assert.Equal(t, "d8h4", report.Moves[3].Move)
	assert.Contains(t, report.PGN, "Qh4#")
}

func TestPlayResignation(t *testing.T) {
	white := &scriptedPlayer{name: "w", color: rules.White, moves: []string{"e2e4"}}
	black := &scriptedPlayer{name: "b", color: rules.Black} // resigns immediately

	g, err := New(white, black, Options{})
	require.NoError(t, err)

	report, err := g.Play(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1-0", report.Result)
	assert.Equal(t, "white", report.Winner)
	assert.Equal(t, 1, report.Plies)
}

func TestPlayIllegalMoveForfeits(t *testing.T) {
	// White's scripted second move is illegal; white forfeits.
	white := &scriptedPlayer{name: "w", color: rules.White, moves: []string{"e2e4", "e4e6"}}
	black := &scriptedPlayer{name: "b", color: rules.Black, moves: []string{"e7e5", "b8c6"}}

	g, err := New(white, black, Options{})
	require.NoError(t, err)

	report, err := g.Play(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "0-1", report.Result)
	assert.Equal(t, "black", report.Winner)
	// Only the two legal moves made it into the record.
	assert.Len(t, report.Moves, 2)
}

func TestPlayMoveLimitDraws(t *testing.T) {
	white := &scriptedPlayer{name: "w", color: rules.White, moves: []string{"g1f3", "f3g1", "g1f3", "f3g1"}}
	black := &scriptedPlayer{name: "b", color: rules.Black, moves: []string{"g8f6", "f6g8", "g8f6", "f6g8"}}

	g, err := New(white, black, Options{MaxMoves: 4})
	require.NoError(t, err)

	report, err := g.Play(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1/2-1/2", report.Result)
	assert.Equal(t, 4, report.Plies)
	assert.Empty(t, report.Winner)
}

func TestPlayFromCustomPosition(t *testing.T) {
	// White mates in one from a ladder position.
	white := &scriptedPlayer{name: "w", color: rules.White, moves: []string{"b6b8"}}
	black := &scriptedPlayer{name: "b", color: rules.Black}

	g, err := New(white, black, Options{StartFEN: "6k1/R7/1R6/8/8/8/8/6K1 w - - 0 1"})
	require.NoError(t, err)

	report, err := g.Play(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1-0", report.Result)
	assert.Equal(t, 1, report.Plies)
}

func TestNewRejectsMismatchedColors(t *testing.T) {
	white := &scriptedPlayer{name: "w", color: rules.Black}
	black := &scriptedPlayer{name: "b", color: rules.Black}

	_, err := New(white, black, Options{})
	assert.Error(t, err)
}

func TestMoveRecordCarriesProvenance(t *testing.T) {
	white := &provenancePlayer{}
	black := &scriptedPlayer{name: "b", color: rules.Black}

	g, err := New(white, black, Options{})
	require.NoError(t, err)

	report, err := g.Play(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, report.Moves)
	assert.Equal(t, 2, report.Moves[0].Round)
	assert.Equal(t, 3, report.Moves[0].Votes)

	// The full per-round trail survives into the report, failed round
	// included.
	rounds := report.Moves[0].Rounds
	require.Len(t, rounds, 2)
	assert.Equal(t, 1, rounds[0].Round)
	assert.Empty(t, rounds[0].Move)
	assert.Equal(t, 1, rounds[0].Invalid)
	require.Len(t, rounds[0].Samples, 1)
	assert.Equal(t, "invalid", rounds[0].Samples[0].Outcome)
	assert.Equal(t, "Ke2", rounds[0].Samples[0].Token)
	assert.Equal(t, "illegal move in current position", rounds[0].Samples[0].Reason)

	assert.Equal(t, "e2e4", rounds[1].Move)
	assert.Equal(t, 3, rounds[1].Votes)
	assert.Equal(t, 3, rounds[1].Valid)
}

// provenancePlayer plays one move with a fabricated voting trail.
type provenancePlayer struct {
	moved bool
}

func (p *provenancePlayer) Name() string       { return "prov" }
func (p *provenancePlayer) Color() rules.Color { return rules.White }
func (p *provenancePlayer) Close() error       { return nil }

func (p *provenancePlayer) ChooseMove(context.Context, *rules.Snapshot) (player.Decision, error) {
	if p.moved {
		return player.Decision{Action: player.ActionResign}, nil
	}
	p.moved = true
	return player.Decision{
		Action: player.ActionMove,
		Move:   "e2e4",
		Provenance: &decide.Decision{
			Move:  "e2e4",
			Round: 2,
			Votes: 3,
			Rounds: []decide.RoundRecord{
				{Round: 1, Result: decide.RoundResult{
					Invalid: 1,
					Samples: []decide.Sample{{
						Index:   0,
						Outcome: decide.ParsedInvalid,
						Token:   "Ke2",
						Reason:  "illegal move in current position",
					}},
				}},
				{Round: 2, Result: decide.RoundResult{
					Move:  "e2e4",
					Votes: 3,
					Valid: 3,
					Samples: []decide.Sample{
						{Index: 0, Outcome: decide.ParsedValid, Token: "e4", Move: "e2e4"},
						{Index: 1, Outcome: decide.ParsedValid, Token: "e4", Move: "e2e4"},
						{Index: 2, Outcome: decide.ParsedValid, Token: "e4", Move: "e2e4"},
					},
				}},
			},
		},
	}, nil
}
