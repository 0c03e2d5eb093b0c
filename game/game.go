// Package game drives a match between two players: it takes position
// snapshots, asks the player on turn for a decision, applies moves,
// and produces a structured report when the game ends.
package game

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/anatrav/conclave/gamestats"
	"github.com/anatrav/conclave/player"
	"github.com/anatrav/conclave/rules"
)

// Options control a single game.
type Options struct {
	// StartFEN is the starting position; empty means the standard one.
	StartFEN string
	// MaxMoves is the half-move cutoff; reaching it ends the game as a
	// draw. 0 means no cutoff.
	MaxMoves int
	// ShowBoard prints the board after every move.
	ShowBoard bool
	// Tracker, when set, records engine metrics for every played move.
	Tracker *gamestats.Tracker
}

// Game runs one match between a white and a black player.
type Game struct {
	g     *rules.Game
	white player.Player
	black player.Player
	opts  Options
	moves []MoveRecord
}

// New sets up a game. Players must be assigned opposite colors, white
// first.
func New(white, black player.Player, opts Options) (*Game, error) {
	if white.Color() != rules.White {
		return nil, fmt.Errorf("white player %s has color %s", white.Name(), white.Color())
	}
	if black.Color() != rules.Black {
		return nil, fmt.Errorf("black player %s has color %s", black.Name(), black.Color())
	}
	g := rules.NewGame()
	if opts.StartFEN != "" {
		var err error
		g, err = rules.NewGameFromFEN(opts.StartFEN)
		if err != nil {
			return nil, err
		}
	}
	return &Game{g: g, white: white, black: black, opts: opts}, nil
}

// Play runs the game to completion and returns the report. An error is
// returned only for failures outside the game itself, such as a dead
// transport; every in-game outcome, including resignations and
// forfeits, ends normally with a report.
func (gm *Game) Play(ctx context.Context) (*Report, error) {
	start := time.Now()
	log.Info().Str("white", gm.white.Name()).Str("black", gm.black.Name()).Msg("game started")

	for !gm.g.Finished() {
		if gm.opts.MaxMoves > 0 && gm.g.Plies() >= gm.opts.MaxMoves {
			if err := gm.g.DrawByAgreement(); err != nil {
				return nil, fmt.Errorf("applying move-limit draw: %w", err)
			}
			log.Info().Int("plies", gm.g.Plies()).Msg("move limit reached, game drawn")
			break
		}

		snap := gm.g.Snapshot()
		p := gm.onTurn(snap.Turn)

		decision, err := p.ChooseMove(ctx, snap)
		if err != nil {
			return nil, fmt.Errorf("player %s on move %d: %w", p.Name(), gm.g.Plies()+1, err)
		}

		switch decision.Action {
		case player.ActionResign:
			log.Info().Str("player", p.Name()).Msg("player resigned")
			gm.g.Resign(snap.Turn)
		case player.ActionMove:
			if err := gm.applyMove(p, snap, decision); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("player %s returned unknown action %d", p.Name(), decision.Action)
		}

		if gm.opts.ShowBoard {
			fmt.Println(gm.g.DrawBoard())
		}
	}

	report := gm.report(time.Since(start))
	log.Info().Str("result", report.Result).Str("termination", report.Termination).
		Int("plies", report.Plies).Msg("game finished")
	return report, nil
}

// applyMove pushes the decided move; a move the rules engine rejects
// forfeits the game for the player that produced it.
func (gm *Game) applyMove(p player.Player, snap *rules.Snapshot, d player.Decision) error {
	if err := gm.g.PushUCI(d.Move); err != nil {
		log.Error().Err(err).Str("player", p.Name()).Str("move", d.Move).
			Msg("unplayable move, forfeiting")
		gm.g.Resign(snap.Turn)
		return nil
	}

	rec := MoveRecord{
		Ply:    gm.g.Plies(),
		Color:  snap.Turn,
		Player: p.Name(),
		Move:   d.Move,
	}
	if d.Provenance != nil {
		rec.Round = d.Provenance.Round
		rec.Votes = d.Provenance.Votes
		rec.Rounds = traceRounds(d.Provenance.Rounds)
	}
	gm.moves = append(gm.moves, rec)
	gm.opts.Tracker.RecordMove(snap.FEN, d.Move)

	log.Info().Str("player", p.Name()).Str("move", d.Move).Int("ply", rec.Ply).Msg("move played")
	return nil
}

func (gm *Game) onTurn(c rules.Color) player.Player {
	if c == rules.White {
		return gm.white
	}
	return gm.black
}

func (gm *Game) report(elapsed time.Duration) *Report {
	r := &Report{
		White:       gm.white.Name(),
		Black:       gm.black.Name(),
		Result:      gm.g.Result(),
		Termination: gm.g.Termination(),
		Plies:       gm.g.Plies(),
		Duration:    elapsed.Round(time.Millisecond).String(),
		Moves:       gm.moves,
		PGN:         gm.g.PGN(),
	}
	if winner, ok := gm.g.Winner(); ok {
		r.Winner = string(winner)
	}
	if summaries := gm.opts.Tracker.Summarize(); summaries != nil {
		r.Metrics = summaries
	}
	return r
}

// Close releases both players and the tracker.
func (gm *Game) Close() {
	if err := gm.white.Close(); err != nil {
		log.Warn().Err(err).Str("player", gm.white.Name()).Msg("player close failed")
	}
	if err := gm.black.Close(); err != nil {
		log.Warn().Err(err).Str("player", gm.black.Name()).Msg("player close failed")
	}
	gm.opts.Tracker.Close()
}
