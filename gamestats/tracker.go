package gamestats

import (
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/anatrav/conclave/rules"
)

// Tracker records per-move metrics over a game. Evaluation failures
// disable the tracker rather than aborting the game; a broken analysis
// engine should never decide a match.
type Tracker struct {
	eval     *Evaluator
	moves    []MoveMetrics
	disabled bool
}

func NewTracker(eval *Evaluator) *Tracker {
	return &Tracker{eval: eval}
}

// RecordMove evaluates one played move. fen is the position before the
// move; moveUCI is the move that was played from it.
func (t *Tracker) RecordMove(fen, moveUCI string) {
	if t == nil || t.disabled {
		return
	}
	m, err := t.eval.EvaluateMove(fen, moveUCI)
	if err != nil {
		log.Warn().Err(err).Str("move", moveUCI).Msg("move evaluation failed, disabling metrics")
		t.disabled = true
		return
	}
	t.moves = append(t.moves, *m)
}

// Moves returns all recorded metrics in play order.
func (t *Tracker) Moves() []MoveMetrics {
	if t == nil {
		return nil
	}
	return t.moves
}

// Summarize aggregates recorded metrics per color. Colors with no
// evaluated moves are omitted.
func (t *Tracker) Summarize() map[rules.Color]Summary {
	if t == nil || len(t.moves) == 0 {
		return nil
	}
	out := make(map[rules.Color]Summary, 2)
	for color, moves := range lo.GroupBy(t.moves, func(m MoveMetrics) rules.Color { return m.Color }) {
		s := Summary{
			MovesEvaluated: len(moves),
			QualityCounts:  lo.CountValuesBy(moves, func(m MoveMetrics) Quality { return m.Quality }),
		}
		for _, m := range moves {
			s.AverageCentipawnLoss += m.CentipawnLoss
			if m.BestMoveHit {
				s.BestMoveHitRate++
			}
		}
		s.AverageCentipawnLoss /= float64(len(moves))
		s.BestMoveHitRate /= float64(len(moves))
		out[color] = s
	}
	return out
}

// Close releases the underlying evaluator.
func (t *Tracker) Close() {
	if t == nil || t.eval == nil {
		return
	}
	t.eval.Close()
}
