package decide

import (
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// RoundResult is the outcome of aggregating one round's samples:
// either a winning move with its vote counts, or a failed round whose
// Reasons carry every invalid/unparseable sample's diagnostic.
type RoundResult struct {
	// Move is the winning canonical UCI move; empty when the round
	// produced no valid votes.
	Move  string
	Votes int

	Valid   int
	Invalid int
	Failed  int

	Samples []Sample
	// Reasons is populated only for failed rounds.
	Reasons []string
}

// Decided reports whether the round selected a move.
func (r RoundResult) Decided() bool { return r.Move != "" }

type tallyEntry struct {
	count int
	first int // sample index of the move's first occurrence
}

// Aggregate tallies a round. Only ParsedValid samples vote; invalid
// and unparseable samples count toward diagnostics but never toward
// the majority denominator. The winner is the move with the most
// votes; ties break to the move whose first supporting sample has the
// lowest issuance index, which makes the result a pure function of the
// ordered sample slice.
func Aggregate(samples []Sample) RoundResult {
	res := RoundResult{Samples: samples}

	tally := make(map[string]*tallyEntry)
	var order []string // first-occurrence order, for deterministic iteration
	for _, s := range samples {
		switch s.Outcome {
		case ParsedValid:
			res.Valid++
			e, ok := tally[s.Move]
			if !ok {
				e = &tallyEntry{first: s.Index}
				tally[s.Move] = e
				order = append(order, s.Move)
			}
			e.count++
		case ParsedInvalid:
			res.Invalid++
		case ParseFailed:
			res.Failed++
		}
	}

	if res.Valid == 0 {
		res.Reasons = lo.FilterMap(samples, func(s Sample, _ int) (string, bool) {
			return s.Reason, s.Outcome != ParsedValid
		})
		return res
	}

	winner := order[0]
	for _, mv := range order[1:] {
		e := tally[mv]
		w := tally[winner]
		if e.count > w.count || (e.count == w.count && e.first < w.first) {
			winner = mv
		}
	}
	res.Move = winner
	res.Votes = tally[winner].count

	ties := lo.CountBy(order, func(mv string) bool { return tally[mv].count == res.Votes })
	if ties > 1 {
		log.Debug().Str("move", winner).Int("votes", res.Votes).Int("tied", ties).
			Msg("vote tie broken by first occurrence")
	}
	return res
}
