package decide

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// RoundRecord is the provenance of one voting round: the feedback that
// was injected into its prompt and the aggregation result.
type RoundRecord struct {
	Round    int
	Feedback string
	Result   RoundResult
}

// Decision is the terminal artifact of a successful decision: the
// chosen move, the round it was selected on, and the full per-round
// sample/vote trail.
type Decision struct {
	Move   string
	Round  int
	Votes  int
	Rounds []RoundRecord
}

// Controller runs the retry state machine around voting rounds. Each
// decision call owns its own retry state; nothing is shared across
// decisions.
type Controller struct {
	sampler   Sampler
	parser    *Parser
	samples   int
	maxRounds int
}

// NewController wires a sampler and parser into a controller issuing
// samplesPerRound completions per round, for at most maxRounds rounds.
func NewController(sampler Sampler, parser *Parser, samplesPerRound, maxRounds int) (*Controller, error) {
	if sampler == nil || parser == nil {
		return nil, errors.New("controller needs a sampler and a parser")
	}
	if samplesPerRound < 1 {
		return nil, fmt.Errorf("samples per round must be >= 1, got %d", samplesPerRound)
	}
	if maxRounds < 1 {
		return nil, fmt.Errorf("max rounds must be >= 1, got %d", maxRounds)
	}
	return &Controller{
		sampler:   sampler,
		parser:    parser,
		samples:   samplesPerRound,
		maxRounds: maxRounds,
	}, nil
}

// Decide runs voting rounds until a move wins, the rounds are
// exhausted, or the transport fails. The decision context is reused
// unchanged across every round; only the feedback appended to the
// prompt grows. On exhaustion the returned error is an *ExhaustedError
// with full provenance; transport failures surface as *TransportError
// immediately, with no further rounds.
func (c *Controller) Decide(ctx context.Context, dc *Context) (*Decision, error) {
	state := retryState{context: dc}

	for round := 1; round <= c.maxRounds; round++ {
		feedback := state.feedback()
		prompt := state.context.Prompt(feedback)

		log.Debug().Int("round", round).Int("samples", c.samples).
			Str("fen", dc.FEN()).Msg("sampling round")

		completions, err := c.sampler.Sample(ctx, prompt, c.samples)
		if err != nil {
			var te *TransportError
			if !errors.As(err, &te) {
				err = &TransportError{Err: err}
			}
			log.Error().Err(err).Int("round", round).Msg("transport failure, aborting decision")
			return nil, err
		}

		samples := make([]Sample, len(completions))
		for i, comp := range completions {
			samples[i] = c.parser.Parse(comp, dc)
		}
		result := Aggregate(samples)
		state.rounds = append(state.rounds, RoundRecord{Round: round, Feedback: feedback, Result: result})

		if result.Decided() {
			log.Info().Str("move", result.Move).Int("round", round).
				Int("votes", result.Votes).Int("valid", result.Valid).
				Int("invalid", result.Invalid).Int("parse_failed", result.Failed).
				Msg("decision reached")
			return &Decision{
				Move:   result.Move,
				Round:  round,
				Votes:  result.Votes,
				Rounds: state.rounds,
			}, nil
		}
		log.Warn().Int("round", round).Int("invalid", result.Invalid).
			Int("parse_failed", result.Failed).Msg("round produced no valid votes")
	}

	return nil, &ExhaustedError{Rounds: state.rounds}
}

// retryState is the explicit per-decision retry state: the original
// context (never replaced) and the failed rounds accumulated so far.
type retryState struct {
	context *Context
	rounds  []RoundRecord
}

// feedback renders the accumulated failure reasons as guidance for the
// next round's prompt, distinguishing illegal moves from unparseable
// answers so the model gets specific instructions.
func (s *retryState) feedback() string {
	if len(s.rounds) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Your previous attempts did not produce a legal move.\n")
	for _, r := range s.rounds {
		for _, smp := range r.Result.Samples {
			switch smp.Outcome {
			case ParsedInvalid:
				fmt.Fprintf(&b, "On attempt %d you suggested %q, which is an illegal move: %s.\n",
					r.Round, smp.Token, smp.Reason)
			case ParseFailed:
				fmt.Fprintf(&b, "On attempt %d no chess move could be parsed from your answer: %s.\n",
					r.Round, smp.Reason)
			}
		}
	}
	b.WriteString("Please think carefully and generate a new and legal move.")
	return b.String()
}
