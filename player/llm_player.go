package player

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/anatrav/conclave/decide"
	"github.com/anatrav/conclave/rules"
)

// LLMPlayer chooses moves by majority voting over model completions,
// delegating to the decision core.
type LLMPlayer struct {
	name       string
	color      rules.Color
	controller *decide.Controller
}

// NewLLMPlayer wires a sampler into a fresh retry controller for this
// player. samplesPerRound completions vote each round, for at most
// maxRounds rounds per ply.
func NewLLMPlayer(name string, color rules.Color, sampler decide.Sampler, samplesPerRound, maxRounds int) (*LLMPlayer, error) {
	controller, err := decide.NewController(sampler, decide.NewParser(rules.Notation{}), samplesPerRound, maxRounds)
	if err != nil {
		return nil, err
	}
	return &LLMPlayer{name: name, color: color, controller: controller}, nil
}

func (p *LLMPlayer) Name() string       { return p.name }
func (p *LLMPlayer) Color() rules.Color { return p.color }

// ChooseMove runs the decision core for the current position. An
// exhausted decision becomes a resignation; the core never substitutes
// a fallback move. Transport and context errors propagate to the game
// driver, which owns how to end the game.
func (p *LLMPlayer) ChooseMove(ctx context.Context, snap *rules.Snapshot) (Decision, error) {
	dc, err := decide.NewContext(snap)
	if err != nil {
		return Decision{}, err
	}

	d, err := p.controller.Decide(ctx, dc)
	if err != nil {
		var exhausted *decide.ExhaustedError
		if errors.As(err, &exhausted) {
			log.Warn().Str("player", p.name).Int("rounds", len(exhausted.Rounds)).
				Msg("no valid move after all rounds, resigning")
			return Decision{Action: ActionResign}, nil
		}
		return Decision{}, err
	}

	log.Info().Str("player", p.name).Str("move", d.Move).
		Int("round", d.Round).Int("votes", d.Votes).Msg("llm player chose move")
	return Decision{Action: ActionMove, Move: d.Move, Provenance: d}, nil
}

func (p *LLMPlayer) Close() error { return nil }
