package decide

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/matryer/is"
)

// scriptedSampler returns one scripted set of completion texts per
// round and records every prompt it was asked to sample.
type scriptedSampler struct {
	rounds  [][]string
	prompts []string
	calls   int
}

func (s *scriptedSampler) Sample(_ context.Context, prompt string, n int) ([]Completion, error) {
	s.prompts = append(s.prompts, prompt)
	if s.calls >= len(s.rounds) {
		return nil, &TransportError{Err: fmt.Errorf("no scripted round %d", s.calls+1)}
	}
	texts := s.rounds[s.calls]
	s.calls++
	if len(texts) != n {
		return nil, &TransportError{Err: fmt.Errorf("scripted %d texts, asked for %d", len(texts), n)}
	}
	out := make([]Completion, n)
	for i, text := range texts {
		out[i] = Completion{Index: i, Text: text}
	}
	return out, nil
}

type failingSampler struct {
	calls int
}

func (s *failingSampler) Sample(context.Context, string, int) ([]Completion, error) {
	s.calls++
	return nil, &TransportError{Err: errors.New("connection refused")}
}

func TestControllerDecidesFirstRound(t *testing.T) {
	is := is.New(t)
	dc := newStartContext(t)

	sampler := &scriptedSampler{rounds: [][]string{
		{"Final Answer: e4", "Final Answer: e4", "Final Answer: d4"},
	}}
	ctrl, err := NewController(sampler, newParser(), 3, 4)
	is.NoErr(err)

	d, err := ctrl.Decide(context.Background(), dc)
	is.NoErr(err)
	is.Equal(d.Move, "e2e4")
	is.Equal(d.Round, 1)
	is.Equal(d.Votes, 2)
	is.Equal(len(d.Rounds), 1)
	is.Equal(sampler.calls, 1)
}

func TestControllerRetriesWithFeedback(t *testing.T) {
	is := is.New(t)
	dc := newStartContext(t)

	sampler := &scriptedSampler{rounds: [][]string{
		{"Final Answer: Ke2"}, // illegal: king is boxed in
		{"Final Answer: e4"},
	}}
	ctrl, err := NewController(sampler, newParser(), 1, 4)
	is.NoErr(err)

	d, err := ctrl.Decide(context.Background(), dc)
	is.NoErr(err)
	is.Equal(d.Move, "e2e4")
	is.Equal(d.Round, 2)
	is.Equal(len(d.Rounds), 2)

	// Round 1 gets the bare prompt; round 2 carries the failure back.
	is.True(!strings.Contains(sampler.prompts[0], "previous attempts"))
	is.True(strings.Contains(sampler.prompts[1], `you suggested "Ke2"`))
	is.True(strings.Contains(sampler.prompts[1], "illegal move"))
}

func TestControllerFeedbackDistinguishesUnparseable(t *testing.T) {
	is := is.New(t)
	dc := newStartContext(t)

	sampler := &scriptedSampler{rounds: [][]string{
		{"I cannot decide on anything right now, too complicated."},
		{"Final Answer: e4"},
	}}
	ctrl, err := NewController(sampler, newParser(), 1, 4)
	is.NoErr(err)

	_, err = ctrl.Decide(context.Background(), dc)
	is.NoErr(err)
	is.True(strings.Contains(sampler.prompts[1], "no chess move could be parsed"))
}

func TestControllerExhaustsAfterMaxRounds(t *testing.T) {
	is := is.New(t)
	dc := newStartContext(t)

	sampler := &scriptedSampler{rounds: [][]string{
		{"Final Answer: Ke2"},
		{"Final Answer: Ke2"},
		{"Final Answer: Ke2"},
	}}
	ctrl, err := NewController(sampler, newParser(), 1, 3)
	is.NoErr(err)

	_, err = ctrl.Decide(context.Background(), dc)
	var exhausted *ExhaustedError
	is.True(errors.As(err, &exhausted))
	is.Equal(len(exhausted.Rounds), 3)
	// Exactly maxRounds sampling calls, never a fourth.
	is.Equal(sampler.calls, 3)
}

func TestControllerTransportErrorAbortsImmediately(t *testing.T) {
	is := is.New(t)
	dc := newStartContext(t)

	sampler := &failingSampler{}
	ctrl, err := NewController(sampler, newParser(), 1, 4)
	is.NoErr(err)

	_, err = ctrl.Decide(context.Background(), dc)
	var te *TransportError
	is.True(errors.As(err, &te))
	// No retry rounds after a transport failure.
	is.Equal(sampler.calls, 1)
}

func TestControllerWrapsForeignSamplerErrors(t *testing.T) {
	is := is.New(t)
	dc := newStartContext(t)

	sampler := samplerFunc(func(context.Context, string, int) ([]Completion, error) {
		return nil, errors.New("plain failure")
	})
	ctrl, err := NewController(sampler, newParser(), 1, 4)
	is.NoErr(err)

	_, err = ctrl.Decide(context.Background(), dc)
	var te *TransportError
	is.True(errors.As(err, &te))
}

func TestControllerContextIsReusedAcrossRounds(t *testing.T) {
	is := is.New(t)
	dc := newStartContext(t)
	base := dc.Prompt("")

	sampler := &scriptedSampler{rounds: [][]string{
		{"Final Answer: Ke2"},
		{"Final Answer: Ke2"},
		{"Final Answer: e4"},
	}}
	ctrl, err := NewController(sampler, newParser(), 1, 4)
	is.NoErr(err)

	_, err = ctrl.Decide(context.Background(), dc)
	is.NoErr(err)

	// Every round's prompt starts with the identical base: the context
	// itself never changes, only the appended feedback grows.
	for _, p := range sampler.prompts {
		is.True(strings.HasPrefix(p, base))
	}
	is.Equal(dc.Prompt(""), base)
}

func TestNewControllerValidation(t *testing.T) {
	is := is.New(t)
	p := newParser()
	s := &scriptedSampler{}

	_, err := NewController(nil, p, 1, 1)
	is.True(err != nil)
	_, err = NewController(s, nil, 1, 1)
	is.True(err != nil)
	_, err = NewController(s, p, 0, 1)
	is.True(err != nil)
	_, err = NewController(s, p, 1, 0)
	is.True(err != nil)
}

type samplerFunc func(ctx context.Context, prompt string, n int) ([]Completion, error)

func (f samplerFunc) Sample(ctx context.Context, prompt string, n int) ([]Completion, error) {
	return f(ctx, prompt, n)
}
