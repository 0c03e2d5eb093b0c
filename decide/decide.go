// Package decide is the decision core: it turns noisy natural-language
// completions into a single validated chess move. One decision is one
// or more rounds; each round samples n completions for the same
// position, parses each into a candidate move, and tallies a majority
// vote. Rounds that produce no valid vote are retried with feedback
// describing what went wrong; transport failures abort immediately.
//
// Transient network problems and chess problems live in separate
// failure domains here: TransportError and ContextError are real
// errors that propagate, while unparseable or illegal candidate moves
// are data on the Sample and never escape as errors.
package decide

import "context"

// Completion is one raw completion from the transport, tagged with the
// index of the request that produced it. Index is assigned at issuance
// time, before any request completes, so tie-breaks never depend on
// network timing. Meta carries opaque transport metadata (token
// counts, latency) that ends up in Decision provenance uninterpreted.
type Completion struct {
	Index int
	Text  string
	Meta  map[string]any
}

// Sampler issues n independent completion requests for one prompt.
// A transport-level failure on any request fails the whole call; a
// successful call returns exactly n completions in issuance order.
type Sampler interface {
	Sample(ctx context.Context, prompt string, n int) ([]Completion, error)
}

// Normalizer is the rules-engine boundary used during parsing: it
// resolves a move token against a position and returns the canonical
// UCI identity, or an error wrapping one of the rules package
// sentinels (illegal, ambiguous, unrecognized).
type Normalizer interface {
	Normalize(fen, token string) (string, error)
}

// Outcome classifies what parsing made of one completion.
type Outcome int

const (
	// ParsedValid: a move token was extracted and it is legal in the
	// current position.
	ParsedValid Outcome = iota
	// ParsedInvalid: a move token was extracted but the rules engine
	// rejects it for this position (illegal or ambiguous).
	ParsedInvalid
	// ParseFailed: no recognizable move token, or malformed notation.
	ParseFailed
)

func (o Outcome) String() string {
	switch o {
	case ParsedValid:
		return "valid"
	case ParsedInvalid:
		return "invalid"
	case ParseFailed:
		return "parse-failed"
	}
	return "unknown"
}

// Sample is one completion plus its derived parse outcome.
type Sample struct {
	Index   int
	Raw     string
	Outcome Outcome
	// Move is the canonical UCI identity; set only when ParsedValid.
	Move string
	// Token is the extracted move text, when any was recognized.
	Token string
	// Reason explains ParsedInvalid / ParseFailed samples. It feeds the
	// next round's feedback verbatim.
	Reason string
	Meta   map[string]any
}
