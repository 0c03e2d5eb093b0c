package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/anatrav/conclave/decide"
	"github.com/anatrav/conclave/gamestats"
	"github.com/anatrav/conclave/rules"
)

// MoveRecord is one played move in the report. Round, Votes, and
// Rounds carry decision provenance for moves chosen by voting; all are
// empty for other players.
type MoveRecord struct {
	Ply    int          `yaml:"ply"`
	Color  rules.Color  `yaml:"color"`
	Player string       `yaml:"player"`
	Move   string       `yaml:"move"`
	Round  int          `yaml:"round,omitempty"`
	Votes  int          `yaml:"votes,omitempty"`
	Rounds []RoundTrace `yaml:"rounds,omitempty"`
}

// RoundTrace is the serialized provenance of one voting round.
type RoundTrace struct {
	Round   int           `yaml:"round"`
	Move    string        `yaml:"move,omitempty"`
	Votes   int           `yaml:"votes,omitempty"`
	Valid   int           `yaml:"valid"`
	Invalid int           `yaml:"invalid"`
	Failed  int           `yaml:"parse_failed"`
	Samples []SampleTrace `yaml:"samples"`
}

// SampleTrace is one completion's parse outcome inside a round.
type SampleTrace struct {
	Index   int    `yaml:"index"`
	Outcome string `yaml:"outcome"`
	Token   string `yaml:"token,omitempty"`
	Move    string `yaml:"move,omitempty"`
	Reason  string `yaml:"reason,omitempty"`
}

// traceRounds flattens a decision's round records for the report.
func traceRounds(records []decide.RoundRecord) []RoundTrace {
	if len(records) == 0 {
		return nil
	}
	out := make([]RoundTrace, len(records))
	for i, rec := range records {
		rt := RoundTrace{
			Round:   rec.Round,
			Move:    rec.Result.Move,
			Votes:   rec.Result.Votes,
			Valid:   rec.Result.Valid,
			Invalid: rec.Result.Invalid,
			Failed:  rec.Result.Failed,
			Samples: make([]SampleTrace, len(rec.Result.Samples)),
		}
		for j, s := range rec.Result.Samples {
			rt.Samples[j] = SampleTrace{
				Index:   s.Index,
				Outcome: s.Outcome.String(),
				Token:   s.Token,
				Move:    s.Move,
				Reason:  s.Reason,
			}
		}
		out[i] = rt
	}
	return out
}

// Report is the full record of a finished game.
type Report struct {
	White       string                            `yaml:"white"`
	Black       string                            `yaml:"black"`
	Result      string                            `yaml:"result"`
	Termination string                            `yaml:"termination"`
	Winner      string                            `yaml:"winner,omitempty"`
	Plies       int                               `yaml:"plies"`
	Duration    string                            `yaml:"duration"`
	Moves       []MoveRecord                      `yaml:"moves"`
	Metrics     map[rules.Color]gamestats.Summary `yaml:"metrics,omitempty"`
	PGN         string                            `yaml:"pgn"`
}

// WriteFile writes the report as YAML to path.
func (r *Report) WriteFile(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report to %s: %w", path, err)
	}
	return nil
}
