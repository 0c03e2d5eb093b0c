// Package gamestats scores played moves against a UCI engine's best
// move: centipawn loss, best-move hit rate, and a discrete quality
// label per move, aggregated per color.
package gamestats

import (
	"github.com/anatrav/conclave/rules"
)

// Quality is a discrete label for how good a move was.
type Quality string

const (
	QualityBest       Quality = "best"
	QualityExcellent  Quality = "excellent"
	QualityGood       Quality = "good"
	QualityInaccuracy Quality = "inaccuracy"
	QualityMistake    Quality = "mistake"
	QualityBlunder    Quality = "blunder"
)

// Centipawn-loss thresholds between quality bands.
const (
	thresholdExcellent  = 50
	thresholdGood       = 100
	thresholdInaccuracy = 200
	thresholdMistake    = 300
)

// mateScore stands in for a forced-mate evaluation in centipawns.
const mateScore = 100000

// Classify labels a move from its evaluation. Losing a mating line is
// always a blunder; matching the engine's move is always best.
func Classify(bestMoveHit bool, centipawnLoss float64, bestIsMate, playedIsMate bool) Quality {
	if bestIsMate && !playedIsMate {
		return QualityBlunder
	}
	if bestMoveHit || centipawnLoss <= 1e-6 {
		return QualityBest
	}
	switch {
	case centipawnLoss < thresholdExcellent:
		return QualityExcellent
	case centipawnLoss < thresholdGood:
		return QualityGood
	case centipawnLoss < thresholdInaccuracy:
		return QualityInaccuracy
	case centipawnLoss < thresholdMistake:
		return QualityMistake
	}
	return QualityBlunder
}

// MoveMetrics is the evaluation of a single played move.
type MoveMetrics struct {
	Color         rules.Color `yaml:"color"`
	MoveUCI       string      `yaml:"move"`
	BestMoveUCI   string      `yaml:"best_move"`
	CentipawnLoss float64     `yaml:"centipawn_loss"`
	BestMoveHit   bool        `yaml:"best_move_hit"`
	Quality       Quality     `yaml:"quality"`
}

// Summary aggregates one color's move metrics.
type Summary struct {
	MovesEvaluated       int             `yaml:"moves_evaluated"`
	AverageCentipawnLoss float64         `yaml:"average_centipawn_loss"`
	BestMoveHitRate      float64         `yaml:"best_move_hit_rate"`
	QualityCounts        map[Quality]int `yaml:"quality_counts"`
}
