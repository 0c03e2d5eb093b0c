package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/notnil/chess"
)

var (
	uciPattern = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)
	sanPattern = regexp.MustCompile(
		`^(?:O-O(?:-O)?|[KQRBN][a-h]?[1-8]?x?[a-h][1-8]|[a-h](?:x[a-h])?[1-8](?:=[QRBN])?)[+#]?$`)
	sanPiecePattern = regexp.MustCompile(`^([KQRBN])[a-h]?[1-8]?(x?)([a-h][1-8])$`)
)

// Notation resolves free-form move tokens against a position. It is
// the canonicalization half of the rules-engine boundary: a token in
// UCI or SAN becomes the canonical UCI identity (origin + destination
// + promotion piece), or a classified error.
type Notation struct{}

// Normalize converts a move token to canonical UCI for the position
// given by fen. Errors wrap ErrIllegalMove, ErrAmbiguousMove, or
// ErrBadNotation so callers can classify without string matching.
// Normalizing an already-canonical UCI string is idempotent.
func (Notation) Normalize(fen, token string) (string, error) {
	token = normalizeCastling(strings.TrimSpace(token))
	if token == "" {
		return "", fmt.Errorf("%w: empty token", ErrBadNotation)
	}
	pos, err := positionFromFEN(fen)
	if err != nil {
		return "", err
	}

	if lower := strings.ToLower(token); uciPattern.MatchString(lower) {
		for _, m := range pos.ValidMoves() {
			if m.String() == lower {
				return lower, nil
			}
		}
		return "", fmt.Errorf("%w: %s", ErrIllegalMove, token)
	}

	if !sanPattern.MatchString(token) {
		return "", fmt.Errorf("%w: %q", ErrBadNotation, token)
	}
	cleaned := strings.TrimRight(token, "+#")

	// Exact SAN match against each legal move's canonical rendering,
	// then a relaxed pass ignoring disambiguation characters. Two
	// relaxed matches mean the token is genuinely ambiguous.
	var exact, relaxed []*chess.Move
	notation := chess.AlgebraicNotation{}
	for _, m := range pos.ValidMoves() {
		san := strings.TrimRight(notation.Encode(pos, m), "+#")
		if san == cleaned {
			exact = append(exact, m)
		}
		if stripDisambiguation(san) == stripDisambiguation(cleaned) {
			relaxed = append(relaxed, m)
		}
	}
	if len(exact) == 1 {
		return exact[0].String(), nil
	}
	if len(relaxed) > 1 {
		return "", fmt.Errorf("%w: %q matches %d legal moves", ErrAmbiguousMove, token, len(relaxed))
	}
	if len(relaxed) == 1 {
		return relaxed[0].String(), nil
	}
	return "", fmt.Errorf("%w: %s", ErrIllegalMove, token)
}

// normalizeCastling maps o-o, 0-0 and case variants to O-O / O-O-O.
func normalizeCastling(token string) string {
	switch strings.ToLower(token) {
	case "o-o", "0-0":
		return "O-O"
	case "o-o-o", "0-0-0":
		return "O-O-O"
	}
	return token
}

// stripDisambiguation removes the optional origin file/rank from a
// piece-move SAN token so "Ngf3" and "Nf3" compare equal.
func stripDisambiguation(san string) string {
	m := sanPiecePattern.FindStringSubmatch(san)
	if m == nil {
		return san
	}
	return m[1] + m[2] + m[3]
}
