package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestNormalizeSAN(t *testing.T) {
	n := Notation{}
	cases := []struct {
		token string
		want  string
	}{
		{"e4", "e2e4"},
		{"d4", "d2d4"},
		{"Nf3", "g1f3"},
		{"Nc3", "b1c3"},
		{"a3", "a2a3"},
	}
	for _, tc := range cases {
		got, err := n.Normalize(startPos, tc.token)
		require.NoError(t, err, tc.token)
		assert.Equal(t, tc.want, got, tc.token)
	}
}

func TestNormalizeUCIIsIdempotent(t *testing.T) {
	n := Notation{}
	g := NewGame()
	for _, uci := range g.Snapshot().LegalMoves {
		got, err := n.Normalize(startPos, uci)
		require.NoError(t, err, uci)
		assert.Equal(t, uci, got)
	}
}

func TestNormalizeCastling(t *testing.T) {
	n := Notation{}
	fen := "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1"

	for _, token := range []string{"O-O", "o-o", "0-0"} {
		got, err := n.Normalize(fen, token)
		require.NoError(t, err, token)
		assert.Equal(t, "e1g1", got, token)
	}
	for _, token := range []string{"O-O-O", "o-o-o", "0-0-0"} {
		got, err := n.Normalize(fen, token)
		require.NoError(t, err, token)
		assert.Equal(t, "e1c1", got, token)
	}
}

func TestNormalizeAmbiguous(t *testing.T) {
	n := Notation{}
	// Rooks on a1 and h1, both can reach b1.
	fen := "4k3/8/8/8/8/8/4K3/R6R w - - 0 1"

	_, err := n.Normalize(fen, "Rb1")
	assert.ErrorIs(t, err, ErrAmbiguousMove)

	got, err := n.Normalize(fen, "Rab1")
	require.NoError(t, err)
	assert.Equal(t, "a1b1", got)

	got, err = n.Normalize(fen, "Rhb1")
	require.NoError(t, err)
	assert.Equal(t, "h1b1", got)
}

func TestNormalizeRelaxedDisambiguation(t *testing.T) {
	n := Notation{}
	// Only the g1 knight can reach f3, so the superfluous "Ngf3" still
	// resolves.
	got, err := n.Normalize(startPos, "Ngf3")
	require.NoError(t, err)
	assert.Equal(t, "g1f3", got)
}

func TestNormalizeIllegal(t *testing.T) {
	n := Notation{}

	_, err := n.Normalize(startPos, "Ke2")
	assert.ErrorIs(t, err, ErrIllegalMove)

	_, err = n.Normalize(startPos, "e5")
	assert.ErrorIs(t, err, ErrIllegalMove)

	_, err = n.Normalize(startPos, "e2e5")
	assert.ErrorIs(t, err, ErrIllegalMove)
}

func TestNormalizeBadNotation(t *testing.T) {
	n := Notation{}

	for _, token := range []string{"", "hello", "Z9", "e99", "!!"} {
		_, err := n.Normalize(startPos, token)
		assert.ErrorIs(t, err, ErrBadNotation, token)
	}
}

func TestNormalizeCheckSuffixIgnored(t *testing.T) {
	n := Notation{}
	// After 1. f3 e5 2. g4, Qh4 is mate; the token may carry # or +.
	fen := "rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq - 0 2"

	for _, token := range []string{"Qh4#", "Qh4+", "Qh4"} {
		got, err := n.Normalize(fen, token)
		require.NoError(t, err, token)
		assert.Equal(t, "d8h4", got, token)
	}
}

func TestNormalizePromotion(t *testing.T) {
	n := Notation{}
	fen := "8/4P1k1/8/8/8/8/8/4K3 w - - 0 1"

	got, err := n.Normalize(fen, "e8=Q")
	require.NoError(t, err)
	assert.Equal(t, "e7e8q", got)

	got, err = n.Normalize(fen, "e7e8q")
	require.NoError(t, err)
	assert.Equal(t, "e7e8q", got)
}
