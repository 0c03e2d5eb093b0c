package decide

import (
	"errors"
	"regexp"
	"strings"

	"github.com/anatrav/conclave/rules"
)

// Parser extracts a move token from a raw completion and classifies it
// against the current position. Extraction tries a small ordered list
// of recognition strategies; the first hit wins. Parsing never fails
// with an error: every completion becomes a classified Sample.
type Parser struct {
	normalizer Normalizer
	strategies []strategy
}

// strategy attempts to pull a candidate move token out of free text.
type strategy func(text string) (string, bool)

// NewParser builds a parser over the given rules-engine normalizer.
func NewParser(n Normalizer) *Parser {
	return &Parser{
		normalizer: n,
		strategies: []strategy{
			extractFinalAnswer,
			extractBareMove,
			extractLastMoveToken,
		},
	}
}

// Parse derives the outcome for one completion against the context.
func (p *Parser) Parse(c Completion, dc *Context) Sample {
	s := Sample{Index: c.Index, Raw: c.Text, Meta: c.Meta}

	var token string
	for _, strat := range p.strategies {
		if t, ok := strat(c.Text); ok {
			token = t
			break
		}
	}
	if token == "" {
		s.Outcome = ParseFailed
		s.Reason = "no recognizable move token in completion"
		return s
	}
	s.Token = token

	uci, err := p.normalizer.Normalize(dc.FEN(), token)
	switch {
	case err == nil && dc.HasLegal(uci):
		s.Outcome = ParsedValid
		s.Move = uci
	case err == nil:
		// The engine normalized a move the context does not list. The
		// snapshot and the normalizer disagree about the position.
		s.Outcome = ParsedInvalid
		s.Reason = "move " + uci + " is not in the legal move set"
	case errors.Is(err, rules.ErrIllegalMove), errors.Is(err, rules.ErrAmbiguousMove):
		s.Outcome = ParsedInvalid
		s.Reason = err.Error()
	default:
		s.Outcome = ParseFailed
		s.Reason = err.Error()
	}
	return s
}

var (
	// Rightmost marker wins: in chain-of-reasoning text the last stated
	// answer is the model's final one.
	finalAnswerMarkers = []string{"final answer:", "final answer is"}

	htmlTagPattern    = regexp.MustCompile(`<.*?>`)
	wordSplitPattern  = regexp.MustCompile(`[\s,;.!]`)
	moveNumberPattern = regexp.MustCompile(`^(\d+)(\.+)\s*(.*)$`)
	moveTokenPattern  = regexp.MustCompile(
		`(?:O-O-O|O-O|[KQRBN][a-h]?[1-8]?x?[a-h][1-8](?:=[QRBN])?[+#]?|[a-h][1-8][a-h][1-8][qrbn]?|[a-h]x[a-h][1-8](?:=[QRBN])?[+#]?|[a-h][1-8](?:=[QRBN])?[+#]?)`)

	artifactReplacer = strings.NewReplacer(
		"$", "", `\boxed{`, "", `\text{`, "", "}", "", "*", "", "`", "", "\n", " ")
	junkReplacer = strings.NewReplacer(
		":", "", ".", "", "*", "", ",", "", "&", "", "^", "", `\`, "",
		"<", "", ">", "", "{", "", "}", "", "[", "", "]", "", "?", "", "!", "")
)

// extractFinalAnswer takes the text after the last "Final Answer"-style
// marker and cleans provider formatting artifacts off it.
func extractFinalAnswer(text string) (string, bool) {
	lower := strings.ToLower(text)
	idx, markerLen := -1, 0
	for _, marker := range finalAnswerMarkers {
		if i := strings.LastIndex(lower, marker); i > idx {
			idx = i
			markerLen = len(marker)
		}
	}
	if idx == -1 {
		return "", false
	}
	after := text[idx+markerLen:]

	after = strings.Trim(after, " .")
	after = artifactReplacer.Replace(after)
	after = htmlTagPattern.ReplaceAllString(after, "")
	after = strings.TrimSpace(after)

	// "O - O" style castling keeps all its parts; anything else is cut
	// at the first word so trailing prose never rides along.
	compact := strings.ToUpper(strings.NewReplacer(" ", "", "-", "").Replace(after))
	if compact == "OO" || compact == "OOO" {
		after = strings.ReplaceAll(after, " ", "")
	} else {
		parts := wordSplitPattern.Split(after, -1)
		if len(parts) == 0 {
			return "", false
		}
		after = parts[0]
	}
	return sanitizeToken(after)
}

// extractBareMove accepts a whole response that is nothing but a short
// move, for providers that answer "e4" with no surrounding prose.
func extractBareMove(text string) (string, bool) {
	t := strings.TrimSpace(text)
	if t == "" || len(t) > 10 || strings.ContainsAny(t, " \t\n") {
		return "", false
	}
	if !strings.ContainsAny(t, "abcdefghNBRQKO12345678x=+-#") {
		return "", false
	}
	return sanitizeToken(t)
}

// extractLastMoveToken scans the whole completion for move-shaped
// tokens and keeps the last one, as a fallback for responses that
// reason freely without a marker.
func extractLastMoveToken(text string) (string, bool) {
	matches := moveTokenPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return "", false
	}
	return sanitizeToken(matches[len(matches)-1])
}

// sanitizeToken strips move numbers and non-chess punctuation, and
// normalizes the odd "exd6ep" rendering of en passant captures.
func sanitizeToken(token string) (string, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	switch strings.ToUpper(strings.ReplaceAll(token, "-", "")) {
	case "OO", "00":
		return "O-O", true
	case "OOO", "000":
		return "O-O-O", true
	}
	if token[0] >= '0' && token[0] <= '9' {
		m := moveNumberPattern.FindStringSubmatch(token)
		if m == nil {
			return "", false
		}
		token = m[3]
	}
	token = junkReplacer.Replace(token)
	token = strings.TrimSuffix(token, "ep")
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
