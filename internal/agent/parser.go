// internal/agent/parser.go
package agent

import (
	"regexp"
	"strings"

	"github.com/gyuri2020/AIOpsLab-fork/internal/capability"
)

// fencedBlockRe captures the body of a markdown fenced code block, with or
// without a language tag.
var fencedBlockRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\n?(.*?)```")

// ActionParser extracts the first recognizable capability call from a model
// response. Parsing is a pure function of the input text: the same response
// always yields the same Action.
//
// Models frequently wrap the call they intend in a fenced code block and
// mention capability names in the surrounding prose. Fenced blocks are
// scanned first so the deliberate call wins over prose mentions.
type ActionParser struct {
	diagnosticKeyword string
	submissionKeyword string
}

// NewActionParser builds a parser matching the default capability keywords.
func NewActionParser() *ActionParser {
	return NewActionParserWithKeywords(capability.DiagnosticKeyword, capability.SubmissionKeyword)
}

// NewActionParserWithKeywords builds a parser for custom capability keywords,
// mirroring an injected capability.Classifier.
func NewActionParserWithKeywords(diagnostic, submission string) *ActionParser {
	return &ActionParser{diagnosticKeyword: diagnostic, submissionKeyword: submission}
}

// Parse returns the first well-formed capability call found in raw, or an
// Unparseable action when none exists. Raw is preserved on every result.
func (p *ActionParser) Parse(raw string) Action {
	for _, m := range fencedBlockRe.FindAllStringSubmatch(raw, -1) {
		if act, ok := p.scan(m[1]); ok {
			act.Raw = raw
			return act
		}
	}
	if act, ok := p.scan(raw); ok {
		act.Raw = raw
		return act
	}
	return Action{Kind: ActionUnparseable, Raw: raw}
}

// scan walks text left to right looking for an identifier containing a
// capability keyword, immediately followed by a balanced parenthesized
// argument. Malformed occurrences are skipped so a later well-formed call can
// still match.
func (p *ActionParser) scan(text string) (Action, bool) {
	pos := 0
	for pos < len(text) {
		kw, idx := p.nextKeyword(text, pos)
		if idx < 0 {
			return Action{}, false
		}

		start, end := identifierBounds(text, idx, idx+len(kw))
		if end >= len(text) || text[end] != '(' {
			pos = idx + 1
			continue
		}

		arg, ok := balancedArg(text, end)
		if !ok {
			pos = idx + 1
			continue
		}

		name := text[start:end]
		return p.build(name, arg), true
	}
	return Action{}, false
}

// nextKeyword returns the earliest occurrence of either keyword at or after
// pos. The diagnostic keyword wins ties.
func (p *ActionParser) nextKeyword(text string, pos int) (string, int) {
	di := strings.Index(text[pos:], p.diagnosticKeyword)
	si := strings.Index(text[pos:], p.submissionKeyword)
	switch {
	case di < 0 && si < 0:
		return "", -1
	case si < 0 || (di >= 0 && di <= si):
		return p.diagnosticKeyword, pos + di
	default:
		return p.submissionKeyword, pos + si
	}
}

func (p *ActionParser) build(name, arg string) Action {
	arg = strings.TrimSpace(arg)
	if strings.Contains(name, p.diagnosticKeyword) {
		return Action{Kind: ActionRunCommand, Command: unquote(arg)}
	}
	return Action{Kind: ActionSubmit, Payload: submissionPayload(arg)}
}

// identifierBounds expands [lo, hi) to cover the whole identifier around the
// keyword occurrence.
func identifierBounds(text string, lo, hi int) (int, int) {
	for lo > 0 && isIdentByte(text[lo-1]) {
		lo--
	}
	for hi < len(text) && isIdentByte(text[hi]) {
		hi++
	}
	return lo, hi
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// balancedArg extracts the argument text between the paren at open and its
// matching close paren, honoring single and double quoted strings with
// backslash escapes. Returns false when the parens never balance.
func balancedArg(text string, open int) (string, bool) {
	depth := 0
	var quote byte
	escaped := false
	for i := open; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return text[open+1 : i], true
			}
		}
	}
	return "", false
}

// unquote strips one level of matching surrounding quotes, leaving inner
// quotes intact. Backslash escapes of the surrounding quote are unwound so
// the executor sees the command the model meant.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[0]
	if (q != '\'' && q != '"') || s[len(s)-1] != q {
		return s
	}
	inner := s[1 : len(s)-1]
	return strings.ReplaceAll(inner, `\`+string(q), string(q))
}

// submissionPayload normalizes a submission argument. Plain quoted strings
// lose their quotes; structured payloads (JSON-ish lists and objects, bare
// words, numbers) pass through untouched for the evaluator to interpret.
func submissionPayload(arg string) string {
	if len(arg) >= 2 {
		if q := arg[0]; (q == '\'' || q == '"') && arg[len(arg)-1] == q {
			return unquote(arg)
		}
	}
	return arg
}
