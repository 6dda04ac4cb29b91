package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/katsu/eqlang/errors"
	"github.com/katsu/eqlang/types"
)

// Lexer produces the token stream for one formula. It is not safe for
// concurrent use; each compilation gets its own Lexer.
type Lexer struct {
	src    string
	cursor int
	start  int // offset where the most recently returned token began

	// Inside a {...} attribute reference identifiers follow different
	// rules; '{' sets the flag, '}' and ':' clear it.
	braces bool

	pending *types.Token
}

func New(source string) *Lexer {
	return &Lexer{src: source}
}

// TokenStart returns the source offset where the most recently returned
// token began.
func (l *Lexer) TokenStart() int {
	return l.start
}

// PushBack hands a token back so the next NextToken call returns it
// again. Only one token may be pending at a time; pushing back twice in
// a row is a caller bug.
func (l *Lexer) PushBack(tok types.Token) {
	if l.pending != nil {
		panic(errors.Internalf("lexer: can't push back two tokens in a row"))
	}
	t := tok
	l.pending = &t
}

// NextToken returns the next token, or an EOS token once the source is
// exhausted. Repeated calls after EOS keep returning EOS. Lexical
// faults come back as an ERROR token carrying the message in Text.
func (l *Lexer) NextToken() types.Token {
	if l.pending != nil {
		tok := *l.pending
		l.pending = nil
		l.start = tok.Start
		return tok
	}

	for l.cursor < len(l.src) && unicode.IsSpace(rune(l.src[l.cursor])) {
		l.cursor++
	}
	l.start = l.cursor

	if l.cursor >= len(l.src) {
		return types.Token{Kind: types.EOS, Start: l.start}
	}

	ch := l.src[l.cursor]
	switch ch {
	case ':':
		// Separates the attribute name from its default value.
		l.braces = false
		return l.single(types.COLON)
	case '^':
		return l.single(types.CARET)
	case '{':
		l.braces = true
		return l.single(types.LBRACE)
	case '}':
		l.braces = false
		return l.single(types.RBRACE)
	case '(':
		return l.single(types.LPAREN)
	case ')':
		return l.single(types.RPAREN)
	case '+':
		return l.single(types.PLUS)
	case '-':
		return l.single(types.MINUS)
	case '/':
		return l.single(types.DIV)
	case '*':
		return l.single(types.MUL)
	case '=':
		return l.single(types.EQL)
	case '$':
		return l.single(types.DOLLAR)
	case ',':
		return l.single(types.COMMA)
	case '&':
		return l.single(types.AMPERSAND)
	}

	if ch == '"' {
		l.cursor++
		return l.scanString()
	}

	if !l.braces && (isDigit(ch) || ch == '.') {
		return l.scanNumber()
	}

	if ch == '<' {
		l.cursor++
		if l.cursor < len(l.src) {
			switch l.src[l.cursor] {
			case '>':
				return l.single(types.NEQ)
			case '=':
				return l.single(types.LTE)
			}
		}
		return types.Token{Kind: types.LT, Start: l.start}
	}

	if ch == '>' {
		l.cursor++
		if l.cursor < len(l.src) && l.src[l.cursor] == '=' {
			return l.single(types.GTE)
		}
		return types.Token{Kind: types.GT, Start: l.start}
	}

	if l.braces {
		return l.scanBraceIdent()
	}
	if isAlpha(ch) {
		return l.scanIdent()
	}

	return l.errorf("unexpected input character %q", string(ch))
}

// single consumes the character under the cursor and returns its token.
func (l *Lexer) single(kind types.TokenKind) types.Token {
	l.cursor++
	return types.Token{Kind: kind, Start: l.start}
}

func (l *Lexer) errorf(format string, args ...interface{}) types.Token {
	return types.Token{
		Kind:  types.ERROR,
		Text:  fmt.Sprintf(format, args...),
		Start: l.start,
	}
}

// scanString decodes a double-quoted string constant. The cursor is
// past the opening quote. Recognized escapes: \\, \" and \n.
func (l *Lexer) scanString() types.Token {
	var b strings.Builder
	escaped := false
	for l.cursor < len(l.src) {
		ch := l.src[l.cursor]
		if !escaped && ch == '\\' {
			escaped = true
			l.cursor++
			continue
		}

		if escaped {
			switch ch {
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case 'n':
				b.WriteByte('\n')
			default:
				return l.errorf("unknown escape character %q", string(ch))
			}
			escaped = false
		} else if ch == '"' {
			l.cursor++
			return types.Token{Kind: types.STRING_CONST, Text: b.String(), Start: l.start}
		} else {
			b.WriteByte(ch)
		}
		l.cursor++
	}

	return l.errorf("unterminated string constant")
}

// scanNumber matches digits, an optional fraction and an optional
// exponent, then decodes the whole match as a 64-bit float.
func (l *Lexer) scanNumber() types.Token {
	for l.cursor < len(l.src) && isDigit(l.src[l.cursor]) {
		l.cursor++
	}

	if l.cursor < len(l.src) && l.src[l.cursor] == '.' {
		l.cursor++
		for l.cursor < len(l.src) && isDigit(l.src[l.cursor]) {
			l.cursor++
		}
	}

	if l.cursor < len(l.src) && (l.src[l.cursor] == 'e' || l.src[l.cursor] == 'E') {
		l.cursor++
		if l.cursor >= len(l.src) {
			return l.errorf("invalid numeric constant")
		}
		if l.src[l.cursor] == '+' || l.src[l.cursor] == '-' {
			l.cursor++
		}
		if l.cursor >= len(l.src) || !isDigit(l.src[l.cursor]) {
			return l.errorf("missing digits in exponent")
		}
		for l.cursor < len(l.src) && isDigit(l.src[l.cursor]) {
			l.cursor++
		}
	}

	text := l.src[l.start:l.cursor]
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// Out-of-range values saturate to ±Inf; anything else failed
		// to decode, like a lone ".".
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return l.errorf("invalid numeric constant")
		}
	}
	return types.Token{Kind: types.FLOAT_CONST, Float: value, Start: l.start}
}

// scanBraceIdent reads an attribute name inside braces. The name runs
// until an unescaped '}', ':', ',', '(' or ')'; a backslash includes
// the following character verbatim, which also embeds literal
// backslashes by doubling them.
func (l *Lexer) scanBraceIdent() types.Token {
	var b strings.Builder
	escaped := false
	for l.cursor < len(l.src) {
		ch := l.src[l.cursor]
		if escaped {
			b.WriteByte(ch)
			escaped = false
			l.cursor++
			continue
		}
		if ch == '\\' {
			escaped = true
			l.cursor++
			continue
		}
		if ch == '}' || ch == ':' || ch == ',' || ch == '(' || ch == ')' {
			break
		}
		b.WriteByte(ch)
		l.cursor++
	}
	if escaped {
		return l.errorf("unterminated escape at end of attribute name")
	}

	return l.identToken(b.String())
}

// scanIdent reads a plain identifier: letters, digits and underscores.
func (l *Lexer) scanIdent() types.Token {
	for l.cursor < len(l.src) {
		ch := l.src[l.cursor]
		if !isAlpha(ch) && !isDigit(ch) && ch != '_' {
			break
		}
		l.cursor++
	}
	return l.identToken(l.src[l.start:l.cursor])
}

// identToken turns TRUE and FALSE, in any case, into boolean constants.
func (l *Lexer) identToken(text string) types.Token {
	if strings.EqualFold(text, "TRUE") {
		return types.Token{Kind: types.BOOLEAN_CONST, Bool: true, Start: l.start}
	}
	if strings.EqualFold(text, "FALSE") {
		return types.Token{Kind: types.BOOLEAN_CONST, Bool: false, Start: l.start}
	}
	return types.Token{Kind: types.IDENT, Text: text, Start: l.start}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
