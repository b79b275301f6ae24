package literal

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokString
	tokInt
	tokFloat
	tokName
	tokPunct
)

type token struct {
	kind tokenKind
	pos  int
	text string // punctuation, name, or raw number text
	str  string // decoded string value
	i    int
	f    float64
}

// SyntaxError reports malformed literal text.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("literal syntax error at offset %d: %s", e.Offset, e.Msg)
}

type lexer struct {
	src string
	pos int
}

func (l *lexer) errorf(pos int, format string, args ...any) error {
	return &SyntaxError{Offset: pos, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			l.pos++
		case c == '\\' && strings.HasPrefix(l.src[l.pos:], "\\\n"):
			l.pos += 2
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]
	switch {
	case strings.IndexByte("[](){},:-+", c) >= 0:
		l.pos++
		return token{kind: tokPunct, pos: start, text: string(c)}, nil
	case c == '\'' || c == '"':
		return l.lexString(start, false)
	case isDigit(c) || (c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])):
		return l.lexNumber(start)
	case isNameStart(c):
		for l.pos < len(l.src) && isNameChar(l.src[l.pos]) {
			l.pos++
		}
		name := l.src[start:l.pos]
		if l.pos < len(l.src) && (l.src[l.pos] == '\'' || l.src[l.pos] == '"') {
			switch strings.ToLower(name) {
			case "r":
				return l.lexString(start, true)
			case "u":
				return l.lexString(start, false)
			default:
				return token{}, l.errorf(start, "unsupported string prefix %q", name)
			}
		}
		return token{kind: tokName, pos: start, text: name}, nil
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return token{}, l.errorf(start, "unexpected character %q", r)
}

func (l *lexer) lexString(start int, raw bool) (token, error) {
	quote := l.src[l.pos]
	triple := strings.HasPrefix(l.src[l.pos:], strings.Repeat(string(quote), 3))
	if triple {
		l.pos += 3
	} else {
		l.pos++
	}

	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, l.errorf(start, "unterminated string literal")
		}
		c := l.src[l.pos]
		switch {
		case c == quote && !triple:
			l.pos++
			return token{kind: tokString, pos: start, str: b.String()}, nil
		case c == quote && strings.HasPrefix(l.src[l.pos:], strings.Repeat(string(quote), 3)):
			l.pos += 3
			return token{kind: tokString, pos: start, str: b.String()}, nil
		case c == '\n' && !triple:
			return token{}, l.errorf(start, "unterminated string literal")
		case c == '\\':
			if l.pos+1 >= len(l.src) {
				return token{}, l.errorf(start, "unterminated string literal")
			}
			if raw {
				b.WriteByte(c)
				b.WriteByte(l.src[l.pos+1])
				l.pos += 2
				continue
			}
			if err := l.lexEscape(&b); err != nil {
				return token{}, err
			}
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
}

// lexEscape decodes one backslash escape at l.pos into b.
func (l *lexer) lexEscape(b *strings.Builder) error {
	at := l.pos
	e := l.src[l.pos+1]
	l.pos += 2
	switch e {
	case '\n':
	case '\\', '\'', '"':
		b.WriteByte(e)
	case 'a':
		b.WriteByte('\a')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'v':
		b.WriteByte('\v')
	case '0', '1', '2', '3', '4', '5', '6', '7':
		end := l.pos - 1
		for end < len(l.src) && end < l.pos+2 && l.src[end] >= '0' && l.src[end] <= '7' {
			end++
		}
		n, _ := strconv.ParseUint(l.src[l.pos-1:end], 8, 32)
		b.WriteRune(rune(n))
		l.pos = end
	case 'x', 'u', 'U':
		width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[e]
		if l.pos+width > len(l.src) {
			return l.errorf(at, "truncated \\%c escape", e)
		}
		n, err := strconv.ParseUint(l.src[l.pos:l.pos+width], 16, 32)
		if err != nil || n > utf8.MaxRune {
			return l.errorf(at, "invalid \\%c escape", e)
		}
		b.WriteRune(rune(n))
		l.pos += width
	default:
		// Unknown escapes keep their backslash.
		b.WriteByte('\\')
		b.WriteByte(e)
	}
	return nil
}

func (l *lexer) lexNumber(start int) (token, error) {
	src := l.src
	isFloat := false

	if src[l.pos] == '0' && l.pos+1 < len(src) && strings.IndexByte("xXoObB", src[l.pos+1]) >= 0 {
		l.pos += 2
		for l.pos < len(src) && (isHexDigit(src[l.pos]) || src[l.pos] == '_') {
			l.pos++
		}
	} else {
		l.scanDigits()
		if l.pos < len(src) && src[l.pos] == '.' {
			isFloat = true
			l.pos++
			l.scanDigits()
		}
		if l.pos < len(src) && (src[l.pos] == 'e' || src[l.pos] == 'E') {
			isFloat = true
			l.pos++
			if l.pos < len(src) && (src[l.pos] == '+' || src[l.pos] == '-') {
				l.pos++
			}
			if l.pos >= len(src) || !isDigit(src[l.pos]) {
				return token{}, l.errorf(start, "malformed exponent")
			}
			l.scanDigits()
		}
	}
	if l.pos < len(src) && isNameChar(src[l.pos]) {
		return token{}, l.errorf(start, "invalid numeric literal %q", src[start:l.pos+1])
	}

	text := src[start:l.pos]
	if err := checkUnderscores(text); err != nil {
		return token{}, l.errorf(start, "%v", err)
	}
	digits := strings.ReplaceAll(text, "_", "")

	if isFloat {
		f, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return token{}, l.errorf(start, "invalid float literal %q", text)
		}
		return token{kind: tokFloat, pos: start, text: text, f: f}, nil
	}

	i, err := parseInt(digits)
	if err != nil {
		return token{}, l.errorf(start, "%v", err)
	}
	return token{kind: tokInt, pos: start, text: text, i: i}, nil
}

func (l *lexer) scanDigits() {
	for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
		l.pos++
	}
}

func parseInt(digits string) (int, error) {
	base := 10
	if len(digits) > 1 && digits[0] == '0' {
		switch digits[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		default:
			if strings.Trim(digits, "0") != "" {
				return 0, fmt.Errorf("leading zeros in decimal integer %q", digits)
			}
		}
		if base != 10 {
			digits = digits[2:]
		}
	}
	n, err := strconv.ParseInt(digits, base, strconv.IntSize)
	if err != nil {
		return 0, fmt.Errorf("invalid integer literal %q", digits)
	}
	return int(n), nil
}

func checkUnderscores(text string) error {
	if strings.Contains(text, "__") || strings.HasSuffix(text, "_") ||
		strings.Contains(text, "_.") || strings.Contains(text, "._") {
		return fmt.Errorf("invalid underscore in numeric literal %q", text)
	}
	return nil
}

func isDigit(c byte) bool     { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool  { return isDigit(c) || (c|0x20 >= 'a' && c|0x20 <= 'f') }
func isNameStart(c byte) bool { return c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z') || c >= 0x80 }
func isNameChar(c byte) bool  { return isNameStart(c) || isDigit(c) }
