package literal

// Parse parses text as a single literal value. A top-level comma-separated
// list without brackets is a tuple, so "'a', 'b'" parses like "('a', 'b')".
func Parse(text string) (any, error) {
	p := &parser{lex: &lexer{src: text}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind == tokEOF {
		return nil, p.lex.errorf(0, "empty literal")
	}

	first, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	result := first
	if p.isPunct(",") {
		items := Tuple{first}
		for p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.kind == tokEOF {
				break
			}
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		result = items
	}

	if p.tok.kind != tokEOF {
		return nil, p.lex.errorf(p.tok.pos, "unexpected %s after literal", describe(p.tok))
	}
	return result, nil
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) isPunct(s string) bool {
	return p.tok.kind == tokPunct && p.tok.text == s
}

func (p *parser) expect(s string) error {
	if !p.isPunct(s) {
		return p.lex.errorf(p.tok.pos, "expected %q, found %s", s, describe(p.tok))
	}
	return p.advance()
}

func (p *parser) parseValue() (any, error) {
	tok := p.tok
	switch tok.kind {
	case tokString:
		// Adjacent string literals concatenate.
		s := tok.str
		for {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.kind != tokString {
				return s, nil
			}
			s += p.tok.str
		}
	case tokInt:
		return tok.i, p.advance()
	case tokFloat:
		return tok.f, p.advance()
	case tokName:
		return p.parseName()
	case tokPunct:
		switch tok.text {
		case "-", "+":
			return p.parseSigned()
		case "[":
			items, err := p.parseItems("]")
			if err != nil {
				return nil, err
			}
			return items, nil
		case "(":
			return p.parseParen()
		case "{":
			return p.parseBrace()
		}
	}
	return nil, p.lex.errorf(tok.pos, "unexpected %s", describe(tok))
}

func (p *parser) parseName() (any, error) {
	tok := p.tok
	switch tok.text {
	case "True":
		return true, p.advance()
	case "False":
		return false, p.advance()
	case "None":
		return nil, p.advance()
	case "set":
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expect("("); err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return Set{}, nil
	}
	return nil, p.lex.errorf(tok.pos, "name %q is not a literal", tok.text)
}

func (p *parser) parseSigned() (any, error) {
	negative := false
	for p.isPunct("-") || p.isPunct("+") {
		if p.tok.text == "-" {
			negative = !negative
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	tok := p.tok
	switch tok.kind {
	case tokInt:
		if negative {
			return -tok.i, p.advance()
		}
		return tok.i, p.advance()
	case tokFloat:
		if negative {
			return -tok.f, p.advance()
		}
		return tok.f, p.advance()
	}
	return nil, p.lex.errorf(tok.pos, "sign must precede a number, found %s", describe(tok))
}

// parseItems parses comma-separated values after an opening bracket up to
// and including the closing delimiter.
func (p *parser) parseItems(closing string) ([]any, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	items := []any{}
	for !p.isPunct(closing) {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if !p.isPunct(closing) {
			return nil, p.lex.errorf(p.tok.pos, "expected \",\" or %q, found %s", closing, describe(p.tok))
		}
	}
	return items, p.advance()
}

// parseParen handles (), (x) grouping, (x,) and (x, y) tuples.
func (p *parser) parseParen() (any, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.isPunct(")") {
		return Tuple{}, p.advance()
	}

	first, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if p.isPunct(")") {
		return first, p.advance()
	}
	if err := p.expect(","); err != nil {
		return nil, err
	}

	items := Tuple{first}
	for !p.isPunct(")") {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if !p.isPunct(")") {
			return nil, p.lex.errorf(p.tok.pos, "expected \",\" or \")\", found %s", describe(p.tok))
		}
	}
	return items, p.advance()
}

// parseBrace handles {} dicts and {a, b} sets.
func (p *parser) parseBrace() (any, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.isPunct("}") {
		return Dict{}, p.advance()
	}

	firstPos := p.tok.pos
	first, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	if p.isPunct(":") {
		return p.parseDictRest(first, firstPos)
	}

	set := Set{}
	member, memberPos := first, firstPos
	for {
		if !hashable(member) {
			return nil, p.lex.errorf(memberPos, "unhashable set member %s", Format(member))
		}
		set.Add(member)

		if p.isPunct("}") {
			return set, p.advance()
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
		if p.isPunct("}") {
			return set, p.advance()
		}
		memberPos = p.tok.pos
		if member, err = p.parseValue(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseDictRest(key any, keyPos int) (any, error) {
	dict := Dict{}
	for {
		if !hashable(key) {
			return nil, p.lex.errorf(keyPos, "unhashable dict key %s", Format(key))
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		dict.Put(key, val)

		if p.isPunct("}") {
			return dict, p.advance()
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
		if p.isPunct("}") {
			return dict, p.advance()
		}
		keyPos = p.tok.pos
		if key, err = p.parseValue(); err != nil {
			return nil, err
		}
	}
}

func describe(tok token) string {
	switch tok.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return "string"
	case tokInt, tokFloat:
		return "number " + tok.text
	case tokName:
		return "name " + tok.text
	default:
		return "\"" + tok.text + "\""
	}
}
