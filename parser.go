package koda

// parser is a recursive-descent parser over a lexer's token stream, with up
// to two tokens of lookahead (needed to decide whether the document is an
// implicit brace-less root object or a single value).
type parser struct {
	lex  *lexer
	opts ParseOptions
	buf  []token
}

func (p *parser) fill(n int) error {
	for len(p.buf) <= n {
		if len(p.buf) > 0 && p.buf[len(p.buf)-1].kind == tokEOF {
			return nil
		}
		tok, err := p.lex.next()
		if err != nil {
			return err
		}
		p.buf = append(p.buf, tok)
	}
	return nil
}

func (p *parser) peek(n int) (token, error) {
	if err := p.fill(n); err != nil {
		return token{}, err
	}
	if n < len(p.buf) {
		return p.buf[n], nil
	}
	return p.buf[len(p.buf)-1], nil
}

func (p *parser) next() (token, error) {
	tok, err := p.peek(0)
	if err != nil {
		return token{}, err
	}
	if len(p.buf) > 0 {
		p.buf = p.buf[1:]
	}
	return tok, nil
}

// Parse converts KODA text into a Value.
func Parse(text string, opts ParseOptions) (Value, error) {
	opts = opts.withDefaults()
	if len(text) > opts.MaxInputLength {
		return Value{}, newParseError(Position{Line: 1, Col: 1, Offset: 0}, reasonInputTooLong)
	}
	p := &parser{lex: newLexer([]byte(text)), opts: opts}

	tok0, err := p.peek(0)
	if err != nil {
		return Value{}, err
	}
	if tok0.kind == tokEOF {
		return Value{}, newParseError(tok0.start, reasonExpected("value"))
	}
	tok1, err := p.peek(1)
	if err != nil {
		return Value{}, err
	}
	isImplicitRoot := (tok0.kind == tokIdentifier || tok0.kind == tokString) && tok1.kind != tokEOF

	var v Value
	if isImplicitRoot {
		v, err = p.parseMembers(0, tokEOF)
		if err != nil {
			return Value{}, err
		}
	} else {
		v, err = p.parseValue(0)
		if err != nil {
			return Value{}, err
		}
		tok, err := p.next()
		if err != nil {
			return Value{}, err
		}
		if tok.kind != tokEOF {
			return Value{}, newParseError(tok.start, reasonExpected(tokEOF.String()))
		}
	}
	return v, nil
}

// MustParse is Parse with default options, panicking on error. Intended for
// call sites that have already validated their input, such as embedding a
// literal in a test.
func MustParse(text string) Value {
	v, err := Parse(text, ParseOptions{})
	if err != nil {
		panic(err)
	}
	return v
}

// parseMembers parses a run of key/value pairs (either the body of an
// explicit '{' ... '}' object, or the whole implicit root document) until
// terminator is seen, and consumes the terminator (for tokEOF there is
// nothing to consume). depth is the depth at which each member's value is
// parsed: for a nested object this is already depth+1 of the enclosing
// scope; for the implicit root it is 0, since entering the implicit root
// does not itself add a level.
func (p *parser) parseMembers(depth int, terminator tokenKind) (Value, error) {
	obj := NewObject()
	for {
		tok, err := p.peek(0)
		if err != nil {
			return Value{}, err
		}
		if tok.kind == terminator {
			if terminator != tokEOF {
				p.next()
			}
			return obj, nil
		}
		if tok.kind == tokEOF {
			return Value{}, newParseError(tok.start, reasonExpected("'}'"))
		}

		keyTok, err := p.next()
		if err != nil {
			return Value{}, err
		}
		var key string
		switch keyTok.kind {
		case tokIdentifier, tokString:
			key = keyTok.str
		default:
			return Value{}, newParseError(keyTok.start, reasonExpected("key"))
		}
		if _, exists := obj.Get(key); exists {
			return Value{}, newParseError(keyTok.start, reasonDuplicateKey)
		}

		nt, err := p.peek(0)
		if err != nil {
			return Value{}, err
		}
		if nt.kind == tokColon {
			p.next()
		}

		val, err := p.parseValue(depth)
		if err != nil {
			return Value{}, err
		}
		obj.Set(key, val)

		nt2, err := p.peek(0)
		if err != nil {
			return Value{}, err
		}
		if nt2.kind == tokComma {
			p.next()
		}
	}
}

func (p *parser) parseArray(depth int) (Value, error) {
	var elems []Value
	for {
		tok, err := p.peek(0)
		if err != nil {
			return Value{}, err
		}
		if tok.kind == tokRBracket {
			p.next()
			return Array(elems), nil
		}
		val, err := p.parseValue(depth)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, val)

		nt, err := p.peek(0)
		if err != nil {
			return Value{}, err
		}
		if nt.kind == tokComma {
			p.next()
		}
	}
}

// parseValue parses a single value at the given depth: depth is the depth
// already in effect for this position (i.e. the depth its own container
// entries would be parsed at is depth+1 if this value is itself an object
// or array).
func (p *parser) parseValue(depth int) (Value, error) {
	tok, err := p.next()
	if err != nil {
		return Value{}, err
	}
	switch tok.kind {
	case tokLBrace:
		nd := depth + 1
		if nd > p.opts.MaxDepth {
			return Value{}, newParseError(tok.start, reasonMaxDepth)
		}
		return p.parseMembers(nd, tokRBrace)
	case tokLBracket:
		nd := depth + 1
		if nd > p.opts.MaxDepth {
			return Value{}, newParseError(tok.start, reasonMaxDepth)
		}
		return p.parseArray(nd)
	case tokString:
		return String(tok.str), nil
	case tokIdentifier:
		return String(tok.str), nil
	case tokInteger:
		return Int(tok.i64), nil
	case tokFloat:
		return Float(tok.f64), nil
	case tokTrue:
		return Bool(true), nil
	case tokFalse:
		return Bool(false), nil
	case tokNull:
		return Null(), nil
	default:
		return Value{}, newParseError(tok.start, reasonExpected("value"))
	}
}
