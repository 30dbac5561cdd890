package search

import (
	"fmt"
	"strconv"
	"strings"

	"zappem.net/pub/wave/dwfv/wave"
)

// Parse compiles a search expression (spec.md §4.6's grammar) into a
// *Search bound to source, ready for SearchAt/SearchAll.
//
//	expr       := orExpr
//	orExpr     := andExpr ( "or" andExpr )*
//	andExpr    := term ( ("and" | "nand") term )*
//	term       := "(" expr ")" | "not" term | gate | relation
//	gate       := ("after" | "before") timestamp
//	relation   := "$" ident equal value
//	           |  "$" ident notEqual value
//	           |  "$" ident ( "becomes" | "<-" ) value
//	           |  "$" ident "changes"
//	           |  "$" ident
//	equal      := "is" | "equals" | "="
//	notEqual   := "is not" | "!="
//	value      := "$" ident | literal
//	literal    := "b" bits | "h" hexDigits | decimal
//
// A bare "$ident" with no relation following is AnyTransition: it
// holds true whenever that signal has any recorded event.
//
// "$a is b0 and $b != h0" and "$a becomes (0)" are both valid source
// strings.
func Parse(source string) (*Search, error) {
	toks, err := tokenize(source)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, source: source}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, p.errorf("unexpected trailing input %q", strings.Join(p.toks[p.pos:], " "))
	}
	return New(source, e), nil
}

type parser struct {
	toks   []string
	pos    int
	source string
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("search expression %q: %s", p.source, fmt.Sprintf(format, args...))
}

func (p *parser) peek() (string, bool) {
	if p.pos >= len(p.toks) {
		return "", false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() (string, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func (p *parser) accept(tok string) bool {
	if t, ok := p.peek(); ok && strings.EqualFold(t, tok) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseOr() (*Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.accept("or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = or(left, right)
	}
	return left, nil
}

func (p *parser) parseAnd() (*Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		if p.accept("and") {
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = and(left, right)
		} else if p.accept("nand") {
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = not(and(left, right))
		} else {
			return left, nil
		}
	}
}

func (p *parser) parseTerm() (*Expr, error) {
	if p.accept("(") {
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.accept(")") {
			return nil, p.errorf("missing closing parenthesis")
		}
		return e, nil
	}
	if p.accept("not") {
		e, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return not(e), nil
	}
	if p.accept("after") {
		t, err := p.parseTimestamp()
		if err != nil {
			return nil, err
		}
		return after(t), nil
	}
	if p.accept("before") {
		t, err := p.parseTimestamp()
		if err != nil {
			return nil, err
		}
		return before(t), nil
	}
	return p.parseRelation()
}

// parseRelation reads a "$ident" and whatever follows it. No relation
// token following the id at all (EOF, a closing paren, or "and"/
// "or"/"nand") leaves it unconsumed and yields AnyTransition, the bare
// "$ident" form of the grammar.
func (p *parser) parseRelation() (*Expr, error) {
	id, err := p.parseID()
	if err != nil {
		return nil, err
	}

	tok, ok := p.peek()
	if !ok {
		return anyTransition(id), nil
	}
	switch strings.ToLower(tok) {
	case "changes":
		p.next()
		return anyTransition(id), nil
	case "is":
		p.next()
		if p.accept("not") {
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			return not(equal(id, v)), nil
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return equal(id, v), nil
	case "equals", "=":
		p.next()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return equal(id, v), nil
	case "!=":
		p.next()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return not(equal(id, v)), nil
	case "becomes", "<-":
		p.next()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return transition(id, v), nil
	default:
		return anyTransition(id), nil
	}
}

func (p *parser) parseID() (string, error) {
	tok, ok := p.next()
	if !ok {
		return "", p.errorf("expected a $signal reference")
	}
	if !strings.HasPrefix(tok, "$") || len(tok) < 2 {
		return "", p.errorf("expected a $signal reference, got %q", tok)
	}
	return tok[1:], nil
}

func (p *parser) parseValue() (Value, error) {
	// A literal may be parenthesized, as in "$a becomes (0)".
	paren := p.accept("(")
	tok, ok := p.next()
	if !ok {
		return Value{}, p.errorf("expected a value")
	}
	var v Value
	if strings.HasPrefix(tok, "$") {
		if len(tok) < 2 {
			return Value{}, p.errorf("expected a $signal reference, got %q", tok)
		}
		v = Value{IsID: true, ID: tok[1:]}
	} else {
		lit, err := parseLiteral(tok)
		if err != nil {
			return Value{}, p.errorf("%s", err)
		}
		v = Value{Literal: lit}
	}
	if paren && !p.accept(")") {
		return Value{}, p.errorf("missing closing parenthesis")
	}
	return v, nil
}

func parseLiteral(tok string) (wave.SignalValue, error) {
	switch {
	case strings.HasPrefix(tok, "b") || strings.HasPrefix(tok, "B"):
		return wave.FromBinaryString(tok[1:]), nil
	case strings.HasPrefix(tok, "h") || strings.HasPrefix(tok, "H"):
		return wave.FromHex(tok[1:]), nil
	default:
		n, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			return wave.SignalValue{}, fmt.Errorf("invalid literal %q", tok)
		}
		return wave.NewInt(n), nil
	}
}

// parseTimestamp parses the integer-plus-optional-unit grammar of a
// time gate's operand, e.g. "100", "100ns". A bare integer is
// interpreted in picoseconds, matching the VCD default timescale
// (spec.md §4.5).
func (p *parser) parseTimestamp() (wave.Timestamp, error) {
	tok, ok := p.next()
	if !ok {
		return wave.Timestamp{}, p.errorf("expected a timestamp")
	}
	digits := strings.TrimRightFunc(tok, func(r rune) bool { return r < '0' || r > '9' })
	if digits == "" {
		return wave.Timestamp{}, p.errorf("invalid timestamp %q", tok)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return wave.Timestamp{}, p.errorf("invalid timestamp %q", tok)
	}
	unit := tok[len(digits):]
	scale := wave.Ps
	switch unit {
	case "", "ps":
		scale = wave.Ps
	case "fs":
		scale = wave.Fs
	case "ns":
		scale = wave.Ns
	case "us":
		scale = wave.Us
	case "ms":
		scale = wave.Ms
	case "s":
		scale = wave.S
	default:
		return wave.Timestamp{}, p.errorf("unknown time unit %q", unit)
	}
	return wave.New(n, scale), nil
}

// tokenize splits source into the parser's token stream: words
// separated by whitespace, with "(", ")", "<-", "!=" and "=" split
// out even when glued to neighboring text.
func tokenize(source string) ([]string, error) {
	var toks []string
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			toks = append(toks, buf.String())
			buf.Reset()
		}
	}
	runes := []rune(source)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			flush()
		case c == '(' || c == ')':
			flush()
			toks = append(toks, string(c))
		case c == '<' && i+1 < len(runes) && runes[i+1] == '-':
			flush()
			toks = append(toks, "<-")
			i++
		case c == '!' && i+1 < len(runes) && runes[i+1] == '=':
			flush()
			toks = append(toks, "!=")
			i++
		case c == '=':
			flush()
			toks = append(toks, "=")
		default:
			buf.WriteRune(c)
		}
	}
	flush()
	return toks, nil
}
