package vcd

import (
	"io"

	"zappem.net/pub/wave/dwfv/signaldb"
	"zappem.net/pub/wave/dwfv/wave"
)

// SyntaxError is an alias for signaldb.SyntaxError so callers that
// only import vcd don't also need to import signaldb to type-switch
// on parse failures.
type SyntaxError = signaldb.SyntaxError

// Parser drives a Lexer against a signaldb.Store, mirroring a VCD
// file's grammar as a straightforward recursive descent over
// $directives (spec.md §4.5).
type Parser struct {
	lex   *Lexer
	store *signaldb.Store
	scope []string
	limit *wave.Timestamp
	now   wave.Timestamp
}

// NewParser returns a Parser that will populate store from r.
func NewParser(r io.Reader, store *signaldb.Store) *Parser {
	return &Parser{
		lex:   NewLexer(r),
		store: store,
		now:   wave.Origin(),
	}
}

// SetLimit stops the parse (successfully) once a "#"-timestamp
// strictly past limit is reached, without consuming it.
func (p *Parser) SetLimit(limit wave.Timestamp) {
	p.limit = &limit
}

// Parse consumes the entire VCD stream, declaring scopes and signals
// and feeding value changes into the store as they're read. The
// store's timescale defaults to 1 Ps (spec.md §4.5) until a
// "$timescale" section overrides it, and is marked initialized on the
// first "$enddefinitions $end" or the first "$dumpvars ... $end",
// whichever comes first, and invalid (releasing anyone blocked in
// WaitUntilInitialized) on any syntax error.
func Parse(r io.Reader, store *signaldb.Store) error {
	return NewParser(r, store).Parse()
}

// ParseWithLimit is Parse with an upfront time limit (spec.md §8's
// parse-limit truncation scenario).
func ParseWithLimit(r io.Reader, store *signaldb.Store, limit wave.Timestamp) error {
	p := NewParser(r, store)
	p.SetLimit(limit)
	return p.Parse()
}

func (p *Parser) fail(err error) error {
	p.store.MarkInvalid()
	p.store.SetStatus(err.Error())
	return err
}

// Parse runs the main parse loop.
func (p *Parser) Parse() error {
	p.store.SetTimescale(wave.New(1, wave.Ps))
	for {
		tok, err := p.lex.Pop(CtxStmt)
		if err == io.EOF {
			p.store.MarkInitialized()
			return nil
		}
		if err != nil {
			return p.fail(err)
		}

		switch tok.Stmt {
		case StmtTimestamp:
			next := p.store.GetTimescale().Mul(tok.Int)
			if p.limit != nil && p.limit.Less(next) {
				p.store.MarkInitialized()
				return nil
			}
			p.now = next
			p.store.SetTime(p.now)
		case StmtValue:
			if err := p.applyValueChange(tok); err != nil {
				return p.fail(err)
			}
		case StmtKeyword:
			if err := p.dispatch(tok); err != nil {
				return p.fail(err)
			}
		}
	}
}

func (p *Parser) dispatch(tok Token) error {
	switch tok.Keyword {
	case KwComment, KwDate, KwVersion:
		return p.skipSection()
	case KwTimescale:
		return p.parseTimescale()
	case KwScope:
		return p.parseScope()
	case KwVar:
		return p.parseVar()
	case KwUpscope:
		return p.parseUpscope()
	case KwEnddefinitions:
		if err := p.expectEnd(); err != nil {
			return err
		}
		p.store.MarkInitialized()
		return nil
	case KwDumpvars:
		return p.parseDumpvars()
	case KwOther:
		return p.skipSection()
	default:
		return &signaldb.SyntaxError{Line: tok.Word}
	}
}

// skipSection discards words up to and including the next "$end",
// for sections this reader doesn't interpret ($comment, $date,
// $version, and any unrecognized "$foo").
func (p *Parser) skipSection() error {
	for {
		tok, err := p.lex.Pop(CtxWord)
		if err != nil {
			return err
		}
		if tok.Word == "$end" {
			return nil
		}
	}
}

func (p *Parser) expectEnd() error {
	tok, err := p.lex.Pop(CtxKeyword)
	if err != nil {
		return err
	}
	if tok.Keyword != KwEnd {
		return &signaldb.SyntaxError{Line: tok.Word}
	}
	return nil
}

// parseTimescale reads "<n> <unit> $end" or "<n><unit> $end", keeping
// both the multiplier and the unit: "100ps" is a tick of 100 ps, not
// 1 ps, so each "#N" later is N * 100 ps (spec.md §4.5).
func (p *Parser) parseTimescale() error {
	tok, err := p.lex.Pop(CtxTimescale)
	if err != nil {
		return err
	}
	p.store.SetTimescale(wave.New(tok.Int, tok.Scale))
	return p.expectEnd()
}

// parseScope reads "<kind> <name> $end"; the scope kind (module,
// begin, task, ...) doesn't affect the namespace tree so it's
// consumed and discarded.
func (p *Parser) parseScope() error {
	if _, err := p.lex.Pop(CtxWord); err != nil { // kind
		return err
	}
	name, err := p.lex.Pop(CtxWord)
	if err != nil {
		return err
	}
	p.scope = append(p.scope, name.Word)
	p.store.CreateScope(p.scope)
	return p.expectEnd()
}

func (p *Parser) parseUpscope() error {
	if len(p.scope) == 0 {
		return &signaldb.SyntaxError{Line: "$upscope"}
	}
	p.scope = p.scope[:len(p.scope)-1]
	return p.expectEnd()
}

// parseVar reads "<type> <size> <id> <name> [range] $end" and
// declares the signal at the current scope.
func (p *Parser) parseVar() error {
	if _, err := p.lex.Pop(CtxWord); err != nil { // var type (wire, reg, ...)
		return err
	}
	size, err := p.lex.Pop(CtxInt)
	if err != nil {
		return err
	}
	id, err := p.lex.Pop(CtxID)
	if err != nil {
		return err
	}
	name, err := p.lex.Pop(CtxWord)
	if err != nil {
		return err
	}

	// An optional "[msb:lsb]" range, or the closing "$end".
	next, err := p.lex.Pop(CtxIDRange)
	if err != nil {
		return err
	}
	if next.Word == "$end" {
		p.store.DeclareSignal(p.scope, id.ID, name.Word, int(size.Int))
		return nil
	}
	if !next.HasRange {
		return &signaldb.SyntaxError{Line: next.Word}
	}
	p.store.DeclareSignal(p.scope, id.ID, name.Word, int(size.Int))
	return p.expectEnd()
}

// parseDumpvars reads the initial value dump: a run of value changes
// terminated by "$end", marking the store initialized once that $end
// is seen (the alternative trigger to $enddefinitions, per spec.md
// §4.5, for files that omit it).
func (p *Parser) parseDumpvars() error {
	for {
		tok, err := p.lex.Pop(CtxValue)
		if err != nil {
			return err
		}
		if tok.Keyword == KwEnd {
			p.store.MarkInitialized()
			return nil
		}
		if err := p.applyValueChange(tok); err != nil {
			return err
		}
	}
}

func (p *Parser) applyValueChange(tok Token) error {
	id := tok.ID
	if id == "" {
		idTok, err := p.lex.Pop(CtxID)
		if err != nil {
			return err
		}
		id = idTok.ID
	}
	if !p.store.SignalExists(id) {
		return &signaldb.SignalNotFoundError{SignalID: id}
	}
	return p.store.InsertEvent(id, p.now, tok.Value)
}
