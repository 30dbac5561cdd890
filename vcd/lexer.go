// Package vcd implements a reader for the IEEE 1364 Value Change Dump
// format (spec.md §4.5): a context-sensitive lexer over whitespace-
// separated words, and a recursive-descent parser that feeds a
// signaldb.Store.
package vcd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"zappem.net/pub/wave/dwfv/signaldb"
	"zappem.net/pub/wave/dwfv/wave"
)

// Keyword is one of the "$"-prefixed VCD section markers.
type Keyword int

// Recognized keywords. KwOther stands for any "$foo" this reader
// doesn't interpret (e.g. $dumpon, $dumpoff, $dumpall): its body is
// skipped up to the matching $end.
const (
	KwComment Keyword = iota
	KwDate
	KwVersion
	KwTimescale
	KwScope
	KwVar
	KwUpscope
	KwEnddefinitions
	KwDumpvars
	KwEnd
	KwOther
)

var keywords = map[string]Keyword{
	"$comment":        KwComment,
	"$date":           KwDate,
	"$version":        KwVersion,
	"$timescale":      KwTimescale,
	"$scope":          KwScope,
	"$var":            KwVar,
	"$upscope":        KwUpscope,
	"$enddefinitions": KwEnddefinitions,
	"$dumpvars":       KwDumpvars,
	"$end":            KwEnd,
}

// Context selects how the lexer retokenizes the next raw word: the
// same input word means something different after "$var" (an
// identifier) than it does after "#123" (a value change).
type Context int

// Lexing contexts.
const (
	CtxStmt      Context = iota // top-level: a keyword or a "#<int>" timestamp
	CtxKeyword                  // the word naming a $directive
	CtxInt                      // a plain decimal integer (e.g. $var's size field)
	CtxID                       // a single VCD short identifier
	CtxIDRange                  // "[msb:lsb]" or a bare id, for $var's range field
	CtxValue                    // a value-change literal ("b1010", "1", "sfoo")
	CtxTimescale                // "<int> <unit>" or "<int><unit>", e.g. "10 ns", "1ps"
	CtxWord                     // no retokenization: the raw word verbatim
)

// StmtKind tags what a CtxStmt token turned out to be: VCD's
// top-level statements are a mix of "#<int>" timestamps, "$keyword"
// directives and bare value-change literals, distinguished only by
// their first character.
type StmtKind int

// Kinds of top-level statement.
const (
	StmtKeyword StmtKind = iota
	StmtTimestamp
	StmtValue
)

// Token is the retokenized result of one raw word under some Context.
type Token struct {
	Word string
	Stmt StmtKind

	Keyword   Keyword
	Int       int64
	ID        string
	RangeFrom int
	RangeTo   int
	HasRange  bool
	Value     wave.SignalValue
	Scale     wave.Scale
}

// Lexer splits a VCD stream into whitespace-delimited raw words and
// retokenizes them on demand per the Context the parser is in.
type Lexer struct {
	sc      *bufio.Scanner
	line    int
	current string
}

// NewLexer wraps r for VCD lexing.
func NewLexer(r io.Reader) *Lexer {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)
	return &Lexer{sc: sc}
}

// CurrentWord returns the most recently returned raw word, for error
// messages.
func (l *Lexer) CurrentWord() string { return l.current }

// nextWord returns the next whitespace-delimited word, or io.EOF.
func (l *Lexer) nextWord() (string, error) {
	if !l.sc.Scan() {
		if err := l.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	l.current = l.sc.Text()
	return l.current, nil
}

// Pop reads the next raw word and retokenizes it under ctx.
func (l *Lexer) Pop(ctx Context) (Token, error) {
	word, err := l.nextWord()
	if err != nil {
		return Token{}, err
	}
	return l.retokenize(ctx, word)
}

func (l *Lexer) retokenize(ctx Context, word string) (Token, error) {
	switch ctx {
	case CtxStmt:
		return l.retokenizeStmt(word)
	case CtxKeyword:
		return l.retokenizeKeyword(word)
	case CtxInt:
		return l.retokenizeInt(word)
	case CtxID:
		return Token{Word: word, ID: word}, nil
	case CtxIDRange:
		return l.retokenizeIDRange(word)
	case CtxValue:
		if word == "$end" {
			return Token{Word: word, Keyword: KwEnd}, nil
		}
		return l.retokenizeValue(word)
	case CtxTimescale:
		return l.retokenizeTimescale(word)
	case CtxWord:
		return Token{Word: word}, nil
	default:
		return Token{}, fmt.Errorf("vcd: unknown lexer context %d", ctx)
	}
}

func (l *Lexer) retokenizeStmt(word string) (Token, error) {
	switch {
	case strings.HasPrefix(word, "#"):
		n, err := strconv.ParseInt(word[1:], 10, 64)
		if err != nil {
			return Token{}, &signaldb.SyntaxError{Line: word}
		}
		return Token{Word: word, Stmt: StmtTimestamp, Int: n}, nil
	case strings.HasPrefix(word, "$"):
		tok, err := l.retokenizeKeyword(word)
		tok.Stmt = StmtKeyword
		return tok, err
	default:
		tok, err := l.retokenizeValue(word)
		tok.Stmt = StmtValue
		return tok, err
	}
}

func (l *Lexer) retokenizeKeyword(word string) (Token, error) {
	kw, ok := keywords[word]
	if !ok {
		if strings.HasPrefix(word, "$") {
			return Token{Word: word, Keyword: KwOther}, nil
		}
		return Token{}, &signaldb.SyntaxError{Line: word}
	}
	return Token{Word: word, Keyword: kw}, nil
}

func (l *Lexer) retokenizeInt(word string) (Token, error) {
	n, err := strconv.ParseInt(word, 10, 64)
	if err != nil {
		return Token{}, &signaldb.SyntaxError{Line: word}
	}
	return Token{Word: word, Int: n}, nil
}

// retokenizeIDRange handles $var's optional "[msb:lsb]" / "[bit]"
// range suffix, glued to the signal name with no space in some VCD
// writers' output and space-separated in others; here it always
// arrives as its own word.
func (l *Lexer) retokenizeIDRange(word string) (Token, error) {
	if !strings.HasPrefix(word, "[") || !strings.HasSuffix(word, "]") {
		return Token{Word: word, ID: word}, nil
	}
	body := word[1 : len(word)-1]
	if idx := strings.IndexByte(body, ':'); idx >= 0 {
		msb, err1 := strconv.Atoi(body[:idx])
		lsb, err2 := strconv.Atoi(body[idx+1:])
		if err1 != nil || err2 != nil {
			return Token{}, &signaldb.SyntaxError{Line: word}
		}
		return Token{Word: word, RangeFrom: msb, RangeTo: lsb, HasRange: true}, nil
	}
	bit, err := strconv.Atoi(body)
	if err != nil {
		return Token{}, &signaldb.SyntaxError{Line: word}
	}
	return Token{Word: word, RangeFrom: bit, RangeTo: bit, HasRange: true}, nil
}

// retokenizeValue handles a value-change word: a vector literal
// ("b1010x1", "r1.5") prefixed by its radix letter, or a scalar value
// (one bit char) with its short identifier glued on (e.g. "1!", "x#").
func (l *Lexer) retokenizeValue(word string) (Token, error) {
	if word == "" {
		return Token{}, &signaldb.SyntaxError{Line: word}
	}
	switch word[0] {
	case 'b', 'B':
		return Token{Word: word, Value: wave.FromBinaryString(word[1:])}, nil
	case 'r', 'R':
		// Real values have no bit representation in this reader; keep
		// the literal as an invalid placeholder rather than reject the
		// whole file over one unsupported $var type.
		return Token{Word: word, Value: wave.InvalidValue()}, nil
	case 's', 'S':
		return Token{Word: word, Value: wave.FromSymbol(word[1:]), ID: ""}, nil
	default:
		v := wave.FromBinaryString(word[:1])
		id := word[1:]
		return Token{Word: word, Value: v, ID: id}, nil
	}
}

// retokenizeTimescale handles the body of a "$timescale" section: an
// optional integer multiplier (1, 10 or 100) followed by a unit
// (s|ms|us|ns|ps|fs), either as one glued word ("1ps") or two words
// ("1", "ps"), in which case the unit word is read here.
func (l *Lexer) retokenizeTimescale(word string) (Token, error) {
	digits := strings.TrimRightFunc(word, func(r rune) bool {
		return r < '0' || r > '9'
	})
	unit := word[len(digits):]
	mult := int64(1)
	if digits != "" {
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return Token{}, &signaldb.SyntaxError{Line: word}
		}
		mult = n
	}
	if unit == "" {
		// The unit arrived as a separate word; fetch it now.
		next, err := l.nextWord()
		if err != nil {
			return Token{}, &signaldb.SyntaxError{Line: word}
		}
		unit = next
	}
	scale, err := scaleFromUnit(unit)
	if err != nil {
		return Token{}, err
	}
	return Token{Word: word, Int: mult, Scale: scale}, nil
}

func scaleFromUnit(unit string) (wave.Scale, error) {
	switch unit {
	case "fs":
		return wave.Fs, nil
	case "ps":
		return wave.Ps, nil
	case "ns":
		return wave.Ns, nil
	case "us":
		return wave.Us, nil
	case "ms":
		return wave.Ms, nil
	case "s":
		return wave.S, nil
	default:
		return 0, &signaldb.SyntaxError{Line: unit}
	}
}
