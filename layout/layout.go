// Package layout reads and writes the plain-text instruction files
// that tell a viewer which signals and searches to display, one
// instruction per line (spec.md §6), grounded on the
// original_source/src/tui/instr.rs TuiInstr format.
package layout

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"zappem.net/pub/wave/dwfv/signaldb"
)

// Kind tags what an Instr requests.
type Kind int

// Instruction kinds. Error carries a malformed or unrecognized line
// verbatim rather than aborting the whole file: one bad instruction
// shouldn't keep the rest of the layout from loading.
const (
	KindSignal Kind = iota
	KindSearch
	KindError
)

// Instr is one parsed line of a layout file.
type Instr struct {
	Kind Kind
	Arg  string // the signal id/name, the search expression, or the bad line
}

// Parse reads a layout file: one "signal <id>" or "search <expr>" per
// line. Blank lines and lines starting with "#" are skipped.
func Parse(r io.Reader) ([]Instr, error) {
	var instrs []Instr
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		instrs = append(instrs, parseLine(line))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return instrs, nil
}

func parseLine(line string) Instr {
	word, rest, ok := strings.Cut(line, " ")
	if !ok {
		return Instr{Kind: KindError, Arg: line}
	}
	arg := strings.TrimSpace(rest)
	switch word {
	case "signal":
		return Instr{Kind: KindSignal, Arg: arg}
	case "search":
		return Instr{Kind: KindSearch, Arg: arg}
	default:
		return Instr{Kind: KindError, Arg: line}
	}
}

func (i Instr) String() string {
	switch i.Kind {
	case KindSignal:
		return "signal " + i.Arg
	case KindSearch:
		return "search " + i.Arg
	default:
		return i.Arg
	}
}

// Format writes instrs back out one per line, followed by a
// "# Signals:" block listing the store's full scope tree (the stats
// dump the original's TUI widget tree rendered live; here it's
// written directly into the saved layout so a reloaded file documents
// what was available when it was saved).
func Format(w io.Writer, instrs []Instr, store *signaldb.Store) error {
	for _, instr := range instrs {
		if _, err := fmt.Fprintln(w, instr); err != nil {
			return err
		}
	}
	if store != nil {
		if _, err := fmt.Fprintln(w, "# Signals:"); err != nil {
			return err
		}
		store.FormatStats(w)
	}
	return nil
}
