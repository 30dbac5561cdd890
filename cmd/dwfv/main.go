// Command dwfv inspects a VCD trace from the command line: print its
// signal statistics, the values in effect at a given instant, or the
// findings of a search expression (spec.md §6). Flag handling follows
// the stdlib-flag convention used throughout this module's teacher
// pack (see go-tz-tz's cmd/* tools).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"zappem.net/pub/wave/dwfv/layout"
	"zappem.net/pub/wave/dwfv/signaldb"
	"zappem.net/pub/wave/dwfv/vcd"
	"zappem.net/pub/wave/dwfv/wave"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: dwfv [flags] <file.vcd>

Flags:
  -layout path   load a layout file naming the signals/searches to show
  -stats         print per-signal statistics and exit
  -at timestamp  print every signal's value at timestamp (e.g. 100ns)
  -when expr     print the findings of a search expression

With no mode flag, dwfv prints a notice and falls back to -stats
output: the interactive waveform viewer this module's layout and
search facilities were built for is not part of this command.
`)
}

func main() {
	log.SetFlags(0)
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("dwfv", flag.ContinueOnError)
	fs.Usage = usage
	var (
		layoutPath = fs.String("layout", "", "layout file naming signals/searches to show")
		stats      = fs.Bool("stats", false, "print per-signal statistics and exit")
		at         = fs.String("at", "", "print every signal's value at this timestamp")
		when       = fs.String("when", "", "print the findings of this search expression")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		usage()
		return 2
	}
	path := fs.Arg(0)

	modes := 0
	for _, set := range []bool{*stats, *at != "", *when != ""} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		fmt.Fprintln(os.Stderr, "dwfv: -stats, -at and -when are mutually exclusive")
		return 2
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dwfv:", err)
		return 1
	}
	defer f.Close()

	store := signaldb.NewStore()
	if err := vcd.Parse(f, store); err != nil {
		fmt.Fprintln(os.Stderr, "dwfv:", err)
		return 1
	}

	var layoutInstrs []layout.Instr
	if *layoutPath != "" && modes == 0 {
		instrs, err := readLayout(*layoutPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "dwfv:", err)
			return 1
		}
		layoutInstrs = instrs
		for _, in := range layoutInstrs {
			if in.Kind == layout.KindSearch {
				if err := store.Search(in.Arg); err != nil {
					fmt.Fprintln(os.Stderr, "dwfv:", err)
					return 1
				}
			}
		}
	}

	switch {
	case *when != "":
		return runSearch(store, *when)
	case *at != "":
		return runAt(store, *at)
	default:
		if !*stats {
			fmt.Fprintln(os.Stderr, "dwfv: no interactive viewer in this build; falling back to -stats")
		}
		if err := layout.Format(os.Stdout, layoutInstrs, store); err != nil {
			fmt.Fprintln(os.Stderr, "dwfv:", err)
			return 1
		}
		return 0
	}
}

func readLayout(path string) ([]layout.Instr, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return layout.Parse(f)
}

func runSearch(store *signaldb.Store, expr string) int {
	if err := store.Search(expr); err != nil {
		fmt.Fprintln(os.Stderr, "dwfv:", err)
		return 1
	}
	if err := store.FormatFindings(os.Stdout, expr); err != nil {
		fmt.Fprintln(os.Stderr, "dwfv:", err)
		return 1
	}
	return 0
}

func runAt(store *signaldb.Store, at string) int {
	t, err := parseTimestamp(at)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dwfv:", err)
		return 2
	}
	store.FormatValuesAt(os.Stdout, t)
	return 0
}

// parseTimestamp parses a "-at" operand: an integer optionally
// followed by a time unit suffix (fs|ps|ns|us|ms|s). A bare integer
// is interpreted in picoseconds, matching the VCD default timescale.
func parseTimestamp(s string) (wave.Timestamp, error) {
	digits := strings.TrimRightFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if digits == "" {
		return wave.Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return wave.Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
	}
	unit := s[len(digits):]
	var scale wave.Scale
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
		return wave.Timestamp{}, fmt.Errorf("unknown time unit %q in %q", unit, s)
	}
	return wave.New(n, scale), nil
}
