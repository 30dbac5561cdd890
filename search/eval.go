package search

import (
	"fmt"
	"io"
	"sort"

	"zappem.net/pub/wave/dwfv/wave"
)

// Store is the slice of signaldb.Store a Search needs to evaluate its
// expression. Kept narrow and expressed purely in terms of the wave
// package so this package never imports signaldb (which imports this
// package for its searches map) and so avoids the import cycle the
// original Rust crate's signaldb<->search module pair didn't need to
// worry about.
type Store interface {
	ValueAt(id string, t wave.Timestamp) (wave.SignalValue, error)
	EventAt(id string, t wave.Timestamp) (wave.SignalValue, bool, error)
}

type evalKind int

const (
	evalLevel evalKind = iota
	evalTransition
)

// evalResult is the outcome of evaluating an Expr at one timestamp: a
// truth value tagged with whether it describes an instantaneous edge
// (Transition) or a value that holds over an interval (Level). The
// tag decides how And/Or combine and how SearchAt turns a run of
// results into Point or Period findings.
type evalResult struct {
	value bool
	kind  evalKind
}

func combineKind(a, b evalKind) evalKind {
	if a == evalTransition || b == evalTransition {
		return evalTransition
	}
	return evalLevel
}

func combineAnd(a, b evalResult) evalResult {
	return evalResult{value: a.value && b.value, kind: combineKind(a.kind, b.kind)}
}

func combineOr(a, b evalResult) evalResult {
	return evalResult{value: a.value || b.value, kind: combineKind(a.kind, b.kind)}
}

func negate(a evalResult) evalResult {
	return evalResult{value: !a.value, kind: a.kind}
}

func valueOf(v Value, store Store, t wave.Timestamp) (wave.SignalValue, error) {
	if !v.IsID {
		return v.Literal, nil
	}
	return store.ValueAt(v.ID, t)
}

func evalAt(expr *Expr, store Store, t wave.Timestamp) (evalResult, error) {
	switch expr.Kind {
	case KindEqual:
		lhs, err := store.ValueAt(expr.ID, t)
		if err != nil {
			return evalResult{}, err
		}
		rhs, err := valueOf(expr.Value, store, t)
		if err != nil {
			return evalResult{}, err
		}
		return evalResult{value: lhs.Equal(rhs), kind: evalLevel}, nil

	case KindTransition:
		v, ok, err := store.EventAt(expr.ID, t)
		if err != nil {
			return evalResult{}, err
		}
		if !ok {
			return evalResult{value: false, kind: evalTransition}, nil
		}
		rhs, err := valueOf(expr.Value, store, t)
		if err != nil {
			return evalResult{}, err
		}
		return evalResult{value: v.Equal(rhs), kind: evalTransition}, nil

	case KindAnyTransition:
		_, ok, err := store.EventAt(expr.ID, t)
		if err != nil {
			return evalResult{}, err
		}
		return evalResult{value: ok, kind: evalTransition}, nil

	case KindNot:
		r, err := evalAt(expr.Operand, store, t)
		return negate(r), err

	case KindAnd:
		l, err := evalAt(expr.Left, store, t)
		if err != nil {
			return evalResult{}, err
		}
		r, err := evalAt(expr.Right, store, t)
		if err != nil {
			return evalResult{}, err
		}
		return combineAnd(l, r), nil

	case KindOr:
		l, err := evalAt(expr.Left, store, t)
		if err != nil {
			return evalResult{}, err
		}
		r, err := evalAt(expr.Right, store, t)
		if err != nil {
			return evalResult{}, err
		}
		return combineOr(l, r), nil

	case KindAfter:
		return evalResult{value: !t.Less(expr.Limit), kind: evalLevel}, nil

	case KindBefore:
		return evalResult{value: t.Less(expr.Limit), kind: evalLevel}, nil

	default:
		panic(fmt.Sprintf("search: unhandled expr kind %d", expr.Kind))
	}
}

// Search holds one compiled expression's accumulated findings against
// a store, built up one timestamp at a time by SearchAt so it can run
// interleaved with a live VCD parse (spec.md §4.7).
type Search struct {
	Source string
	expr   *Expr

	findings []wave.TimeDescr
	open     *wave.Timestamp // begin of an in-progress Level period, if any
	last     wave.Timestamp
	done     bool
}

// New compiles expr's source against nothing; call SearchAt or
// SearchAll to populate it.
func New(source string, expr *Expr) *Search {
	return &Search{Source: source, expr: expr}
}

// SearchAt evaluates the expression at t and folds the result into
// the finding list. Timestamps must be fed in non-decreasing order.
func (s *Search) SearchAt(store Store, t wave.Timestamp) error {
	if s.done {
		return fmt.Errorf("search: SearchAt called after Finish")
	}
	r, err := evalAt(s.expr, store, t)
	if err != nil {
		return err
	}
	s.last = t

	switch r.kind {
	case evalTransition:
		s.closeOpenPeriod(t)
		if r.value {
			s.findings = append(s.findings, wave.NewPoint(t))
		}
	case evalLevel:
		switch {
		case r.value && s.open == nil:
			begin := t
			s.open = &begin
		case !r.value && s.open != nil:
			s.findings = append(s.findings, wave.NewPeriod(*s.open, t))
			s.open = nil
		}
	}
	return nil
}

func (s *Search) closeOpenPeriod(end wave.Timestamp) {
	if s.open != nil {
		s.findings = append(s.findings, wave.NewPeriod(*s.open, end))
		s.open = nil
	}
}

// SearchAll runs SearchAt across every timestamp the store knows
// about, then Finish, for the synchronous, single-shot use case.
func (s *Search) SearchAll(store Store, timestamps []wave.Timestamp) error {
	for _, t := range timestamps {
		if err := s.SearchAt(store, t); err != nil {
			return err
		}
	}
	return s.Finish()
}

// Finish closes any period left open by the last SearchAt call,
// extending it to the last timestamp seen, and freezes the finding
// list against further SearchAt calls.
func (s *Search) Finish() error {
	if s.done {
		return nil
	}
	s.closeOpenPeriod(s.last)
	s.done = true
	return nil
}

func findingKey(f wave.TimeDescr) wave.Timestamp {
	if f.Point {
		return f.At
	}
	return f.Begin
}

// findingContains reports whether finding f covers instant t: exactly
// for a Point, half-open [Begin, End) for a Period.
func findingContains(f wave.TimeDescr, t wave.Timestamp) bool {
	if f.Point {
		return f.At.Equal(t)
	}
	return !t.Less(f.Begin) && t.Less(f.End)
}

// findingOverlaps reports whether f intersects the half-open range
// [begin, end).
func findingOverlaps(f wave.TimeDescr, begin, end wave.Timestamp) bool {
	if f.Point {
		return !f.At.Less(begin) && f.At.Less(end)
	}
	return f.Begin.Less(end) && begin.Less(f.End)
}

// SummaryKind classifies what FindingsBetween saw in a time range, for
// a caller (e.g. a waveform cell renderer) that wants a cheap
// one-glance description rather than the full finding list.
type SummaryKind int

// Kinds of finding-range summary.
const (
	SummaryNothing SummaryKind = iota
	SummaryTimestamp
	SummaryRangeBegin
	SummaryRange
	SummaryRangeEnd
	SummaryComplex
)

// FindingsSummary is the result of FindingsBetween.
type FindingsSummary struct {
	Kind  SummaryKind
	Count int // populated only for SummaryComplex
}

// findingAt returns the index of the finding containing t, if any.
func (s *Search) findingAt(t wave.Timestamp) (int, bool) {
	i := sort.Search(len(s.findings), func(i int) bool {
		return !findingKey(s.findings[i]).Less(t)
	})
	if i < len(s.findings) && findingContains(s.findings[i], t) {
		return i, true
	}
	if i > 0 && findingContains(s.findings[i-1], t) {
		return i - 1, true
	}
	return 0, false
}

// FindingsBetween summarizes the findings overlapping [begin, end).
func (s *Search) FindingsBetween(begin, end wave.Timestamp) FindingsSummary {
	lo := sort.Search(len(s.findings), func(i int) bool {
		return !findingKey(s.findings[i]).Less(begin)
	})
	if lo > 0 && findingOverlaps(s.findings[lo-1], begin, end) {
		lo--
	}

	var matches []wave.TimeDescr
	for i := lo; i < len(s.findings) && findingKey(s.findings[i]).Less(end); i++ {
		if findingOverlaps(s.findings[i], begin, end) {
			matches = append(matches, s.findings[i])
		}
	}
	switch len(matches) {
	case 0:
		return FindingsSummary{Kind: SummaryNothing}
	case 1:
		f := matches[0]
		switch {
		case f.Point:
			return FindingsSummary{Kind: SummaryTimestamp}
		case !f.Begin.Less(begin) && f.End.Less(end):
			return FindingsSummary{Kind: SummaryRange}
		case !f.Begin.Less(begin):
			return FindingsSummary{Kind: SummaryRangeBegin}
		case f.End.Less(end) || f.End.Equal(end):
			return FindingsSummary{Kind: SummaryRangeEnd}
		default:
			return FindingsSummary{Kind: SummaryRange}
		}
	default:
		return FindingsSummary{Kind: SummaryComplex, Count: len(matches)}
	}
}

// GetFirstFinding returns the earliest finding, if any.
func (s *Search) GetFirstFinding() (wave.TimeDescr, bool) {
	if len(s.findings) == 0 {
		return wave.TimeDescr{}, false
	}
	return s.findings[0], true
}

// GetLastFinding returns the latest finding, if any.
func (s *Search) GetLastFinding() (wave.TimeDescr, bool) {
	if len(s.findings) == 0 {
		return wave.TimeDescr{}, false
	}
	return s.findings[len(s.findings)-1], true
}

// GetNextFinding returns the first finding whose key timestamp is
// strictly after t.
func (s *Search) GetNextFinding(t wave.Timestamp) (wave.TimeDescr, bool) {
	i := sort.Search(len(s.findings), func(i int) bool {
		return findingKey(s.findings[i]).Compare(t) > 0
	})
	if i >= len(s.findings) {
		return wave.TimeDescr{}, false
	}
	return s.findings[i], true
}

// GetPreviousFinding returns the last finding whose key timestamp is
// strictly before t.
func (s *Search) GetPreviousFinding(t wave.Timestamp) (wave.TimeDescr, bool) {
	i := sort.Search(len(s.findings), func(i int) bool {
		return !findingKey(s.findings[i]).Less(t)
	})
	if i == 0 {
		return wave.TimeDescr{}, false
	}
	return s.findings[i-1], true
}

// GetEndOfNextFinding returns the end of the first finding overlapping
// or following t: for a Point this is the point itself, for a Period
// its End.
func (s *Search) GetEndOfNextFinding(t wave.Timestamp) (wave.Timestamp, bool) {
	if i, ok := s.findingAt(t); ok {
		f := s.findings[i]
		if f.Point {
			return f.At, true
		}
		return f.End, true
	}
	f, ok := s.GetNextFinding(t)
	if !ok {
		return wave.Timestamp{}, false
	}
	if f.Point {
		return f.At, true
	}
	return f.End, true
}

// FormatFindings writes a "# <source>" header line, then one
// indented line per finding, in order.
func (s *Search) FormatFindings(w io.Writer) {
	fmt.Fprintf(w, "# %s\n", s.Source)
	for _, f := range s.findings {
		fmt.Fprintf(w, "  %s\n", f)
	}
}
