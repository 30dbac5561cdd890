package signaldb

import (
	"fmt"
	"io"
	"sort"
)

// event is a single recorded value change.
type event struct {
	timestamp Timestamp
	value     SignalValue
}

// Signal holds the complete, time-ordered history of one VCD
// identifier: a strictly-increasing sequence of (timestamp, value)
// events with no two adjacent events sharing a value (spec.md §3).
type Signal struct {
	ID      string
	Name    string
	Width   int
	events  []event
	deflt   SignalValue
}

// NewSignal creates a Signal with width copies of Undefined as its
// default (pre-first-event) value.
func NewSignal(id, name string, width int) *Signal {
	return &Signal{
		ID:    id,
		Name:  name,
		Width: width,
		deflt: NewDefault(width, Undefined),
	}
}

func (s *Signal) String() string {
	return fmt.Sprintf("%s (%s)", s.ID, s.Name)
}

// prevValueAtIndex returns the value that held immediately before the
// event slot at index (the default, if index is 0 or there are no
// events yet).
func (s *Signal) prevValueAtIndex(index int) SignalValue {
	switch {
	case index == 0:
		return s.deflt
	case index >= len(s.events):
		if len(s.events) == 0 {
			return s.deflt
		}
		return s.events[len(s.events)-1].value
	default:
		return s.events[index-1].value
	}
}

func (s *Signal) indexOf(t Timestamp) int {
	return sort.Search(len(s.events), func(i int) bool {
		return !s.events[i].timestamp.Less(t)
	})
}

// exactIndexOf returns the index of the event at exactly t, and
// whether one exists.
func (s *Signal) exactIndexOf(t Timestamp) (int, bool) {
	i := s.indexOf(t)
	if i < len(s.events) && s.events[i].timestamp.Equal(t) {
		return i, true
	}
	return i, false
}

// AddEvent inserts or updates the event at timestamp with newValue,
// expanded to the signal's width. Per spec.md §3: an insertion whose
// value equals the prior value is a no-op; an update that makes the
// stored value equal the prior value removes the redundant record.
func (s *Signal) AddEvent(timestamp Timestamp, newValue SignalValue) {
	newValue = newValue.Expanded(s.Width)

	var index int
	var exact bool
	if n := len(s.events); n > 0 && s.events[n-1].timestamp.Less(timestamp) {
		index, exact = n, false
	} else {
		index, exact = s.exactIndexOf(timestamp)
	}

	if exact {
		if s.prevValueAtIndex(index).Equal(newValue) {
			s.events = append(s.events[:index], s.events[index+1:]...)
		} else {
			s.events[index].value = newValue
		}
		return
	}

	if !s.prevValueAtIndex(index).Equal(newValue) {
		s.events = append(s.events, event{})
		copy(s.events[index+1:], s.events[index:])
		s.events[index] = event{timestamp: timestamp, value: newValue}
	}
}

// ValueAt returns the value in effect at timestamp: the event's value
// on an exact hit, otherwise the immediately prior event's value, or
// the default if timestamp precedes the first event.
func (s *Signal) ValueAt(timestamp Timestamp) SignalValue {
	if i, ok := s.exactIndexOf(timestamp); ok {
		return s.events[i].value
	} else {
		return s.prevValueAtIndex(i)
	}
}

// EventAt returns the value recorded at exactly timestamp, or ok=false
// if no event fired at that instant.
func (s *Signal) EventAt(timestamp Timestamp) (SignalValue, bool) {
	if i, ok := s.exactIndexOf(timestamp); ok {
		return s.events[i].value, true
	}
	return SignalValue{}, false
}

// EventsBetween summarizes the events in [begin, end): the value that
// held just before begin, the count of events in the range, and the
// value that held just before end.
func (s *Signal) EventsBetween(begin, end Timestamp) (SignalValue, int, SignalValue) {
	bi := s.indexOf(begin)
	ei := s.indexOf(end)
	return s.prevValueAtIndex(bi), ei - bi, s.prevValueAtIndex(ei)
}

// NextRisingEdge scans events strictly after timestamp for the first
// non-zero value.
func (s *Signal) NextRisingEdge(timestamp Timestamp) (Timestamp, bool) {
	zero := NewInt(0)
	start := s.indexOf(timestamp.Derive(timestamp.Value() + 1))
	for _, e := range s.events[start:] {
		if !e.value.Equal(zero) {
			return e.timestamp, true
		}
	}
	return Timestamp{}, false
}

// NextFallingEdge scans events strictly after timestamp for the first
// zero value.
func (s *Signal) NextFallingEdge(timestamp Timestamp) (Timestamp, bool) {
	zero := NewInt(0)
	start := s.indexOf(timestamp.Derive(timestamp.Value() + 1))
	for _, e := range s.events[start:] {
		if e.value.Equal(zero) {
			return e.timestamp, true
		}
	}
	return Timestamp{}, false
}

// PreviousRisingEdge scans events strictly before timestamp, backwards,
// for the first non-zero value.
func (s *Signal) PreviousRisingEdge(timestamp Timestamp) (Timestamp, bool) {
	zero := NewInt(0)
	end := s.indexOf(timestamp)
	for i := end - 1; i >= 0; i-- {
		if !s.events[i].value.Equal(zero) {
			return s.events[i].timestamp, true
		}
	}
	return Timestamp{}, false
}

// FirstEvent returns the timestamp of the earliest recorded event.
func (s *Signal) FirstEvent() (Timestamp, bool) {
	if len(s.events) == 0 {
		return Timestamp{}, false
	}
	return s.events[0].timestamp, true
}

// LastEvent returns the timestamp of the latest recorded event.
func (s *Signal) LastEvent() (Timestamp, bool) {
	if len(s.events) == 0 {
		return Timestamp{}, false
	}
	return s.events[len(s.events)-1].timestamp, true
}

// FormatStats writes a one-line summary of the signal's history.
func (s *Signal) FormatStats(w io.Writer) {
	fmt.Fprintf(w, "%s - width: %d, edges: %d", s, s.Width, len(s.events))
	if len(s.events) > 0 {
		fmt.Fprintf(w, ", from: %s, to: %s\n", s.events[0].timestamp, s.events[len(s.events)-1].timestamp)
	} else {
		fmt.Fprintln(w)
	}
}

// FormatValueAt writes the signal's value at timestamp, using "->" if
// an event fired at exactly that instant, or "=" otherwise.
func (s *Signal) FormatValueAt(w io.Writer, timestamp Timestamp) {
	if v, ok := s.EventAt(timestamp); ok {
		fmt.Fprintf(w, "%s -> %s\n", s, v)
	} else {
		fmt.Fprintf(w, "%s = %s\n", s, s.ValueAt(timestamp))
	}
}
