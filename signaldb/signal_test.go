package signaldb

import "testing"

func TestSignalAddEventDedupNoOp(t *testing.T) {
	s := NewSignal("!", "clk", 1)
	s.AddEvent(New(10, Ns), NewInt(1))
	// Repeating the value that already holds should be a no-op: it
	// introduces no transition.
	s.AddEvent(New(20, Ns), NewInt(1))
	if got := len(s.events); got != 1 {
		t.Fatalf("inserting the already-current value should be a no-op, got %d events", got)
	}
}

func TestSignalAddEventCollapseRemovesRecord(t *testing.T) {
	s := NewSignal("!", "clk", 1)
	s.AddEvent(New(10, Ns), NewInt(1))
	s.AddEvent(New(20, Ns), NewInt(0))
	s.AddEvent(New(30, Ns), NewInt(1))
	if got := len(s.events); got != 3 {
		t.Fatalf("expected 3 events, got %d", got)
	}
	// Updating the t=20 event to the value that already held just
	// before it (1, from the t=10 event) makes it redundant, so it's
	// removed rather than merely overwritten.
	s.AddEvent(New(20, Ns), NewInt(1))
	if got := len(s.events); got != 2 {
		t.Fatalf("expected the redundant event to be removed, got %d events", got)
	}
}

func TestSignalValueAtBeforeFirstEvent(t *testing.T) {
	s := NewSignal("!", "clk", 4)
	s.AddEvent(New(10, Ns), NewInt(5))
	v := s.ValueAt(New(5, Ns))
	if !v.Equal(NewDefault(4, Undefined)) {
		t.Errorf("ValueAt before first event = %v, want the default", v)
	}
}

func TestSignalValueAtHoldsBetweenEvents(t *testing.T) {
	s := NewSignal("!", "clk", 4)
	s.AddEvent(New(10, Ns), NewInt(5))
	s.AddEvent(New(30, Ns), NewInt(7))
	v := s.ValueAt(New(20, Ns))
	if !v.Equal(NewInt(5)) {
		t.Errorf("ValueAt(20ns) = %v, want 5", v)
	}
}

func TestSignalEventAtExactOnly(t *testing.T) {
	s := NewSignal("!", "clk", 4)
	s.AddEvent(New(10, Ns), NewInt(5))
	if _, ok := s.EventAt(New(11, Ns)); ok {
		t.Errorf("EventAt(11ns) should report no event")
	}
	v, ok := s.EventAt(New(10, Ns))
	if !ok || !v.Equal(NewInt(5)) {
		t.Errorf("EventAt(10ns) = %v, %v, want 5, true", v, ok)
	}
}

func TestSignalEdges(t *testing.T) {
	s := NewSignal("!", "clk", 1)
	s.AddEvent(New(10, Ns), NewInt(1))
	s.AddEvent(New(20, Ns), NewInt(0))
	s.AddEvent(New(30, Ns), NewInt(1))

	if ts, ok := s.NextRisingEdge(New(0, Ns)); !ok || !ts.Equal(New(10, Ns)) {
		t.Errorf("NextRisingEdge(0) = %v, %v, want 10ns, true", ts, ok)
	}
	if ts, ok := s.NextFallingEdge(New(10, Ns)); !ok || !ts.Equal(New(20, Ns)) {
		t.Errorf("NextFallingEdge(10) = %v, %v, want 20ns, true", ts, ok)
	}
	if ts, ok := s.PreviousRisingEdge(New(25, Ns)); !ok || !ts.Equal(New(10, Ns)) {
		t.Errorf("PreviousRisingEdge(25) = %v, %v, want 10ns, true", ts, ok)
	}
	if _, ok := s.NextRisingEdge(New(30, Ns)); ok {
		t.Errorf("NextRisingEdge(30) should find nothing strictly after 30ns")
	}
}

func TestSignalEventsBetween(t *testing.T) {
	s := NewSignal("!", "clk", 1)
	s.AddEvent(New(10, Ns), NewInt(1))
	s.AddEvent(New(20, Ns), NewInt(0))
	s.AddEvent(New(30, Ns), NewInt(1))

	before, n, after := s.EventsBetween(New(15, Ns), New(25, Ns))
	if !before.Equal(NewInt(1)) || n != 1 || !after.Equal(NewInt(0)) {
		t.Errorf("EventsBetween(15,25) = %v, %d, %v", before, n, after)
	}
}
