package signaldb

import "testing"

func TestStoreDeclareAndQuery(t *testing.T) {
	st := NewStore()
	st.DeclareSignal([]string{"top"}, "!", "clk", 1)
	if !st.SignalExists("!") {
		t.Fatal("expected signal to exist after DeclareSignal")
	}

	st.SetTime(New(10, Ns))
	if err := st.InsertEvent("!", New(10, Ns), NewInt(1)); err != nil {
		t.Fatalf("InsertEvent: %v", err)
	}
	v, err := st.ValueAt("!", New(10, Ns))
	if err != nil {
		t.Fatalf("ValueAt: %v", err)
	}
	if !v.Equal(NewInt(1)) {
		t.Errorf("ValueAt(10ns) = %v, want 1", v)
	}
}

func TestStoreInsertEventUnknownSignal(t *testing.T) {
	st := NewStore()
	if err := st.InsertEvent("?", New(0, Ns), NewInt(0)); err == nil {
		t.Fatal("expected SignalNotFoundError for an undeclared signal")
	}
}

func TestStoreEventsBetweenClampsBeyondNow(t *testing.T) {
	st := NewStore()
	st.DeclareSignal(nil, "!", "clk", 1)
	st.SetTime(New(10, Ns))
	st.InsertEvent("!", New(10, Ns), NewInt(1))

	_, n, _, err := st.EventsBetween("!", New(0, Ns), New(1000, Ns))
	if err != nil {
		t.Fatalf("EventsBetween: %v", err)
	}
	if n != 0 {
		t.Errorf("EventsBetween beyond Now() should clamp to 0 events, got %d", n)
	}
}

func TestStoreWaitUntilInitialized(t *testing.T) {
	st := NewStore()
	done := make(chan error, 1)
	go func() {
		done <- st.WaitUntilInitialized()
	}()
	st.MarkInitialized()
	if err := <-done; err != nil {
		t.Errorf("WaitUntilInitialized returned %v, want nil", err)
	}
}

func TestStoreWaitUntilInitializedInvalid(t *testing.T) {
	st := NewStore()
	done := make(chan error, 1)
	go func() {
		done <- st.WaitUntilInitialized()
	}()
	st.MarkInvalid()
	if err := <-done; err == nil {
		t.Error("WaitUntilInitialized should return an error once the store is marked invalid")
	}
	if st.IsValid() {
		t.Error("IsValid() should be false after MarkInvalid")
	}
}

func TestStoreSearchLevelFinding(t *testing.T) {
	st := NewStore()
	st.DeclareSignal(nil, "!", "clk", 1)
	for _, step := range []struct {
		t int64
		v uint64
	}{{0, 0}, {10, 1}, {20, 0}} {
		ts := New(step.t, Ns)
		st.SetTime(ts)
		st.InsertEvent("!", ts, NewInt(step.v))
	}

	if err := st.Search("$! is b1"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	f, ok, err := st.GetFirstFinding("$! is b1")
	if err != nil || !ok {
		t.Fatalf("GetFirstFinding = %v, %v, %v", f, ok, err)
	}
	if f.Point {
		t.Errorf("expected a level finding to be a Period, got a Point")
	}
	if !f.Begin.Equal(New(10, Ns)) || !f.End.Equal(New(20, Ns)) {
		t.Errorf("finding = [%v, %v), want [10ns, 20ns)", f.Begin, f.End)
	}
}
