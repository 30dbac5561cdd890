package signaldb

import (
	"bytes"
	"testing"
)

func TestScopeTraverseOrder(t *testing.T) {
	root := NewScope("")
	root.AddScope([]string{"top", "core"})
	root.AddScope([]string{"top"})
	core, ok := root.GetScopeByPath([]string{"top", "core"})
	if !ok {
		t.Fatal("expected top.core to exist")
	}
	core.AddSignal("#")
	core.AddSignal("!")
	top, _ := root.GetScopeByPath([]string{"top"})
	top.AddSignal("$")

	var got []string
	root.Traverse(func(name string, kind ChildKind, depth int) {
		got = append(got, name)
	})
	// The root has no direct signals of its own, so the first visit is
	// the "top" scope itself (depth 0), then (depth-first) its direct
	// signal "$", then its "core" sub-scope, then core's two signals
	// in sorted order.
	want := []string{"top", "$", "core", "!", "#"}
	if len(got) != len(want) {
		t.Fatalf("Traverse order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Traverse()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScopeFormatStats(t *testing.T) {
	root := NewScope("")
	root.AddScope([]string{"top"})
	top, _ := root.GetScopeByPath([]string{"top"})
	top.AddSignal("!")

	signals := map[string]*Signal{
		"!": NewSignal("!", "clk", 1),
	}
	var buf bytes.Buffer
	root.formatStats(&buf, signals)
	got := buf.String()
	if got == "" {
		t.Fatal("expected non-empty stats output")
	}
	if got[0] != '#' {
		t.Errorf("formatStats output should be \"# \"-prefixed, got %q", got)
	}
}
