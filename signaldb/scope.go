package signaldb

import "io"

// ChildKind tags what a Scope's named child is.
type ChildKind int

// Kinds of children a Scope may hold.
const (
	ChildSignal ChildKind = iota
	ChildScope
)

// Scope is a named node in the hierarchical namespace a VCD file
// declares with $scope/$upscope. A scope holds the set of signal ids
// declared directly under it, plus any nested sub-scopes, keyed by
// name.
type Scope struct {
	Name    string
	path    []string
	signals map[string]bool // signal id -> present
	scopes  map[string]*Scope
}

// NewScope creates an empty, unattached Scope.
func NewScope(name string) *Scope {
	return &Scope{
		Name:    name,
		signals: make(map[string]bool),
		scopes:  make(map[string]*Scope),
	}
}

// AddScope idempotently creates the chain of sub-scopes named by path.
func (s *Scope) AddScope(path []string) {
	if len(path) == 0 {
		return
	}
	name := path[0]
	child, ok := s.scopes[name]
	if !ok {
		child = NewScope(name)
		child.path = append(append([]string(nil), s.path...), s.Name)
		s.scopes[name] = child
	}
	child.AddScope(path[1:])
}

// GetScope returns the immediate named sub-scope, if any.
func (s *Scope) GetScope(name string) (*Scope, bool) {
	child, ok := s.scopes[name]
	return child, ok
}

// GetScopeByPath resolves a dotted path of sub-scope names, returning
// the receiver itself for an empty path.
func (s *Scope) GetScopeByPath(path []string) (*Scope, bool) {
	if len(path) == 0 {
		return s, true
	}
	child, ok := s.scopes[path[0]]
	if !ok {
		return nil, false
	}
	return child.GetScopeByPath(path[1:])
}

// AddSignal registers a signal id as a direct child of this scope.
func (s *Scope) AddSignal(signalID string) {
	s.signals[signalID] = true
}

// VisitFunc is called once per scope-tree node during Traverse, in a
// depth-first, name-sorted order. For a signal child, name is the
// signal's id (the store's lookup key); for a scope child, name is
// the sub-scope's own name.
type VisitFunc func(name string, kind ChildKind, depth int)

// Traverse yields every descendant of s, depth-first in name-sorted
// order (signals before sub-scopes at each level, as spec.md §4.4
// describes the stable listing order), as the stable listing used by
// stats and value dumps.
func (s *Scope) Traverse(visit VisitFunc) {
	s.traverse(0, visit)
}

func (s *Scope) traverse(depth int, visit VisitFunc) {
	for _, id := range sortedStringSet(s.signals) {
		visit(id, ChildSignal, depth)
	}
	for _, name := range sortedScopeKeys(s.scopes) {
		visit(name, ChildScope, depth)
		s.scopes[name].traverse(depth+1, visit)
	}
}

func sortedStringSet(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	insertionSort(keys)
	return keys
}

func sortedScopeKeys(m map[string]*Scope) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	insertionSort(keys)
	return keys
}

// insertionSort sorts small string slices without pulling in "sort"'s
// interface-based Sort for this hot traversal path; scope fan-out in
// practice is small.
func insertionSort(keys []string) {
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
}

// formatStats renders the scope tree the way Store.FormatStats wants
// it: a "# "-prefixed, two-space-indented line per node, with signal
// lines delegated to the Signal itself (looked up by id in signals).
func (s *Scope) formatStats(w io.Writer, signals map[string]*Signal) {
	s.Traverse(func(name string, kind ChildKind, depth int) {
		io.WriteString(w, "# ")
		for i := 0; i < depth; i++ {
			io.WriteString(w, "  ")
		}
		switch kind {
		case ChildSignal:
			signals[name].FormatStats(w)
		case ChildScope:
			io.WriteString(w, name+"\n")
		}
	})
}

// formatValuesAt renders the scope tree with each signal's value at
// timestamp, without the "# " stats prefix (spec.md §4.4's
// format_values_at).
func (s *Scope) formatValuesAt(w io.Writer, signals map[string]*Signal, timestamp Timestamp) {
	s.Traverse(func(name string, kind ChildKind, depth int) {
		for i := 0; i < depth; i++ {
			io.WriteString(w, "  ")
		}
		switch kind {
		case ChildSignal:
			signals[name].FormatValueAt(w, timestamp)
		case ChildScope:
			io.WriteString(w, name+"\n")
		}
	})
}
