package signaldb

import (
	"io"
	"sync"

	"zappem.net/pub/wave/dwfv/search"
)

// Store is the concurrent, in-memory database a VCD parse populates
// and a TUI or search reads from while that parse is still running
// (spec.md §4.8). Each field group is guarded by its own lock so a
// reader never blocks behind an unrelated writer; initialization is
// gated by a condition variable so a reader can block until the
// header has been fully parsed instead of polling.
type Store struct {
	scopeMu sync.RWMutex
	scope   *Scope

	signalsMu sync.RWMutex
	signals   map[string]*Signal

	timestampsMu sync.RWMutex
	timestamps   []Timestamp
	now          Timestamp

	timescaleMu sync.RWMutex
	timescale   Timestamp // one tick's duration: multiplier x scale, e.g. 100ps

	statusMu    sync.Mutex
	statusCond  *sync.Cond
	status      string
	initialized bool
	valid       bool

	searchesMu sync.RWMutex
	searches   map[string]*search.Search
}

// NewStore returns an empty, valid Store with a single timestamp (the
// origin) and a Ps default timescale, matching the state a VCD parse
// starts from before its first "$timescale" directive (spec.md §4.5).
func NewStore() *Store {
	s := &Store{
		scope:      NewScope(""),
		signals:    make(map[string]*Signal),
		timestamps: []Timestamp{Origin()},
		now:        Origin(),
		timescale:  New(1, Ps),
		status:     "waiting for data",
		valid:      true,
		searches:   make(map[string]*search.Search),
	}
	s.statusCond = sync.NewCond(&s.statusMu)
	return s
}

// CreateScope registers the chain of sub-scopes named by path.
func (st *Store) CreateScope(path []string) {
	st.scopeMu.Lock()
	defer st.scopeMu.Unlock()
	st.scope.AddScope(path)
}

// DeclareSignal registers a new signal under the scope at path. A
// redeclaration of the same id overwrites the previous Signal, per
// the Open-Question decision recorded in DESIGN.md: VCD producers
// that re-emit $var for an id are rare and replace-on-redeclare keeps
// the store simple rather than merging histories.
func (st *Store) DeclareSignal(path []string, id, name string, width int) {
	st.scopeMu.Lock()
	st.scope.AddScope(path)
	scope, _ := st.scope.GetScopeByPath(path)
	scope.AddSignal(id)
	st.scopeMu.Unlock()

	st.signalsMu.Lock()
	st.signals[id] = NewSignal(id, name, width)
	st.signalsMu.Unlock()
}

// SignalExists reports whether id names a declared signal.
func (st *Store) SignalExists(id string) bool {
	st.signalsMu.RLock()
	defer st.signalsMu.RUnlock()
	_, ok := st.signals[id]
	return ok
}

// GetSignalIDs returns every declared signal id, unordered.
func (st *Store) GetSignalIDs() []string {
	st.signalsMu.RLock()
	defer st.signalsMu.RUnlock()
	ids := make([]string, 0, len(st.signals))
	for id := range st.signals {
		ids = append(ids, id)
	}
	return ids
}

// GetSignalFullname returns a signal's declared name.
func (st *Store) GetSignalFullname(id string) (string, error) {
	st.signalsMu.RLock()
	defer st.signalsMu.RUnlock()
	sig, ok := st.signals[id]
	if !ok {
		return "", &SignalNotFoundError{SignalID: id}
	}
	return sig.Name, nil
}

// FindSignals returns the ids of every signal matching pred.
func (st *Store) FindSignals(pred func(*Signal) bool) []string {
	st.signalsMu.RLock()
	defer st.signalsMu.RUnlock()
	var out []string
	for id, sig := range st.signals {
		if pred(sig) {
			out = append(out, id)
		}
	}
	return out
}

// SetTime advances the store's current timestamp. Callers (the VCD
// parser) must call it with non-decreasing values; each distinct
// value is appended to the timestamps index used by GetTimestamps.
func (st *Store) SetTime(t Timestamp) {
	st.timestampsMu.Lock()
	defer st.timestampsMu.Unlock()
	if n := len(st.timestamps); n == 0 || st.timestamps[n-1].Less(t) {
		st.timestamps = append(st.timestamps, t)
	}
	st.now = t
}

// Now returns the store's current timestamp.
func (st *Store) Now() Timestamp {
	st.timestampsMu.RLock()
	defer st.timestampsMu.RUnlock()
	return st.now
}

// GetTimestamps returns every distinct timestamp the store has seen,
// in ascending order, as of the call. The slice is a private copy
// safe to range over without holding any lock.
func (st *Store) GetTimestamps() []Timestamp {
	st.timestampsMu.RLock()
	defer st.timestampsMu.RUnlock()
	out := make([]Timestamp, len(st.timestamps))
	copy(out, st.timestamps)
	return out
}

// SetTimescale records the VCD file's declared timescale: one tick's
// duration, multiplier and scale together (e.g. 100ps), not just the
// bare scale, so a "$timescale 100ps" multiplier isn't lost.
func (st *Store) SetTimescale(timescale Timestamp) {
	st.timescaleMu.Lock()
	defer st.timescaleMu.Unlock()
	st.timescale = timescale
}

// GetTimescale returns the store's timescale (one tick's duration).
func (st *Store) GetTimescale() Timestamp {
	st.timescaleMu.RLock()
	defer st.timescaleMu.RUnlock()
	return st.timescale
}

// InsertEvent advances the store's current time to timestamp (as
// SetTime does) and records a value change for id there. Returns
// SignalNotFoundError for an unknown id.
func (st *Store) InsertEvent(id string, timestamp Timestamp, value SignalValue) error {
	st.SetTime(timestamp)
	st.signalsMu.Lock()
	defer st.signalsMu.Unlock()
	sig, ok := st.signals[id]
	if !ok {
		return &SignalNotFoundError{SignalID: id}
	}
	sig.AddEvent(timestamp, value)
	return nil
}

// SetCurrentValue records a value change for id at the store's
// current time (Now()).
func (st *Store) SetCurrentValue(id string, value SignalValue) error {
	return st.InsertEvent(id, st.Now(), value)
}

// ValueAt returns the value in effect for id at timestamp.
func (st *Store) ValueAt(id string, timestamp Timestamp) (SignalValue, error) {
	st.signalsMu.RLock()
	defer st.signalsMu.RUnlock()
	sig, ok := st.signals[id]
	if !ok {
		return SignalValue{}, &SignalNotFoundError{SignalID: id}
	}
	return sig.ValueAt(timestamp), nil
}

// EventAt returns the value recorded for id at exactly timestamp, if
// any event fired there.
func (st *Store) EventAt(id string, timestamp Timestamp) (SignalValue, bool, error) {
	st.signalsMu.RLock()
	defer st.signalsMu.RUnlock()
	sig, ok := st.signals[id]
	if !ok {
		return SignalValue{}, false, &SignalNotFoundError{SignalID: id}
	}
	v, ok := sig.EventAt(timestamp)
	return v, ok, nil
}

// EventsBetween summarizes id's events in [begin, end). If end is
// beyond the store's current time, the range is clamped to invalid
// (a single InvalidValue, zero events) since the data past Now()
// hasn't been parsed yet.
func (st *Store) EventsBetween(id string, begin, end Timestamp) (SignalValue, int, SignalValue, error) {
	if end.Compare(st.Now()) > 0 {
		return InvalidValue(), 0, InvalidValue(), nil
	}
	st.signalsMu.RLock()
	defer st.signalsMu.RUnlock()
	sig, ok := st.signals[id]
	if !ok {
		return SignalValue{}, 0, SignalValue{}, &SignalNotFoundError{SignalID: id}
	}
	before, n, after := sig.EventsBetween(begin, end)
	return before, n, after, nil
}

// GetNextRisingEdge finds id's next rising edge strictly after
// timestamp.
func (st *Store) GetNextRisingEdge(id string, timestamp Timestamp) (Timestamp, bool, error) {
	st.signalsMu.RLock()
	defer st.signalsMu.RUnlock()
	sig, ok := st.signals[id]
	if !ok {
		return Timestamp{}, false, &SignalNotFoundError{SignalID: id}
	}
	t, ok := sig.NextRisingEdge(timestamp)
	return t, ok, nil
}

// GetNextFallingEdge finds id's next falling edge strictly after
// timestamp.
func (st *Store) GetNextFallingEdge(id string, timestamp Timestamp) (Timestamp, bool, error) {
	st.signalsMu.RLock()
	defer st.signalsMu.RUnlock()
	sig, ok := st.signals[id]
	if !ok {
		return Timestamp{}, false, &SignalNotFoundError{SignalID: id}
	}
	t, ok := sig.NextFallingEdge(timestamp)
	return t, ok, nil
}

// GetPreviousRisingEdge finds id's last rising edge strictly before
// timestamp.
func (st *Store) GetPreviousRisingEdge(id string, timestamp Timestamp) (Timestamp, bool, error) {
	st.signalsMu.RLock()
	defer st.signalsMu.RUnlock()
	sig, ok := st.signals[id]
	if !ok {
		return Timestamp{}, false, &SignalNotFoundError{SignalID: id}
	}
	t, ok := sig.PreviousRisingEdge(timestamp)
	return t, ok, nil
}

// GetFirstEvent returns id's earliest recorded event timestamp.
func (st *Store) GetFirstEvent(id string) (Timestamp, bool, error) {
	st.signalsMu.RLock()
	defer st.signalsMu.RUnlock()
	sig, ok := st.signals[id]
	if !ok {
		return Timestamp{}, false, &SignalNotFoundError{SignalID: id}
	}
	t, ok := sig.FirstEvent()
	return t, ok, nil
}

// GetLastEvent returns id's latest recorded event timestamp.
func (st *Store) GetLastEvent(id string) (Timestamp, bool, error) {
	st.signalsMu.RLock()
	defer st.signalsMu.RUnlock()
	sig, ok := st.signals[id]
	if !ok {
		return Timestamp{}, false, &SignalNotFoundError{SignalID: id}
	}
	t, ok := sig.LastEvent()
	return t, ok, nil
}

// MarkInitialized records that the VCD header has been fully parsed
// (its first $enddefinitions or first $dumpvars $end) and releases
// anyone blocked in WaitUntilInitialized.
func (st *Store) MarkInitialized() {
	st.statusMu.Lock()
	st.initialized = true
	st.statusCond.Broadcast()
	st.statusMu.Unlock()
}

// MarkInvalid records that the parse failed; WaitUntilInitialized
// returns an error to every blocked and future caller.
func (st *Store) MarkInvalid() {
	st.statusMu.Lock()
	st.valid = false
	st.initialized = true
	st.statusCond.Broadcast()
	st.statusMu.Unlock()
}

// IsValid reports whether the store is still in a usable state.
func (st *Store) IsValid() bool {
	st.statusMu.Lock()
	defer st.statusMu.Unlock()
	return st.valid
}

// SetStatus records a human-readable status string (shown by a TUI
// status bar, e.g. "parsing", "searching $clk is b1").
func (st *Store) SetStatus(status string) {
	st.statusMu.Lock()
	st.status = status
	st.statusMu.Unlock()
}

// GetStatus returns the current status string.
func (st *Store) GetStatus() string {
	st.statusMu.Lock()
	defer st.statusMu.Unlock()
	return st.status
}

// WaitUntilInitialized blocks until MarkInitialized or MarkInvalid
// has been called, returning an InitializationError in the latter
// case.
func (st *Store) WaitUntilInitialized() error {
	st.statusMu.Lock()
	defer st.statusMu.Unlock()
	for !st.initialized {
		st.statusCond.Wait()
	}
	if !st.valid {
		return &InitializationError{Msg: st.status}
	}
	return nil
}

// Search compiles expr, runs it synchronously across every timestamp
// seen so far, and stores the result under expr for later querying.
func (st *Store) Search(expr string) error {
	s, err := search.Parse(expr)
	if err != nil {
		return err
	}
	if err := s.SearchAll(st, st.GetTimestamps()); err != nil {
		return err
	}
	st.searchesMu.Lock()
	st.searches[expr] = s
	st.searchesMu.Unlock()
	return nil
}

// SearchInit compiles expr and registers it, ready for incremental
// SearchAt calls (the async search driver's entry point).
func (st *Store) SearchInit(expr string) error {
	s, err := search.Parse(expr)
	if err != nil {
		return err
	}
	st.searchesMu.Lock()
	st.searches[expr] = s
	st.searchesMu.Unlock()
	return nil
}

func (st *Store) lookupSearch(expr string) (*search.Search, error) {
	st.searchesMu.RLock()
	defer st.searchesMu.RUnlock()
	s, ok := st.searches[expr]
	if !ok {
		return nil, &SearchNotFoundError{Expr: expr}
	}
	return s, nil
}

// SearchAt folds one more timestamp into an in-progress search
// started with SearchInit.
func (st *Store) SearchAt(expr string, t Timestamp) error {
	s, err := st.lookupSearch(expr)
	if err != nil {
		return err
	}
	return s.SearchAt(st, t)
}

// FinishSearch closes out a search started with SearchInit.
func (st *Store) FinishSearch(expr string) error {
	s, err := st.lookupSearch(expr)
	if err != nil {
		return err
	}
	return s.Finish()
}

// FindingsBetween summarizes expr's findings overlapping [begin, end).
func (st *Store) FindingsBetween(expr string, begin, end Timestamp) (search.FindingsSummary, error) {
	s, err := st.lookupSearch(expr)
	if err != nil {
		return search.FindingsSummary{}, err
	}
	return s.FindingsBetween(begin, end), nil
}

// GetFirstFinding returns expr's earliest finding.
func (st *Store) GetFirstFinding(expr string) (TimeDescr, bool, error) {
	s, err := st.lookupSearch(expr)
	if err != nil {
		return TimeDescr{}, false, err
	}
	f, ok := s.GetFirstFinding()
	return f, ok, nil
}

// GetLastFinding returns expr's latest finding.
func (st *Store) GetLastFinding(expr string) (TimeDescr, bool, error) {
	s, err := st.lookupSearch(expr)
	if err != nil {
		return TimeDescr{}, false, err
	}
	f, ok := s.GetLastFinding()
	return f, ok, nil
}

// GetNextFinding returns expr's first finding strictly after t.
func (st *Store) GetNextFinding(expr string, t Timestamp) (TimeDescr, bool, error) {
	s, err := st.lookupSearch(expr)
	if err != nil {
		return TimeDescr{}, false, err
	}
	f, ok := s.GetNextFinding(t)
	return f, ok, nil
}

// GetPreviousFinding returns expr's last finding strictly before t.
func (st *Store) GetPreviousFinding(expr string, t Timestamp) (TimeDescr, bool, error) {
	s, err := st.lookupSearch(expr)
	if err != nil {
		return TimeDescr{}, false, err
	}
	f, ok := s.GetPreviousFinding(t)
	return f, ok, nil
}

// GetEndOfNextFinding returns the end of expr's first finding at or
// after t.
func (st *Store) GetEndOfNextFinding(expr string, t Timestamp) (Timestamp, bool, error) {
	s, err := st.lookupSearch(expr)
	if err != nil {
		return Timestamp{}, false, err
	}
	end, ok := s.GetEndOfNextFinding(t)
	return end, ok, nil
}

// FormatFindings writes a "# <expr>" header line, then expr's
// findings, one per line.
func (st *Store) FormatFindings(w io.Writer, expr string) error {
	s, err := st.lookupSearch(expr)
	if err != nil {
		return err
	}
	s.FormatFindings(w)
	return nil
}

// FormatStats writes a "# "-prefixed, indented summary of the whole
// scope tree: every scope and signal, depth-first.
func (st *Store) FormatStats(w io.Writer) {
	st.scopeMu.RLock()
	st.signalsMu.RLock()
	defer st.signalsMu.RUnlock()
	defer st.scopeMu.RUnlock()
	st.scope.formatStats(w, st.signals)
}

// FormatValuesAt writes every signal's value at timestamp, indented
// by scope depth.
func (st *Store) FormatValuesAt(w io.Writer, timestamp Timestamp) {
	st.scopeMu.RLock()
	st.signalsMu.RLock()
	defer st.signalsMu.RUnlock()
	defer st.scopeMu.RUnlock()
	st.scope.formatValuesAt(w, st.signals, timestamp)
}

