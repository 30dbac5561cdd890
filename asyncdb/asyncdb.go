// Package asyncdb composes signaldb, vcd and search into the
// asynchronous facade a TUI needs: a VCD parse and a signal search
// both run as background goroutines against a shared *signaldb.Store
// while the caller keeps reading from it (spec.md §4.8's async
// facade), grounded on the WaitGroup-draining pattern in
// tinkerator-iotracer's sample program.
package asyncdb

import (
	"io"
	"sync"

	"zappem.net/pub/wave/dwfv/signaldb"
	"zappem.net/pub/wave/dwfv/vcd"
	"zappem.net/pub/wave/dwfv/wave"
)

// DB wraps a *signaldb.Store with goroutine-backed ParseVCD and
// Search entry points, and a WaitGroup so a caller can join every
// background task it started before exiting.
type DB struct {
	*signaldb.Store
	wg sync.WaitGroup
}

// New returns an empty, ready-to-use DB.
func New() *DB {
	return &DB{Store: signaldb.NewStore()}
}

// ParseVCD starts parsing r in the background. The store becomes
// readable (ValueAt, EventAt, ...) as soon as WaitUntilInitialized
// returns, typically long before the parse itself finishes.
func (db *DB) ParseVCD(r io.Reader) {
	db.wg.Add(1)
	go func() {
		defer db.wg.Done()
		db.SetStatus("parsing")
		if err := vcd.Parse(r, db.Store); err != nil {
			db.SetStatus(err.Error())
			return
		}
		db.SetStatus("done")
	}()
}

// ParseVCDWithLimit is ParseVCD with an upfront time limit.
func (db *DB) ParseVCDWithLimit(r io.Reader, limit wave.Timestamp) {
	db.wg.Add(1)
	go func() {
		defer db.wg.Done()
		db.SetStatus("parsing")
		if err := vcd.ParseWithLimit(r, db.Store, limit); err != nil {
			db.SetStatus(err.Error())
			return
		}
		db.SetStatus("done")
	}()
}

// Search starts expr running in the background against every
// timestamp currently known to the store, following the same
// init/step/finish sequence a live search would use while a parse is
// still in progress.
func (db *DB) Search(expr string) {
	db.wg.Add(1)
	go func() {
		defer db.wg.Done()
		db.SetStatus("searching " + expr)
		if err := db.SearchInit(expr); err != nil {
			db.SetStatus(err.Error())
			return
		}
		for _, t := range db.GetTimestamps() {
			if err := db.SearchAt(expr, t); err != nil {
				db.SetStatus(err.Error())
				return
			}
		}
		if err := db.FinishSearch(expr); err != nil {
			db.SetStatus(err.Error())
			return
		}
		db.SetStatus("done")
	}()
}

// Wait blocks until every ParseVCD and Search call started on db has
// returned.
func (db *DB) Wait() {
	db.wg.Wait()
}
