package signaldb

import "zappem.net/pub/wave/dwfv/wave"

// Timestamp, SignalValue and friends are defined in the low-level wave
// package (shared with the search package, which cannot import
// signaldb without creating an import cycle through the Store
// interface it evaluates against) and re-exported here under their
// historical names so the rest of this package reads exactly as the
// original dwfv::signaldb module did.
type (
	Timestamp   = wave.Timestamp
	SignalValue = wave.SignalValue
	BitValue    = wave.BitValue
	ValueFormat = wave.ValueFormat
	Scale       = wave.Scale
	TimeDescr   = wave.TimeDescr
)

// Bit values.
const (
	Low       = wave.Low
	High      = wave.High
	HighZ     = wave.HighZ
	Invalid   = wave.Invalid
	Overflow  = wave.Overflow
	Undefined = wave.Undefined
	Filtered  = wave.Filtered
)

// Display radixes.
const (
	Hex = wave.Hex
	Bin = wave.Bin
)

// Time scales.
const (
	Fs = wave.Fs
	Ps = wave.Ps
	Ns = wave.Ns
	Us = wave.Us
	Ms = wave.Ms
	S  = wave.S
)

// New, Origin, and the SignalValue constructors are re-exported as
// free functions for the same reason.
var (
	New            = wave.New
	Origin         = wave.Origin
	NewInt         = wave.NewInt
	NewDefault     = wave.NewDefault
	FromSymbol     = wave.FromSymbol
	FromBinaryString = wave.FromBinaryString
	FromHex        = wave.FromHex
	InvalidValue   = wave.InvalidValue
	NewPoint       = wave.NewPoint
	NewPeriod      = wave.NewPeriod
)
