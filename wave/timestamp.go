package wave

import "fmt"

// Scale names the unit a Timestamp's raw value is expressed in.
type Scale int

// Scales recognized by the VCD format, ordered from finest to coarsest.
const (
	Fs Scale = iota
	Ps
	Ns
	Us
	Ms
	S
)

// multiplier returns how many femtoseconds make up one unit of the
// scale, i.e. the ratio needed to convert a raw
// value expressed in this scale into femtoseconds.
func (s Scale) multiplier() int64 {
	switch s {
	case Fs:
		return 1
	case Ps:
		return 1000
	case Ns:
		return 1000 * 1000
	case Us:
		return 1000 * 1000 * 1000
	case Ms:
		return 1000 * 1000 * 1000 * 1000
	case S:
		return 1000 * 1000 * 1000 * 1000 * 1000
	default:
		return 1
	}
}

func (s Scale) String() string {
	switch s {
	case Fs:
		return "fs"
	case Ps:
		return "ps"
	case Ns:
		return "ns"
	case Us:
		return "us"
	case Ms:
		return "ms"
	case S:
		return "s"
	default:
		return "?"
	}
}

// maxRescaleRatio bounds the rescale factor this package is willing to
// apply before falling back to the best-effort, unscaled path
// documented in spec.md §3.
const maxRescaleRatio = int64(1) << 50

// Timestamp is a scaled, signed point in time. The zero value is not a
// valid Timestamp; use New or Origin.
type Timestamp struct {
	value int64
	scale Scale
}

// New creates a Timestamp with the given raw value and scale.
func New(value int64, scale Scale) Timestamp {
	return Timestamp{value: value, scale: scale}
}

// Origin is the zero timestamp, expressed in seconds so it compares
// equal to a zero-valued Timestamp at any scale.
func Origin() Timestamp {
	return Timestamp{value: 0, scale: S}
}

// Value returns the raw, scale-relative integer value.
func (t Timestamp) Value() int64 { return t.value }

// ScaleOf returns the scale the value is expressed in.
func (t Timestamp) ScaleOf() Scale { return t.scale }

// Derive builds a new Timestamp with the same scale as the receiver
// and the given raw value.
func (t Timestamp) Derive(v int64) Timestamp {
	return Timestamp{value: v, scale: t.scale}
}

// finerOf returns the finer of two scales (the smaller enum value).
func finerOf(a, b Scale) Scale {
	if a < b {
		return a
	}
	return b
}

// normalize converts both timestamps to the finer of their two
// scales, unless the ratio between the two scales would exceed
// maxRescaleRatio or the rescaled value would overflow int64, in which
// case the coarser operand is returned unscaled (documented
// best-effort per spec.md §3).
func normalize(a, b Timestamp) (Timestamp, Timestamp) {
	target := finerOf(a.scale, b.scale)
	return rescaleBestEffort(a, target), rescaleBestEffort(b, target)
}

func rescaleBestEffort(t Timestamp, target Scale) Timestamp {
	if t.scale == target {
		return t
	}
	if target > t.scale {
		// Coarser target: divide, truncating toward zero.
		return Timestamp{value: t.value / (target.multiplier() / t.scale.multiplier()), scale: target}
	}
	ratio := t.scale.multiplier() / target.multiplier()
	if ratio > maxRescaleRatio {
		return t
	}
	scaled := t.value * ratio
	if scaled/ratio != t.value {
		return t
	}
	return Timestamp{value: scaled, scale: target}
}

// Rescale returns the receiver's value expressed in target's scale,
// subject to the same overflow guard as normalize.
func (t Timestamp) Rescale(target Scale) Timestamp {
	return rescaleBestEffort(t, target)
}

// AutoRescale scales t up (toward coarser units) while its absolute
// value exceeds max, returning the rescaled timestamp and whether any
// rescale occurred.
func (t Timestamp) AutoRescale(max int64) (Timestamp, bool) {
	rescaled := t
	changed := false
	for rescaled.scale < S {
		v := rescaled.value
		if v < 0 {
			v = -v
		}
		if v <= max {
			break
		}
		next := rescaleBestEffort(rescaled, rescaled.scale+1)
		if next.scale == rescaled.scale {
			break
		}
		rescaled = next
		changed = true
	}
	return rescaled, changed
}

// Add returns the sum of two timestamps, normalizing to the finer
// scale first.
func (t Timestamp) Add(other Timestamp) Timestamp {
	a, b := normalize(t, other)
	return Timestamp{value: a.value + b.value, scale: a.scale}
}

// Sub returns the difference of two timestamps, normalizing to the
// finer scale first.
func (t Timestamp) Sub(other Timestamp) Timestamp {
	a, b := normalize(t, other)
	return Timestamp{value: a.value - b.value, scale: a.scale}
}

// Mul returns the receiver's value scaled by an integer factor.
func (t Timestamp) Mul(factor int64) Timestamp {
	return Timestamp{value: t.value * factor, scale: t.scale}
}

// DivTimestamp returns the unsigned count of how many times other
// fits into the receiver, normalizing to the finer scale first.
func (t Timestamp) DivTimestamp(other Timestamp) uint64 {
	a, b := normalize(t, other)
	if b.value == 0 {
		return 0
	}
	q := a.value / b.value
	if q < 0 {
		q = -q
	}
	return uint64(q)
}

// DivInt downscales the timestamp if dividing by n at the current
// scale would otherwise truncate to zero, bottoming out at Fs.
func (t Timestamp) DivInt(n int64) Timestamp {
	if n == 0 {
		return t
	}
	v := t.value
	s := t.scale
	for v/n == 0 && v != 0 && s > Fs {
		next := rescaleBestEffort(Timestamp{value: v, scale: s}, s-1)
		v = next.value
		s = next.scale
	}
	return Timestamp{value: v / n, scale: s}
}

// Compare returns -1, 0 or 1 as the receiver is less than, equal to,
// or greater than other, normalizing to the finer scale first.
func (t Timestamp) Compare(other Timestamp) int {
	a, b := normalize(t, other)
	switch {
	case a.value < b.value:
		return -1
	case a.value > b.value:
		return 1
	default:
		return 0
	}
}

// Less reports whether t < other.
func (t Timestamp) Less(other Timestamp) bool { return t.Compare(other) < 0 }

// Equal reports whether t == other.
func (t Timestamp) Equal(other Timestamp) bool { return t.Compare(other) == 0 }

func (t Timestamp) String() string {
	return fmt.Sprintf("%d%s", t.value, t.scale)
}

// TimeDescr describes a single search finding: either an instant or a
// half-open interval [Begin, End).
type TimeDescr struct {
	Point bool
	At    Timestamp
	Begin Timestamp
	End   Timestamp
}

// NewPoint builds a point finding.
func NewPoint(t Timestamp) TimeDescr {
	return TimeDescr{Point: true, At: t}
}

// NewPeriod builds a half-open interval finding.
func NewPeriod(begin, end Timestamp) TimeDescr {
	return TimeDescr{Point: false, Begin: begin, End: end}
}

func (d TimeDescr) String() string {
	if d.Point {
		return d.At.String()
	}
	return fmt.Sprintf("%s-%s", d.Begin, d.End)
}
