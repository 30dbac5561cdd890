package wave

import "testing"

func TestTimestampCompareAcrossScales(t *testing.T) {
	cases := []struct {
		name string
		a, b Timestamp
		want int
	}{
		{"equal same scale", New(100, Ns), New(100, Ns), 0},
		{"equal across scales", New(1, Ns), New(1000, Ps), 0},
		{"less across scales", New(1, Ns), New(2000, Ps), -1},
		{"greater across scales", New(2000, Ps), New(1, Ns), 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Compare(c.b); got != c.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestTimestampAddSub(t *testing.T) {
	a := New(5, Ns)
	b := New(500, Ps)
	sum := a.Add(b)
	if want := New(5500, Ps); !sum.Equal(want) {
		t.Errorf("Add = %v, want %v", sum, want)
	}
	diff := a.Sub(b)
	if want := New(4500, Ps); !diff.Equal(want) {
		t.Errorf("Sub = %v, want %v", diff, want)
	}
}

func TestTimestampRescaleOverflowFallsBack(t *testing.T) {
	huge := New(1<<62, S)
	rescaled := huge.Rescale(Fs)
	if rescaled.ScaleOf() != S {
		t.Errorf("expected best-effort fallback to keep original scale, got %v", rescaled.ScaleOf())
	}
}

func TestTimestampAutoRescale(t *testing.T) {
	t1 := New(5_000_000, Ps)
	rescaled, changed := t1.AutoRescale(1000)
	if !changed {
		t.Fatal("expected a rescale to occur")
	}
	if !rescaled.Equal(t1) {
		t.Errorf("rescaled value changed meaning: %v vs %v", rescaled, t1)
	}
	if got := rescaled.Value(); got < -1000 || got > 1000 {
		t.Errorf("AutoRescale left value %d outside +/-1000", got)
	}
}

func TestTimeDescrString(t *testing.T) {
	p := NewPoint(New(10, Ns))
	if got, want := p.String(), "10ns"; got != want {
		t.Errorf("Point.String() = %q, want %q", got, want)
	}
	r := NewPeriod(New(10, Ns), New(20, Ns))
	if got, want := r.String(), "10ns-20ns"; got != want {
		t.Errorf("Period.String() = %q, want %q", got, want)
	}
}
