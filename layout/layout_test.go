package layout

import (
	"bytes"
	"strings"
	"testing"

	"zappem.net/pub/wave/dwfv/signaldb"
)

func TestParseSkipsBlankAndCommentLines(t *testing.T) {
	const src = `
# a comment

signal !
search $! is b1
`
	instrs, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(instrs) != 2 {
		t.Fatalf("Parse() = %v, want 2 instructions", instrs)
	}
	if instrs[0].Kind != KindSignal || instrs[0].Arg != "!" {
		t.Errorf("instrs[0] = %+v, want signal !", instrs[0])
	}
	if instrs[1].Kind != KindSearch || instrs[1].Arg != "$! is b1" {
		t.Errorf("instrs[1] = %+v, want search $! is b1", instrs[1])
	}
}

func TestParseMalformedLineBecomesError(t *testing.T) {
	instrs, err := Parse(strings.NewReader("bogus\nwidget foo\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(instrs) != 2 {
		t.Fatalf("Parse() = %v, want 2 instructions", instrs)
	}
	for _, in := range instrs {
		if in.Kind != KindError {
			t.Errorf("instr = %+v, want KindError", in)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	instrs := []Instr{
		{Kind: KindSignal, Arg: "!"},
		{Kind: KindSearch, Arg: "$! is b1"},
	}
	st := signaldb.NewStore()
	st.DeclareSignal(nil, "!", "clk", 1)

	var buf bytes.Buffer
	if err := Format(&buf, instrs, st); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if !strings.Contains(got, "signal !") || !strings.Contains(got, "search $! is b1") {
		t.Errorf("Format() = %q, missing round-tripped instructions", got)
	}
	if !strings.Contains(got, "# Signals:") {
		t.Errorf("Format() = %q, missing the trailing stats block", got)
	}
}
