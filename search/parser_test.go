package search

import (
	"testing"

	"zappem.net/pub/wave/dwfv/wave"
)

func mustParse(t *testing.T, src string) *Expr {
	t.Helper()
	s, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return s.expr
}

func TestParseEqualityForms(t *testing.T) {
	for _, src := range []string{"$clk is b1", "$clk = b1"} {
		e := mustParse(t, src)
		if e.Kind != KindEqual || e.ID != "clk" {
			t.Errorf("Parse(%q) = %+v, want KindEqual on clk", src, e)
		}
	}
}

func TestParseNotEqualDesugarsToNotEqual(t *testing.T) {
	e := mustParse(t, "$clk != b1")
	if e.Kind != KindNot || e.Operand.Kind != KindEqual || e.Operand.ID != "clk" {
		t.Errorf("Parse(!=) = %+v, want Not(Equal(clk))", e)
	}
}

func TestParseTransitionForms(t *testing.T) {
	for _, src := range []string{"$clk becomes b1", "$clk <- b1"} {
		e := mustParse(t, src)
		if e.Kind != KindTransition || e.ID != "clk" {
			t.Errorf("Parse(%q) = %+v, want KindTransition on clk", src, e)
		}
	}
}

func TestParseChanges(t *testing.T) {
	e := mustParse(t, "$clk changes")
	if e.Kind != KindAnyTransition || e.ID != "clk" {
		t.Errorf("Parse(changes) = %+v, want KindAnyTransition on clk", e)
	}
}

// TestParseBareIDIsAnyTransition covers a "$id" with no relation
// following it: it means the same as "$id changes".
func TestParseBareIDIsAnyTransition(t *testing.T) {
	e := mustParse(t, "$a")
	if e.Kind != KindAnyTransition || e.ID != "a" {
		t.Errorf("Parse($a) = %+v, want KindAnyTransition on a", e)
	}
}

func TestParseBareIDCombinedWithAndOr(t *testing.T) {
	e := mustParse(t, "$a or $b")
	if e.Kind != KindOr || e.Left.Kind != KindAnyTransition || e.Right.Kind != KindAnyTransition {
		t.Errorf("Parse($a or $b) = %+v, want Or(AnyTransition(a), AnyTransition(b))", e)
	}
	e = mustParse(t, "$a and $b")
	if e.Kind != KindAnd || e.Left.Kind != KindAnyTransition || e.Right.Kind != KindAnyTransition {
		t.Errorf("Parse($a and $b) = %+v, want And(AnyTransition(a), AnyTransition(b))", e)
	}
}

func TestParseEqualsAlias(t *testing.T) {
	e := mustParse(t, "$clk equals b1")
	if e.Kind != KindEqual || e.ID != "clk" {
		t.Errorf("Parse(equals) = %+v, want KindEqual on clk", e)
	}
}

func TestParseIsNotAlias(t *testing.T) {
	e := mustParse(t, "$clk is not b1")
	if e.Kind != KindNot || e.Operand.Kind != KindEqual || e.Operand.ID != "clk" {
		t.Errorf("Parse(is not) = %+v, want Not(Equal(clk))", e)
	}
}

func TestParseNot(t *testing.T) {
	e := mustParse(t, "not $clk is b1")
	if e.Kind != KindNot || e.Operand.Kind != KindEqual {
		t.Errorf("Parse(not ...) = %+v, want Not(Equal)", e)
	}
}

func TestParseAndOr(t *testing.T) {
	e := mustParse(t, "$a is b1 and $b is b0")
	if e.Kind != KindAnd {
		t.Fatalf("Parse(and) = %+v, want KindAnd", e)
	}
	e = mustParse(t, "$a is b1 or $b is b0")
	if e.Kind != KindOr {
		t.Fatalf("Parse(or) = %+v, want KindOr", e)
	}
}

func TestParseNandDesugarsToNotAnd(t *testing.T) {
	e := mustParse(t, "$a is b1 nand $b is b0")
	if e.Kind != KindNot || e.Operand.Kind != KindAnd {
		t.Errorf("Parse(nand) = %+v, want Not(And(...))", e)
	}
}

func TestParseParenthesizedTerm(t *testing.T) {
	e := mustParse(t, "($a is b1)")
	if e.Kind != KindEqual || e.ID != "a" {
		t.Errorf("Parse(parenthesized) = %+v, want Equal(a)", e)
	}
}

func TestParseAfterBeforeGates(t *testing.T) {
	e := mustParse(t, "after 10ns")
	if e.Kind != KindAfter || !e.Limit.Equal(wave.New(10, wave.Ns)) {
		t.Errorf("Parse(after 10ns) = %+v, want KindAfter at 10ns", e)
	}
	e = mustParse(t, "before 5")
	if e.Kind != KindBefore || !e.Limit.Equal(wave.New(5, wave.Ps)) {
		t.Errorf("Parse(before 5) = %+v, want KindBefore at 5ps (bare integer defaults to ps)", e)
	}
}

func TestParseValueAgainstAnotherSignal(t *testing.T) {
	e := mustParse(t, "$a is $b")
	if e.Kind != KindEqual || !e.Value.IsID || e.Value.ID != "b" {
		t.Errorf("Parse($a is $b) = %+v, want a Value referencing signal b", e)
	}
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	if _, err := Parse("$a is b1 garbage"); err == nil {
		t.Error("expected a parse error for trailing input")
	}
}

func TestParseRejectsMissingSignalSigil(t *testing.T) {
	if _, err := Parse("clk is b1"); err == nil {
		t.Error("expected a parse error for a relation missing its $ sigil")
	}
}
