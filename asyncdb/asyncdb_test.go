package asyncdb

import (
	"strings"
	"testing"

	"zappem.net/pub/wave/dwfv/wave"
)

const sampleVCD = `
$timescale 1 ns $end
$scope module top $end
$var wire 1 ! clk $end
$upscope $end
$enddefinitions $end
$dumpvars
0!
$end
#10
1!
`

func TestParseVCDBecomesReadableBeforeWaitReturns(t *testing.T) {
	db := New()
	db.ParseVCD(strings.NewReader(sampleVCD))
	if err := db.WaitUntilInitialized(); err != nil {
		t.Fatalf("WaitUntilInitialized: %v", err)
	}
	db.Wait()

	v, err := db.ValueAt("!", wave.New(10, wave.Ns))
	if err != nil || !v.Equal(wave.NewInt(1)) {
		t.Errorf("ValueAt(!, 10ns) = %v, %v, want 1", v, err)
	}
}

func TestSearchRunsAfterParseCompletes(t *testing.T) {
	db := New()
	db.ParseVCD(strings.NewReader(sampleVCD))
	db.Wait()

	db.Search("$! is b1")
	db.Wait()

	f, ok, err := db.GetFirstFinding("$! is b1")
	if err != nil || !ok {
		t.Fatalf("GetFirstFinding = %v, %v, %v", f, ok, err)
	}
	if !f.Begin.Equal(wave.New(10, wave.Ns)) {
		t.Errorf("finding begin = %v, want 10ns", f.Begin)
	}
}
