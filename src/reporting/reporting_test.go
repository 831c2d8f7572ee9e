package reporting

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FusaishiHaruaki/LJA/src/dbg"
	"github.com/FusaishiHaruaki/LJA/src/misc"
	"github.com/FusaishiHaruaki/LJA/src/reads"
)

var (
	// s1 -> s2 -> s4 and s1 -> s3 -> s4, every edge adds 4 bases
	testGFA = "H\tVN:Z:1.0\n" +
		"S\ts1\tAAACGTC\n" +
		"S\ts2\tGTCATGG\n" +
		"S\ts3\tGTCTTGG\n" +
		"S\ts4\tTGGCCCA\n" +
		"L\ts1\t+\ts2\t+\t3M\n" +
		"L\ts1\t+\ts3\t+\t3M\n" +
		"L\ts2\t+\ts4\t+\t3M\n" +
		"L\ts3\t+\ts4\t+\t3M\n"
	testPaths = "r1\t1\t2\ts1+,s2+,s4+\n" +
		"r2\t0\t4\ts1+,s3+,s4+\n" +
		"r3\t0\t3\ts4-,s2-\n" +
		"r4\t1\t3\ts2+\n"
)

func testStorage(t *testing.T) *reads.Storage {
	g, err := dbg.LoadGFA(strings.NewReader(testGFA), 3)
	if err != nil {
		t.Fatal(err)
	}
	s := reads.NewStorage(g)
	if _, err := s.LoadTSV(strings.NewReader(testPaths)); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestProfile(t *testing.T) {
	tests := []struct {
		pileup  []int
		profile string
		gapped  bool
	}{
		{[]int{0, 1, 1, 0, 0, 2, 0}, "1D2M2D1M1D", true},
		{[]int{0, 0, 1, 1}, "2D2M", false},
		{[]int{3, 3}, "2M", false},
		{[]int{1, 0, 0}, "1M2D", false},
		{nil, "", false},
	}
	for _, tt := range tests {
		got, gapped := profile(tt.pileup)
		if got != tt.profile || gapped != tt.gapped {
			t.Errorf("profile(%v) = %v, %v, wanted %v, %v", tt.pileup, got, gapped, tt.profile, tt.gapped)
		}
	}
}

func TestCoverage(t *testing.T) {
	reports := Coverage(testStorage(t))
	expected := []struct {
		label  string
		reads  int
		pileup []int
	}{
		{"s1+", 2, []int{1, 2, 2, 2}},
		{"s2+", 3, []int{1, 3, 3, 2}},
		{"s3+", 1, []int{1, 1, 1, 1}},
		{"s4+", 3, []int{3, 3, 2, 2}},
	}
	if len(reports) != len(expected) {
		t.Fatalf("expected %d edge reports, got %d", len(expected), len(reports))
	}
	for i, want := range expected {
		got := reports[i]
		if got.Label != want.label || got.Reads != want.reads || got.Profile != "4M" || got.Gapped {
			t.Fatalf("unexpected report %+v", got)
		}
		for j := range want.pileup {
			if got.Pileup[j] != want.pileup[j] {
				t.Fatalf("%v: pileup %v, wanted %v", want.label, got.Pileup, want.pileup)
			}
		}
	}
	out := &bytes.Buffer{}
	if err := WriteReport(out, reports[:1]); err != nil {
		t.Fatal(err)
	}
	if out.String() != "s1+\t2\t4\t4M\n" {
		t.Fatalf("unexpected report line %q", out.String())
	}
}

func TestPlots(t *testing.T) {
	dir := t.TempDir()
	s := testStorage(t)
	histogram := filepath.Join(dir, "coverage.png")
	if err := PlotCoverage(s, histogram); err != nil {
		t.Fatal(err)
	}
	if err := misc.CheckFile(histogram); err != nil {
		t.Fatal(err)
	}
	pileup := filepath.Join(dir, "s2.png")
	if err := PlotPileup(Coverage(s)[1], pileup); err != nil {
		t.Fatal(err)
	}
	if err := misc.CheckFile(pileup); err != nil {
		t.Fatal(err)
	}
}
