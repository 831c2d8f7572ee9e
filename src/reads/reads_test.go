package reads

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/FusaishiHaruaki/LJA/src/dbg"
	"github.com/FusaishiHaruaki/LJA/src/misc"
)

var (
	// s1 -> s2 -> s4 and s1 -> s3 -> s4
	testGFA = "H\tVN:Z:1.0\n" +
		"S\ts1\tAAACGTC\n" +
		"S\ts2\tGTCATGG\n" +
		"S\ts3\tGTCTTGG\n" +
		"S\ts4\tTGGCCCA\n" +
		"L\ts1\t+\ts2\t+\t3M\n" +
		"L\ts1\t+\ts3\t+\t3M\n" +
		"L\ts2\t+\ts4\t+\t3M\n" +
		"L\ts3\t+\ts4\t+\t3M\n"
	testPaths = "# name\tleft\tright\tpath\n" +
		"r1\t1\t2\ts1+,s2+,s4+\n" +
		"r2\t0\t4\ts1+,s3+,s4+\n" +
		"r3\t0\t3\ts4-,s2-\n" +
		"\n" +
		"r4\t1\t3\ts2+\n"
)

func testStorage(t *testing.T) *Storage {
	g, err := dbg.LoadGFA(strings.NewReader(testGFA), 3)
	if err != nil {
		t.Fatal(err)
	}
	s := NewStorage(g)
	n, err := s.LoadTSV(strings.NewReader(testPaths))
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 || s.Len() != 4 {
		t.Fatalf("expected 4 reads, got %d", n)
	}
	return s
}

func edge(t *testing.T, s *Storage, label string) *dbg.Edge {
	e, ok := s.Graph.EdgeByLabel(label)
	if !ok {
		t.Fatalf("no edge %v", label)
	}
	return e
}

func TestLoadTSV(t *testing.T) {
	s := testStorage(t)
	coverage := map[string]int64{"s1+": 2, "s2+": 3, "s3+": 1, "s4+": 3}
	for label, cov := range coverage {
		if got := edge(t, s, label).Coverage(); got != cov {
			t.Errorf("%v has coverage %d, expected %d", label, got, cov)
		}
	}
	r1 := s.Read(0)
	if !r1.Valid || r1.Path.Size() != 3 || r1.Path.At(0).Left != 1 || r1.Path.At(2).Right != 2 {
		t.Fatalf("r1 loaded as %v", r1.Path)
	}
	if r4 := s.Read(3); r4.Path.At(0).Left != 1 || r4.Path.At(0).Right != 3 {
		t.Fatalf("single edge read loaded as %v", r4.Path)
	}
	if _, err := s.LoadTSV(strings.NewReader("r5\t0\t1\ts9+\n")); err == nil {
		t.Fatal("unknown edges should be rejected")
	}
	if _, err := s.LoadTSV(strings.NewReader("r5\t0\ts1+\n")); err == nil {
		t.Fatal("short lines should be rejected")
	}

	disconnected := NewStorage(s.Graph)
	if _, err := disconnected.LoadTSV(strings.NewReader("r6\t0\t4\ts2+,s3+\n")); err != nil {
		t.Fatal(err)
	}
	if disconnected.Read(0).Valid {
		t.Fatal("a disconnected path should be invalid")
	}
}

func TestApplyCorrections(t *testing.T) {
	s := testStorage(t)
	r2 := s.Read(1)
	s1, s2, s4 := edge(t, s, "s1+"), edge(t, s, "s2+"), edge(t, s, "s4+")
	newPath := dbg.AlignmentOf(dbg.FullSegment(s1), dbg.FullSegment(s2), dbg.Segment{Edge: s4, Left: 0, Right: 4})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Reroute(s.Read(2), s.Read(2).Path, "noop")
		}()
	}
	wg.Wait()
	s.Reroute(r2, newPath, "Precorrection_1")
	s.Reroute(s.Read(3), dbg.AlignmentOf(dbg.FullSegment(s4), dbg.FullSegment(s1)), "broken")
	if s.Pending() != 6 || !r2.Path.Equal(s.Read(1).Path) || edge(t, s, "s3+").Coverage() != 1 {
		t.Fatal("reroute should only queue")
	}

	logBuf := &bytes.Buffer{}
	if n := s.ApplyCorrections(misc.NewLogger(logBuf)); n != 5 {
		t.Fatalf("expected 5 applied corrections, got %d", n)
	}
	if !r2.Path.Equal(newPath) {
		t.Fatal("read was not rerouted")
	}
	if edge(t, s, "s3+").Coverage() != 0 || s2.Coverage() != 4 || s4.Coverage() != 3 {
		t.Fatal("coverage was not moved to the new path")
	}
	history := s.History()
	if len(history) != 5 || history[0].Read != "r2" || history[0].Reason != "Precorrection_1" || history[1].Read != "r3" {
		t.Fatalf("unexpected history %v", history)
	}
	if s.Pending() != 0 || !strings.Contains(logBuf.String(), "dropped invalid correction of read r4") {
		t.Fatal("invalid correction was not dropped")
	}
}

func TestWriteTSV(t *testing.T) {
	s := testStorage(t)
	buf := &bytes.Buffer{}
	if err := s.WriteTSV(buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 || lines[0] != "r1\t1\t2\ts1+,s2+,s4+" || lines[2] != "r3\t0\t3\ts4-,s2-" {
		t.Fatalf("unexpected output:\n%v", buf.String())
	}
}

func TestSnapshot(t *testing.T) {
	s := testStorage(t)
	buf := &bytes.Buffer{}
	if err := s.WriteSnapshot(buf); err != nil {
		t.Fatal(err)
	}

	restored := NewStorage(s.Graph)
	n, err := restored.LoadSnapshot(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if n != s.Len() {
		t.Fatalf("restored %d of %d reads", n, s.Len())
	}
	for i := 0; i < n; i++ {
		if !restored.Read(i).Path.Equal(s.Read(i).Path) || restored.Read(i).Name != s.Read(i).Name {
			t.Fatalf("read %d differs after restoring", i)
		}
	}

	other, err := dbg.LoadGFA(strings.NewReader(strings.Replace(testGFA, "TGGCCCA", "TGGCCCAT", 1)), 3)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewStorage(other).LoadSnapshot(bytes.NewReader(buf.Bytes())); err != ErrFingerprintMismatch {
		t.Fatalf("snapshot of another graph should be rejected, got %v", err)
	}
}
