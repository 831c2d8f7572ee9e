package resolve

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/FusaishiHaruaki/LJA/src/mdbg"
	"github.com/FusaishiHaruaki/LJA/src/metrics"
	"github.com/FusaishiHaruaki/LJA/src/misc"
	"github.com/FusaishiHaruaki/LJA/src/seqio"
)

var repeat = seqio.MustSequence("CCC")

// star builds a vertex with nIn incoming and nOut outgoing edges, all to distinct neighbours
func star(nIn, nOut int) (*mdbg.Graph, mdbg.VertexID) {
	g := mdbg.NewGraph()
	v := g.AddVertex(repeat, 1)
	for i := 0; i < nIn; i++ {
		u := g.AddVertex(seqio.MustSequence("AAA"), 1)
		g.AddEdge(u, v, seqio.MustSequence("AAA"+strings.Repeat("T", i+1)+"CCC"), "")
	}
	for i := 0; i < nOut; i++ {
		u := g.AddVertex(seqio.MustSequence("TTT"), 1)
		g.AddEdge(v, u, seqio.MustSequence("CCC"+strings.Repeat("A", i+1)+"TTT"), "")
	}
	return g, v
}

// totalLength sums the lengths of the live edges
func totalLength(g *mdbg.Graph) int {
	total := 0
	for _, e := range g.Edges() {
		total += g.Edge(e).Len()
	}
	return total
}

func mustPanic(t *testing.T, msg string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal(msg)
		}
	}()
	fn()
}

func TestSimpleSplits(t *testing.T) {
	tests := []struct {
		nIn, nOut int
	}{
		{0, 2},
		{2, 0},
		{0, 3},
	}
	for _, tt := range tests {
		g, v := star(tt.nIn, tt.nOut)
		edges, length, vertices := g.Edges(), totalLength(g), g.NumVertices()
		ProcessSimple(g, v, 1)
		if g.HasVertex(v) {
			t.Fatalf("(%d,%d): original vertex survived", tt.nIn, tt.nOut)
		}
		if totalLength(g) != length || len(g.Edges()) != len(edges) {
			t.Fatalf("(%d,%d): edges were not conserved", tt.nIn, tt.nOut)
		}
		for i, e := range g.Edges() {
			if e != edges[i] {
				t.Fatalf("(%d,%d): edge identity changed", tt.nIn, tt.nOut)
			}
		}
		if g.NumVertices() != vertices-1+tt.nIn+tt.nOut {
			t.Fatalf("(%d,%d): expected one new vertex per edge", tt.nIn, tt.nOut)
		}
		for _, e := range edges {
			edge := g.Edge(e)
			fresh := edge.Start
			if tt.nIn > 0 {
				fresh = edge.End
			}
			if g.Vertex(fresh).Multiplicity != 1 || g.InDegree(fresh)+g.OutDegree(fresh) != 1 {
				t.Fatalf("(%d,%d): edge %d does not have its own vertex", tt.nIn, tt.nOut, e)
			}
			if !g.Vertex(fresh).Seq.Equal(repeat) {
				t.Fatal("new vertex should copy the sequence")
			}
		}
	}
}

func TestSimpleGrowth(t *testing.T) {
	tests := []struct {
		nIn, nOut int
	}{
		{1, 0},
		{0, 1},
		{1, 2},
		{2, 1},
	}
	for _, tt := range tests {
		g, v := star(tt.nIn, tt.nOut)
		length, vertices := totalLength(g), g.NumVertices()
		ProcessSimple(g, v, 3)
		if g.Vertex(v).Multiplicity != 4 {
			t.Fatalf("(%d,%d): multiplicity should grow by the iteration weight, got %d", tt.nIn, tt.nOut, g.Vertex(v).Multiplicity)
		}
		if totalLength(g) != length || g.NumVertices() != vertices {
			t.Fatalf("(%d,%d): topology changed", tt.nIn, tt.nOut)
		}
	}

	g, v := star(0, 0)
	ProcessSimple(g, v, 2)
	if g.Vertex(v).Multiplicity != 1 {
		t.Fatal("isolates should be left alone")
	}
}

func TestSimplePreconditions(t *testing.T) {
	g, v := star(1, 1)
	mustPanic(t, "(1,1) vertices should be rejected", func() { ProcessSimple(g, v, 1) })
	g, v = star(2, 2)
	mustPanic(t, "(2,2) vertices should be rejected", func() { ProcessSimple(g, v, 1) })
	g, v = star(0, 2)
	mustPanic(t, "splitting after the first iteration should be rejected", func() { ProcessSimple(g, v, 2) })
	if g.NumVertices() != 3 || !g.HasVertex(v) {
		t.Fatal("a rejected vertex should not be modified")
	}
}

func TestComplexCross(t *testing.T) {
	// in edges 0 and 1, out edges 2 and 3, reads support 0-2 and 1-3
	g, v := star(2, 2)
	g.AddEdgePair(0, 2)
	g.AddEdgePair(1, 3)
	ends := []mdbg.VertexID{g.Edge(2).End, g.Edge(3).End}
	length := totalLength(g)

	res := ProcessComplex(g, v)
	if len(res.Connecting) != 2 {
		t.Fatalf("expected one connecting edge per pair, got %d", len(res.Connecting))
	}
	if g.HasVertex(v) {
		t.Fatal("original vertex survived")
	}
	for _, fresh := range res.Split.NewVertices {
		if g.HasVertex(fresh) && g.InDegree(fresh) == 1 && g.OutDegree(fresh) == 1 {
			t.Fatalf("non-branching copy %d survived", fresh)
		}
	}
	if g.NumEdges() != 2 {
		t.Fatalf("expected two resolved paths, got %d edges", g.NumEdges())
	}
	if g.Edge(0).End != ends[0] || g.Edge(1).End != ends[1] {
		t.Fatal("resolved paths are not connected as the reads say")
	}
	if got := g.Edge(0).Seq.String(); got != "AAATCCCATTT" {
		t.Fatalf("resolved path spells %v", got)
	}
	if g.Resolve(2) != 0 || g.Resolve(3) != 1 || g.Resolve(res.Connecting[0]) != 0 {
		t.Fatal("merged edges should alias the incoming edge")
	}
	// each merge removes one copy of the repeat
	if totalLength(g) != length-2*repeat.Len() {
		t.Fatalf("unexpected total length %d", totalLength(g))
	}
}

func TestComplexUnsupportedEdges(t *testing.T) {
	// only 0-2 is supported, edges 1 and 3 become tips
	g, v := star(2, 2)
	g.AddEdgePair(0, 2)
	res := ProcessComplex(g, v)
	if len(res.Connecting) != 1 || res.Merged != 2 {
		t.Fatalf("unexpected rewiring: %+v", res)
	}
	if g.NumEdges() != 3 {
		t.Fatalf("expected 3 edges, got %d", g.NumEdges())
	}
	in1, out3 := res.Split.InSide[1], res.Split.OutSide[3]
	if g.InDegree(in1) != 1 || g.OutDegree(in1) != 0 || g.InDegree(out3) != 0 || g.OutDegree(out3) != 1 {
		t.Fatal("unsupported edges should dangle from their own copies")
	}
}

func TestComplexLoop(t *testing.T) {
	// a -ea-> v, v -loop-> v, v -eb-> b, reads go ea, loop, eb
	g := mdbg.NewGraph()
	a := g.AddVertex(seqio.MustSequence("AAA"), 1)
	v := g.AddVertex(repeat, 1)
	b := g.AddVertex(seqio.MustSequence("TTT"), 1)
	ea := g.AddEdge(a, v, seqio.MustSequence("AAATCCC"), "ea")
	loop := g.AddEdge(v, v, seqio.MustSequence("CCCGCCC"), "loop")
	eb := g.AddEdge(v, b, seqio.MustSequence("CCCATTT"), "eb")
	g.AddReadPath([]mdbg.EdgeID{ea, loop, eb})

	res := ProcessComplex(g, v)
	if res.Split.InSide[loop] == res.Split.OutSide[loop] {
		t.Fatal("a loop edge should be anchored on both sides")
	}
	if res.Split.EdgeToVertex()[loop] != res.Split.OutSide[loop] {
		t.Fatal("the flattened view should anchor loops on the outgoing side")
	}
	if g.NumEdges() != 1 || g.NumVertices() != 2 {
		t.Fatalf("the loop should unroll into a single path, got %d edges and %d vertices", g.NumEdges(), g.NumVertices())
	}
	edge := g.Edge(ea)
	if edge.Start != a || edge.End != b || edge.Seq.String() != "AAATCCCGCCCATTT" {
		t.Fatalf("unexpected unrolled path %v", edge.Seq.String())
	}
}

func TestComplexKeepsSelfLoop(t *testing.T) {
	// reads only cycle through the loop
	g := mdbg.NewGraph()
	a := g.AddVertex(seqio.MustSequence("AAA"), 1)
	v := g.AddVertex(repeat, 1)
	b := g.AddVertex(seqio.MustSequence("TTT"), 1)
	g.AddEdge(a, v, seqio.MustSequence("AAATCCC"), "ea")
	loop := g.AddEdge(v, v, seqio.MustSequence("CCCGCCC"), "loop")
	g.AddEdge(v, b, seqio.MustSequence("CCCATTT"), "eb")
	g.AddEdgePair(loop, loop)

	res := ProcessComplex(g, v)
	anchor := g.Edge(loop).Start
	if g.Edge(loop).End != anchor || !g.HasVertex(anchor) {
		t.Fatal("the self loop should survive on one copy")
	}
	if g.Incoming(anchor)[0].Vertex != anchor {
		t.Fatal("the surviving copy should only hold the loop")
	}
	if res.Merged != 1 {
		t.Fatalf("expected a single merge, got %d", res.Merged)
	}
}

func TestResolver(t *testing.T) {
	// two copies of a repeat R: A -> x -> R -> C and B -> R -> D, with x non-branching
	gfa := "H\tVN:Z:1.0\n" +
		"S\tA\tAAAGTC\n" +
		"S\tA2\tGTCAGCCC\n" +
		"S\tB\tTTTACCC\n" +
		"S\tC\tCCCGAAA\n" +
		"S\tD\tCCCTTTT\n" +
		"L\tA\t+\tA2\t+\t3M\n" +
		"L\tA2\t+\tC\t+\t3M\n" +
		"L\tA2\t+\tD\t+\t3M\n" +
		"L\tB\t+\tC\t+\t3M\n" +
		"L\tB\t+\tD\t+\t3M\n" +
		"P\tr1\tA+,A2+,C+\t3M,3M\n" +
		"P\tr2\tB+,D+\t3M\n"
	g, err := mdbg.LoadGFA(strings.NewReader(gfa), 3)
	if err != nil {
		t.Fatal(err)
	}
	logBuf := &bytes.Buffer{}
	reg := prometheus.NewRegistry()
	rr := NewRepeatResolver(g, misc.NewLogger(logBuf), metrics.NewRecorder(reg))
	counts := rr.Resolve(1)
	if counts.Collapsed != 1 || counts.Complex != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if g.NumEdges() != 2 {
		t.Fatalf("expected the repeat to resolve into 2 paths, got %d edges", g.NumEdges())
	}
	a, _ := g.EdgeByName("A")
	b, _ := g.EdgeByName("B")
	if got := g.Edge(a).Seq.String(); got != "AAAGTCAGCCCGAAA" {
		t.Fatalf("A resolved into %v", got)
	}
	if got := g.Edge(b).Seq.String(); got != "TTTACCCTTTT" {
		t.Fatalf("B resolved into %v", got)
	}
	for _, v := range g.Vertices() {
		if g.InDegree(v) > 1 || g.OutDegree(v) > 1 {
			t.Fatalf("vertex %d is still branching", v)
		}
	}
	if !strings.Contains(logBuf.String(), "resolving repeats") {
		t.Fatal("resolver did not log")
	}
	summary, err := metrics.Summary(reg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(summary, `lja_vertices_processed_total{kind="complex"} 1`) {
		t.Fatalf("metrics not recorded:\n%v", summary)
	}
}

func TestCheckSplits(t *testing.T) {
	tests := []struct {
		nIn, nOut, nIter int
		late             bool
	}{
		{0, 2, 1, false},
		{0, 2, 2, true},
		{3, 0, 2, true},
		{1, 2, 2, false},
		{2, 2, 3, false},
	}
	for _, tt := range tests {
		g, _ := star(tt.nIn, tt.nOut)
		rr := NewRepeatResolver(g, nil, nil)
		err := rr.CheckSplits(tt.nIter)
		if late := errors.Cause(err) == ErrLateSplit; late != tt.late {
			t.Fatalf("(%d,%d) with weight %d: got %v", tt.nIn, tt.nOut, tt.nIter, err)
		}
		if err != nil && !strings.Contains(err.Error(), "iteration weight") {
			t.Fatalf("error does not name the weight: %v", err)
		}
	}

	// a checked graph resolves without panicking
	g, v := star(0, 2)
	rr := NewRepeatResolver(g, nil, nil)
	if err := rr.CheckSplits(1); err != nil {
		t.Fatal(err)
	}
	if counts := rr.Resolve(1); counts.Simple == 0 || g.HasVertex(v) {
		t.Fatalf("starting vertex was not split: %+v", counts)
	}
}
