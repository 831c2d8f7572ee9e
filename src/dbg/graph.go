// Package dbg is the double stranded de Bruijn graph that reads are aligned to.
//
// Every vertex and edge exists together with its reverse complement. An edge spells the sequence that
// follows its start vertex, so its size is the number of bases it adds to a walk, and it shares its
// read coverage with its reverse complement.
package dbg

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"sync/atomic"

	"github.com/cespare/xxhash"

	"github.com/FusaishiHaruaki/LJA/src/seqio"
)

// Vertex is a k-mer
type Vertex struct {
	ID  int
	Seq seqio.Sequence
	rc  *Vertex
	out []*Edge
}

// RC returns the reverse complement vertex, a palindromic k-mer is its own reverse complement
func (v *Vertex) RC() *Vertex {
	return v.rc
}

// Outgoing returns the edges starting at v
func (v *Vertex) Outgoing() []*Edge {
	return append([]*Edge(nil), v.out...)
}

// OutDegree returns the number of edges starting at v
func (v *Vertex) OutDegree() int {
	return len(v.out)
}

// InDegree returns the number of edges ending at v
func (v *Vertex) InDegree() int {
	return len(v.rc.out)
}

// Incoming returns the edges ending at v
func (v *Vertex) Incoming() []*Edge {
	res := make([]*Edge, len(v.rc.out))
	for i, e := range v.rc.out {
		res[i] = e.rc
	}
	return res
}

// Label names the vertex by its id, reverse complements are negative
func (v *Vertex) Label() string {
	return strconv.Itoa(v.ID)
}

// Edge is a walk between two vertices
type Edge struct {
	Name    string
	Forward bool
	Seq     seqio.Sequence
	start   *Vertex
	end     *Vertex
	rc      *Edge
	cov     *int64
}

// Start returns the vertex the edge leaves
func (e *Edge) Start() *Vertex {
	return e.start
}

// End returns the vertex the edge reaches
func (e *Edge) End() *Vertex {
	return e.end
}

// RC returns the reverse complement edge
func (e *Edge) RC() *Edge {
	return e.rc
}

// Size returns the number of bases the edge adds after its start vertex
func (e *Edge) Size() int {
	return e.Seq.Len()
}

// Coverage returns the number of reads traversing the edge on either strand
func (e *Edge) Coverage() int64 {
	return atomic.LoadInt64(e.cov)
}

// AddCoverage changes the read count of the edge and its reverse complement
func (e *Edge) AddCoverage(delta int64) {
	atomic.AddInt64(e.cov, delta)
}

// Label names the oriented edge, e.g. s1+ or s1-
func (e *Edge) Label() string {
	if e.Forward {
		return e.Name + "+"
	}
	return e.Name + "-"
}

// FullSeq spells the start vertex followed by the edge
func (e *Edge) FullSeq() seqio.Sequence {
	return seqio.MustSequence(e.start.Seq.String() + e.Seq.String())
}

// Graph is the double stranded DBG
type Graph struct {
	K        int
	vertices []*Vertex
	edges    []*Edge
	byLabel  map[string]*Edge
}

// NewGraph returns an empty graph for k-mers of length k
func NewGraph(k int) *Graph {
	return &Graph{K: k, byLabel: make(map[string]*Edge)}
}

// AddVertex adds a k-mer and its reverse complement, returning the vertex spelling kmer
func (g *Graph) AddVertex(kmer seqio.Sequence) *Vertex {
	if kmer.Len() != g.K {
		panic(fmt.Sprintf("vertex of length %d in a graph with k=%d", kmer.Len(), g.K))
	}
	id := len(g.vertices) + 1
	v := &Vertex{ID: id, Seq: kmer}
	if kmer.Equal(kmer.RC()) {
		v.rc = v
	} else {
		v.rc = &Vertex{ID: -id, Seq: kmer.RC(), rc: v}
	}
	g.vertices = append(g.vertices, v)
	return v
}

// AddEdge adds the edge spelling seq after start and its reverse complement, returning the forward edge.
// The last k bases of start+seq must spell end.
func (g *Graph) AddEdge(start, end *Vertex, seq seqio.Sequence, name string) *Edge {
	if seq.Len() == 0 {
		panic("edges must add at least one base")
	}
	full := seqio.MustSequence(start.Seq.String() + seq.String())
	if !full.Subseq(full.Len()-g.K, full.Len()).Equal(end.Seq) {
		panic(fmt.Sprintf("edge %s does not end with the k-mer of its end vertex", name))
	}
	if _, ok := g.byLabel[name+"+"]; ok {
		panic(fmt.Sprintf("duplicate edge %s", name))
	}
	cov := new(int64)
	e := &Edge{Name: name, Forward: true, Seq: seq, start: start, end: end, cov: cov}
	rcFull := full.RC()
	rcSeq := rcFull.Subseq(rcFull.Len()-seq.Len(), rcFull.Len())
	if end.rc == start && rcSeq.Equal(seq) {
		e.rc = e
	} else {
		e.rc = &Edge{Name: name, Seq: rcSeq, start: end.rc, end: start.rc, rc: e, cov: cov}
	}
	start.out = append(start.out, e)
	g.edges = append(g.edges, e)
	g.byLabel[e.Label()] = e
	if e.rc == e {
		g.byLabel[name+"-"] = e
	} else {
		end.rc.out = append(end.rc.out, e.rc)
		g.byLabel[e.rc.Label()] = e.rc
	}
	return e
}

// Vertices returns the canonical vertices in insertion order
func (g *Graph) Vertices() []*Vertex {
	return append([]*Vertex(nil), g.vertices...)
}

// Edges returns the forward edges in insertion order
func (g *Graph) Edges() []*Edge {
	return append([]*Edge(nil), g.edges...)
}

// EdgeByLabel looks up an oriented edge by its label
func (g *Graph) EdgeByLabel(label string) (*Edge, bool) {
	e, ok := g.byLabel[label]
	return e, ok
}

// Fingerprint identifies the graph topology by its k, edge names, sizes and endpoints
func (g *Graph) Fingerprint() uint64 {
	lines := make([]string, len(g.edges))
	for i, e := range g.edges {
		lines[i] = fmt.Sprintf("%s\t%d\t%s\t%s", e.Name, e.Size(), e.start.Label(), e.end.Label())
	}
	sort.Strings(lines)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "k=%d\n", g.K)
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return xxhash.Sum64(buf.Bytes())
}
