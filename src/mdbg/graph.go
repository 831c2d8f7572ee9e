// Package mdbg is the multiplex de Bruijn graph rewritten during repeat resolution.
//
// Vertices and edges live in an arena and are addressed by integer handles which stay valid for the
// lifetime of the graph. Removed vertices and edges keep their slot (marked removed) so a handle never
// points at something else. Adjacency queries return fresh slices, never views into the graph, so a
// caller can keep iterating a snapshot while it rewires the graph.
package mdbg

import (
	"fmt"
	"sort"

	"github.com/FusaishiHaruaki/LJA/src/seqio"
)

// VertexID is the handle of a vertex
type VertexID int

// EdgeID is the handle of an edge
type EdgeID int

// Vertex is a shared k-mer boundary between edges
type Vertex struct {
	ID           VertexID
	Seq          seqio.Sequence
	Multiplicity int
	in           []EdgeID
	out          []EdgeID
	removed      bool
}

// Edge is a sequence fragment, its sequence starts with the start vertex sequence and ends with the end vertex sequence
type Edge struct {
	ID      EdgeID
	Name    string
	Start   VertexID
	End     VertexID
	Seq     seqio.Sequence
	removed bool
	// synthetic edges were named after their handle
	synthetic bool
}

// Len returns the length of the edge sequence
func (e Edge) Len() int {
	return e.Seq.Len()
}

// Neighbor is one entry of an adjacency snapshot
type Neighbor struct {
	Vertex VertexID
	Edge   EdgeID
}

// Graph is the multiplex DBG
type Graph struct {
	vertices []*Vertex
	edges    []*Edge
	aliases  map[EdgeID]EdgeID
	pairs    map[EdgeID]map[EdgeID]struct{}
	preds    map[EdgeID]map[EdgeID]struct{}
	byName   map[string]EdgeID
}

// NewGraph returns an empty graph
func NewGraph() *Graph {
	return &Graph{
		aliases: make(map[EdgeID]EdgeID),
		pairs:   make(map[EdgeID]map[EdgeID]struct{}),
		preds:   make(map[EdgeID]map[EdgeID]struct{}),
		byName:  make(map[string]EdgeID),
	}
}

func (g *Graph) vertex(v VertexID) *Vertex {
	if int(v) < 0 || int(v) >= len(g.vertices) || g.vertices[v].removed {
		panic(fmt.Sprintf("vertex %d is not in the graph", v))
	}
	return g.vertices[v]
}

func (g *Graph) edge(e EdgeID) *Edge {
	if int(e) < 0 || int(e) >= len(g.edges) || g.edges[e].removed {
		panic(fmt.Sprintf("edge %d is not in the graph", e))
	}
	return g.edges[e]
}

// AddVertex adds a vertex with the given sequence and multiplicity
func (g *Graph) AddVertex(seq seqio.Sequence, multiplicity int) VertexID {
	id := VertexID(len(g.vertices))
	g.vertices = append(g.vertices, &Vertex{ID: id, Seq: seq, Multiplicity: multiplicity})
	return id
}

// AddEdge adds an edge from start to end, an empty name is replaced by one derived from the handle
func (g *Graph) AddEdge(start, end VertexID, seq seqio.Sequence, name string) EdgeID {
	from, to := g.vertex(start), g.vertex(end)
	if seq.Len() < from.Seq.Len() || seq.Len() < to.Seq.Len() {
		panic(fmt.Sprintf("edge sequence of length %d is shorter than its vertices", seq.Len()))
	}
	id := EdgeID(len(g.edges))
	synthetic := name == ""
	if synthetic {
		name = fmt.Sprintf("lja%d", id)
	}
	if _, ok := g.byName[name]; ok {
		panic(fmt.Sprintf("duplicate edge name %q", name))
	}
	g.edges = append(g.edges, &Edge{ID: id, Name: name, Start: start, End: end, Seq: seq, synthetic: synthetic})
	g.byName[name] = id
	from.out = append(from.out, id)
	to.in = append(to.in, id)
	return id
}

// Vertex returns a copy of the vertex
func (g *Graph) Vertex(v VertexID) Vertex {
	vertex := *g.vertex(v)
	vertex.in, vertex.out = nil, nil
	return vertex
}

// Edge returns a copy of the edge
func (g *Graph) Edge(e EdgeID) Edge {
	return *g.edge(e)
}

// HasVertex reports whether v is a live vertex
func (g *Graph) HasVertex(v VertexID) bool {
	return int(v) >= 0 && int(v) < len(g.vertices) && !g.vertices[v].removed
}

// HasEdge reports whether e is a live edge
func (g *Graph) HasEdge(e EdgeID) bool {
	return int(e) >= 0 && int(e) < len(g.edges) && !g.edges[e].removed
}

// EdgeByName looks up a live edge by name
func (g *Graph) EdgeByName(name string) (EdgeID, bool) {
	e, ok := g.byName[name]
	if !ok {
		return 0, false
	}
	e = g.Resolve(e)
	return e, g.HasEdge(e)
}

// Resolve follows merge aliases, returning the live edge that now carries e
func (g *Graph) Resolve(e EdgeID) EdgeID {
	for {
		next, ok := g.aliases[e]
		if !ok {
			return e
		}
		e = next
	}
}

// Vertices returns the live vertex handles in ascending order
func (g *Graph) Vertices() []VertexID {
	ids := []VertexID{}
	for _, v := range g.vertices {
		if !v.removed {
			ids = append(ids, v.ID)
		}
	}
	return ids
}

// Edges returns the live edge handles in ascending order
func (g *Graph) Edges() []EdgeID {
	ids := []EdgeID{}
	for _, e := range g.edges {
		if !e.removed {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// NumVertices returns the number of live vertices
func (g *Graph) NumVertices() int {
	return len(g.Vertices())
}

// NumEdges returns the number of live edges
func (g *Graph) NumEdges() int {
	return len(g.Edges())
}

// InDegree returns the number of edges ending at v
func (g *Graph) InDegree(v VertexID) int {
	return len(g.vertex(v).in)
}

// OutDegree returns the number of edges starting at v
func (g *Graph) OutDegree(v VertexID) int {
	return len(g.vertex(v).out)
}

// Incoming returns the (start vertex, edge) pairs of the edges ending at v, in insertion order
func (g *Graph) Incoming(v VertexID) []Neighbor {
	in := g.vertex(v).in
	res := make([]Neighbor, len(in))
	for i, e := range in {
		res[i] = Neighbor{Vertex: g.edges[e].Start, Edge: e}
	}
	return res
}

// Outgoing returns the (end vertex, edge) pairs of the edges starting at v, in insertion order
func (g *Graph) Outgoing(v VertexID) []Neighbor {
	out := g.vertex(v).out
	res := make([]Neighbor, len(out))
	for i, e := range out {
		res[i] = Neighbor{Vertex: g.edges[e].End, Edge: e}
	}
	return res
}

// IsLoop reports whether e starts and ends at the same vertex
func (g *Graph) IsLoop(e EdgeID) bool {
	edge := g.edge(e)
	return edge.Start == edge.End
}

// GetNewVertex adds a vertex carrying a copy of the sequence of v
func (g *Graph) GetNewVertex(v VertexID, multiplicity int) VertexID {
	return g.AddVertex(g.vertex(v).Seq, multiplicity)
}

// IncreaseVertex adds n to the multiplicity of v
func (g *Graph) IncreaseVertex(v VertexID, n int) {
	g.vertex(v).Multiplicity += n
}

// MoveEdgeStart reattaches the start of e to v
func (g *Graph) MoveEdgeStart(e EdgeID, v VertexID) {
	edge, target := g.edge(e), g.vertex(v)
	if !target.Seq.Equal(g.vertices[edge.Start].Seq) {
		panic(fmt.Sprintf("moving the start of edge %d onto vertex %d with a different sequence", e, v))
	}
	old := g.vertices[edge.Start]
	old.out = removeEdge(old.out, e)
	edge.Start = v
	target.out = append(target.out, e)
}

// MoveEdgeEnd reattaches the end of e to v
func (g *Graph) MoveEdgeEnd(e EdgeID, v VertexID) {
	edge, target := g.edge(e), g.vertex(v)
	if !target.Seq.Equal(g.vertices[edge.End].Seq) {
		panic(fmt.Sprintf("moving the end of edge %d onto vertex %d with a different sequence", e, v))
	}
	old := g.vertices[edge.End]
	old.in = removeEdge(old.in, e)
	edge.End = v
	target.in = append(target.in, e)
}

// AddConnectingEdge adds an edge from one copy of a vertex to another, spelling just the vertex sequence
func (g *Graph) AddConnectingEdge(from, to VertexID) EdgeID {
	if !g.vertex(from).Seq.Equal(g.vertex(to).Seq) {
		panic(fmt.Sprintf("connecting vertices %d and %d with different sequences", from, to))
	}
	return g.AddEdge(from, to, g.vertices[from].Seq, "")
}

// MergeEdges joins in and out through v, which must be the end of in and the start of out.
// The merged edge keeps the handle of in, out becomes an alias of it and v is left without those edges.
// A synthetic in edge takes over the name of out.
func (g *Graph) MergeEdges(v VertexID, in, out EdgeID) EdgeID {
	vertex, inEdge, outEdge := g.vertex(v), g.edge(in), g.edge(out)
	if in == out || inEdge.End != v || outEdge.Start != v {
		panic(fmt.Sprintf("edges %d and %d do not meet at vertex %d", in, out, v))
	}
	overlap := vertex.Seq.Len()
	inEdge.Seq = concat(inEdge.Seq, outEdge.Seq.Subseq(overlap, outEdge.Seq.Len()))

	vertex.in = removeEdge(vertex.in, in)
	vertex.out = removeEdge(vertex.out, out)
	end := g.vertices[outEdge.End]
	for i, e := range end.in {
		if e == out {
			end.in[i] = in
		}
	}
	inEdge.End = outEdge.End
	if inEdge.synthetic && !outEdge.synthetic {
		delete(g.byName, inEdge.Name)
		inEdge.Name, inEdge.synthetic = outEdge.Name, false
		g.byName[inEdge.Name] = in
	}
	outEdge.removed = true
	g.aliases[out] = in
	g.renamePairs(in, out)
	return in
}

// RemoveVertex deletes v, it panics if v still has edges
func (g *Graph) RemoveVertex(v VertexID) {
	vertex := g.vertex(v)
	if len(vertex.in) != 0 || len(vertex.out) != 0 {
		panic(fmt.Sprintf("removing vertex %d with %d incoming and %d outgoing edges", v, len(vertex.in), len(vertex.out)))
	}
	vertex.removed = true
}

// AddEdgePair records that a read traverses e1 directly followed by e2
func (g *Graph) AddEdgePair(e1, e2 EdgeID) {
	e1, e2 = g.Resolve(e1), g.Resolve(e2)
	if g.edge(e1).End != g.edge(e2).Start {
		panic(fmt.Sprintf("edges %d and %d are not consecutive", e1, e2))
	}
	g.pair(e1, e2)
}

// AddReadPath records the edge pairs of every consecutive edges in path
func (g *Graph) AddReadPath(path []EdgeID) {
	for i := 1; i < len(path); i++ {
		g.AddEdgePair(path[i-1], path[i])
	}
}

// EdgePairs returns the compatibility relation at v, in2out maps each incoming edge to the outgoing
// edges reads continue on and out2in is its inverse. Edge lists are sorted.
func (g *Graph) EdgePairs(v VertexID) (in2out, out2in map[EdgeID][]EdgeID) {
	vertex := g.vertex(v)
	outgoing := make(map[EdgeID]bool, len(vertex.out))
	for _, e := range vertex.out {
		outgoing[e] = true
	}
	in2out, out2in = make(map[EdgeID][]EdgeID), make(map[EdgeID][]EdgeID)
	for _, e1 := range sortedEdges(vertex.in) {
		for e2 := range g.pairs[e1] {
			if outgoing[e2] {
				in2out[e1] = append(in2out[e1], e2)
				out2in[e2] = append(out2in[e2], e1)
			}
		}
	}
	for _, list := range in2out {
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	}
	return in2out, out2in
}

// renamePairs moves the pairs recorded for old onto merged, dropping the pair that the merge consumed
func (g *Graph) renamePairs(merged, old EdgeID) {
	g.unpair(merged, old)
	for e := range g.pairs[old] {
		g.unpair(old, e)
		if e == old {
			e = merged
		}
		g.pair(merged, e)
	}
	for e := range g.preds[old] {
		g.unpair(e, old)
		g.pair(e, merged)
	}
}

// pair records e1 -> e2 in both the pair relation and its reverse index
func (g *Graph) pair(e1, e2 EdgeID) {
	if g.pairs[e1] == nil {
		g.pairs[e1] = make(map[EdgeID]struct{})
	}
	g.pairs[e1][e2] = struct{}{}
	if g.preds[e2] == nil {
		g.preds[e2] = make(map[EdgeID]struct{})
	}
	g.preds[e2][e1] = struct{}{}
}

func (g *Graph) unpair(e1, e2 EdgeID) {
	if next, ok := g.pairs[e1]; ok {
		delete(next, e2)
		if len(next) == 0 {
			delete(g.pairs, e1)
		}
	}
	if prev, ok := g.preds[e2]; ok {
		delete(prev, e1)
		if len(prev) == 0 {
			delete(g.preds, e2)
		}
	}
}

func removeEdge(list []EdgeID, e EdgeID) []EdgeID {
	for i, x := range list {
		if x == e {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	panic(fmt.Sprintf("edge %d is not attached here", e))
}

func sortedEdges(list []EdgeID) []EdgeID {
	res := append([]EdgeID(nil), list...)
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// concat joins two sequence views into a new sequence
func concat(a, b seqio.Sequence) seqio.Sequence {
	return seqio.MustSequence(a.String() + b.String())
}
