package resolve

import (
	"sort"

	"github.com/FusaishiHaruaki/LJA/src/mdbg"
)

// Split records where the edges of a split vertex ended up.
// A loop edge appears in both maps, InSide holds the copy it now ends at and OutSide the copy it starts from.
type Split struct {
	Vertex      mdbg.VertexID
	InSide      map[mdbg.EdgeID]mdbg.VertexID
	OutSide     map[mdbg.EdgeID]mdbg.VertexID
	NewVertices []mdbg.VertexID
}

// EdgeToVertex flattens the split into a single edge to vertex map, the out side wins for loop edges
func (s Split) EdgeToVertex() map[mdbg.EdgeID]mdbg.VertexID {
	res := make(map[mdbg.EdgeID]mdbg.VertexID, len(s.InSide)+len(s.OutSide))
	for e, v := range s.InSide {
		res[e] = v
	}
	for e, v := range s.OutSide {
		res[e] = v
	}
	return res
}

// SplitVertex gives every edge at v its own copy of v with multiplicity 1, incoming edges first.
// v is left without edges.
func SplitVertex(g *mdbg.Graph, v mdbg.VertexID) Split {
	split := Split{
		Vertex:  v,
		InSide:  make(map[mdbg.EdgeID]mdbg.VertexID),
		OutSide: make(map[mdbg.EdgeID]mdbg.VertexID),
	}
	for _, nbr := range g.Incoming(v) {
		fresh := g.GetNewVertex(v, 1)
		g.MoveEdgeEnd(nbr.Edge, fresh)
		split.InSide[nbr.Edge] = fresh
		split.NewVertices = append(split.NewVertices, fresh)
	}
	// a loop edge has already lost its end to an incoming copy but still starts at v
	for _, nbr := range g.Outgoing(v) {
		fresh := g.GetNewVertex(v, 1)
		g.MoveEdgeStart(nbr.Edge, fresh)
		split.OutSide[nbr.Edge] = fresh
		split.NewVertices = append(split.NewVertices, fresh)
	}
	return split
}

// ComplexResult describes the rewiring done by ProcessComplex
type ComplexResult struct {
	Split      Split
	Connecting []mdbg.EdgeID
	Merged     int
}

// ProcessComplex splits v, adds one connecting edge per read supported (incoming, outgoing) edge pair,
// merges the edges through every copy left with one incoming and one outgoing edge (unless that edge
// is a self loop) and removes v.
func ProcessComplex(g *mdbg.Graph, v mdbg.VertexID) ComplexResult {
	in2out, _ := g.EdgePairs(v)
	res := ComplexResult{Split: SplitVertex(g, v)}

	sources := make([]mdbg.EdgeID, 0, len(in2out))
	for e1 := range in2out {
		sources = append(sources, e1)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	for _, e1 := range sources {
		for _, e2 := range in2out[e1] {
			c := g.AddConnectingEdge(res.Split.InSide[e1], res.Split.OutSide[e2])
			g.AddEdgePair(e1, c)
			g.AddEdgePair(c, e2)
			res.Connecting = append(res.Connecting, c)
		}
	}

	for _, fresh := range res.Split.NewVertices {
		if g.InDegree(fresh) != 1 || g.OutDegree(fresh) != 1 {
			continue
		}
		in, out := g.Incoming(fresh)[0], g.Outgoing(fresh)[0]
		if in.Vertex == fresh {
			continue
		}
		g.MergeEdges(fresh, in.Edge, out.Edge)
		g.RemoveVertex(fresh)
		res.Merged++
	}
	g.RemoveVertex(v)
	return res
}
