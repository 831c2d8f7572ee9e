package resolve

import (
	"log"

	"github.com/pkg/errors"

	"github.com/FusaishiHaruaki/LJA/src/mdbg"
	"github.com/FusaishiHaruaki/LJA/src/metrics"
	"github.com/FusaishiHaruaki/LJA/src/misc"
)

// ErrLateSplit means a pass after the first would have to split a starting or finishing vertex
var ErrLateSplit = errors.New("starting and finishing vertices can only be split on the first iteration")

// Counts tallies how the vertices of one resolution pass were handled
type Counts struct {
	Collapsed int
	Simple    int
	Complex   int
	Loops     int
}

// RepeatResolver runs resolution passes over a graph, it must not be shared between goroutines
type RepeatResolver struct {
	Graph   *mdbg.Graph
	Logger  *log.Logger
	Metrics *metrics.Recorder
}

// NewRepeatResolver returns a resolver for g, logger and recorder may be nil
func NewRepeatResolver(g *mdbg.Graph, logger *log.Logger, recorder *metrics.Recorder) *RepeatResolver {
	if logger == nil {
		logger = misc.NewLogger(nil)
	}
	return &RepeatResolver{Graph: g, Logger: logger, Metrics: recorder}
}

// CollapseNonBranching merges the two edges through every (1,1) vertex that is not a self loop and
// removes the vertex, returning the number of vertices removed
func (rr *RepeatResolver) CollapseNonBranching() int {
	g := rr.Graph
	collapsed := 0
	for _, v := range g.Vertices() {
		if !g.HasVertex(v) || g.InDegree(v) != 1 || g.OutDegree(v) != 1 {
			continue
		}
		in, out := g.Incoming(v)[0], g.Outgoing(v)[0]
		if in.Vertex == v {
			continue
		}
		g.MergeEdges(v, in.Edge, out.Edge)
		g.RemoveVertex(v)
		rr.Metrics.VertexProcessed("collapsed")
		collapsed++
	}
	return collapsed
}

// CheckSplits returns ErrLateSplit if a pass with iteration weight nIter would meet a (0,>1) or (>1,0)
// vertex, which Resolve treats as fatal
func (rr *RepeatResolver) CheckSplits(nIter int) error {
	if nIter == 1 {
		return nil
	}
	g := rr.Graph
	for _, v := range g.Vertices() {
		indegree, outdegree := g.InDegree(v), g.OutDegree(v)
		if (indegree == 0 && outdegree > 1) || (indegree > 1 && outdegree == 0) {
			return errors.Wrapf(ErrLateSplit, "vertex %d (%d in, %d out), iteration weight %d", v, indegree, outdegree, nIter)
		}
	}
	return nil
}

// Resolve runs one pass with iteration weight nIter. Non-branching vertices are collapsed first, then
// every vertex present at the start of the pass is visited in handle order: full repeats get complex
// processing and the rest simple processing. Vertices holding a single self loop are left alone.
func (rr *RepeatResolver) Resolve(nIter int) Counts {
	g := rr.Graph
	rr.Logger.Printf("resolving repeats (iteration weight %d)", nIter)
	rr.Logger.Printf("\tgraph: %d vertices, %d edges", g.NumVertices(), g.NumEdges())
	counts := Counts{Collapsed: rr.CollapseNonBranching()}
	for _, v := range g.Vertices() {
		if !g.HasVertex(v) {
			continue
		}
		indegree, outdegree := g.InDegree(v), g.OutDegree(v)
		switch {
		case indegree >= 2 && outdegree >= 2:
			res := ProcessComplex(g, v)
			rr.Metrics.VertexProcessed("complex")
			counts.Complex++
			rr.Logger.Printf("\tsplit vertex %d into %d copies, %d connecting edges, %d merges", v, len(res.Split.NewVertices), len(res.Connecting), res.Merged)
		case indegree == 1 && outdegree == 1:
			counts.Loops++
		default:
			ProcessSimple(g, v, nIter)
			rr.Metrics.VertexProcessed("simple")
			counts.Simple++
		}
	}
	rr.Logger.Printf("\tcollapsed: %d, simple: %d, complex: %d, self loops: %d", counts.Collapsed, counts.Simple, counts.Complex, counts.Loops)
	rr.Logger.Printf("\tgraph: %d vertices, %d edges", g.NumVertices(), g.NumEdges())
	return counts
}
