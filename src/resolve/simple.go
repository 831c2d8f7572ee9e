// Package resolve rewrites a multiplex de Bruijn graph vertex by vertex, splitting vertices that reads
// show to be collapsed repeats and reconnecting their edges following the read evidence.
package resolve

import (
	"fmt"

	"github.com/FusaishiHaruaki/LJA/src/mdbg"
)

// ProcessSimple handles a vertex which is not a full repeat (indegree or outdegree below 2).
// Tips and half-branching vertices only gain nIter multiplicity, starting and finishing vertices
// are split into one vertex per edge, which is only allowed on the first iteration (nIter == 1).
// It panics on a (1,1) vertex, a (>1,>1) vertex or a split requested after the first iteration.
func ProcessSimple(g *mdbg.Graph, v mdbg.VertexID, nIter int) {
	indegree, outdegree := g.InDegree(v), g.OutDegree(v)
	if indegree > 1 && outdegree > 1 {
		panic(fmt.Sprintf("vertex %d (%d in, %d out) needs complex processing", v, indegree, outdegree))
	}
	if indegree == 1 && outdegree == 1 {
		panic(fmt.Sprintf("vertex %d is on a non-branching path", v))
	}
	switch {
	case indegree == 0 && outdegree == 0:
		// isolates are skipped
	case indegree+outdegree == 1:
		// tip, only grows
		g.IncreaseVertex(v, nIter)
	case indegree == 0:
		mustBeFirstIteration(v, nIter)
		for _, nbr := range g.Outgoing(v) {
			g.MoveEdgeStart(nbr.Edge, g.GetNewVertex(v, 1))
		}
		g.RemoveVertex(v)
	case outdegree == 0:
		mustBeFirstIteration(v, nIter)
		for _, nbr := range g.Incoming(v) {
			g.MoveEdgeEnd(nbr.Edge, g.GetNewVertex(v, 1))
		}
		g.RemoveVertex(v)
	default:
		// (1,>1) or (>1,1), splitting is deferred
		g.IncreaseVertex(v, nIter)
	}
}

func mustBeFirstIteration(v mdbg.VertexID, nIter int) {
	if nIter != 1 {
		panic(fmt.Sprintf("vertex %d can only be split on the first iteration (iteration weight %d)", v, nIter))
	}
}
