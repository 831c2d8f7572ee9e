// Package precorrect fixes single read errors in read paths before the graph is simplified.
//
// A position of a read path is only touched when its edge is supported by that read alone and every
// neighbouring edge is reliable. Tips are replaced by the only reliable continuation of the same length
// and bulges by the only reliable detour of about the same length. Whenever the graph offers more than
// one reliable option, or anything in between noise and reliable, the read is left as it is.
package precorrect

import (
	"github.com/FusaishiHaruaki/LJA/src/dbg"
)

// BulgeTolerance is how much longer, or shorter, a bridging path may be than the bulge it replaces
const BulgeTolerance = 20

// FindOnlyPathForward walks from start along the only reliable outgoing edge, for at most maxSize bases.
// It stops when an edge with coverage strictly between 1 and reliable is on offer, when zero or several
// reliable edges leave the current vertex, or on arriving at finish (which may be nil).
func FindOnlyPathForward(start *dbg.Vertex, reliable float64, maxSize int, finish *dbg.Vertex) dbg.GraphAlignment {
	res := dbg.NewGraphAlignment(start)
	size := 0
	for size < maxSize {
		var next *dbg.Edge
		for _, e := range res.Finish().Outgoing() {
			cov := float64(e.Coverage())
			if cov > 1 && cov < reliable {
				next = nil
				break
			}
			if cov >= reliable {
				if next != nil {
					next = nil
					break
				}
				next = e
			}
		}
		if next == nil {
			break
		}
		seg := dbg.Segment{Edge: next, Left: 0, Right: min(maxSize-size, next.Size())}
		res.Append(seg)
		size += seg.Size()
		if finish != nil && res.Finish() == finish {
			break
		}
	}
	return res
}

// PrecorrectTip replaces a read end segment with the reliable walk of exactly its length from the same
// start vertex, or returns the segment unchanged
func PrecorrectTip(seg dbg.Segment, reliable float64) dbg.GraphAlignment {
	res := FindOnlyPathForward(seg.Edge.Start(), reliable, seg.Size(), nil)
	if res.Len() == seg.Size() {
		return res
	}
	return dbg.AlignmentOf(seg)
}

// PrecorrectBulge replaces an edge with the reliable walk between its end vertices, searched forward from
// its start and then backward from its end. The walk must land on the vertex and be longer than the
// edge minus BulgeTolerance. Otherwise the edge itself is returned.
func PrecorrectBulge(bulge *dbg.Edge, reliable float64) dbg.GraphAlignment {
	budget := bulge.Size() + BulgeTolerance
	res := FindOnlyPathForward(bulge.Start(), reliable, budget, bulge.End())
	if res.Size() != 0 && res.Finish() == bulge.End() && res.EndClosed() && res.Len()+BulgeTolerance > bulge.Size() {
		return res
	}
	res = FindOnlyPathForward(bulge.End().RC(), reliable, budget, bulge.Start().RC()).RC()
	if res.Size() != 0 && res.Start() == bulge.Start() && res.StartClosed() && res.Len()+BulgeTolerance > bulge.Size() {
		return res
	}
	return dbg.AlignmentOf(dbg.FullSegment(bulge))
}

// CorrectPath precorrects every position of a read path whose edge has coverage 1 while all of its
// neighbours are reliable. It returns the new path and the number of positions that changed.
func CorrectPath(path dbg.GraphAlignment, reliable float64) (dbg.GraphAlignment, int) {
	corrected := dbg.NewGraphAlignment(path.Start())
	changed := 0
	n := path.Size()
	for i := 0; i < n; i++ {
		seg := path.At(i)
		if seg.Edge.Coverage() != 1 ||
			(i > 0 && float64(path.At(i-1).Edge.Coverage()) < reliable) ||
			(i+1 < n && float64(path.At(i+1).Edge.Coverage()) < reliable) {
			corrected.Append(seg)
			continue
		}
		var correction dbg.GraphAlignment
		switch {
		case i == 0:
			correction = PrecorrectTip(seg.RC(), reliable).RC()
		case i+1 == n:
			correction = PrecorrectTip(seg, reliable)
		default:
			correction = PrecorrectBulge(seg.Edge, reliable)
		}
		if correction.Size() != 1 || correction.At(0).Edge != seg.Edge {
			changed++
		}
		corrected.Extend(correction)
	}
	return corrected, changed
}
