package dbg

import (
	"fmt"
	"strings"
)

// Segment is the part [Left, Right) of an edge's sequence
type Segment struct {
	Edge  *Edge
	Left  int
	Right int
}

// FullSegment covers the whole edge
func FullSegment(e *Edge) Segment {
	return Segment{Edge: e, Left: 0, Right: e.Size()}
}

// Size returns the number of bases in the segment
func (s Segment) Size() int {
	return s.Right - s.Left
}

// RC returns the same bases on the reverse complement edge
func (s Segment) RC() Segment {
	size := s.Edge.Size()
	return Segment{Edge: s.Edge.RC(), Left: size - s.Right, Right: size - s.Left}
}

// String prints the segment as label[left,right)
func (s Segment) String() string {
	return fmt.Sprintf("%s[%d,%d)", s.Edge.Label(), s.Left, s.Right)
}

// GraphAlignment is a walk through the graph, a start vertex followed by segments of consecutive edges.
// Len is the number of bases walked and Size the number of segments.
type GraphAlignment struct {
	start *Vertex
	segs  []Segment
}

// NewGraphAlignment returns the empty walk at start
func NewGraphAlignment(start *Vertex) GraphAlignment {
	return GraphAlignment{start: start}
}

// AlignmentOf returns the walk made of segs, which must not be empty
func AlignmentOf(segs ...Segment) GraphAlignment {
	if len(segs) == 0 {
		panic("an alignment without a start vertex needs at least one segment")
	}
	a := NewGraphAlignment(segs[0].Edge.Start())
	for _, seg := range segs {
		a.Append(seg)
	}
	return a
}

// Append adds seg to the end of the walk, a segment continuing the last one on the same edge is joined to it
func (a *GraphAlignment) Append(seg Segment) {
	if n := len(a.segs); n != 0 && a.segs[n-1].Edge == seg.Edge && a.segs[n-1].Right == seg.Left {
		a.segs[n-1].Right = seg.Right
		return
	}
	if len(a.segs) == 0 && a.start == nil {
		a.start = seg.Edge.Start()
	}
	a.segs = append(a.segs, seg)
}

// Extend appends every segment of other
func (a *GraphAlignment) Extend(other GraphAlignment) {
	if a.start == nil {
		a.start = other.start
	}
	for _, seg := range other.segs {
		a.Append(seg)
	}
}

// RC returns the reverse complement walk
func (a GraphAlignment) RC() GraphAlignment {
	res := GraphAlignment{start: a.Finish().RC(), segs: make([]Segment, len(a.segs))}
	for i, seg := range a.segs {
		res.segs[len(a.segs)-1-i] = seg.RC()
	}
	return res
}

// Size returns the number of segments
func (a GraphAlignment) Size() int {
	return len(a.segs)
}

// Len returns the number of bases covered by the segments
func (a GraphAlignment) Len() int {
	total := 0
	for _, seg := range a.segs {
		total += seg.Size()
	}
	return total
}

// At returns the i-th segment
func (a GraphAlignment) At(i int) Segment {
	return a.segs[i]
}

// Segments returns a copy of the segments
func (a GraphAlignment) Segments() []Segment {
	return append([]Segment(nil), a.segs...)
}

// Start returns the vertex the walk leaves from
func (a GraphAlignment) Start() *Vertex {
	if len(a.segs) == 0 {
		return a.start
	}
	return a.segs[0].Edge.Start()
}

// Finish returns the end vertex of the last edge, or the start of an empty walk
func (a GraphAlignment) Finish() *Vertex {
	if len(a.segs) == 0 {
		return a.start
	}
	return a.segs[len(a.segs)-1].Edge.End()
}

// StartClosed reports whether the walk begins exactly at its start vertex
func (a GraphAlignment) StartClosed() bool {
	return len(a.segs) == 0 || a.segs[0].Left == 0
}

// EndClosed reports whether the walk ends exactly on its finish vertex
func (a GraphAlignment) EndClosed() bool {
	return len(a.segs) == 0 || a.segs[len(a.segs)-1].Right == a.segs[len(a.segs)-1].Edge.Size()
}

// Valid reports whether consecutive segments follow the graph
func (a GraphAlignment) Valid() bool {
	for i, seg := range a.segs {
		if seg.Left < 0 || seg.Right > seg.Edge.Size() || seg.Left >= seg.Right {
			return false
		}
		if i == 0 {
			continue
		}
		prev := a.segs[i-1]
		if prev.Right != prev.Edge.Size() || seg.Left != 0 || prev.Edge.End() != seg.Edge.Start() {
			return false
		}
	}
	return true
}

// Equal reports whether both walks take the same segments from the same start
func (a GraphAlignment) Equal(other GraphAlignment) bool {
	if a.Start() != other.Start() || len(a.segs) != len(other.segs) {
		return false
	}
	for i := range a.segs {
		if a.segs[i] != other.segs[i] {
			return false
		}
	}
	return true
}

// String lists the segments
func (a GraphAlignment) String() string {
	parts := make([]string, len(a.segs))
	for i, seg := range a.segs {
		parts[i] = seg.String()
	}
	return strings.Join(parts, ",")
}
