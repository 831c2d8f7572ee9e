package dbg

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/will-rowe/gfa"

	"github.com/FusaishiHaruaki/LJA/src/seqio"
)

// ReadGFA loads a graph from a GFA file, see LoadGFA
func ReadGFA(fileName string, k int) (*Graph, error) {
	fh, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open graph %v", fileName)
	}
	defer fh.Close()
	return LoadGFA(fh, k)
}

// LoadGFA builds a graph from GFA segments and links. Each segment s becomes the edge s+ (and its
// reverse complement s-), links must overlap by exactly k bases and glue segment ends into vertices.
func LoadGFA(r io.Reader, k int) (*Graph, error) {
	reader, err := gfa.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "can't read gfa")
	}
	myGFA := reader.CollectGFA()
	for {
		line, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "error reading line in gfa")
		}
		if err := line.Add(myGFA); err != nil {
			return nil, errors.Wrap(err, "error adding line to GFA instance")
		}
	}
	segments, err := myGFA.GetSegments()
	if err != nil {
		return nil, err
	}
	links, err := myGFA.GetLinks()
	if err != nil {
		return nil, err
	}

	lookup := make(map[string]int, len(segments))
	seqs := make([]seqio.Sequence, len(segments))
	for i, segment := range segments {
		seq, err := seqio.NewSequence(string(segment.Sequence))
		if err != nil {
			return nil, errors.Wrapf(err, "bad sequence in segment %s", segment.Name)
		}
		if seq.Len() <= k {
			return nil, fmt.Errorf("segment %s must be longer than k (%d)", segment.Name, k)
		}
		if _, ok := lookup[string(segment.Name)]; ok {
			return nil, fmt.Errorf("duplicate segment %s", segment.Name)
		}
		lookup[string(segment.Name)] = i
		seqs[i] = seq
	}

	// endpoint 2i is the first k-mer of segment i and 2i+1 its last k-mer, both read on the forward strand
	kmer := func(endpoint int) seqio.Sequence {
		seq := seqs[endpoint/2]
		if endpoint%2 == 0 {
			return seq.Subseq(0, k)
		}
		return seq.Subseq(seq.Len()-k, seq.Len())
	}
	uf := newParityUnionFind(2 * len(segments))
	for _, l := range links {
		link, err := seqio.ParseGFALink(l)
		if err != nil {
			return nil, err
		}
		if link.Overlap != strconv.Itoa(k)+"M" {
			return nil, fmt.Errorf("link %v has overlap %s, expected %dM", link, link.Overlap, k)
		}
		from, ok := lookup[link.From]
		if !ok {
			return nil, fmt.Errorf("link from unknown segment %s", link.From)
		}
		to, ok := lookup[link.To]
		if !ok {
			return nil, fmt.Errorf("link to unknown segment %s", link.To)
		}
		// the end of from in its orientation meets the start of to in its orientation
		a, pa := 2*from+1, 0
		if link.FromOrient == "-" {
			a, pa = 2*from, 1
		}
		b, pb := 2*to, 0
		if link.ToOrient == "-" {
			b, pb = 2*to+1, 1
		}
		uf.union(a, b, pa^pb)
	}

	g := NewGraph(k)
	vertexOf := make(map[int]*Vertex)
	for endpoint := 0; endpoint < 2*len(segments); endpoint++ {
		root, parity := uf.find(endpoint)
		seq := kmer(endpoint)
		if parity == 1 {
			seq = seq.RC()
		}
		v, ok := vertexOf[root]
		if !ok {
			v = g.AddVertex(seq)
			vertexOf[root] = v
		}
		if !v.Seq.Equal(seq) {
			return nil, fmt.Errorf("linked segment ends disagree at segment %s", segments[endpoint/2].Name)
		}
		if uf.selfRC[root] && v.RC() != v {
			return nil, fmt.Errorf("segment %s is linked to its own reverse complement through a non-palindromic k-mer", segments[endpoint/2].Name)
		}
	}
	vertexAt := func(endpoint int) *Vertex {
		root, parity := uf.find(endpoint)
		if parity == 1 {
			return vertexOf[root].RC()
		}
		return vertexOf[root]
	}
	for i, segment := range segments {
		g.AddEdge(vertexAt(2*i), vertexAt(2*i+1), seqs[i].Subseq(k, seqs[i].Len()), string(segment.Name))
	}
	return g, nil
}

// parityUnionFind groups oriented segment ends, parity 1 means the end reads as the reverse complement of its root
type parityUnionFind struct {
	parent []int
	parity []int
	selfRC map[int]bool
}

func newParityUnionFind(n int) *parityUnionFind {
	uf := &parityUnionFind{parent: make([]int, n), parity: make([]int, n), selfRC: make(map[int]bool)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *parityUnionFind) find(i int) (int, int) {
	if uf.parent[i] == i {
		return i, 0
	}
	root, p := uf.find(uf.parent[i])
	uf.parent[i] = root
	uf.parity[i] ^= p
	return root, uf.parity[i]
}

func (uf *parityUnionFind) union(a, b, parity int) {
	ra, pa := uf.find(a)
	rb, pb := uf.find(b)
	if ra == rb {
		if pa^pb != parity {
			uf.selfRC[ra] = true
		}
		return
	}
	uf.parent[ra] = rb
	uf.parity[ra] = pa ^ pb ^ parity
	if uf.selfRC[ra] {
		uf.selfRC[rb] = true
	}
}
