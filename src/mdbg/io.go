package mdbg

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
	"github.com/will-rowe/gfa"

	"github.com/FusaishiHaruaki/LJA/src/reads"
	"github.com/FusaishiHaruaki/LJA/src/seqio"
	"github.com/FusaishiHaruaki/LJA/src/version"
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

// LoadGFA builds a graph from GFA content. Every segment becomes an edge and every +/+ link with an
// overlap of k glues the end k-mer of one segment and the start k-mer of the next into a shared vertex.
// Paths are recorded as read evidence for the edge pair relation.
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

	// endpoints 2i and 2i+1 are the start and end k-mers of segment i
	lookup := make(map[string]int, len(segments))
	seqs := make([]seqio.Sequence, len(segments))
	for i, segment := range segments {
		seq, err := seqio.NewSequence(string(segment.Sequence))
		if err != nil {
			return nil, errors.Wrapf(err, "bad sequence in segment %s", segment.Name)
		}
		if seq.Len() < k {
			return nil, fmt.Errorf("segment %s is shorter than k (%d)", segment.Name, k)
		}
		if _, ok := lookup[string(segment.Name)]; ok {
			return nil, fmt.Errorf("duplicate segment %s", segment.Name)
		}
		lookup[string(segment.Name)] = i
		seqs[i] = seq
	}
	uf := newUnionFind(2 * len(segments))
	for _, l := range links {
		link, err := seqio.ParseGFALink(l)
		if err != nil {
			return nil, err
		}
		if link.FromOrient != "+" || link.ToOrient != "+" {
			return nil, fmt.Errorf("only +/+ links are supported (%v)", link)
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
		suffix := seqs[from].Subseq(seqs[from].Len()-k, seqs[from].Len())
		if !suffix.Equal(seqs[to].Subseq(0, k)) {
			return nil, fmt.Errorf("segments %s and %s do not overlap by %d bases", link.From, link.To, k)
		}
		uf.union(2*from+1, 2*to)
	}

	g := NewGraph()
	vertexOf := make(map[int]VertexID)
	endpoint := func(i int) VertexID {
		root := uf.find(i)
		if v, ok := vertexOf[root]; ok {
			return v
		}
		seq := seqs[i/2]
		kmer := seq.Subseq(0, k)
		if i%2 == 1 {
			kmer = seq.Subseq(seq.Len()-k, seq.Len())
		}
		vertexOf[root] = g.AddVertex(kmer, 1)
		return vertexOf[root]
	}
	for i, segment := range segments {
		g.AddEdge(endpoint(2*i), endpoint(2*i+1), seqs[i], string(segment.Name))
	}

	// GetPaths only errors when the GFA holds no P lines
	paths, err := myGFA.GetPaths()
	if err != nil {
		paths = nil
	}
	for _, path := range paths {
		edges := make([]EdgeID, 0, len(path.SegNames))
		for _, seg := range path.SegNames {
			if !bytes.HasSuffix(seg, []byte("+")) {
				return nil, fmt.Errorf("path %s uses a reverse segment (%s)", path.PathName, seg)
			}
			e, ok := g.EdgeByName(string(bytes.TrimSuffix(seg, []byte("+"))))
			if !ok {
				return nil, fmt.Errorf("path %s uses unknown segment %s", path.PathName, seg)
			}
			edges = append(edges, e)
		}
		for i := 1; i < len(edges); i++ {
			if g.Edge(edges[i-1]).End != g.Edge(edges[i]).Start {
				return nil, fmt.Errorf("path %s is not connected in the graph", path.PathName)
			}
		}
		g.AddReadPath(edges)
	}
	return g, nil
}

// LoadReadPaths records the read paths of a TSV path file as edge pairs. A path is read on the forward
// strand when all its labels end in + and backwards when all end in -. Paths mixing strands, naming
// unknown edges or stepping between edges that do not meet are skipped and counted.
func (g *Graph) LoadReadPaths(r io.Reader) (added, skipped int, err error) {
	err = reads.ReadTSV(r, func(rec reads.PathRecord) error {
		path, ok := g.readPath(rec.Labels)
		if !ok {
			skipped++
			return nil
		}
		g.AddReadPath(path)
		added++
		return nil
	})
	return added, skipped, err
}

func (g *Graph) readPath(labels []string) ([]EdgeID, bool) {
	if len(labels) == 0 || labels[0] == "" {
		return nil, false
	}
	orientation := labels[0][len(labels[0])-1]
	path := make([]EdgeID, len(labels))
	for i, label := range labels {
		if !strings.HasSuffix(label, string(orientation)) || (orientation != '+' && orientation != '-') {
			return nil, false
		}
		e, ok := g.EdgeByName(label[:len(label)-1])
		if !ok {
			return nil, false
		}
		if orientation == '-' {
			path[len(labels)-1-i] = e
		} else {
			path[i] = e
		}
	}
	for i := 1; i < len(path); i++ {
		if g.edge(path[i-1]).End != g.edge(path[i]).Start {
			return nil, false
		}
	}
	return path, true
}

// WriteGFA writes every live edge as a segment and links every incoming edge to every outgoing edge of each vertex
func (g *Graph) WriteGFA(w io.Writer) error {
	newGFA := gfa.NewGFA()
	_ = newGFA.AddVersion(1)
	newGFA.AddComment([]byte(fmt.Sprintf("multiplex de Bruijn graph written by lja (version %v)", version.GetVersion())))
	for _, e := range g.Edges() {
		edge := g.edges[e]
		seg, err := gfa.NewSegment([]byte(edge.Name), []byte(edge.Seq.String()))
		if err != nil {
			return err
		}
		if err := seg.Add(newGFA); err != nil {
			return err
		}
	}
	for _, v := range g.Vertices() {
		vertex := g.vertices[v]
		overlap := []byte(strconv.Itoa(vertex.Seq.Len()) + "M")
		for _, in := range vertex.in {
			for _, out := range vertex.out {
				link, err := gfa.NewLink([]byte(g.edges[in].Name), []byte("+"), []byte(g.edges[out].Name), []byte("+"), overlap)
				if err != nil {
					return err
				}
				link.Add(newGFA)
			}
		}
	}
	writer, err := gfa.NewWriter(w, newGFA)
	if err != nil {
		return err
	}
	return newGFA.WriteGFAContent(writer)
}

// WriteDOT writes the graph in graphviz format, vertices are labelled with their multiplicity
func (g *Graph) WriteDOT(w io.Writer) error {
	dot := gographviz.NewGraph()
	if err := dot.SetName("G"); err != nil {
		return err
	}
	if err := dot.SetDir(true); err != nil {
		return err
	}
	for _, v := range g.Vertices() {
		attr := make(map[string]string)
		attr["shape"] = "circle"
		attr["label"] = fmt.Sprintf("\"%d:%d\"", v, g.vertices[v].Multiplicity)
		if err := dot.AddNode("G", strconv.Itoa(int(v)), attr); err != nil {
			return err
		}
	}
	for _, e := range g.Edges() {
		edge := g.edges[e]
		attr := make(map[string]string)
		attr["label"] = fmt.Sprintf("\"%s len:%d\"", edge.Name, edge.Len())
		if err := dot.AddEdge(strconv.Itoa(int(edge.Start)), strconv.Itoa(int(edge.End)), true, attr); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, dot.String())
	return err
}

// unionFind joins GFA segment endpoints into vertices
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(a, b int) {
	uf.parent[uf.find(a)] = uf.find(b)
}
