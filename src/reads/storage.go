// Package reads holds read alignments to a dbg.Graph and applies corrections to them.
// The storage owns edge coverage: every segment of a valid read path counts one read on its edge.
package reads

import (
	"log"
	"sort"
	"sync"

	"github.com/FusaishiHaruaki/LJA/src/dbg"
	"github.com/FusaishiHaruaki/LJA/src/misc"
)

// AlignedRead is a read and its current walk through the graph
type AlignedRead struct {
	Name  string
	Path  dbg.GraphAlignment
	Valid bool
	index int
}

// Index returns the position of the read in its storage
func (r *AlignedRead) Index() int {
	return r.index
}

// Correction is one applied reroute
type Correction struct {
	Read   string
	Reason string
}

type reroute struct {
	read   *AlignedRead
	path   dbg.GraphAlignment
	reason string
}

// Storage is the set of aligned reads of one graph
type Storage struct {
	Graph   *dbg.Graph
	reads   []*AlignedRead
	mu      sync.Mutex
	queue   []reroute
	history []Correction
}

// NewStorage returns an empty storage for g
func NewStorage(g *dbg.Graph) *Storage {
	return &Storage{Graph: g}
}

// Add stores a read, a non-empty connected path is valid and adds coverage to its edges
func (s *Storage) Add(name string, path dbg.GraphAlignment) *AlignedRead {
	read := &AlignedRead{
		Name:  name,
		Path:  path,
		Valid: path.Size() != 0 && path.Valid(),
		index: len(s.reads),
	}
	if read.Valid {
		addCoverage(path, 1)
	}
	s.reads = append(s.reads, read)
	return read
}

// Len returns the number of reads
func (s *Storage) Len() int {
	return len(s.reads)
}

// Read returns the i-th read
func (s *Storage) Read(i int) *AlignedRead {
	return s.reads[i]
}

// Reroute queues a new path for read, it is safe for concurrent use and changes nothing until ApplyCorrections
func (s *Storage) Reroute(read *AlignedRead, path dbg.GraphAlignment, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, reroute{read: read, path: path, reason: reason})
}

// Pending returns the number of queued reroutes
func (s *Storage) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// ApplyCorrections moves every queued read onto its new path, updating edge coverage, and returns the
// number of reads rerouted. Queued paths that do not follow the graph are dropped.
func (s *Storage) ApplyCorrections(logger *log.Logger) int {
	if logger == nil {
		logger = misc.NewLogger(nil)
	}
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	sort.SliceStable(queue, func(i, j int) bool { return queue[i].read.index < queue[j].read.index })
	applied := 0
	for _, rr := range queue {
		if rr.path.Size() == 0 || !rr.path.Valid() {
			logger.Printf("\tdropped invalid correction of read %v (%v)", rr.read.Name, rr.reason)
			continue
		}
		if rr.read.Valid {
			addCoverage(rr.read.Path, -1)
		}
		addCoverage(rr.path, 1)
		rr.read.Path = rr.path
		rr.read.Valid = true
		s.history = append(s.history, Correction{Read: rr.read.Name, Reason: rr.reason})
		applied++
	}
	logger.Printf("\tapplied %d corrections", applied)
	return applied
}

// History returns the applied corrections in the order they were applied
func (s *Storage) History() []Correction {
	return append([]Correction(nil), s.history...)
}

func addCoverage(path dbg.GraphAlignment, delta int64) {
	for _, seg := range path.Segments() {
		seg.Edge.AddCoverage(delta)
	}
}
