package hashing

// Stats counts the window operations performed during a scan.
// A Stats value is owned by a single scan and is not safe for concurrent use,
// totals from independent scans are combined with Add.
type Stats struct {
	Next        uint64
	Prev        uint64
	ExtendRight uint64
	ExtendLeft  uint64
	HasNext     uint64
	HasPrev     uint64
}

// Add accumulates the counts from other
func (s *Stats) Add(other Stats) {
	s.Next += other.Next
	s.Prev += other.Prev
	s.ExtendRight += other.ExtendRight
	s.ExtendLeft += other.ExtendLeft
	s.HasNext += other.HasNext
	s.HasPrev += other.HasPrev
}

// Counts returns the counters keyed by operation name
func (s Stats) Counts() map[string]uint64 {
	return map[string]uint64{
		"next":         s.Next,
		"prev":         s.Prev,
		"extend_right": s.ExtendRight,
		"extend_left":  s.ExtendLeft,
		"has_next":     s.HasNext,
		"has_prev":     s.HasPrev,
	}
}
