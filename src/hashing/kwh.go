package hashing

import (
	"fmt"

	"github.com/FusaishiHaruaki/LJA/src/seqio"
)

// KWH (k-mer window hash) is the hash state of one window of a sequence on both strands.
// The reverse hash is the hash of the reverse complement window, which sits at the mirrored
// offset of the reverse complement sequence, so the canonical hash is strand independent.
type KWH struct {
	Pos    int
	hasher *RollingHash
	seq    seqio.Sequence
	fhash  uint64
	rhash  uint64
	stats  *Stats
}

// NewKWH hashes the window of seq starting at pos
func NewKWH(hasher *RollingHash, seq seqio.Sequence, pos int) KWH {
	if pos < 0 || pos+hasher.K() > seq.Len() {
		panic(fmt.Sprintf("window at %d does not fit in a sequence of length %d (k=%d)", pos, seq.Len(), hasher.K()))
	}
	return KWH{
		Pos:    pos,
		hasher: hasher,
		seq:    seq,
		fhash:  hasher.Hash(seq, pos),
		rhash:  hasher.Hash(seq.RC(), seq.Len()-pos-hasher.K()),
	}
}

// WithStats returns a copy of the window that records its operations in stats
func (kwh KWH) WithStats(stats *Stats) KWH {
	kwh.stats = stats
	return kwh
}

// rcPos is the offset of this window on the reverse complement sequence
func (kwh KWH) rcPos() int {
	return kwh.seq.Len() - kwh.Pos - kwh.hasher.K()
}

// Hash returns the canonical hash, min(forward, reverse)
func (kwh KWH) Hash() uint64 {
	if kwh.fhash < kwh.rhash {
		return kwh.fhash
	}
	return kwh.rhash
}

// FHash returns the forward strand hash
func (kwh KWH) FHash() uint64 {
	return kwh.fhash
}

// RHash returns the reverse complement strand hash
func (kwh KWH) RHash() uint64 {
	return kwh.rhash
}

// IsCanonical reports whether the forward strand represents the k-mer
func (kwh KWH) IsCanonical() bool {
	return kwh.fhash < kwh.rhash
}

// Seq returns the k-mer under the window
func (kwh KWH) Seq() seqio.Sequence {
	return kwh.seq.Subseq(kwh.Pos, kwh.Pos+kwh.hasher.K())
}

// RC returns the same window seen from the reverse complement sequence
func (kwh KWH) RC() KWH {
	return KWH{
		Pos:    kwh.rcPos(),
		hasher: kwh.hasher,
		seq:    kwh.seq.RC(),
		fhash:  kwh.rhash,
		rhash:  kwh.fhash,
		stats:  kwh.stats,
	}
}

// ExtendRight returns the canonical hash of the window extended by c on the right, without moving
func (kwh KWH) ExtendRight(c byte) uint64 {
	if kwh.stats != nil {
		kwh.stats.ExtendRight++
	}
	return min(kwh.hasher.ExtendRight(kwh.fhash, c), kwh.hasher.ExtendLeft(kwh.rhash, seqio.Complement(c)))
}

// ExtendLeft returns the canonical hash of the window extended by c on the left, without moving
func (kwh KWH) ExtendLeft(c byte) uint64 {
	if kwh.stats != nil {
		kwh.stats.ExtendLeft++
	}
	return min(kwh.hasher.ExtendLeft(kwh.fhash, c), kwh.hasher.ExtendRight(kwh.rhash, seqio.Complement(c)))
}

// Next returns the window at Pos+1, the caller checks HasNext first
func (kwh KWH) Next() KWH {
	if kwh.stats != nil {
		kwh.stats.Next++
	}
	return KWH{
		Pos:    kwh.Pos + 1,
		hasher: kwh.hasher,
		seq:    kwh.seq,
		fhash:  kwh.hasher.Next(kwh.seq, kwh.Pos, kwh.fhash),
		rhash:  kwh.hasher.Prev(kwh.seq.RC(), kwh.rcPos(), kwh.rhash),
		stats:  kwh.stats,
	}
}

// Prev returns the window at Pos-1, the caller checks HasPrev first
func (kwh KWH) Prev() KWH {
	if kwh.stats != nil {
		kwh.stats.Prev++
	}
	return KWH{
		Pos:    kwh.Pos - 1,
		hasher: kwh.hasher,
		seq:    kwh.seq,
		fhash:  kwh.hasher.Prev(kwh.seq, kwh.Pos, kwh.fhash),
		rhash:  kwh.hasher.Next(kwh.seq.RC(), kwh.rcPos(), kwh.rhash),
		stats:  kwh.stats,
	}
}

// HasNext reports whether Next stays inside the sequence
func (kwh KWH) HasNext() bool {
	if kwh.stats != nil {
		kwh.stats.HasNext++
	}
	return kwh.hasher.HasNext(kwh.seq, kwh.Pos)
}

// HasPrev reports whether Prev stays inside the sequence
func (kwh KWH) HasPrev() bool {
	if kwh.stats != nil {
		kwh.stats.HasPrev++
	}
	return kwh.hasher.HasPrev(kwh.Pos)
}
