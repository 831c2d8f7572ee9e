// Package hashing contains the double stranded polynomial rolling hash used to index k-mers and the
// sliding window minimizer calculation built on top of it.
//
// All hash arithmetic is done on uint64 and wraps modulo 2^64, this is relied upon when rolling.
package hashing

import (
	"github.com/pkg/errors"

	"github.com/FusaishiHaruaki/LJA/src/seqio"
)

// DefaultBase is the hash base used by the lja commands
const DefaultBase uint64 = 239

var (
	// ErrInvalidK means k < 1
	ErrInvalidK = errors.New("hashing: invalid k-mer size")

	// ErrNotInvertible means the hash base has no inverse modulo 2^64 (the base must be odd)
	ErrNotInvertible = errors.New("hashing: hash base is not invertible modulo 2^64")
)

// pow returns base^p modulo 2^64
func pow(base, p uint64) uint64 {
	result := uint64(1)
	for p > 0 {
		if p&1 == 1 {
			result *= base
		}
		base *= base
		p >>= 1
	}
	return result
}

// RollingHash is the hashing rule for a fixed window length k: hash = sum(seq[pos+i] * base^(k-1-i))
type RollingHash struct {
	k    int
	base uint64
	kpow uint64 // base^(k-1)
	inv  uint64 // base^-1
}

// NewRollingHash is the RollingHash constructor, it fails if base has no multiplicative inverse
func NewRollingHash(k int, base uint64) (*RollingHash, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	// the units of Z/2^64 form a group of order 2^63, so base^(2^63-1) is the inverse of any odd base
	inv := pow(base, 1<<63-1)
	if inv*base != 1 {
		return nil, errors.Wrapf(ErrNotInvertible, "base: %d", base)
	}
	return &RollingHash{
		k:    k,
		base: base,
		kpow: pow(base, uint64(k-1)),
		inv:  inv,
	}, nil
}

// K returns the window length
func (rh *RollingHash) K() int {
	return rh.k
}

// Base returns the hash base
func (rh *RollingHash) Base() uint64 {
	return rh.base
}

// ExtensionHash returns the rule for windows one base longer
func (rh *RollingHash) ExtensionHash() *RollingHash {
	return &RollingHash{
		k:    rh.k + 1,
		base: rh.base,
		kpow: rh.kpow * rh.base,
		inv:  rh.inv,
	}
}

// Hash computes the hash of the window starting at pos from scratch
func (rh *RollingHash) Hash(seq seqio.Sequence, pos int) uint64 {
	var hash uint64
	for i := pos; i < pos+rh.k; i++ {
		hash = hash*rh.base + uint64(seq.At(i))
	}
	return hash
}

// ExtendRight returns the (k+1)-window hash after appending c
func (rh *RollingHash) ExtendRight(hash uint64, c byte) uint64 {
	return hash*rh.base + uint64(c)
}

// ExtendLeft returns the (k+1)-window hash after prepending c
func (rh *RollingHash) ExtendLeft(hash uint64, c byte) uint64 {
	return hash + uint64(c)*rh.kpow*rh.base
}

// ShiftRight drops seq[pos] from the window at pos and appends c
func (rh *RollingHash) ShiftRight(seq seqio.Sequence, pos int, hash uint64, c byte) uint64 {
	return (hash-rh.kpow*uint64(seq.At(pos)))*rh.base + uint64(c)
}

// ShiftLeft drops the last base of the window at pos and prepends c
func (rh *RollingHash) ShiftLeft(seq seqio.Sequence, pos int, hash uint64, c byte) uint64 {
	return (hash-uint64(seq.At(pos+rh.k-1)))*rh.inv + uint64(c)*rh.kpow
}

// Next returns the hash of the window at pos+1
func (rh *RollingHash) Next(seq seqio.Sequence, pos int, hash uint64) uint64 {
	return rh.ShiftRight(seq, pos, hash, seq.At(pos+rh.k))
}

// Prev returns the hash of the window at pos-1
func (rh *RollingHash) Prev(seq seqio.Sequence, pos int, hash uint64) uint64 {
	return rh.ShiftLeft(seq, pos, hash, seq.At(pos-1))
}

// HasNext reports whether the window at pos+1 fits in seq
func (rh *RollingHash) HasNext(seq seqio.Sequence, pos int) bool {
	return pos+rh.k < seq.Len()
}

// HasPrev reports whether there is a window at pos-1
func (rh *RollingHash) HasPrev(pos int) bool {
	return pos > 0
}
