/*
	the seqio package contains custom types and methods for holding and processing sequence data
*/
package seqio

import (
	"fmt"
	"strings"
)

// letters maps a 2-bit code to its nucleotide
const letters = "ACGT"

// codes maps a nucleotide to its 2-bit code, 255 marks anything that is not ACGT
var codes = func() [256]byte {
	var table [256]byte
	for i := range table {
		table[i] = 255
	}
	for i, l := range []byte(letters) {
		table[l] = byte(i)
		table[l+32] = byte(i)
	}
	return table
}()

// complementBases is the lookup table used during reverse complementation of plain text sequence
var complementBases = []byte{
	'A': 'T',
	'T': 'A',
	'C': 'G',
	'G': 'C',
	'N': 'N',
}

// Complement returns the complement of a 2-bit encoded base
func Complement(c byte) byte {
	return 3 - c
}

// Sequence is a read-only view over 2-bit encoded nucleotides (A=0, C=1, G=2, T=3).
// Subseq and RC return new views in O(1), the underlying codes are never copied or mutated.
type Sequence struct {
	codes []byte
	from  int
	n     int
	rc    bool
}

// NewSequence encodes a nucleotide string, anything other than ACGT (either case) is rejected
func NewSequence(s string) (Sequence, error) {
	encoded := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := codes[s[i]]
		if c == 255 {
			return Sequence{}, fmt.Errorf("non ACGT base (%q) at position %d", s[i], i)
		}
		encoded[i] = c
	}
	return Sequence{codes: encoded, n: len(encoded)}, nil
}

// MustSequence is NewSequence for literals, it panics on bad input
func MustSequence(s string) Sequence {
	seq, err := NewSequence(s)
	if err != nil {
		panic(err)
	}
	return seq
}

// Len returns the number of bases in the view
func (s Sequence) Len() int {
	return s.n
}

// At returns the 2-bit code at position i of the view
func (s Sequence) At(i int) byte {
	if s.rc {
		return 3 - s.codes[s.from+s.n-1-i]
	}
	return s.codes[s.from+i]
}

// RC returns the reverse complement view of the sequence
func (s Sequence) RC() Sequence {
	s.rc = !s.rc
	return s
}

// Subseq returns the view of the half-open interval [from, to)
func (s Sequence) Subseq(from, to int) Sequence {
	if from < 0 || to > s.n || from > to {
		panic(fmt.Sprintf("subsequence [%d, %d) out of range for sequence of length %d", from, to, s.n))
	}
	if s.rc {
		return Sequence{codes: s.codes, from: s.from + s.n - to, n: to - from, rc: true}
	}
	return Sequence{codes: s.codes, from: s.from + from, n: to - from}
}

// Equal reports whether two views spell the same bases
func (s Sequence) Equal(other Sequence) bool {
	if s.n != other.n {
		return false
	}
	for i := 0; i < s.n; i++ {
		if s.At(i) != other.At(i) {
			return false
		}
	}
	return true
}

// String spells the view as ACGT text
func (s Sequence) String() string {
	var b strings.Builder
	b.Grow(s.n)
	for i := 0; i < s.n; i++ {
		b.WriteByte(letters[s.At(i)])
	}
	return b.String()
}

// RevComp returns the reverse complement of a plain text sequence, unknown bases become N
func RevComp(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, j := 0, len(seq)-1; j >= 0; i, j = i+1, j-1 {
		base := seq[j]
		if base >= 'a' && base <= 'z' {
			base -= 32
		}
		if int(base) < len(complementBases) && complementBases[base] != 0 {
			out[i] = complementBases[base]
		} else {
			out[i] = 'N'
		}
	}
	return out
}
