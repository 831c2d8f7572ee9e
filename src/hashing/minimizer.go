package hashing

import (
	"github.com/pkg/errors"

	"github.com/FusaishiHaruaki/LJA/src/seqio"
)

var (
	// ErrWindowTooSmall means a minimizer window of fewer than 2 k-mers was requested
	ErrWindowTooSmall = errors.New("hashing: minimizer window must hold at least 2 k-mers")

	// ErrShortSeq means the sequence cannot hold a single minimizer window
	ErrShortSeq = errors.New("hashing: sequence shorter than k + w - 1")
)

// MinQueue is a monotonic deque of windows, hashes are non-decreasing from front to back
type MinQueue struct {
	q    []KWH
	head int
}

// Push drops every window at the back with a strictly larger hash and appends kwh.
// Windows with an equal hash are kept, so the front is the leftmost minimum.
func (mq *MinQueue) Push(kwh KWH) {
	hash := kwh.Hash()
	for len(mq.q) > mq.head && mq.q[len(mq.q)-1].Hash() > hash {
		mq.q = mq.q[:len(mq.q)-1]
	}
	mq.q = append(mq.q, kwh)
}

// Pop evicts windows from the front that start before pos
func (mq *MinQueue) Pop(pos int) {
	for mq.head < len(mq.q) && mq.q[mq.head].Pos < pos {
		mq.head++
	}
	// reclaim the evicted prefix once it dominates the backing slice
	if mq.head > 64 && mq.head*2 > len(mq.q) {
		n := copy(mq.q, mq.q[mq.head:])
		mq.q = mq.q[:n]
		mq.head = 0
	}
}

// Empty reports whether the queue holds no windows
func (mq *MinQueue) Empty() bool {
	return mq.head == len(mq.q)
}

// Get returns the front (minimum) window
func (mq *MinQueue) Get() KWH {
	return mq.q[mq.head]
}

// Len returns the number of queued windows
func (mq *MinQueue) Len() int {
	return len(mq.q) - mq.head
}

// MinimizerCalculator slides a window of w consecutive k-mers along a sequence and reports the
// minimum canonical hash of each window. It is single use: calling Next consumes the scan.
type MinimizerCalculator struct {
	w     int
	kwh   KWH
	queue MinQueue
}

// NewMinimizerCalculator loads the first window of w k-mers, stats may be nil
func NewMinimizerCalculator(seq seqio.Sequence, hasher *RollingHash, w int, stats *Stats) (*MinimizerCalculator, error) {
	if w < 2 {
		return nil, ErrWindowTooSmall
	}
	if seq.Len() < hasher.K()+w-1 {
		return nil, ErrShortSeq
	}
	mc := &MinimizerCalculator{
		w:   w,
		kwh: NewKWH(hasher, seq, 0).WithStats(stats),
	}
	mc.queue.Push(mc.kwh)
	for i := 1; i < w; i++ {
		mc.kwh = mc.kwh.Next()
		mc.queue.Push(mc.kwh)
	}
	return mc, nil
}

// Current returns the minimizer of the current window
func (mc *MinimizerCalculator) Current() KWH {
	return mc.queue.Get()
}

// HasNext reports whether the window can slide further
func (mc *MinimizerCalculator) HasNext() bool {
	return mc.kwh.HasNext()
}

// Next slides the window by one k-mer and returns its minimizer
func (mc *MinimizerCalculator) Next() KWH {
	mc.kwh = mc.kwh.Next()
	mc.queue.Push(mc.kwh)
	mc.queue.Pop(mc.kwh.Pos - mc.w + 1)
	return mc.queue.Get()
}

// MinimizerHashes returns the minimizer hash of every window, collapsing consecutive repeats
func (mc *MinimizerCalculator) MinimizerHashes() []uint64 {
	res := []uint64{mc.Current().Hash()}
	for mc.HasNext() {
		if val := mc.Next().Hash(); val != res[len(res)-1] {
			res = append(res, val)
		}
	}
	return res
}

// Minimizers returns the minimizer window of every window, collapsing consecutive repeats of a position
func (mc *MinimizerCalculator) Minimizers() []KWH {
	res := []KWH{mc.Current()}
	for mc.HasNext() {
		if val := mc.Next(); val.Pos != res[len(res)-1].Pos {
			res = append(res, val)
		}
	}
	return res
}
