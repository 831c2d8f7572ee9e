package precorrect

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/FusaishiHaruaki/LJA/src/metrics"
	"github.com/FusaishiHaruaki/LJA/src/misc"
	"github.com/FusaishiHaruaki/LJA/src/reads"
)

// DefaultChunkSize is the number of reads a worker takes at a time
const DefaultChunkSize = 100

// Corrector runs precorrection over a read storage with a pool of workers
type Corrector struct {
	Reliable  float64
	Threads   int
	ChunkSize int
	Logger    *log.Logger
	Metrics   *metrics.Recorder

	// OnRead, if set, is called concurrently once for every read handled
	OnRead func()
}

// NewCorrector returns a corrector using one worker per CPU
func NewCorrector(reliable float64) *Corrector {
	return &Corrector{
		Reliable:  reliable,
		Threads:   runtime.NumCPU(),
		ChunkSize: DefaultChunkSize,
	}
}

// chunk is a half-open range of read indices
type chunk struct {
	from, to int
}

// Run examines every valid read with more than one edge, queues a reroute for each read with at least
// one corrected position and applies them all once the workers are done. It returns the number of
// rerouted reads.
func (c *Corrector) Run(storage *reads.Storage) int {
	logger := c.Logger
	if logger == nil {
		logger = misc.NewLogger(nil)
	}
	threads, chunkSize := max(c.Threads, 1), c.ChunkSize
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	logger.Printf("precorrecting reads")
	logger.Printf("\treliable coverage: %v", c.Reliable)
	logger.Printf("\tworkers: %d", threads)
	start := time.Now()

	chunks := make(chan chunk, threads)
	go func() {
		for from := 0; from < storage.Len(); from += chunkSize {
			chunks <- chunk{from: from, to: min(from+chunkSize, storage.Len())}
		}
		close(chunks)
	}()

	var examined, corrected int64
	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ch := range chunks {
				for i := ch.from; i < ch.to; i++ {
					if c.correctRead(storage, storage.Read(i), &examined) {
						atomic.AddInt64(&corrected, 1)
					}
					if c.OnRead != nil {
						c.OnRead()
					}
				}
			}
		}()
	}
	wg.Wait()

	storage.ApplyCorrections(logger)
	logger.Printf("corrected simple errors in %d reads", corrected)
	c.Metrics.ObservePrecorrection(int(examined), int(corrected), time.Since(start))
	return int(corrected)
}

// correctRead queues the corrected path of one read, reporting whether anything changed
func (c *Corrector) correctRead(storage *reads.Storage, read *reads.AlignedRead, examined *int64) bool {
	if !read.Valid || read.Path.Size() == 1 {
		return false
	}
	atomic.AddInt64(examined, 1)
	path, changed := CorrectPath(read.Path, c.Reliable)
	if changed == 0 {
		return false
	}
	storage.Reroute(read, path, fmt.Sprintf("Precorrection_%d", changed))
	return true
}

// Precorrect runs a Corrector with the given settings over storage
func Precorrect(logger *log.Logger, threads int, storage *reads.Storage, reliable float64) int {
	c := NewCorrector(reliable)
	c.Threads = threads
	c.Logger = logger
	return c.Run(storage)
}
