package pipeline

/*
 this part of the pipeline reads sequences, sketches them with canonical minimizers and writes the sketches out
*/

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/FusaishiHaruaki/LJA/src/hashing"
	"github.com/FusaishiHaruaki/LJA/src/misc"
	"github.com/FusaishiHaruaki/LJA/src/seqio"
)

// indexedRecord is a sequence and its position in the input
type indexedRecord struct {
	index int
	seqio.Record
}

// sketch holds the minimizers of one sequence, nil minimizers mark a sequence too short to sketch
type sketch struct {
	index      int
	name       string
	minimizers []hashing.KWH
}

// SequenceStreamer is a pipeline process that streams sequence records from files or STDIN
type SequenceStreamer struct {
	info   *Info
	input  []string
	output chan indexedRecord
}

// NewSequenceStreamer is the constructor
func NewSequenceStreamer(info *Info) *SequenceStreamer {
	return &SequenceStreamer{info: info, output: make(chan indexedRecord, BUFFERSIZE)}
}

// Connect is the method to connect the SequenceStreamer to some FASTA/FASTQ files, none means STDIN (FASTA)
func (proc *SequenceStreamer) Connect(input []string) {
	proc.input = input
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *SequenceStreamer) Run() {
	defer close(proc.output)
	logger := proc.info.Logger()
	logger.Printf("now streaming sequences...")
	count := 0
	send := func(rec seqio.Record) error {
		proc.output <- indexedRecord{index: count, Record: rec}
		count++
		return nil
	}
	if len(proc.input) == 0 {
		skipped, err := seqio.Read(bufio.NewReader(os.Stdin), false, send)
		misc.ErrorCheck(err)
		if skipped != 0 {
			logger.Printf("\tskipped %d records from STDIN with non ACGT bases", skipped)
		}
	}
	for _, fileName := range proc.input {
		skipped, err := seqio.ReadFile(fileName, send)
		misc.ErrorCheck(err)
		if skipped != 0 {
			logger.Printf("\tskipped %d records from %v with non ACGT bases", skipped, fileName)
		}
	}
	logger.Printf("\tnumber of sequences received from input: %d", count)
}

// MinimizerSketcher is a pipeline process that finds the minimizers of each sequence with a pool of workers
type MinimizerSketcher struct {
	info   *Info
	hasher *hashing.RollingHash
	input  chan indexedRecord
	output chan sketch
}

// NewMinimizerSketcher is the constructor, it checks the k-mer size and hash base held in info
func NewMinimizerSketcher(info *Info) (*MinimizerSketcher, error) {
	if info.Minimizers.WindowSize < 2 {
		return nil, hashing.ErrWindowTooSmall
	}
	hasher, err := hashing.NewRollingHash(info.KmerSize, info.Minimizers.Base)
	if err != nil {
		return nil, err
	}
	return &MinimizerSketcher{info: info, hasher: hasher, output: make(chan sketch, BUFFERSIZE)}, nil
}

// Connect is the method to join the input of this process with the output of a SequenceStreamer
func (proc *MinimizerSketcher) Connect(previous *SequenceStreamer) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *MinimizerSketcher) Run() {
	defer close(proc.output)
	var wg sync.WaitGroup
	var mu sync.Mutex
	total := hashing.Stats{}
	for i := 0; i < max(proc.info.NumProc, 1); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats := hashing.Stats{}
			for rec := range proc.input {
				sk := sketch{index: rec.index, name: rec.Name}
				mc, err := hashing.NewMinimizerCalculator(rec.Seq, proc.hasher, proc.info.Minimizers.WindowSize, &stats)
				if err == nil {
					sk.minimizers = mc.Minimizers()
				}
				proc.output <- sk
			}
			mu.Lock()
			total.Add(stats)
			mu.Unlock()
		}()
	}
	wg.Wait()
	proc.info.Metrics().AddHashStats(total)
}

// MinimizerWriter is a pipeline process that writes sketches in input order as name, position and hash lines
type MinimizerWriter struct {
	info       *Info
	input      chan sketch
	w          io.Writer
	err        error
	sequences  int
	minimizers int
	short      int
}

// NewMinimizerWriter is the constructor
func NewMinimizerWriter(info *Info, w io.Writer) *MinimizerWriter {
	return &MinimizerWriter{info: info, w: w}
}

// Connect is the method to join the input of this process with the output of a MinimizerSketcher
func (proc *MinimizerWriter) Connect(previous *MinimizerSketcher) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *MinimizerWriter) Run() {
	bw := bufio.NewWriter(proc.w)
	pending := make(map[int]sketch)
	next := 0
	for sk := range proc.input {
		pending[sk.index] = sk
		for {
			current, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			proc.write(bw, current)
		}
	}
	if err := bw.Flush(); err != nil && proc.err == nil {
		proc.err = errors.Wrap(err, "could not write minimizers")
	}
	logger := proc.info.Logger()
	logger.Printf("\tnumber of sequences sketched: %d", proc.sequences-proc.short)
	if proc.short != 0 {
		logger.Printf("\tnumber of sequences too short for a minimizer window: %d", proc.short)
	}
	logger.Printf("\ttotal number of minimizers: %d", proc.minimizers)
	proc.info.Metrics().AddMinimizers(proc.minimizers)
}

func (proc *MinimizerWriter) write(bw *bufio.Writer, sk sketch) {
	proc.sequences++
	if sk.minimizers == nil {
		proc.short++
		return
	}
	proc.minimizers += len(sk.minimizers)
	if proc.err != nil {
		return
	}
	for _, kwh := range sk.minimizers {
		if _, err := fmt.Fprintf(bw, "%s\t%d\t%d\n", sk.name, kwh.Pos, kwh.Hash()); err != nil {
			proc.err = errors.Wrap(err, "could not write minimizers")
			return
		}
	}
}

// Err returns the first write error, once Run has returned
func (proc *MinimizerWriter) Err() error {
	return proc.err
}

// CollectStats returns the number of sequences received, minimizers written and sequences too short to sketch
func (proc *MinimizerWriter) CollectStats() [3]int {
	return [3]int{proc.sequences, proc.minimizers, proc.short}
}
