package seqio

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	bioseqio "github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
	"github.com/pkg/errors"
)

// Record is a named sequence read from a FASTA or FASTQ file
type Record struct {
	Name string
	Seq  Sequence
}

// IsFastq reports whether the file name looks like FASTQ (the default is FASTA)
func IsFastq(fileName string) bool {
	name := strings.TrimSuffix(fileName, ".gz")
	return strings.HasSuffix(name, ".fastq") || strings.HasSuffix(name, ".fq")
}

// ReadFile streams every record of a (optionally gzipped) FASTA/FASTQ file to fn.
// Records containing anything other than ACGT are skipped and counted.
func ReadFile(fileName string, fn func(Record) error) (int, error) {
	fh, err := os.Open(fileName)
	if err != nil {
		return 0, errors.Wrapf(err, "could not open sequence file %v", fileName)
	}
	defer fh.Close()
	var r io.Reader = bufio.NewReader(fh)
	if strings.HasSuffix(fileName, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return 0, errors.Wrapf(err, "could not decompress %v", fileName)
		}
		defer gz.Close()
		r = gz
	}
	return Read(r, IsFastq(fileName), fn)
}

// Read streams FASTA (or FASTQ) records from r to fn, see ReadFile
func Read(r io.Reader, isFastq bool, fn func(Record) error) (int, error) {
	var reader bioseqio.Reader
	if isFastq {
		reader = fastq.NewReader(r, linear.NewQSeq("", nil, alphabet.DNA, alphabet.Sanger))
	} else {
		reader = fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA))
	}
	skipped := 0
	scanner := bioseqio.NewScanner(reader)
	for scanner.Next() {
		s := scanner.Seq()
		letters := make([]byte, s.Len())
		for i := range letters {
			letters[i] = byte(s.At(i).L)
		}
		encoded, err := NewSequence(string(letters))
		if err != nil {
			skipped++
			continue
		}
		if err := fn(Record{Name: s.Name(), Seq: encoded}); err != nil {
			return skipped, err
		}
	}
	if err := scanner.Error(); err != nil {
		return skipped, errors.Wrap(err, "could not parse sequence records")
	}
	return skipped, nil
}
