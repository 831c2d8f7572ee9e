package reads

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/FusaishiHaruaki/LJA/src/dbg"
)

// PathRecord is one line of a path file: name, offset into the first edge, end offset in the last edge
// and the oriented edge labels
type PathRecord struct {
	Name   string
	Left   int
	Right  int
	Labels []string
}

// ReadTSV parses a tab separated path file, blank lines and lines starting with # are skipped
func ReadTSV(r io.Reader, fn func(PathRecord) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 4 {
			return fmt.Errorf("line %d: expected 4 fields, got %d", lineNum, len(fields))
		}
		left, err := strconv.Atoi(fields[1])
		if err != nil {
			return errors.Wrapf(err, "line %d: bad left offset", lineNum)
		}
		right, err := strconv.Atoi(fields[2])
		if err != nil {
			return errors.Wrapf(err, "line %d: bad right offset", lineNum)
		}
		rec := PathRecord{Name: fields[0], Left: left, Right: right, Labels: strings.Split(fields[3], ",")}
		if err := fn(rec); err != nil {
			return errors.Wrapf(err, "line %d", lineNum)
		}
	}
	return scanner.Err()
}

// Alignment turns a record into a walk through g
func (rec PathRecord) Alignment(g *dbg.Graph) (dbg.GraphAlignment, error) {
	segs := make([]dbg.Segment, len(rec.Labels))
	for i, label := range rec.Labels {
		e, ok := g.EdgeByLabel(label)
		if !ok {
			return dbg.GraphAlignment{}, fmt.Errorf("read %s uses unknown edge %s", rec.Name, label)
		}
		segs[i] = dbg.FullSegment(e)
	}
	if len(segs) == 0 {
		return dbg.GraphAlignment{}, fmt.Errorf("read %s has an empty path", rec.Name)
	}
	segs[0].Left = rec.Left
	segs[len(segs)-1].Right = rec.Right
	return dbg.AlignmentOf(segs...), nil
}

// Record describes a walk as a path file line
func Record(name string, path dbg.GraphAlignment) PathRecord {
	rec := PathRecord{Name: name, Labels: make([]string, path.Size())}
	for i, seg := range path.Segments() {
		rec.Labels[i] = seg.Edge.Label()
	}
	if path.Size() != 0 {
		rec.Left = path.At(0).Left
		rec.Right = path.At(path.Size() - 1).Right
	}
	return rec
}

// String formats the record as a path file line without the newline
func (rec PathRecord) String() string {
	return fmt.Sprintf("%s\t%d\t%d\t%s", rec.Name, rec.Left, rec.Right, strings.Join(rec.Labels, ","))
}

// LoadTSV adds every read of a path file to the storage and returns the number of reads added
func (s *Storage) LoadTSV(r io.Reader) (int, error) {
	added := 0
	err := ReadTSV(r, func(rec PathRecord) error {
		path, err := rec.Alignment(s.Graph)
		if err != nil {
			return err
		}
		s.Add(rec.Name, path)
		added++
		return nil
	})
	return added, err
}

// LoadTSVFile is LoadTSV on a file
func (s *Storage) LoadTSVFile(fileName string) (int, error) {
	fh, err := os.Open(fileName)
	if err != nil {
		return 0, errors.Wrapf(err, "could not open paths %v", fileName)
	}
	defer fh.Close()
	return s.LoadTSV(fh)
}

// WriteTSV writes every read with a non-empty path
func (s *Storage) WriteTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, read := range s.reads {
		if read.Path.Size() == 0 {
			continue
		}
		if _, err := fmt.Fprintln(bw, Record(read.Name, read.Path).String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}
