package reads

import (
	"errors"
	"fmt"
	"io"

	"github.com/biogo/hts/bgzf"
	pkgerrors "github.com/pkg/errors"
	"gopkg.in/vmihailenco/msgpack.v2"
)

// ErrFingerprintMismatch means a snapshot was taken on a different graph
var ErrFingerprintMismatch = errors.New("reads: snapshot does not belong to this graph")

type snapshotHeader struct {
	Fingerprint uint64 `msgpack:"fingerprint"`
	K           int    `msgpack:"k"`
	Reads       int    `msgpack:"reads"`
}

type snapshotRead struct {
	Name   string   `msgpack:"name"`
	Left   int      `msgpack:"left"`
	Right  int      `msgpack:"right"`
	Labels []string `msgpack:"labels"`
}

// WriteSnapshot writes the non-empty read paths as msgpack records in a bgzf stream, headed by the graph fingerprint
func (s *Storage) WriteSnapshot(w io.Writer) error {
	recs := make([]snapshotRead, 0, len(s.reads))
	for _, read := range s.reads {
		if read.Path.Size() == 0 {
			continue
		}
		rec := Record(read.Name, read.Path)
		recs = append(recs, snapshotRead{Name: rec.Name, Left: rec.Left, Right: rec.Right, Labels: rec.Labels})
	}
	bw := bgzf.NewWriter(w, 1)
	enc := msgpack.NewEncoder(bw)
	header := snapshotHeader{Fingerprint: s.Graph.Fingerprint(), K: s.Graph.K, Reads: len(recs)}
	if err := enc.Encode(header); err != nil {
		return pkgerrors.Wrap(err, "could not encode snapshot header")
	}
	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return pkgerrors.Wrapf(err, "could not encode read %v", rec.Name)
		}
	}
	return bw.Close()
}

// LoadSnapshot adds the reads of a snapshot taken on the same graph, returning the number added
func (s *Storage) LoadSnapshot(r io.Reader) (int, error) {
	br, err := bgzf.NewReader(r, 1)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "could not open snapshot")
	}
	defer br.Close()
	dec := msgpack.NewDecoder(br)
	header := snapshotHeader{}
	if err := dec.Decode(&header); err != nil {
		return 0, pkgerrors.Wrap(err, "could not decode snapshot header")
	}
	if header.Fingerprint != s.Graph.Fingerprint() || header.K != s.Graph.K {
		return 0, ErrFingerprintMismatch
	}
	for i := 0; i < header.Reads; i++ {
		rec := snapshotRead{}
		if err := dec.Decode(&rec); err != nil {
			return i, pkgerrors.Wrapf(err, "could not decode read %d", i)
		}
		if len(rec.Labels) == 0 {
			return i, fmt.Errorf("read %s has an empty path", rec.Name)
		}
		path, err := PathRecord{Name: rec.Name, Left: rec.Left, Right: rec.Right, Labels: rec.Labels}.Alignment(s.Graph)
		if err != nil {
			return i, err
		}
		s.Add(rec.Name, path)
	}
	return header.Reads, nil
}
