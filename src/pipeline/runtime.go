package pipeline

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log"
	"os"

	"github.com/FusaishiHaruaki/LJA/src/metrics"
	"github.com/FusaishiHaruaki/LJA/src/misc"
)

// Info stores the runtime information of a command
type Info struct {
	Version   string
	Command   string
	NumProc   int
	Profiling bool
	KmerSize  int

	Minimizers MinimizerCmd
	Resolve    ResolveCmd
	Precorrect PrecorrectCmd

	// the following fields are not written to disk
	logger  *log.Logger
	metrics *metrics.Recorder
}

// MinimizerCmd stores the runtime info for the minimizers command
type MinimizerCmd struct {
	Input      []string
	WindowSize int
	Base       uint64
	Output     string
}

// ResolveCmd stores the runtime info for the resolve command
type ResolveCmd struct {
	Graph      string
	Paths      string
	Iterations int
	Output     string
	Dot        string
}

// PrecorrectCmd stores the runtime info for the precorrect command
type PrecorrectCmd struct {
	Graph    string
	Paths    string
	Reliable float64
	Output   string
	Snapshot string
	Plot     string
}

// AttachLogger sets the logger used by the pipeline processes
func (info *Info) AttachLogger(logger *log.Logger) {
	info.logger = logger
}

// AttachMetrics sets the recorder the pipeline processes report to
func (info *Info) AttachMetrics(rec *metrics.Recorder) {
	info.metrics = rec
}

// Logger returns the attached logger, or one that discards everything
func (info *Info) Logger() *log.Logger {
	if info.logger == nil {
		info.logger = misc.NewLogger(nil)
	}
	return info.logger
}

// Metrics returns the attached recorder, which may be nil
func (info *Info) Metrics() *metrics.Recorder {
	return info.metrics
}

// Dump writes the runtime info to file
func (info *Info) Dump(path string) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	return gob.NewEncoder(fh).Encode(info)
}

// Load reads the runtime info from a file written by Dump
func (info *Info) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return info.LoadFromBytes(data)
}

// LoadFromBytes decodes the runtime info
func (info *Info) LoadFromBytes(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("runtime info appears empty")
	}
	return gob.NewDecoder(bytes.NewBuffer(data)).Decode(info)
}
