// Copyright © 2017 Will Rowe <will.rowe@stfc.ac.uk>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/FusaishiHaruaki/LJA/src/dbg"
	"github.com/FusaishiHaruaki/LJA/src/metrics"
	"github.com/FusaishiHaruaki/LJA/src/misc"
	"github.com/FusaishiHaruaki/LJA/src/pipeline"
	"github.com/FusaishiHaruaki/LJA/src/precorrect"
	"github.com/FusaishiHaruaki/LJA/src/reads"
	"github.com/FusaishiHaruaki/LJA/src/reporting"
	"github.com/FusaishiHaruaki/LJA/src/version"
)

// the precorrect command (used by cobra)
var precorrectCmd = &cobra.Command{
	Use:   "precorrect",
	Short: "Correct simple errors in read paths",
	Long: `Correct simple errors in read paths.

A read edge with coverage 1 between reliable edges is replaced by the only reliable
path of about the same length: a tip at either end of the read, a bulge anywhere
else. Reads are corrected in parallel and all reroutes are applied at the end.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
	Run: func(cmd *cobra.Command, args []string) {
		runPrecorrect()
	},
}

/*
  A function to initialise the command line arguments
*/
func init() {
	RootCmd.AddCommand(precorrectCmd)
	precorrectCmd.Flags().StringP("graph", "g", "", "GFA file of the de Bruijn graph the reads are aligned to")
	precorrectCmd.Flags().IntP("kmerSize", "k", 501, "size of the vertex k-mers (the overlap of the GFA links)")
	precorrectCmd.Flags().StringP("paths", "r", "", "TSV file of read paths, or a snapshot (.snap) taken on the same graph")
	precorrectCmd.Flags().Float64("reliable", 3, "coverage at which an edge is considered reliable")
	precorrectCmd.Flags().StringP("output", "o", "lja-corrected.tsv", "TSV file for the corrected read paths")
	precorrectCmd.Flags().String("snapshot", "", "also write a compressed snapshot of the corrected reads")
	precorrectCmd.Flags().String("plot", "", "also plot a histogram of the edge coverage after correction (PNG)")
	precorrectCmd.Flags().String("report", "", "also write the per edge coverage profile after correction")
	precorrectCmd.Flags().Bool("progress", true, "show a progress bar")
	precorrectCmd.MarkFlagRequired("graph")
	precorrectCmd.MarkFlagRequired("paths")
	for _, name := range []string{"graph", "kmerSize", "paths", "reliable", "output", "snapshot", "plot", "report", "progress"} {
		bindFlag("precorrect."+name, precorrectCmd.Flags().Lookup(name))
	}
}

/*
  A function to check user supplied parameters and collect them in the runtime info
*/
func precorrectParamCheck(numProc int) (*pipeline.Info, error) {
	info := &pipeline.Info{
		Version:   version.GetVersion(),
		Command:   "precorrect",
		NumProc:   numProc,
		Profiling: viper.GetBool("profiling"),
		KmerSize:  viper.GetInt("precorrect.kmerSize"),
		Precorrect: pipeline.PrecorrectCmd{
			Graph:    viper.GetString("precorrect.graph"),
			Paths:    viper.GetString("precorrect.paths"),
			Reliable: viper.GetFloat64("precorrect.reliable"),
			Output:   viper.GetString("precorrect.output"),
			Snapshot: viper.GetString("precorrect.snapshot"),
			Plot:     viper.GetString("precorrect.plot"),
		},
	}
	for _, file := range []string{info.Precorrect.Graph, info.Precorrect.Paths} {
		if err := misc.CheckFile(file); err != nil {
			return nil, err
		}
	}
	if err := misc.CheckExt(info.Precorrect.Graph, []string{"gfa"}); err != nil {
		return nil, err
	}
	if info.Precorrect.Reliable <= 1 {
		return nil, fmt.Errorf("reliable coverage must be above 1: %v", info.Precorrect.Reliable)
	}
	if info.Precorrect.Plot != "" {
		if err := misc.CheckExt(info.Precorrect.Plot, []string{"png"}); err != nil {
			return nil, err
		}
	}
	return info, nil
}

/*
  The main function for the precorrect sub-command
*/
func runPrecorrect() {
	numProc, stop := startCommand("precorrect")
	defer stop()
	log.Printf("checking parameters...")
	info, err := precorrectParamCheck(numProc)
	misc.ErrorCheck(err)
	log.Printf("\tgraph: %v", info.Precorrect.Graph)
	log.Printf("\tread paths: %v", info.Precorrect.Paths)
	log.Printf("\tk-mer size: %d", info.KmerSize)

	log.Printf("loading the graph...")
	g, err := dbg.ReadGFA(info.Precorrect.Graph, info.KmerSize)
	misc.ErrorCheck(err)
	log.Printf("\t%d edges", len(g.Edges()))
	log.Printf("loading read paths...")
	storage := reads.NewStorage(g)
	var n int
	if misc.CheckExt(info.Precorrect.Paths, []string{"snap"}) == nil {
		fh, err := os.Open(info.Precorrect.Paths)
		misc.ErrorCheck(err)
		n, err = storage.LoadSnapshot(fh)
		fh.Close()
		misc.ErrorCheck(err)
	} else {
		n, err = storage.LoadTSVFile(info.Precorrect.Paths)
		misc.ErrorCheck(err)
	}
	log.Printf("\tnumber of reads: %d", n)

	reg := prometheus.NewRegistry()
	corrector := precorrect.NewCorrector(info.Precorrect.Reliable)
	corrector.Threads = numProc
	corrector.Logger = log.Default()
	corrector.Metrics = metrics.NewRecorder(reg)
	var bar *pb.ProgressBar
	if viper.GetBool("precorrect.progress") {
		bar = pb.Full.Start64(int64(storage.Len()))
		corrector.OnRead = func() { bar.Increment() }
	}
	corrector.Run(storage)
	if bar != nil {
		bar.Finish()
	}

	log.Printf("writing corrected read paths...")
	out, err := os.Create(info.Precorrect.Output)
	misc.ErrorCheck(err)
	misc.ErrorCheck(storage.WriteTSV(out))
	misc.ErrorCheck(out.Close())
	log.Printf("\tsaved read paths to: %v", info.Precorrect.Output)
	if info.Precorrect.Snapshot != "" {
		snap, err := os.Create(info.Precorrect.Snapshot)
		misc.ErrorCheck(err)
		misc.ErrorCheck(storage.WriteSnapshot(snap))
		misc.ErrorCheck(snap.Close())
		log.Printf("\tsaved snapshot to: %v", info.Precorrect.Snapshot)
	}
	if info.Precorrect.Plot != "" {
		misc.ErrorCheck(reporting.PlotCoverage(storage, info.Precorrect.Plot))
		log.Printf("\tsaved coverage plot to: %v", info.Precorrect.Plot)
	}
	if report := viper.GetString("precorrect.report"); report != "" {
		fh, err := os.Create(report)
		misc.ErrorCheck(err)
		misc.ErrorCheck(reporting.WriteReport(fh, reporting.Coverage(storage)))
		misc.ErrorCheck(fh.Close())
		log.Printf("\tsaved coverage report to: %v", report)
	}
	logSummary(reg)
	misc.ErrorCheck(info.Dump(info.Precorrect.Output + ".info"))
}
