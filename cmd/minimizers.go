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
	"io"
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/FusaishiHaruaki/LJA/src/hashing"
	"github.com/FusaishiHaruaki/LJA/src/metrics"
	"github.com/FusaishiHaruaki/LJA/src/misc"
	"github.com/FusaishiHaruaki/LJA/src/pipeline"
	"github.com/FusaishiHaruaki/LJA/src/version"
)

// the minimizers command (used by cobra)
var minimizersCmd = &cobra.Command{
	Use:   "minimizers",
	Short: "Sketch sequences with canonical minimizers",
	Long: `Sketch FASTA/FASTQ sequences with canonical minimizers.

For every window of w consecutive k-mers the k-mer with the smallest canonical
rolling hash is selected. Each selected k-mer is written once per run of windows
as a tab separated line: sequence name, position and hash.`,
	Run: func(cmd *cobra.Command, args []string) {
		runMinimizers()
	},
}

/*
  A function to initialise the command line arguments
*/
func init() {
	RootCmd.AddCommand(minimizersCmd)
	minimizersCmd.Flags().StringSliceP("input", "i", []string{}, "FASTA/FASTQ file(s) to sketch (default STDIN, as FASTA)")
	minimizersCmd.Flags().IntP("kmerSize", "k", 21, "size of k-mer")
	minimizersCmd.Flags().IntP("windowSize", "w", 10, "number of consecutive k-mers in a minimizer window")
	minimizersCmd.Flags().Uint64("base", hashing.DefaultBase, "base of the rolling hash (must be odd)")
	minimizersCmd.Flags().StringP("output", "o", "", "output file (default STDOUT)")
	for _, name := range []string{"input", "kmerSize", "windowSize", "base", "output"} {
		bindFlag("minimizers."+name, minimizersCmd.Flags().Lookup(name))
	}
}

/*
  A function to check user supplied parameters and collect them in the runtime info
*/
func minimizersParamCheck(numProc int) (*pipeline.Info, error) {
	info := &pipeline.Info{
		Version:   version.GetVersion(),
		Command:   "minimizers",
		NumProc:   numProc,
		Profiling: viper.GetBool("profiling"),
		KmerSize:  viper.GetInt("minimizers.kmerSize"),
		Minimizers: pipeline.MinimizerCmd{
			Input:      viper.GetStringSlice("minimizers.input"),
			WindowSize: viper.GetInt("minimizers.windowSize"),
			Base:       viper.GetUint64("minimizers.base"),
			Output:     viper.GetString("minimizers.output"),
		},
	}
	for _, file := range info.Minimizers.Input {
		if err := misc.CheckFile(file); err != nil {
			return nil, err
		}
		if err := misc.CheckExt(file, []string{"fa", "fasta", "fna", "fastq", "fq"}); err != nil {
			return nil, err
		}
	}
	if info.KmerSize < 1 {
		return nil, fmt.Errorf("k-mer size must be positive: %d", info.KmerSize)
	}
	return info, nil
}

/*
  The main function for the minimizers sub-command
*/
func runMinimizers() {
	numProc, stop := startCommand("minimizers")
	defer stop()
	log.Printf("checking parameters...")
	info, err := minimizersParamCheck(numProc)
	misc.ErrorCheck(err)
	log.Printf("\tk-mer size: %d", info.KmerSize)
	log.Printf("\twindow size: %d", info.Minimizers.WindowSize)
	log.Printf("\thash base: %d", info.Minimizers.Base)
	for _, file := range info.Minimizers.Input {
		log.Printf("\tinput file: %v", file)
	}

	var out io.Writer = os.Stdout
	if info.Minimizers.Output != "" {
		fh, err := os.Create(info.Minimizers.Output)
		misc.ErrorCheck(err)
		defer fh.Close()
		out = fh
	}
	reg := prometheus.NewRegistry()
	info.AttachLogger(log.Default())
	info.AttachMetrics(metrics.NewRecorder(reg))

	log.Printf("initialising sketching pipeline...")
	streamer := pipeline.NewSequenceStreamer(info)
	sketcher, err := pipeline.NewMinimizerSketcher(info)
	misc.ErrorCheck(err)
	writer := pipeline.NewMinimizerWriter(info, out)
	streamer.Connect(info.Minimizers.Input)
	sketcher.Connect(streamer)
	writer.Connect(sketcher)
	sketching := pipeline.NewPipeline()
	sketching.AddProcesses(streamer, sketcher, writer)
	log.Printf("\tnumber of processes added to the sketching pipeline: %d", sketching.GetNumProcesses())
	sketching.Run()
	misc.ErrorCheck(writer.Err())

	logSummary(reg)
	if info.Minimizers.Output != "" {
		misc.ErrorCheck(info.Dump(info.Minimizers.Output + ".info"))
	}
}

// logSummary writes the recorded metrics to the log
func logSummary(reg *prometheus.Registry) {
	summary, err := metrics.Summary(reg)
	misc.ErrorCheck(err)
	log.Printf("metrics:\n%v", summary)
	log.Printf("%v", misc.PrintMemUsage())
}
