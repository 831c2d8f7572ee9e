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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/FusaishiHaruaki/LJA/src/mdbg"
	"github.com/FusaishiHaruaki/LJA/src/metrics"
	"github.com/FusaishiHaruaki/LJA/src/misc"
	"github.com/FusaishiHaruaki/LJA/src/pipeline"
	"github.com/FusaishiHaruaki/LJA/src/resolve"
	"github.com/FusaishiHaruaki/LJA/src/version"
)

// the resolve command (used by cobra)
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve repeats of a multiplex de Bruijn graph",
	Long: `Resolve repeats of a multiplex de Bruijn graph.

Non-branching vertices are collapsed, vertices with several incoming and outgoing
edges are split along the edge pairs supported by read paths (GFA P lines and the
optional path file) and the remaining vertices are grown by the iteration weight.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
	Run: func(cmd *cobra.Command, args []string) {
		runResolve()
	},
}

/*
  A function to initialise the command line arguments
*/
func init() {
	RootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringP("graph", "g", "", "GFA file of the graph to resolve")
	resolveCmd.Flags().IntP("kmerSize", "k", 501, "size of the vertex k-mers (the overlap of the GFA links)")
	resolveCmd.Flags().StringP("paths", "r", "", "TSV file of read paths, used as edge pair evidence")
	resolveCmd.Flags().Int("iter", 1, "iteration weight added to vertices by simple processing")
	resolveCmd.Flags().StringP("output", "o", "lja-resolved.gfa", "GFA file for the resolved graph")
	resolveCmd.Flags().String("dot", "", "also write the resolved graph in DOT format")
	resolveCmd.MarkFlagRequired("graph")
	for _, name := range []string{"graph", "kmerSize", "paths", "iter", "output", "dot"} {
		bindFlag("resolve."+name, resolveCmd.Flags().Lookup(name))
	}
}

/*
  A function to check user supplied parameters and collect them in the runtime info
*/
func resolveParamCheck(numProc int) (*pipeline.Info, error) {
	info := &pipeline.Info{
		Version:   version.GetVersion(),
		Command:   "resolve",
		NumProc:   numProc,
		Profiling: viper.GetBool("profiling"),
		KmerSize:  viper.GetInt("resolve.kmerSize"),
		Resolve: pipeline.ResolveCmd{
			Graph:      viper.GetString("resolve.graph"),
			Paths:      viper.GetString("resolve.paths"),
			Iterations: viper.GetInt("resolve.iter"),
			Output:     viper.GetString("resolve.output"),
			Dot:        viper.GetString("resolve.dot"),
		},
	}
	if err := misc.CheckFile(info.Resolve.Graph); err != nil {
		return nil, err
	}
	if err := misc.CheckExt(info.Resolve.Graph, []string{"gfa"}); err != nil {
		return nil, err
	}
	if info.Resolve.Paths != "" {
		if err := misc.CheckFile(info.Resolve.Paths); err != nil {
			return nil, err
		}
	}
	if info.Resolve.Iterations < 1 {
		return nil, fmt.Errorf("iteration weight must be at least 1: %d", info.Resolve.Iterations)
	}
	return info, nil
}

/*
  The main function for the resolve sub-command
*/
func runResolve() {
	numProc, stop := startCommand("resolve")
	defer stop()
	log.Printf("checking parameters...")
	info, err := resolveParamCheck(numProc)
	misc.ErrorCheck(err)
	log.Printf("\tgraph: %v", info.Resolve.Graph)
	log.Printf("\tk-mer size: %d", info.KmerSize)
	log.Printf("\titeration weight: %d", info.Resolve.Iterations)

	log.Printf("loading the graph...")
	g, err := mdbg.ReadGFA(info.Resolve.Graph, info.KmerSize)
	misc.ErrorCheck(err)
	log.Printf("\t%d vertices, %d edges", g.NumVertices(), g.NumEdges())
	if info.Resolve.Paths != "" {
		log.Printf("loading read paths...")
		fh, err := os.Open(info.Resolve.Paths)
		misc.ErrorCheck(err)
		added, skipped, err := g.LoadReadPaths(fh)
		fh.Close()
		misc.ErrorCheck(err)
		log.Printf("\tread paths added as edge pairs: %d", added)
		log.Printf("\tread paths skipped: %d", skipped)
	}

	reg := prometheus.NewRegistry()
	resolver := resolve.NewRepeatResolver(g, log.Default(), metrics.NewRecorder(reg))
	misc.ErrorCheck(resolver.CheckSplits(info.Resolve.Iterations))
	counts := resolver.Resolve(info.Resolve.Iterations)
	log.Printf("\tvertices split: %d", counts.Complex)

	log.Printf("writing the resolved graph...")
	out, err := os.Create(info.Resolve.Output)
	misc.ErrorCheck(err)
	misc.ErrorCheck(g.WriteGFA(out))
	misc.ErrorCheck(out.Close())
	log.Printf("\tsaved graph to: %v", info.Resolve.Output)
	if info.Resolve.Dot != "" {
		dot, err := os.Create(info.Resolve.Dot)
		misc.ErrorCheck(err)
		misc.ErrorCheck(g.WriteDOT(dot))
		misc.ErrorCheck(dot.Close())
		log.Printf("\tsaved dot to: %v", info.Resolve.Dot)
	}
	logSummary(reg)
	misc.ErrorCheck(info.Dump(info.Resolve.Output + ".info"))
}
