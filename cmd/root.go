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
	"runtime"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/FusaishiHaruaki/LJA/src/misc"
	"github.com/FusaishiHaruaki/LJA/src/version"
)

// the persistent command line arguments, processors and profiling are read through viper
var (
	configFile *string // YAML file holding default parameters
	logFile    *string // where to write the log
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "lja",
	Version: version.GetVersion(),
	Short:   "minimizer sketching, repeat resolution and read path precorrection for de Bruijn graph assembly",
	Long: `
#####################################################################################
		LJA: repeat resolution and error correction on de Bruijn graphs
#####################################################################################

 lja collects the graph rewriting steps of a long read assembler as separate commands.

 minimizers   sketches sequences with canonical rolling hash minimizers
 resolve      splits and collapses vertices of a multiplex de Bruijn graph
 precorrect   fixes single read tips and bulges in read paths before simplification

 Every flag can also be set in a YAML config file (--config), nested under the
 command name, e.g. "precorrect: {reliable: 4}".`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

/*
  A function to initalise the command line arguments
*/
func init() {
	cobra.OnInitialize(initConfig)
	RootCmd.PersistentFlags().IntP("processors", "p", runtime.NumCPU(), "number of processors to use")
	RootCmd.PersistentFlags().Bool("profiling", false, "create the files needed to profile lja using the go tool pprof")
	configFile = RootCmd.PersistentFlags().String("config", "", "YAML file with default parameters")
	logFile = RootCmd.PersistentFlags().String("log", "", "log file (default lja-<command>.log)")
	bindFlag("processors", RootCmd.PersistentFlags().Lookup("processors"))
	bindFlag("profiling", RootCmd.PersistentFlags().Lookup("profiling"))
}

// initConfig reads the config file, if one was given
func initConfig() {
	if *configFile == "" {
		return
	}
	viper.SetConfigFile(*configFile)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Printf("could not read config file %v: %v\n", *configFile, err)
		os.Exit(1)
	}
}

// bindFlag ties a flag to a viper key, so a set flag beats the config file which beats the default
func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// startCommand redirects the log to the command's log file, sets the number of processors and starts
// profiling if requested. The returned function stops both and must be deferred by the caller.
func startCommand(name string) (int, func()) {
	fileName := *logFile
	if fileName == "" {
		fileName = "lja-" + name + ".log"
	}
	logFH := misc.StartLogging(fileName)
	log.SetOutput(logFH)
	var prof interface{ Stop() }
	if viper.GetBool("profiling") {
		prof = profile.Start(profile.ProfilePath("./"))
	}
	numProc := viper.GetInt("processors")
	if numProc <= 0 || numProc > runtime.NumCPU() {
		numProc = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(numProc)
	log.Printf("starting the %v command", name)
	log.Printf("\tprocessors: %d", numProc)
	return numProc, func() {
		if prof != nil {
			prof.Stop()
		}
		log.Printf("finished")
		logFH.Close()
	}
}
