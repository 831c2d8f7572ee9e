// Package reporting summarises how reads cover the edges of a graph, as text and as plots
package reporting

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/FusaishiHaruaki/LJA/src/reads"
)

// EdgeReport is the per base read support of one edge
type EdgeReport struct {
	Label  string
	Reads  int
	Pileup []int

	// Profile is a run length string of covered (M) and uncovered (D) bases
	Profile string

	// Gapped is set when uncovered bases sit between covered ones
	Gapped bool
}

// Coverage piles up the valid reads of storage on the forward edges they traverse. Edges no read touches
// are left out and the reports come back sorted by label.
func Coverage(storage *reads.Storage) []EdgeReport {
	pileups := make(map[string]*EdgeReport)
	for i := 0; i < storage.Len(); i++ {
		read := storage.Read(i)
		if !read.Valid {
			continue
		}
		for _, seg := range read.Path.Segments() {
			if !seg.Edge.Forward {
				seg = seg.RC()
			}
			report, ok := pileups[seg.Edge.Label()]
			if !ok {
				report = &EdgeReport{Label: seg.Edge.Label(), Pileup: make([]int, seg.Edge.Size())}
				pileups[seg.Edge.Label()] = report
			}
			report.Reads++
			for j := seg.Left; j < seg.Right; j++ {
				report.Pileup[j]++
			}
		}
	}

	// build the profiles concurrently, one goroutine per edge
	reports := make([]EdgeReport, 0, len(pileups))
	for _, report := range pileups {
		reports = append(reports, *report)
	}
	var wg sync.WaitGroup
	for i := range reports {
		wg.Add(1)
		go func(report *EdgeReport) {
			defer wg.Done()
			report.Profile, report.Gapped = profile(report.Pileup)
		}(&reports[i])
	}
	wg.Wait()
	sort.Slice(reports, func(i, j int) bool { return reports[i].Label < reports[j].Label })
	return reports
}

// profile run length encodes the covered (M) and uncovered (D) bases of a pileup
func profile(pileup []int) (string, bool) {
	runs, states := []byte{}, []byte{}
	for i := 0; i < len(pileup); {
		covered := pileup[i] != 0
		j := i
		for j < len(pileup) && (pileup[j] != 0) == covered {
			j++
		}
		state := byte('D')
		if covered {
			state = 'M'
		}
		runs = strconv.AppendInt(runs, int64(j-i), 10)
		runs = append(runs, state)
		states = append(states, state)
		i = j
	}
	gapped := false
	for i := 1; i+1 < len(states); i++ {
		if states[i] == 'D' {
			gapped = true
		}
	}
	return string(runs), gapped
}

// WriteReport writes one line per edge: label, reads, edge size and coverage profile
func WriteReport(w io.Writer, reports []EdgeReport) error {
	bw := bufio.NewWriter(w)
	for _, report := range reports {
		if _, err := fmt.Fprintf(bw, "%v\t%d\t%d\t%v\n", report.Label, report.Reads, len(report.Pileup), report.Profile); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// PlotPileup draws the per base coverage of one edge as a line plot
func PlotPileup(report EdgeReport, fileName string) error {
	covPlot, err := plot.New()
	if err != nil {
		return err
	}
	covPlot.Title.Text = "coverage plot"
	covPlot.X.Label.Text = "position in edge " + report.Label
	covPlot.Y.Label.Text = "coverage (number of reads at position)"
	points := make(plotter.XYs, len(report.Pileup))
	for i, depth := range report.Pileup {
		points[i].X = float64(i)
		points[i].Y = float64(depth)
	}
	if err := plotutil.AddLinePoints(covPlot, report.Label, points); err != nil {
		return err
	}
	return covPlot.Save(8*vg.Inch, 8*vg.Inch, fileName)
}

// PlotCoverage draws a histogram of the read coverage of every edge of the storage's graph
func PlotCoverage(storage *reads.Storage, fileName string) error {
	edges := storage.Graph.Edges()
	if len(edges) == 0 {
		return fmt.Errorf("no edges to plot")
	}
	values := make(plotter.Values, len(edges))
	for i, e := range edges {
		values[i] = float64(e.Coverage())
	}
	covPlot, err := plot.New()
	if err != nil {
		return err
	}
	covPlot.Title.Text = "edge coverage"
	covPlot.X.Label.Text = "coverage (number of reads on edge)"
	covPlot.Y.Label.Text = "number of edges"
	hist, err := plotter.NewHist(values, min(len(edges), 50))
	if err != nil {
		return err
	}
	covPlot.Add(hist)
	return covPlot.Save(8*vg.Inch, 6*vg.Inch, fileName)
}
