// Package pipeline contains a streaming pipeline implementation based on the Gopher Academy article by S. Lampa - Patterns for composable concurrent pipelines in Go (https://blog.gopheracademy.com/advent-2015/composable-pipelines-improvements/)
package pipeline

// BUFFERSIZE is the size of the buffer used by the pipeline channels
const BUFFERSIZE int = 64

// process is the interface used by pipeline
type process interface {
	Run()
}

// Pipeline runs a chain of connected processes
type Pipeline struct {
	processes []process
}

// NewPipeline is the pipeline constructor
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// AddProcesses adds processes to the pipeline, in the order they will be started
func (p *Pipeline) AddProcesses(procs ...process) {
	p.processes = append(p.processes, procs...)
}

// Run starts every process in its own goroutine, except the last one which runs in the foreground and
// controls the flow. Processes must close their output channels when they are done.
func (p *Pipeline) Run() {
	for i, proc := range p.processes {
		if i < len(p.processes)-1 {
			go proc.Run()
		} else {
			proc.Run()
		}
	}
}

// GetNumProcesses returns the number of processes registered in the pipeline
func (p *Pipeline) GetNumProcesses() int {
	return len(p.processes)
}
