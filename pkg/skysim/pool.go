package skysim

// The file-level worker pool. Workers pull whole-file build tasks from a
// shared queue and push (duration, info, worker) results; the main process
// only drains results and never blocks a worker. A task with no Build func
// is the stop sentinel.
//
// Each worker owns its own Coordinator, so duplicate-write suppression for
// shared files (like a run-wide psf image) is per worker: confine such a
// kind's files to a single worker if exact once-only writes matter.

import(
	"fmt"
	"time"

	"github.com/skysim-dev/skysim/pkg/extra"
)

type Task struct {
	Build func(coord *extra.Coordinator) (time.Duration, error)
	Info  string // opaque, passed through to the Result
}

// StopTask terminates a worker's consumption loop.
var StopTask = Task{}

type Result struct {
	Dur    time.Duration
	Info   string
	Worker string
	Err    error
}

// RunWorkers starts n workers consuming tasks. Every task produces exactly
// one result, success or not, so the caller can drain a known count. Each
// worker exits at the stop sentinel (or when the task channel closes).
func RunWorkers(n int, newCoord func() *extra.Coordinator, tasks <-chan Task, results chan<- Result) {
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("worker-%d", i+1)
		go func(name string) {
			coord := newCoord()
			for t := range tasks {
				if t.Build == nil {
					return
				}
				dur, err := t.Build(coord)
				results <- Result{Dur: dur, Info: t.Info, Worker: name, Err: err}
			}
		}(name)
	}
}
