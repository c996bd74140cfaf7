package skysim

import(
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skysim-dev/skysim/pkg/extra"
)

func TestRunWorkersDrainsEveryTask(t *testing.T) {
	const nworkers = 3
	const ntasks = 12

	var coordsMade int32
	newCoord := func() *extra.Coordinator {
		atomic.AddInt32(&coordsMade, 1)
		return extra.NewCoordinator(extra.NewRegistry(), &extra.OutputSpec{})
	}

	tasks := make(chan Task, ntasks+nworkers)
	results := make(chan Result, ntasks)
	for i := 0; i < ntasks; i++ {
		i := i
		tasks <- Task{
			Build: func(coord *extra.Coordinator) (time.Duration, error) {
				if i%4 == 3 {
					return 0, errors.New("render failed")
				}
				return time.Duration(i) * time.Millisecond, nil
			},
			Info: "nfw1",
		}
	}
	for i := 0; i < nworkers; i++ {
		tasks <- StopTask
	}

	RunWorkers(nworkers, newCoord, tasks, results)

	var ok, failed int
	workers := map[string]bool{}
	for i := 0; i < ntasks; i++ {
		r := <-results
		workers[r.Worker] = true
		assert.Equal(t, "nfw1", r.Info)
		if r.Err != nil {
			failed++
		} else {
			ok++
		}
	}
	assert.Equal(t, 9, ok)
	assert.Equal(t, 3, failed)
	assert.Equal(t, int32(nworkers), atomic.LoadInt32(&coordsMade), "one coordinator per worker")
	assert.LessOrEqual(t, len(workers), nworkers)

	// the sentinels stopped everyone; no result is still pending
	select {
	case r := <-results:
		t.Fatalf("unexpected extra result %+v", r)
	default:
	}
}

func TestRunWorkersChannelClose(t *testing.T) {
	tasks := make(chan Task)
	results := make(chan Result, 1)
	RunWorkers(1, func() *extra.Coordinator {
		return extra.NewCoordinator(extra.NewRegistry(), &extra.OutputSpec{})
	}, tasks, results)

	tasks <- Task{Build: func(coord *extra.Coordinator) (time.Duration, error) {
		return time.Millisecond, nil
	}}
	close(tasks)

	r := <-results
	require.NoError(t, r.Err)
	assert.Equal(t, time.Millisecond, r.Dur)
}
