package extra

import(
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseWorkspace(t *testing.T, ws Workspace) {
	t.Helper()

	seq := ws.Sequence(3)
	require.Equal(t, 3, seq.Len())
	assert.Nil(t, seq.Get(1), "slots start empty")

	seq.Set(2, "last")
	seq.Set(0, 42)
	assert.Equal(t, 42, seq.Get(0))
	assert.Nil(t, seq.Get(1))
	assert.Equal(t, "last", seq.Get(2))

	m := ws.Map()
	_, ok := m.Get(7)
	assert.False(t, ok)
	m.Set(7, "seven")
	m.Set(-3, "neg")
	v, ok := m.Get(7)
	assert.True(t, ok)
	assert.Equal(t, "seven", v)
	assert.Equal(t, 2, m.Len())
	assert.ElementsMatch(t, []int{7, -3}, m.Keys())

	// containers from the same workspace are independent
	other := ws.Map()
	assert.Equal(t, 0, other.Len())
}

func TestLocalWorkspace(t *testing.T) {
	ws := NewWorkspace(false)
	defer ws.Close()
	_, isLocal := ws.(*localWorkspace)
	assert.True(t, isLocal)
	exerciseWorkspace(t, ws)
}

func TestManagedWorkspace(t *testing.T) {
	ws := NewWorkspace(true)
	defer ws.Close()
	_, isManaged := ws.(*managedWorkspace)
	assert.True(t, isManaged)
	exerciseWorkspace(t, ws)
}

// Concurrent workers write disjoint keys and slots; the broker must
// serialize them without loss.
func TestManagedWorkspaceConcurrency(t *testing.T) {
	ws := NewWorkspace(true)
	defer ws.Close()

	const workers = 8
	const perWorker = 50
	seq := ws.Sequence(workers)
	m := ws.Map()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			sum := 0
			for i := 0; i < perWorker; i++ {
				k := w*perWorker + i
				m.Set(k, k)
				sum += k
			}
			seq.Set(w, sum)
		}(w)
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, m.Len())
	total := 0
	for w := 0; w < workers; w++ {
		total += seq.Get(w).(int)
	}
	want := (workers*perWorker - 1) * (workers * perWorker) / 2
	assert.Equal(t, want, total)
	for _, k := range m.Keys() {
		v, ok := m.Get(k)
		require.True(t, ok)
		assert.Equal(t, k, v)
	}
}
