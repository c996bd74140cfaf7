package extra

// Shared work space for builders. Each active kind gets a fixed-length
// Sequence (one slot per image in the file) and a Map keyed by object
// number. When several workers can touch a file's workspace the containers
// are owned by a broker goroutine and accessed by message passing;
// otherwise they are plain in-process containers. The choice is made once,
// at file setup, before any worker starts.

// Sequence is an ordered, fixed-length work space. Slots start empty (nil)
// and are written at most once each, by ProcessImage.
type Sequence interface {
	Len() int
	Get(i int) interface{}
	Set(i int, v interface{})
}

// Map is unordered scratch space keyed by object number. Object numbers are
// partitioned disjointly across workers, so no two writers ever race on a
// key.
type Map interface {
	Len() int
	Get(k int) (interface{}, bool)
	Set(k int, v interface{})
	Keys() []int
}

type Workspace interface {
	Sequence(n int) Sequence
	Map() Map
	// Close releases the workspace. For the broker-backed flavor this stops
	// the broker goroutine; handles must not be used afterwards.
	Close()
}

// NewWorkspace picks the backing. shared should be true iff more than one
// worker can touch this file's containers.
func NewWorkspace(shared bool) Workspace {
	if shared {
		return newManagedWorkspace()
	}
	return &localWorkspace{}
}

// ---------- local (single process-of-control) ----------

type localWorkspace struct{}

func (w *localWorkspace)Sequence(n int) Sequence {
	return &localSeq{slots: make([]interface{}, n)}
}

func (w *localWorkspace)Map() Map {
	return &localMap{m: map[int]interface{}{}}
}

func (w *localWorkspace)Close() {}

type localSeq struct {
	slots []interface{}
}

func (s *localSeq)Len() int                  { return len(s.slots) }
func (s *localSeq)Get(i int) interface{}     { return s.slots[i] }
func (s *localSeq)Set(i int, v interface{})  { s.slots[i] = v }

type localMap struct {
	m map[int]interface{}
}

func (m *localMap)Len() int { return len(m.m) }

func (m *localMap)Get(k int) (interface{}, bool) {
	v, ok := m.m[k]
	return v, ok
}

func (m *localMap)Set(k int, v interface{}) { m.m[k] = v }

func (m *localMap)Keys() []int {
	keys := make([]int, 0, len(m.m))
	for k := range m.m {
		keys = append(keys, k)
	}
	return keys
}

// ---------- broker-backed (safe across concurrent workers) ----------

type wsOp int

const(
	opNewSeq wsOp = iota
	opNewMap
	opSeqLen
	opSeqGet
	opSeqSet
	opMapLen
	opMapGet
	opMapSet
	opMapKeys
)

type wsRequest struct {
	op    wsOp
	id    int
	key   int
	val   interface{}
	reply chan wsReply
}

type wsReply struct {
	id   int
	val  interface{}
	ok   bool
	n    int
	keys []int
}

type managedWorkspace struct {
	req  chan wsRequest
	quit chan struct{}
}

func newManagedWorkspace() *managedWorkspace {
	w := &managedWorkspace{
		req:  make(chan wsRequest),
		quit: make(chan struct{}),
	}
	go w.serve()
	return w
}

// serve owns every container; all access is serialized through here.
func (w *managedWorkspace)serve() {
	var seqs [][]interface{}
	var maps []map[int]interface{}

	for {
		select {
		case <-w.quit:
			return
		case r := <-w.req:
			switch r.op {
			case opNewSeq:
				seqs = append(seqs, make([]interface{}, r.key))
				r.reply <- wsReply{id: len(seqs) - 1}
			case opNewMap:
				maps = append(maps, map[int]interface{}{})
				r.reply <- wsReply{id: len(maps) - 1}
			case opSeqLen:
				r.reply <- wsReply{n: len(seqs[r.id])}
			case opSeqGet:
				r.reply <- wsReply{val: seqs[r.id][r.key]}
			case opSeqSet:
				seqs[r.id][r.key] = r.val
				r.reply <- wsReply{}
			case opMapLen:
				r.reply <- wsReply{n: len(maps[r.id])}
			case opMapGet:
				v, ok := maps[r.id][r.key]
				r.reply <- wsReply{val: v, ok: ok}
			case opMapSet:
				maps[r.id][r.key] = r.val
				r.reply <- wsReply{}
			case opMapKeys:
				keys := make([]int, 0, len(maps[r.id]))
				for k := range maps[r.id] {
					keys = append(keys, k)
				}
				r.reply <- wsReply{keys: keys}
			}
		}
	}
}

func (w *managedWorkspace)call(r wsRequest) wsReply {
	r.reply = make(chan wsReply, 1)
	w.req <- r
	return <-r.reply
}

func (w *managedWorkspace)Sequence(n int) Sequence {
	rep := w.call(wsRequest{op: opNewSeq, key: n})
	return &managedSeq{ws: w, id: rep.id}
}

func (w *managedWorkspace)Map() Map {
	rep := w.call(wsRequest{op: opNewMap})
	return &managedMap{ws: w, id: rep.id}
}

func (w *managedWorkspace)Close() {
	close(w.quit)
}

type managedSeq struct {
	ws *managedWorkspace
	id int
}

func (s *managedSeq)Len() int {
	return s.ws.call(wsRequest{op: opSeqLen, id: s.id}).n
}

func (s *managedSeq)Get(i int) interface{} {
	return s.ws.call(wsRequest{op: opSeqGet, id: s.id, key: i}).val
}

func (s *managedSeq)Set(i int, v interface{}) {
	s.ws.call(wsRequest{op: opSeqSet, id: s.id, key: i, val: v})
}

type managedMap struct {
	ws *managedWorkspace
	id int
}

func (m *managedMap)Len() int {
	return m.ws.call(wsRequest{op: opMapLen, id: m.id}).n
}

func (m *managedMap)Get(k int) (interface{}, bool) {
	rep := m.ws.call(wsRequest{op: opMapGet, id: m.id, key: k})
	return rep.val, rep.ok
}

func (m *managedMap)Set(k int, v interface{}) {
	m.ws.call(wsRequest{op: opMapSet, id: m.id, key: k, val: v})
}

func (m *managedMap)Keys() []int {
	return m.ws.call(wsRequest{op: opMapKeys, id: m.id}).keys
}
