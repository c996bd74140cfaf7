package extra

// The output coordinator drives the per-file lifecycle of every active
// extra-output kind: workspace allocation and Initialize at file setup,
// SetupImage/ProcessStamp/ProcessImage fan-out while images are built,
// Finalize once the file's images are all done, and the terminal write
// step - either standalone files (with noclobber, duplicate suppression and
// IO retry) or HDU slots collected into the primary file's HDU list.

import(
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/skysim-dev/skysim/pkg/simg"
)

type Phase int

const(
	Unconfigured Phase = iota
	FileSetup
	ImagesInProgress
	Finalizing
	Writing
	Done
)

func (p Phase)String() string {
	switch p {
	case Unconfigured:     return "Unconfigured"
	case FileSetup:        return "FileSetup"
	case ImagesInProgress: return "ImagesInProgress"
	case Finalizing:       return "Finalizing"
	case Writing:          return "Writing"
	case Done:             return "Done"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// where each phase is allowed to go next
var phaseSuccessors = map[Phase][]Phase{
	Unconfigured:     {FileSetup},
	FileSetup:        {ImagesInProgress},
	ImagesInProgress: {ImagesInProgress, Finalizing},
	Finalizing:       {Writing},
	Writing:          {Writing, Done},
	Done:             {FileSetup},
}

type Coordinator struct {
	reg  *Registry
	spec *OutputSpec

	phase    Phase
	kinds    []string // active kinds, fixed at SetupFile, registry order
	builders map[string]Builder
	ws       Workspace

	// lastFile records the last path written per kind across the whole run,
	// for duplicate-write suppression (e.g. a psf file shared by several
	// primary files). It is local to this coordinator: if a shared path can
	// be produced by more than one worker, the caller must confine that
	// kind to a single worker.
	lastFile map[string]string
}

func NewCoordinator(reg *Registry, spec *OutputSpec) *Coordinator {
	return &Coordinator{
		reg:      reg,
		spec:     spec,
		phase:    Unconfigured,
		lastFile: map[string]string{},
	}
}

func (c *Coordinator)Phase() Phase { return c.phase }

func (c *Coordinator)advance(to Phase) error {
	for _, next := range phaseSuccessors[c.phase] {
		if next == to {
			c.phase = to
			return nil
		}
	}
	return fmt.Errorf("output lifecycle: cannot go %s -> %s", c.phase, to)
}

// ActiveKinds returns the kinds this coordinator is driving, in hook order.
func (c *Coordinator)ActiveKinds() []string { return c.kinds }

// SetupFile allocates workspace and initializes a fresh builder for every
// active kind. Must fully precede starting any worker that touches the
// file. The workspace is broker-backed iff we are not already inside a
// worker and the image worker count is not exactly 1.
func (c *Coordinator)SetupFile(run *Run) error {
	if err := c.advance(FileSetup); err != nil {
		return err
	}

	shared := !run.InWorker && run.NProc != 1
	c.ws = NewWorkspace(shared)
	c.kinds = c.reg.ActiveKinds(c.spec)
	c.builders = map[string]Builder{}

	for _, key := range c.kinds {
		run.Debugf("file %d: setup output item %s (shared=%v)", run.FileNum, key, shared)
		proto, _ := c.reg.Lookup(key)
		b := proto()
		data := c.ws.Sequence(run.NImages)
		scratch := c.ws.Map()
		if err := b.Initialize(data, scratch, c.spec.Kinds[key], run); err != nil {
			return fmt.Errorf("initialize output %s: %v", key, err)
		}
		c.builders[key] = b
	}
	return nil
}

// SetupImage runs every active builder's per-image setup. Called at the
// start of each image, not just the first.
func (c *Coordinator)SetupImage(run *Run) error {
	if c.phase == FileSetup {
		if err := c.advance(ImagesInProgress); err != nil {
			return err
		}
	} else if c.phase != ImagesInProgress {
		return fmt.Errorf("output lifecycle: SetupImage in phase %s", c.phase)
	}
	for _, key := range c.kinds {
		if err := c.builders[key].SetupImage(c.spec.Kinds[key], run); err != nil {
			return fmt.Errorf("setup image for output %s: %v", key, err)
		}
	}
	return nil
}

// ProcessStamp runs after objNum's flux is composited, before sky/noise.
func (c *Coordinator)ProcessStamp(objNum int, run *Run) error {
	if c.phase != ImagesInProgress {
		return fmt.Errorf("output lifecycle: ProcessStamp in phase %s", c.phase)
	}
	for _, key := range c.kinds {
		if err := c.builders[key].ProcessStamp(objNum, c.spec.Kinds[key], run); err != nil {
			return fmt.Errorf("process stamp %d for output %s: %v", objNum, key, err)
		}
	}
	return nil
}

// ProcessImage runs after an image is fully composited. index is the
// image's position within the file; objNums the objects it carried. Images
// may complete in any order.
func (c *Coordinator)ProcessImage(index int, objNums []int, run *Run) error {
	if c.phase != ImagesInProgress {
		return fmt.Errorf("output lifecycle: ProcessImage in phase %s", c.phase)
	}
	for _, key := range c.kinds {
		if err := c.builders[key].ProcessImage(index, objNums, c.spec.Kinds[key], run); err != nil {
			return fmt.Errorf("process image %d for output %s: %v", index, key, err)
		}
	}
	return nil
}

// Finalize runs once per active builder after the file's last image.
func (c *Coordinator)Finalize(run *Run) error {
	if err := c.advance(Finalizing); err != nil {
		return err
	}
	for _, key := range c.kinds {
		if err := c.builders[key].Finalize(c.spec.Kinds[key], run); err != nil {
			return fmt.Errorf("finalize output %s: %v", key, err)
		}
	}
	return nil
}

// WriteFiles performs the write step for every file-mode kind (those with a
// file_name). Kinds configured for an HDU slot, or for neither, are left
// alone. Skips - noclobber hits and paths already written earlier in the
// run - are logged, not errors.
func (c *Coordinator)WriteFiles(run *Run) error {
	if err := c.advance(Writing); err != nil {
		return err
	}
	ntries := c.spec.RetryIO + 1

	for _, key := range c.kinds {
		field := c.spec.Kinds[key]
		if field.FileName == "" {
			continue // hdu-mode or compute-only
		}
		path := c.spec.ResolvePath(field)

		if c.spec.NoClobber {
			if _, err := os.Stat(path); err == nil {
				log.Printf("Not writing %s file %d = %s because output.noclobber = true and file exists",
					key, run.FileNum, path)
				continue
			}
		}
		if c.lastFile[key] == path {
			log.Printf("Not writing %s file %d = %s because already written", key, run.FileNum, path)
			continue
		}

		b := c.builders[key]
		err := RetryIO(func() error {
			return b.WriteFile(path, field, run)
		}, ntries, path)
		if err != nil {
			return fmt.Errorf("write output %s to '%s': %v", key, path, err)
		}
		c.lastFile[key] = path
		run.Debugf("file %d: wrote %s to %q", run.FileNum, key, path)
	}
	return nil
}

// BuildHDUs performs the write step for every HDU-mode kind and returns
// their artifacts ordered by slot number. The slots must be unique, >= 1
// (the primary image owns HDU 0), and form a gap-free run starting at
// first; anything else is a configuration error.
func (c *Coordinator)BuildHDUs(run *Run, first int) ([]simg.HDU, error) {
	if err := c.advance(Writing); err != nil {
		return nil, err
	}

	hdus := map[int]simg.HDU{}
	for _, key := range c.kinds {
		field := c.spec.Kinds[key]
		if field.Hdu == nil {
			continue // file-mode or compute-only
		}
		slot := *field.Hdu
		if slot <= 0 {
			return nil, fmt.Errorf("%s hdu = %d is invalid", key, slot)
		}
		if _, dup := hdus[slot]; dup {
			return nil, fmt.Errorf("%s hdu = %d is a duplicate", key, slot)
		}
		h, err := c.builders[key].WriteHdu(field, run)
		if err != nil {
			return nil, fmt.Errorf("write hdu for output %s: %v", key, err)
		}
		hdus[slot] = h
	}

	for slot := first; slot < first+len(hdus); slot++ {
		if _, ok := hdus[slot]; !ok {
			return nil, fmt.Errorf("cannot skip hdus: no output found for hdu %d", slot)
		}
	}

	slots := make([]int, 0, len(hdus))
	for slot := range hdus {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	out := make([]simg.HDU, 0, len(slots))
	for _, slot := range slots {
		out = append(out, hdus[slot])
	}
	return out, nil
}

// Abort abandons the current file after a failure, whatever phase it was
// in, freeing the workspace. The coordinator can then start the next file
// cleanly instead of reporting a stale lifecycle error.
func (c *Coordinator)Abort() {
	if c.ws != nil {
		c.ws.Close()
		c.ws = nil
	}
	c.builders = nil
	c.kinds = nil
	c.phase = Unconfigured
}

// Release ends the file's lifecycle and frees the workspace. The
// coordinator itself stays usable for the run's next file.
func (c *Coordinator)Release() error {
	if err := c.advance(Done); err != nil {
		return err
	}
	if c.ws != nil {
		c.ws.Close()
		c.ws = nil
	}
	c.builders = nil
	return nil
}
