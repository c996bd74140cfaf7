package extra

import(
	"errors"

	"github.com/skysim-dev/skysim/pkg/simg"
)

// ErrNotImplemented is returned by BuilderBase.WriteHdu: a kind configured
// for HDU output must override it.
var ErrNotImplemented = errors.New("builder does not implement WriteHdu")

// Builder is the capability interface for one extra output kind. All hooks
// are optional; embed BuilderBase to get no-op defaults.
//
// The workflow is: save something in scratch[objNum] for each object, fold
// the image's objects into data[index] when the image completes, and
// optionally aggregate over data in Finalize. Objects and images complete in
// arbitrary order when workers are active, so nothing here may assume
// ordering. Only data and scratch survive to the finalize/write stages -
// any other state set on the builder during stamp or image processing is
// not guaranteed to be visible later.
type Builder interface {
	// Initialize binds the workspace. Called once per (kind, file).
	Initialize(data Sequence, scratch Map, field *KindSpec, run *Run) error

	// SetupImage is called once per image, before any of its stamps.
	SetupImage(field *KindSpec, run *Run) error

	// ProcessStamp is called once per completed object, after its flux is
	// composited but before sky and noise.
	ProcessStamp(objNum int, field *KindSpec, run *Run) error

	// ProcessImage is called once per completed image. index is the image's
	// position within the file, starting at 0; objNums are the objects that
	// landed on it. The result belongs in data[index].
	ProcessImage(index int, objNums []int, field *KindSpec, run *Run) error

	// Finalize is called once per file, after every image is complete.
	Finalize(field *KindSpec, run *Run) error

	// WriteFile persists the result to a standalone file (file-mode kinds).
	WriteFile(path string, field *KindSpec, run *Run) error

	// WriteHdu returns the artifact for this kind's HDU slot in the primary
	// file (HDU-mode kinds).
	WriteHdu(field *KindSpec, run *Run) (simg.HDU, error)
}

// BuilderBase supplies the no-op hook bodies and keeps the bound workspace
// in Data and Scratch.
type BuilderBase struct {
	Data    Sequence
	Scratch Map
}

func (b *BuilderBase)Initialize(data Sequence, scratch Map, field *KindSpec, run *Run) error {
	b.Data = data
	b.Scratch = scratch
	return nil
}

func (b *BuilderBase)SetupImage(field *KindSpec, run *Run) error { return nil }

func (b *BuilderBase)ProcessStamp(objNum int, field *KindSpec, run *Run) error { return nil }

func (b *BuilderBase)ProcessImage(index int, objNums []int, field *KindSpec, run *Run) error {
	return nil
}

func (b *BuilderBase)Finalize(field *KindSpec, run *Run) error { return nil }

func (b *BuilderBase)WriteFile(path string, field *KindSpec, run *Run) error { return nil }

func (b *BuilderBase)WriteHdu(field *KindSpec, run *Run) (simg.HDU, error) {
	return nil, ErrNotImplemented
}
