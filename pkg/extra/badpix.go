package extra

// The bad pixel mask output. There is no defect simulation upstream yet, so
// the masks are all zeros, but the HDU belongs in the file for downstream
// tooling that expects it.

import(
	"github.com/skysim-dev/skysim/pkg/simg"
)

func init() {
	RegisterExtraOutput("badpix", func() Builder { return &BadpixBuilder{} })
}

type BadpixBuilder struct {
	BuilderBase
}

func (b *BadpixBuilder)ProcessImage(index int, objNums []int, field *KindSpec, run *Run) error {
	m := simg.NewMask(run.Image.Bounds.Dx(), run.Image.Bounds.Dy())
	m.Bounds = run.Image.Bounds
	m.Scale = run.Image.Scale
	b.Data.Set(index, m)
	return nil
}

func (b *BadpixBuilder)WriteFile(path string, field *KindSpec, run *Run) error {
	return writeImageSequence(path, b.Data)
}

func (b *BadpixBuilder)WriteHdu(field *KindSpec, run *Run) (simg.HDU, error) {
	return singleImage(b.Data, "badpix")
}
