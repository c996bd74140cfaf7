package extra

// The psf output: a noise-free image of the PSF drawn at each object's
// position, assembled per image. Useful for measurement codes that need the
// effective PSF at the galaxy positions.

import(
	"math"

	"github.com/skysim-dev/skysim/pkg/profile"
	"github.com/skysim-dev/skysim/pkg/simg"
)

func init() {
	RegisterExtraOutput("psf", func() Builder { return &PSFBuilder{} })
}

type PSFBuilder struct {
	BuilderBase

	// The analytic PSF is drawn once and re-rendered per object from the
	// pixelized form, so the stamps here match what a measurement code
	// would recover from the image. Rebuilt whenever the PSF changes.
	psfSrc profile.Profile
	interp *profile.Interpolated
}

func (b *PSFBuilder)ProcessStamp(objNum int, field *KindSpec, run *Run) error {
	if run.PSF == nil {
		return nil
	}
	if b.interp == nil || b.psfSrc != run.PSF {
		b.psfSrc = run.PSF
		b.interp = profile.NewInterpolated(profile.Draw(run.PSF, run.PixelScale))
	}

	// Same subpixel placement as the object itself
	ix := int(math.Floor(run.Pos[0] + 0.5))
	iy := int(math.Floor(run.Pos[1] + 0.5))
	dx := run.Pos[0] - float64(ix)
	dy := run.Pos[1] - float64(iy)

	p := profile.Shift(b.interp, dx*run.PixelScale, dy*run.PixelScale)
	st := profile.Draw(p, run.PixelScale)
	st.SetCenter(ix, iy)
	b.Scratch.Set(objNum, st)
	return nil
}

func (b *PSFBuilder)ProcessImage(index int, objNums []int, field *KindSpec, run *Run) error {
	im := simg.NewImage(run.Image.Bounds.Dx(), run.Image.Bounds.Dy())
	im.Bounds = run.Image.Bounds
	im.Scale = run.Image.Scale
	for _, n := range objNums {
		if v, ok := b.Scratch.Get(n); ok {
			im.AddImage(v.(*simg.Image))
		}
	}
	b.Data.Set(index, im)
	return nil
}

func (b *PSFBuilder)WriteFile(path string, field *KindSpec, run *Run) error {
	return writeImageSequence(path, b.Data)
}

func (b *PSFBuilder)WriteHdu(field *KindSpec, run *Run) (simg.HDU, error) {
	return singleImage(b.Data, "psf")
}
