package profile

import(
	"math"

	"github.com/skysim-dev/skysim/pkg/simg"
)

// Biggest stamp we will render; huge objects get truncated rather than
// letting a bad config allocate gigabytes. Odd, so every width stays
// centered on a pixel.
const maxStampWidth = 511

func stampWidth(radius, scale float64) int {
	n := 2*int(math.Ceil(radius/scale)) + 1
	if n < 5 {
		n = 5
	}
	if n > maxStampWidth {
		n = maxStampWidth
	}
	return n
}

// Draw renders a profile onto a postage stamp at the given pixel scale
// (arcsec/pixel). The stamp's bounds are centered on (0, 0); the caller
// recenters it onto its target position. Pixel values are fluxes (surface
// brightness times pixel area).
func Draw(p Profile, scale float64) *simg.Image {
	if c, ok := p.(*Convolution); ok {
		return drawConvolved(c, scale)
	}
	n := stampWidth(p.Radius(), scale)
	st := simg.NewImage(n, n)
	st.Scale = scale
	st.SetCenter(0, 0)
	area := scale * scale
	for y := st.Bounds.Min.Y; y < st.Bounds.Max.Y; y++ {
		for x := st.Bounds.Min.X; x < st.Bounds.Max.X; x++ {
			st.Set(x, y, float32(p.SB(float64(x)*scale, float64(y)*scale)*area))
		}
	}
	return st
}

// drawConvolved renders object and PSF separately and convolves them
// directly. Stamps are small, so the quadratic cost is fine and we avoid
// dragging in an FFT.
func drawConvolved(c *Convolution, scale float64) *simg.Image {
	obj := Draw(c.Obj, scale)
	psf := Draw(c.PSF, scale)

	// Normalize the discrete PSF so convolution conserves the object flux
	// times the nominal PSF flux
	psfSum := psf.Sum()
	if psfSum > 0 {
		norm := float32(c.PSF.Flux() / psfSum)
		for i := range psf.Pix {
			psf.Pix[i] *= norm
		}
	}

	no := obj.Bounds.Dx()
	np := psf.Bounds.Dx()
	n := no + np - 1
	out := simg.NewImage(n, n)
	out.Scale = scale
	out.SetCenter(0, 0)

	for py := psf.Bounds.Min.Y; py < psf.Bounds.Max.Y; py++ {
		for px := psf.Bounds.Min.X; px < psf.Bounds.Max.X; px++ {
			w := psf.At(px, py)
			if w == 0 {
				continue
			}
			for oy := obj.Bounds.Min.Y; oy < obj.Bounds.Max.Y; oy++ {
				for ox := obj.Bounds.Min.X; ox < obj.Bounds.Max.X; ox++ {
					out.Add(ox+px, oy+py, obj.At(ox, oy)*w)
				}
			}
		}
	}
	return out
}
