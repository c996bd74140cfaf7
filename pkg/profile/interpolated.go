package profile

// An image-backed profile. Lets a rendered stamp (typically a PSF) be
// treated as a profile again, so it can be re-drawn at subpixel offsets.

import(
	"math"

	"github.com/skysim-dev/skysim/pkg/simg"
)

type Interpolated struct {
	Im *simg.Image

	flux   float64
	radius float64
}

func NewInterpolated(im *simg.Image) *Interpolated {
	r := float64(im.Bounds.Dx()) / 2 * im.Scale
	return &Interpolated{Im: im, flux: im.Sum(), radius: r}
}

func (ip *Interpolated)Flux() float64   { return ip.flux }
func (ip *Interpolated)Radius() float64 { return ip.radius }

// SB evaluates the image at an angular offset from its bounds center using
// bicubic (Catmull-Rom) interpolation. Pixel values are fluxes, so divide
// by pixel area to get surface brightness back.
func (ip *Interpolated)SB(x, y float64) float64 {
	c := ip.Im.Center()
	px := x/ip.Im.Scale + float64(c.X)
	py := y/ip.Im.Scale + float64(c.Y)
	return ip.bicubic(px, py) / (ip.Im.Scale * ip.Im.Scale)
}

// Catmull-Rom kernel
func cubicWeight(t float64) float64 {
	t = math.Abs(t)
	switch {
	case t < 1:
		return 1.5*t*t*t - 2.5*t*t + 1
	case t < 2:
		return -0.5*t*t*t + 2.5*t*t - 4*t + 2
	default:
		return 0
	}
}

func (ip *Interpolated)pixel(x, y int) float64 {
	b := ip.Im.Bounds
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return 0
	}
	return float64(ip.Im.At(x, y))
}

func (ip *Interpolated)bicubic(px, py float64) float64 {
	ix := int(math.Floor(px))
	iy := int(math.Floor(py))
	fx := px - float64(ix)
	fy := py - float64(iy)

	sum := 0.0
	for j := -1; j <= 2; j++ {
		wy := cubicWeight(float64(j) - fy)
		if wy == 0 {
			continue
		}
		for i := -1; i <= 2; i++ {
			wx := cubicWeight(float64(i) - fx)
			if wx == 0 {
				continue
			}
			sum += ip.pixel(ix+i, iy+j) * wx * wy
		}
	}
	return sum
}
