package profile

// Analytic surface brightness profiles for galaxies and PSFs. These are the
// simple opaque producers the output machinery consumes; there is no
// Fourier-space rendering here.

import(
	"math"

	"github.com/skysim-dev/skysim/pkg/smath"
)

// A Profile can report its total flux and evaluate its surface brightness
// at an angular offset (arcsec) from its nominal center.
type Profile interface {
	Flux() float64
	SB(x, y float64) float64
	// Radius is a characteristic enclosing radius (arcsec), used to size
	// postage stamps. It should cover essentially all the flux.
	Radius() float64
}

// Exponential is the standard disk-galaxy profile, I(r) ~ exp(-r/r0).
type Exponential struct {
	HalfLightRadius float64
	TotalFlux       float64
	r0              float64
}

// Converts half light radius to scale radius for an exponential disk
const hlrToR0 = 1.0 / 1.6783469900166605

func NewExponential(hlr, flux float64) *Exponential {
	return &Exponential{
		HalfLightRadius: hlr,
		TotalFlux:       flux,
		r0:              hlr * hlrToR0,
	}
}

func (e *Exponential)Flux() float64 { return e.TotalFlux }

func (e *Exponential)SB(x, y float64) float64 {
	r := math.Hypot(x, y)
	return e.TotalFlux / (2 * math.Pi * e.r0 * e.r0) * math.Exp(-r/e.r0)
}

func (e *Exponential)Radius() float64 {
	// ~99.9% of the flux of an exponential is inside 9 scale radii
	return 9 * e.r0
}

// Gaussian is used for PSFs; FWHM is the conventional atmospheric-seeing
// parameter.
type Gaussian struct {
	Sigma     float64
	TotalFlux float64
}

const fwhmToSigma = 1.0 / 2.3548200450309493

func NewGaussianFWHM(fwhm, flux float64) *Gaussian {
	return &Gaussian{Sigma: fwhm * fwhmToSigma, TotalFlux: flux}
}

func (g *Gaussian)Flux() float64 { return g.TotalFlux }

func (g *Gaussian)SB(x, y float64) float64 {
	rsq := x*x + y*y
	return g.TotalFlux / (2 * math.Pi * g.Sigma * g.Sigma) * math.Exp(-rsq/(2*g.Sigma*g.Sigma))
}

func (g *Gaussian)Radius() float64 {
	return 5 * g.Sigma
}

// Transformed applies an affine coordinate map to a base profile: shears,
// magnifications and subpixel shifts all end up here. Surface brightness is
// preserved under the map, so the flux picks up a factor of |det M| - which
// is exactly how gravitational lensing behaves.
type Transformed struct {
	Base   Profile
	M      smath.Mat2
	Dx, Dy float64

	inv smath.Mat2
	det float64
}

func Transform(p Profile, m smath.Mat2) *Transformed {
	// Collapse chained transforms so stamp rendering stays one indirection deep
	if t, ok := p.(*Transformed); ok {
		return newTransformed(t.Base, m.Mult(t.M), t.Dx, t.Dy)
	}
	return newTransformed(p, m, 0, 0)
}

// Shift moves a profile by (dx, dy) arcsec. Shifting a convolution moves
// its object component instead, which is exact and keeps the pair drawable
// by the convolved path.
func Shift(p Profile, dx, dy float64) Profile {
	if c, ok := p.(*Convolution); ok {
		return Convolve(Shift(c.Obj, dx, dy), c.PSF)
	}
	if t, ok := p.(*Transformed); ok {
		return newTransformed(t.Base, t.M, t.Dx+dx, t.Dy+dy)
	}
	return newTransformed(p, smath.Identity(), dx, dy)
}

func newTransformed(base Profile, m smath.Mat2, dx, dy float64) *Transformed {
	return &Transformed{
		Base: base,
		M:    m,
		Dx:   dx,
		Dy:   dy,
		inv:  m.Inverse(),
		det:  math.Abs(m.Det()),
	}
}

func (t *Transformed)Flux() float64 {
	return t.Base.Flux() * t.det
}

func (t *Transformed)SB(x, y float64) float64 {
	v := t.inv.Apply(smath.Vec2{x - t.Dx, y - t.Dy})
	return t.Base.SB(v[0], v[1])
}

func (t *Transformed)Radius() float64 {
	// Bound the linear stretch by the max absolute row sum
	s1 := math.Abs(t.M[0]) + math.Abs(t.M[1])
	s2 := math.Abs(t.M[2]) + math.Abs(t.M[3])
	return t.Base.Radius()*math.Max(s1, s2) + math.Hypot(t.Dx, t.Dy)
}

// Convolution pairs a profile with a PSF. It cannot be evaluated pointwise;
// Draw renders both components and convolves them directly.
type Convolution struct {
	Obj Profile
	PSF Profile
}

func Convolve(obj, psf Profile) *Convolution {
	return &Convolution{Obj: obj, PSF: psf}
}

func (c *Convolution)Flux() float64 {
	return c.Obj.Flux() * c.PSF.Flux()
}

func (c *Convolution)SB(x, y float64) float64 {
	panic("convolutions are only evaluated by Draw")
}

func (c *Convolution)Radius() float64 {
	return c.Obj.Radius() + c.PSF.Radius()
}
