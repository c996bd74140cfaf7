package lens

// Weak lensing by an NFW dark-matter halo, using the radial profile
// functions of Wright & Brainerd (2000).

import(
	"fmt"
	"math"

	"github.com/skysim-dev/skysim/pkg/smath"
)

// An NFWHalo lenses background galaxies. Positions are angular, in arcsec,
// in the same frame as the image's world coordinates.
type NFWHalo struct {
	Mass     float64 // Msun
	Conc     float64 // concentration = r_vir / r_s
	Redshift float64
	Pos      smath.Vec2 // halo center, arcsec
	Cosmo    Cosmology

	rs       float64 // scale radius, Mpc
	rsArcsec float64 // scale radius, arcsec
	rhoS     float64 // characteristic density, Msun / Mpc^3
}

func NewNFWHalo(mass, conc, redshift float64, pos smath.Vec2) *NFWHalo {
	h := &NFWHalo{
		Mass:     mass,
		Conc:     conc,
		Redshift: redshift,
		Pos:      pos,
		Cosmo:    DefaultCosmology(),
	}
	h.derive()
	return h
}

func (h *NFWHalo)derive() {
	hub := h.Cosmo.H0 / 100
	rhoCrit := rhoCritH2 * hub * hub
	// M = (4/3) pi r200^3 * 200 rhoCrit
	r200 := math.Cbrt(3 * h.Mass / (4 * math.Pi * 200 * rhoCrit))
	h.rs = r200 / h.Conc
	m := math.Log(1+h.Conc) - h.Conc/(1+h.Conc)
	deltaC := (200.0 / 3.0) * h.Conc * h.Conc * h.Conc / m
	h.rhoS = deltaC * rhoCrit
	h.rsArcsec = h.rs / h.Cosmo.AngularDiameterDistance(h.Redshift) * arcsecPerRad
}

// wbF is the radial function entering the NFW convergence profile.
func wbF(x float64) float64 {
	switch {
	case x < 1:
		s := math.Sqrt(1 - x*x)
		return math.Atanh(s) / s
	case x > 1:
		s := math.Sqrt(x*x - 1)
		return math.Atan(s) / s
	default:
		return 1
	}
}

// wbG enters the mean convergence interior to x.
func wbG(x float64) float64 {
	switch {
	case x < 1:
		s := math.Sqrt(1 - x*x)
		return math.Log(x/2) + math.Acosh(1/x)/s
	case x > 1:
		s := math.Sqrt(x*x - 1)
		return math.Log(x/2) + math.Acos(1/x)/s
	default:
		return 1 + math.Log(0.5)
	}
}

func (h *NFWHalo)radius(pos smath.Vec2) float64 {
	r := math.Hypot(pos[0]-h.Pos[0], pos[1]-h.Pos[1]) / h.rsArcsec
	if r < 1e-6 {
		r = 1e-6 // right on top of the halo center; keep the profile finite
	}
	return r
}

// Kappa returns the convergence at pos for a source at zs.
func (h *NFWHalo)Kappa(pos smath.Vec2, zs float64) float64 {
	x := h.radius(pos)
	ks := h.rs * h.rhoS / h.Cosmo.SigmaCritical(h.Redshift, zs)
	if x == 1 {
		return 2 * ks / 3
	}
	return 2 * ks * (1 - wbF(x)) / (x*x - 1)
}

// kappaBar is the mean convergence interior to pos's radius.
func (h *NFWHalo)kappaBar(pos smath.Vec2, zs float64) float64 {
	x := h.radius(pos)
	ks := h.rs * h.rhoS / h.Cosmo.SigmaCritical(h.Redshift, zs)
	return 4 * ks * wbG(x) / (x * x)
}

// Shear returns the reduced shear (g1, g2) at pos for a source at zs. It
// fails when the solution leaves the weak-lensing regime (kappa >= 1 or
// |g| >= 1), which happens close to the center of a massive halo; the
// caller decides what to substitute.
func (h *NFWHalo)Shear(pos smath.Vec2, zs float64) (float64, float64, error) {
	kappa := h.Kappa(pos, zs)
	gammaT := h.kappaBar(pos, zs) - kappa
	if kappa >= 1 {
		return 0, 0, fmt.Errorf("strong lensing at %v: kappa = %.3f", pos, kappa)
	}
	gt := gammaT / (1 - kappa)
	if math.Abs(gt) >= 1 {
		return 0, 0, fmt.Errorf("strong lensing at %v: |g| = %.3f", pos, math.Abs(gt))
	}
	// Tangential shear, rotated into the image frame
	phi := math.Atan2(pos[1]-h.Pos[1], pos[0]-h.Pos[0])
	return -gt * math.Cos(2*phi), -gt * math.Sin(2*phi), nil
}

// Magnification returns mu at pos for a source at zs. Negative or huge
// values mean strong lensing; the caller applies its own cutoff.
func (h *NFWHalo)Magnification(pos smath.Vec2, zs float64) float64 {
	kappa := h.Kappa(pos, zs)
	gammaT := h.kappaBar(pos, zs) - kappa
	d := (1-kappa)*(1-kappa) - gammaT*gammaT
	if d == 0 {
		return math.Inf(1)
	}
	return 1 / d
}
