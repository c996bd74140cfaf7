package lens

import(
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

const(
	cLightKms     = 299792.458 // km/s
	arcsecPerRad  = 206264.80624709636
	rhoCritH2     = 2.775e11   // critical density today, h^2 Msun / Mpc^3
	sigmaCrFactor = 1.6630e18  // c^2/(4 pi G), Msun / Mpc
)

// Cosmology is a flat Lambda-CDM background, just enough to turn redshifts
// into distances.
type Cosmology struct {
	OmegaM float64
	OmegaL float64
	H0     float64 // km/s/Mpc
}

func DefaultCosmology() Cosmology {
	return Cosmology{OmegaM: 0.3, OmegaL: 0.7, H0: 70}
}

func (c Cosmology)efunc(z float64) float64 {
	zp := 1 + z
	return math.Sqrt(c.OmegaM*zp*zp*zp + c.OmegaL)
}

// ComovingDistance returns the line-of-sight comoving distance to z, in Mpc.
func (c Cosmology)ComovingDistance(z float64) float64 {
	if z <= 0 {
		return 0
	}
	integral := quad.Fixed(func(zz float64) float64 {
		return 1.0 / c.efunc(zz)
	}, 0, z, 40, nil, 0)
	return cLightKms / c.H0 * integral
}

// AngularDiameterDistance returns D_A(z) in Mpc.
func (c Cosmology)AngularDiameterDistance(z float64) float64 {
	return c.ComovingDistance(z) / (1 + z)
}

// AngularDiameterDistanceZ1Z2 returns D_A(z1, z2) in Mpc for z2 > z1,
// using the flat-universe difference of comoving distances.
func (c Cosmology)AngularDiameterDistanceZ1Z2(z1, z2 float64) float64 {
	return (c.ComovingDistance(z2) - c.ComovingDistance(z1)) / (1 + z2)
}

// SigmaCritical returns the critical surface density for a lens at zl and
// sources at zs, in Msun / Mpc^2.
func (c Cosmology)SigmaCritical(zl, zs float64) float64 {
	dl := c.AngularDiameterDistance(zl)
	ds := c.AngularDiameterDistance(zs)
	dls := c.AngularDiameterDistanceZ1Z2(zl, zs)
	return sigmaCrFactor * ds / (dl * dls)
}
