package simg

import(
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// AddCCDNoise replaces each pixel value v (in ADU, sky included) with a
// Poisson draw of mean v. The caller is expected to have added the sky level
// first and to subtract it again afterwards, so the noise reflects the full
// photon count. Non-positive pixels are left alone.
func (im *Image)AddCCDNoise(src rand.Source) {
	for i, v := range im.Pix {
		if v <= 0 {
			continue
		}
		p := distuv.Poisson{Lambda: float64(v), Src: src}
		im.Pix[i] = float32(p.Rand())
	}
}

// AddGaussianNoise adds zero-mean gaussian noise of the given sigma, e.g.
// for read noise.
func (im *Image)AddGaussianNoise(sigma float64, src rand.Source) {
	if sigma <= 0 {
		return
	}
	n := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
	for i := range im.Pix {
		im.Pix[i] += float32(n.Rand())
	}
}
