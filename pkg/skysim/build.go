package skysim

// Building one output file: render every object on every image, composite,
// add noise, then run the extra-output write phase and persist the primary
// FITS file. A file builds serially; parallelism happens at the file level,
// in the worker pool.

import(
	"log"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/skysim-dev/skysim/pkg/extra"
	"github.com/skysim-dev/skysim/pkg/lens"
	"github.com/skysim-dev/skysim/pkg/profile"
	"github.com/skysim-dev/skysim/pkg/simg"
	"github.com/skysim-dev/skysim/pkg/smath"
)

// BuildParams are the positional arguments of one file-build task.
type BuildParams struct {
	FileNum  int
	FileName string
	Seed     int64   // base seed; objects use Seed+k, noise the next one up
	Mass     float64 // halo mass, Msun
	InWorker bool    // true when called from a pool worker
}

// BuildFile constructs a single file end to end and returns how long it
// took. Hook or write failures abort this file only.
func BuildFile(cfg *Config, coord *extra.Coordinator, p BuildParams) (time.Duration, error) {
	start := time.Now()

	// A failed file must not leave the coordinator mid-phase: the next task
	// on this worker deserves its own error, not ours.
	done := false
	defer func() {
		if !done {
			coord.Abort()
		}
	}()

	nimages := cfg.Output.NImages
	nobj := cfg.NObjects
	size := cfg.Image.Size
	scale := cfg.Image.PixelScale

	nobjPerImage := make([]int, nimages)
	for i := range nobjPerImage {
		nobjPerImage[i] = nobj
	}

	run := &extra.Run{
		FileNum:       p.FileNum,
		FileName:      p.FileName,
		NImages:       nimages,
		StartImageNum: p.FileNum * nimages,
		StartObjNum:   p.FileNum * nimages * nobj,
		NObjPerImage:  nobjPerImage,
		PixelScale:    scale,
		SkyLevel:      cfg.Image.SkyLevel,
		InWorker:      p.InWorker,
		NProc:         cfg.Image.NProc,
		Verbosity:     cfg.Verbosity,
	}

	if err := coord.SetupFile(run); err != nil {
		return 0, err
	}

	// The halo sits at the image center
	center := float64(size-1) / 2 * scale
	halo := lens.NewNFWHalo(p.Mass, cfg.NFW.Conc, cfg.NFW.ZHalo, smath.Vec2{center, center})
	psf := profile.NewGaussianFWHM(cfg.PSF.FWHM, 1.0)

	noiseSrc := rand.NewSource(uint64(p.Seed + int64(nobj*nimages)))
	images := make([]*simg.Image, nimages)

	for img := 0; img < nimages; img++ {
		image := simg.NewImage(size, size)
		image.Scale = scale
		images[img] = image

		run.ImageNum = run.StartImageNum + img
		run.Image = image
		run.Signal = nil
		if err := coord.SetupImage(run); err != nil {
			return 0, err
		}

		for k := 0; k < nobj; k++ {
			objNum := run.StartObjNum + img*nobj + k
			rng := rand.New(rand.NewSource(uint64(p.Seed + int64(img*nobj+k))))

			// Random placement, then split into the integer stamp center
			// and a subpixel shift
			x := rng.Float64() * float64(size-1)
			y := rng.Float64() * float64(size-1)
			ix := int(math.Floor(x + 0.5))
			iy := int(math.Floor(y + 0.5))
			dx := x - float64(ix)
			dy := y - float64(iy)

			flux := rng.Float64()*(cfg.Gal.FluxMax-cfg.Gal.FluxMin) + cfg.Gal.FluxMin
			hlr := rng.Float64()*(cfg.Gal.HLRMax-cfg.Gal.HLRMin) + cfg.Gal.HLRMin
			gd := distuv.Normal{Mu: 0, Sigma: cfg.Gal.EtaRMS, Src: rng}
			eta1 := gd.Rand()
			eta2 := gd.Rand()

			var gal profile.Profile = profile.NewExponential(hlr, flux)
			gal = profile.Transform(gal, smath.EtaShear(eta1, eta2))

			// Lensing effects at this position from the halo mass
			pos := smath.Vec2{x * scale, y * scale}
			g1, g2, err := halo.Shear(pos, cfg.NFW.ZSource)
			if err != nil {
				log.Printf("obj %d: invalid shear (%v), using shear = 0", objNum, err)
				g1, g2 = 0, 0
			}
			mu := halo.Magnification(pos, cfg.NFW.ZSource)
			magScale := 0.0
			if mu < 0 {
				log.Printf("obj %d: mu = %.2f < 0 means strong lensing, using scale = 5", objNum, mu)
				magScale = 5
			} else if mu > 25 {
				log.Printf("obj %d: mu = %.2f > 25 means strong lensing, using scale = 5", objNum, mu)
				magScale = 5
			} else {
				magScale = math.Sqrt(mu)
			}
			gal = profile.Transform(gal, smath.Dilate(magScale))
			gal = profile.Transform(gal, smath.GShear(g1, g2))

			final := profile.Convolve(gal, psf)
			shifted := profile.Shift(final, dx*scale, dy*scale)

			stamp := profile.Draw(shifted, scale)
			stamp.SetCenter(ix, iy)
			image.AddImage(stamp)

			run.ObjNum = objNum
			run.Stamp = stamp
			run.PSF = psf
			run.Pos = smath.Vec2{x, y}
			run.Truth = map[string]float64{
				"flux": flux, "hlr": hlr,
				"eta1": eta1, "eta2": eta2,
				"g1": g1, "g2": g2, "mu": mu,
			}
			if err := coord.ProcessStamp(objNum, run); err != nil {
				return 0, err
			}
		}

		// Keep the noise-free signal around for the weight builder, then
		// sky + Poisson noise - sky, which leaves noise consistent with the
		// full photon count
		run.Signal = image.Copy()
		skyPix := float32(run.SkyLevelPixel())
		image.AddConst(skyPix)
		image.AddCCDNoise(noiseSrc)
		image.AddConst(-skyPix)

		if err := coord.ProcessImage(img, run.ImageObjNums(img), run); err != nil {
			return 0, err
		}
	}

	if err := coord.Finalize(run); err != nil {
		return 0, err
	}
	if err := coord.WriteFiles(run); err != nil {
		return 0, err
	}
	extras, err := coord.BuildHDUs(run, len(images))
	if err != nil {
		return 0, err
	}

	hdus := make([]simg.HDU, 0, len(images)+len(extras))
	for _, im := range images {
		hdus = append(hdus, im)
	}
	hdus = append(hdus, extras...)

	err = extra.RetryIO(func() error {
		return simg.WriteMulti(p.FileName, hdus...)
	}, cfg.Output.RetryIO+1, p.FileName)
	if err != nil {
		return 0, err
	}

	if err := coord.Release(); err != nil {
		return 0, err
	}
	done = true
	return time.Since(start), nil
}
