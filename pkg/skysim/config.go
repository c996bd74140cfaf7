package skysim

import(
	"fmt"
	"io/ioutil"
	"runtime"

	"gopkg.in/yaml.v2"

	"github.com/skysim-dev/skysim/pkg/extra"
)

/* Example config file ...

verbosity: 1

image:
  size: 512
  pixel_scale: 0.19
  sky_level: 1.0e6
  nproc: 1

psf:
  fwhm: 0.5

gal:
  flux_min: 1.0e4
  flux_max: 1.0e6
  hlr_min: 0.4
  hlr_max: 1.2
  eta_rms: 0.4

nfw:
  mass_list: [1.0e15, 7.0e14, 4.0e14, 2.0e14]
  conc: 4
  z_halo: 0.3
  z_source: 0.6

nobjects: 20
random_seed: 8383721

output:
  dir: output
  nfiles: 5
  nimages: 1
  retry_io: 2
  noclobber: false
  badpix:
    hdu: 1
  weight:
    hdu: 2
  truth:
    file_name: truth
*/

type ImageOptions struct {
	Size       int     `yaml:"size"`
	PixelScale float64 `yaml:"pixel_scale"` // arcsec / pixel
	SkyLevel   float64 `yaml:"sky_level"`   // ADU / arcsec^2
	NProc      int     `yaml:"nproc"`       // workers for image construction
}

type PSFOptions struct {
	FWHM float64 `yaml:"fwhm"` // arcsec
}

type GalOptions struct {
	FluxMin float64 `yaml:"flux_min"` // ADU
	FluxMax float64 `yaml:"flux_max"`
	HLRMin  float64 `yaml:"hlr_min"` // arcsec
	HLRMax  float64 `yaml:"hlr_max"`
	EtaRMS  float64 `yaml:"eta_rms"` // eta is ln(a/b)
}

type NFWOptions struct {
	MassList []float64 `yaml:"mass_list"` // Msun
	Conc     float64   `yaml:"conc"`
	ZHalo    float64   `yaml:"z_halo"`
	ZSource  float64   `yaml:"z_source"`
}

type Config struct {
	Verbosity  int
	Image      ImageOptions
	PSF        PSFOptions       `yaml:"psf"`
	Gal        GalOptions       `yaml:"gal"`
	NFW        NFWOptions       `yaml:"nfw"`
	NObjects   int              `yaml:"nobjects"` // per image
	RandomSeed int64            `yaml:"random_seed"`
	Output     extra.OutputSpec `yaml:"output"`
}

// NewConfig carries the cluster-lensing demo defaults: 4 halo masses, 5
// files each, 20 lensed galaxies per 512px image.
func NewConfig() Config {
	return Config{
		Image:      ImageOptions{Size: 512, PixelScale: 0.19, SkyLevel: 1.0e6, NProc: 1},
		PSF:        PSFOptions{FWHM: 0.5},
		Gal:        GalOptions{FluxMin: 1.0e4, FluxMax: 1.0e6, HLRMin: 0.4, HLRMax: 1.2, EtaRMS: 0.4},
		NFW:        NFWOptions{MassList: []float64{1.0e15, 7.0e14, 4.0e14, 2.0e14}, Conc: 4, ZHalo: 0.3, ZSource: 0.6},
		NObjects:   20,
		RandomSeed: 8383721,
		Output: extra.OutputSpec{
			Dir:     "output",
			NFiles:  5,
			NImages: 1,
			Kinds:   map[string]*extra.KindSpec{},
		},
	}
}

func LoadConfig(filename string) (Config, error) {
	c := NewConfig()

	if contents, err := ioutil.ReadFile(filename); err != nil {
		return c, fmt.Errorf("read '%s': %v", filename, err)
	} else if err := yaml.Unmarshal(contents, &c); err != nil {
		return c, fmt.Errorf("parse '%s': %v", filename, err)
	}

	return c, c.FinalizeConfig()
}

// FinalizeConfig does sanity checks and fills derived defaults
func (c *Config)FinalizeConfig() error {
	if c.Image.Size <= 0 {
		return fmt.Errorf("image.size must be positive, have %d", c.Image.Size)
	}
	if c.Image.PixelScale <= 0 {
		return fmt.Errorf("image.pixel_scale must be positive, have %f", c.Image.PixelScale)
	}
	if c.Output.NImages < 1 {
		c.Output.NImages = 1
	}
	if c.Output.NFiles < 1 {
		c.Output.NFiles = 1
	}
	if c.NObjects < 1 {
		return fmt.Errorf("nobjects must be at least 1, have %d", c.NObjects)
	}
	if c.Output.RetryIO < 0 {
		return fmt.Errorf("output.retry_io must be >= 0, have %d", c.Output.RetryIO)
	}
	if c.Image.NProc <= 0 {
		c.Image.NProc = runtime.NumCPU()
	}
	return nil
}

// SeedStride is how far the base seed steps from one file to the next: one
// deviate stream per object plus one for the noise.
func (c *Config)SeedStride() int64 {
	return int64(c.NObjects*c.Output.NImages + 1)
}
