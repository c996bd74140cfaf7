package extra

// Run is the per-file build state the rendering driver shares with builder
// hooks. It plays the role of the "base config" that threads through the
// output processing: counters locating the current file/image/object in the
// run, the pixel data being composited, and the truth values for the
// current object.

import(
	"log"

	"github.com/skysim-dev/skysim/pkg/profile"
	"github.com/skysim-dev/skysim/pkg/simg"
	"github.com/skysim-dev/skysim/pkg/smath"
)

type Run struct {
	FileNum       int
	FileName      string // resolved path of the primary file
	NImages       int    // images in this file
	ImageNum      int    // global image number
	StartImageNum int    // global number of this file's first image
	ObjNum        int    // global number of the object being processed
	StartObjNum   int    // global number of this file's first object
	NObjPerImage  []int  // objects on each of this file's images

	PixelScale float64 // arcsec / pixel
	SkyLevel   float64 // ADU / arcsec^2

	Image  *simg.Image // the image being composited
	Signal *simg.Image // pre-noise, pre-sky copy of Image (set before ProcessImage)
	Stamp  *simg.Image // the stamp just composited (set before ProcessStamp)

	PSF   profile.Profile    // PSF for the current object
	Pos   smath.Vec2         // current object position, pixel coords
	Truth map[string]float64 // truth values for the current object

	InWorker  bool // already executing inside a pool worker
	NProc     int  // configured worker count for image construction
	Verbosity int
}

// ImageIndex is the current image's position within the file, the index to
// use into a builder's data sequence.
func (r *Run)ImageIndex() int {
	return r.ImageNum - r.StartImageNum
}

// ImageObjNums lists the global object numbers belonging to the file's
// index-th image.
func (r *Run)ImageObjNums(index int) []int {
	start := r.StartObjNum
	for i := 0; i < index; i++ {
		start += r.NObjPerImage[i]
	}
	nums := make([]int, r.NObjPerImage[index])
	for i := range nums {
		nums[i] = start + i
	}
	return nums
}

// SkyLevelPixel is the sky background per pixel in ADU.
func (r *Run)SkyLevelPixel() float64 {
	return r.SkyLevel * r.PixelScale * r.PixelScale
}

func (r *Run)Debugf(format string, args ...interface{}) {
	if r.Verbosity >= 2 {
		log.Printf(format, args...)
	}
}

func (r *Run)Infof(format string, args ...interface{}) {
	if r.Verbosity >= 1 {
		log.Printf(format, args...)
	}
}
