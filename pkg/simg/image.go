package simg

import(
	"fmt"
	"image"
)

// An Image is a float32 pixel grid with a world scale attached. Bounds.Min
// need not be zero - postage stamps get recentered onto arbitrary pixel
// coordinates before being composited into a full image.
type Image struct {
	Bounds image.Rectangle
	Scale  float64   // arcsec / pixel
	Pix    []float32 // row major, x varies fastest
}

func NewImage(w, h int) *Image {
	return &Image{
		Bounds: image.Rect(0, 0, w, h),
		Pix:    make([]float32, w*h),
	}
}

func (im *Image)index(x, y int) int {
	return (y-im.Bounds.Min.Y)*im.Bounds.Dx() + (x - im.Bounds.Min.X)
}

func (im *Image)At(x, y int) float32     { return im.Pix[im.index(x, y)] }
func (im *Image)Set(x, y int, v float32) { im.Pix[im.index(x, y)] = v }
func (im *Image)Add(x, y int, v float32) { im.Pix[im.index(x, y)] += v }

func (im *Image)String() string {
	return fmt.Sprintf("Image[%v, scale=%.4f]", im.Bounds, im.Scale)
}

// SetCenter translates the bounds so their center lands on (cx, cy). The
// pixel data is untouched; only the coordinate frame moves.
func (im *Image)SetCenter(cx, cy int) {
	c := im.Center()
	im.Bounds = im.Bounds.Add(image.Point{cx - c.X, cy - c.Y})
}

func (im *Image)Center() image.Point {
	return image.Point{
		(im.Bounds.Min.X + im.Bounds.Max.X) / 2,
		(im.Bounds.Min.Y + im.Bounds.Max.Y) / 2,
	}
}

// AddImage composites st into im over the overlapping bounds. Pixels of st
// outside im are dropped, which is the normal case for stamps near an edge.
func (im *Image)AddImage(st *Image) {
	overlap := im.Bounds.Intersect(st.Bounds)
	for y := overlap.Min.Y; y < overlap.Max.Y; y++ {
		for x := overlap.Min.X; x < overlap.Max.X; x++ {
			im.Add(x, y, st.At(x, y))
		}
	}
}

// CopyFrom copies pixel values from other, which must have identical bounds.
func (im *Image)CopyFrom(other *Image) error {
	if im.Bounds != other.Bounds {
		return fmt.Errorf("copy between mismatched bounds %v and %v", im.Bounds, other.Bounds)
	}
	copy(im.Pix, other.Pix)
	im.Scale = other.Scale
	return nil
}

func (im *Image)Copy() *Image {
	im2 := &Image{Bounds: im.Bounds, Scale: im.Scale, Pix: make([]float32, len(im.Pix))}
	copy(im2.Pix, im.Pix)
	return im2
}

// InvertSelf replaces each pixel with its reciprocal, mapping zero to zero.
// This is how a variance image becomes an inverse-variance weight map.
func (im *Image)InvertSelf() {
	for i, v := range im.Pix {
		if v != 0 {
			im.Pix[i] = 1.0 / v
		}
	}
}

func (im *Image)AddConst(v float32) {
	for i := range im.Pix {
		im.Pix[i] += v
	}
}

func (im *Image)Fill(v float32) {
	for i := range im.Pix {
		im.Pix[i] = v
	}
}

func (im *Image)Sum() float64 {
	tot := 0.0
	for _, v := range im.Pix {
		tot += float64(v)
	}
	return tot
}

func (im *Image)Max() float32 {
	max := float32(0)
	for i, v := range im.Pix {
		if i == 0 || v > max {
			max = v
		}
	}
	return max
}

// Downsample block-averages by a linear factor f. Used for previews.
func (im *Image)Downsample(f int) *Image {
	if f <= 1 {
		return im.Copy()
	}
	w := im.Bounds.Dx() / f
	h := im.Bounds.Dy() / f
	out := NewImage(w, h)
	out.Scale = im.Scale * float64(f)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := float32(0)
			for j := 0; j < f; j++ {
				for i := 0; i < f; i++ {
					sum += im.At(im.Bounds.Min.X+x*f+i, im.Bounds.Min.Y+y*f+j)
				}
			}
			out.Set(x, y, sum/float32(f*f))
		}
	}
	return out
}

// A Mask is an int16 pixel grid, the usual representation for bad pixel
// masks in astrometric files.
type Mask struct {
	Bounds image.Rectangle
	Scale  float64
	Pix    []int16
}

func NewMask(w, h int) *Mask {
	return &Mask{
		Bounds: image.Rect(0, 0, w, h),
		Pix:    make([]int16, w*h),
	}
}

func (m *Mask)Set(x, y int, v int16) {
	m.Pix[(y-m.Bounds.Min.Y)*m.Bounds.Dx()+(x-m.Bounds.Min.X)] = v
}

func (m *Mask)At(x, y int) int16 {
	return m.Pix[(y-m.Bounds.Min.Y)*m.Bounds.Dx()+(x-m.Bounds.Min.X)]
}
