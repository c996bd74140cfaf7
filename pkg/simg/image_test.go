package simg

import(
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestSetCenter(t *testing.T) {
	im := NewImage(5, 5)
	im.Set(2, 2, 9) // center pixel

	im.SetCenter(100, 200)
	assert.Equal(t, image.Point{100, 200}, im.Center())
	assert.Equal(t, image.Rect(98, 198, 103, 203), im.Bounds)
	assert.Equal(t, float32(9), im.At(100, 200), "data follows the frame")
}

func TestAddImageOverlap(t *testing.T) {
	im := NewImage(10, 10)
	st := NewImage(3, 3)
	st.Fill(1)
	st.SetCenter(9, 9) // hangs off the bottom-right corner

	im.AddImage(st)
	assert.Equal(t, float32(1), im.At(9, 9))
	assert.Equal(t, float32(1), im.At(8, 8))
	// only the 2x2 overlap lands
	assert.InDelta(t, 4.0, im.Sum(), 1e-6)
}

func TestCopyFromMismatch(t *testing.T) {
	a := NewImage(4, 4)
	b := NewImage(5, 5)
	assert.Error(t, a.CopyFrom(b))

	c := NewImage(4, 4)
	c.Fill(3)
	c.Scale = 0.25
	require.NoError(t, a.CopyFrom(c))
	assert.Equal(t, float32(3), a.At(1, 2))
	assert.Equal(t, 0.25, a.Scale)

	// Copy is independent of the source
	d := c.Copy()
	c.Set(0, 0, 99)
	assert.Equal(t, float32(3), d.At(0, 0))
}

func TestInvertSelf(t *testing.T) {
	im := NewImage(2, 2)
	im.Set(0, 0, 4)
	im.Set(1, 0, 0.5)
	// (0,1) and (1,1) stay zero
	im.InvertSelf()
	assert.Equal(t, float32(0.25), im.At(0, 0))
	assert.Equal(t, float32(2), im.At(1, 0))
	assert.Equal(t, float32(0), im.At(0, 1))
}

func TestDownsample(t *testing.T) {
	im := NewImage(4, 4)
	im.Scale = 0.2
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			im.Set(x, y, float32(y*4+x))
		}
	}

	d := im.Downsample(2)
	assert.Equal(t, image.Rect(0, 0, 2, 2), d.Bounds)
	assert.InDelta(t, 0.4, d.Scale, 1e-9)
	// top-left block holds 0,1,4,5
	assert.InDelta(t, 2.5, float64(d.At(0, 0)), 1e-6)
	// block averaging preserves the mean
	assert.InDelta(t, im.Sum()/4, d.Sum(), 1e-4)

	same := im.Downsample(1)
	assert.Equal(t, im.Bounds, same.Bounds)
	assert.Equal(t, im.Pix, same.Pix)
}

func TestAddCCDNoise(t *testing.T) {
	const lambda = 1000.0
	im := NewImage(64, 64)
	im.Fill(lambda)
	im.AddCCDNoise(rand.NewSource(17))

	n := float64(len(im.Pix))
	mean := im.Sum() / n
	assert.InDelta(t, lambda, mean, 3*math.Sqrt(lambda/n))

	varSum := 0.0
	for _, v := range im.Pix {
		d := float64(v) - mean
		varSum += d * d
	}
	variance := varSum / (n - 1)
	// Poisson: variance equals the mean
	assert.InDelta(t, lambda, variance, 0.1*lambda)

	// non-positive pixels are untouched
	neg := NewImage(2, 2)
	neg.Fill(-5)
	neg.AddCCDNoise(rand.NewSource(17))
	assert.Equal(t, float32(-5), neg.At(0, 0))
}

func TestAddGaussianNoise(t *testing.T) {
	im := NewImage(100, 100)
	im.AddGaussianNoise(2.0, rand.NewSource(99))

	n := float64(len(im.Pix))
	mean := im.Sum() / n
	assert.InDelta(t, 0, mean, 0.1)

	varSum := 0.0
	for _, v := range im.Pix {
		varSum += float64(v) * float64(v)
	}
	assert.InDelta(t, 4.0, varSum/n, 0.3)

	// sigma <= 0 is a no-op
	flat := NewImage(4, 4)
	flat.AddGaussianNoise(0, rand.NewSource(1))
	assert.Zero(t, flat.Sum())
}

func TestMaskIndexing(t *testing.T) {
	m := NewMask(3, 3)
	m.Bounds = m.Bounds.Add(image.Point{10, 20})
	m.Set(11, 21, 7)
	assert.Equal(t, int16(7), m.At(11, 21))
	assert.Equal(t, int16(0), m.At(10, 20))
}
