package simg

import(
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
)

// The preview colormap runs dark blue -> amber -> white, blended in Luv so
// the perceived brightness tracks the pixel value.
var colormapStops = []colorful.Color{
	{R: 0.02, G: 0.02, B: 0.15},
	{R: 0.85, G: 0.55, B: 0.10},
	{R: 1.00, G: 1.00, B: 1.00},
}

func colormap(t float64) colorful.Color {
	if t <= 0 {
		return colormapStops[0]
	}
	if t >= 1 {
		return colormapStops[len(colormapStops)-1]
	}
	span := 1.0 / float64(len(colormapStops)-1)
	i := int(t / span)
	return colormapStops[i].BlendLuv(colormapStops[i+1], (t-float64(i)*span)/span)
}

// RenderPreview maps an image to RGBA with a log stretch, which is the only
// way faint galaxy wings survive next to bright cores.
func (im *Image)RenderPreview() *image.RGBA {
	max := float64(im.Max())
	norm := math.Log1p(max)
	out := image.NewRGBA(image.Rect(0, 0, im.Bounds.Dx(), im.Bounds.Dy()))
	for y := im.Bounds.Min.Y; y < im.Bounds.Max.Y; y++ {
		for x := im.Bounds.Min.X; x < im.Bounds.Max.X; x++ {
			t := 0.0
			if v := float64(im.At(x, y)); v > 0 && norm > 0 {
				t = math.Log1p(v) / norm
			}
			r, g, b := colormap(t).RGB255()
			out.SetRGBA(x-im.Bounds.Min.X, y-im.Bounds.Min.Y, color.RGBA{r, g, b, 255})
		}
	}
	return out
}

func WritePNG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return png.Encode(writer, img)
	}
}
