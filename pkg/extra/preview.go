package extra

// The preview output: a quick-look PNG of the file's images, log-stretched
// through the colormap, laid out side by side, with a ring drawn at each
// object position. File-mode only - PNGs have no business in an HDU list.

import(
	"fmt"

	"github.com/fogleman/gg"

	"github.com/skysim-dev/skysim/pkg/simg"
	"github.com/skysim-dev/skysim/pkg/smath"
)

func init() {
	RegisterExtraOutput("preview", func() Builder { return &PreviewBuilder{} })
}

type PreviewBuilder struct {
	BuilderBase
}

// one image's worth of preview material
type previewPanel struct {
	Im    *simg.Image
	Marks []smath.Vec2 // object positions, original pixel coords
	Down  int
}

func (b *PreviewBuilder)ProcessStamp(objNum int, field *KindSpec, run *Run) error {
	b.Scratch.Set(objNum, run.Pos)
	return nil
}

func (b *PreviewBuilder)ProcessImage(index int, objNums []int, field *KindSpec, run *Run) error {
	down := field.Downsample
	if down < 1 {
		down = 1
	}
	marks := make([]smath.Vec2, 0, len(objNums))
	for _, n := range objNums {
		if v, ok := b.Scratch.Get(n); ok {
			marks = append(marks, v.(smath.Vec2))
		}
	}
	b.Data.Set(index, &previewPanel{
		Im:    run.Image.Downsample(down),
		Marks: marks,
		Down:  down,
	})
	return nil
}

func (b *PreviewBuilder)WriteFile(path string, field *KindSpec, run *Run) error {
	panels := make([]*previewPanel, b.Data.Len())
	width, height := 0, 0
	for i := 0; i < b.Data.Len(); i++ {
		v := b.Data.Get(i)
		if v == nil {
			return fmt.Errorf("preview image %d was never processed", i)
		}
		panels[i] = v.(*previewPanel)
		width += panels[i].Im.Bounds.Dx()
		if h := panels[i].Im.Bounds.Dy(); h > height {
			height = h
		}
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	xoff := 0
	for _, p := range panels {
		dc.DrawImage(p.Im.RenderPreview(), xoff, 0)
		dc.SetRGBA(0.1, 0.9, 0.3, 0.8)
		dc.SetLineWidth(1.2)
		for _, m := range p.Marks {
			dc.DrawCircle(float64(xoff)+m[0]/float64(p.Down), m[1]/float64(p.Down), 8)
			dc.Stroke()
		}
		xoff += p.Im.Bounds.Dx()
	}
	return dc.SavePNG(path)
}
