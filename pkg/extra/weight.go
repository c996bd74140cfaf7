package extra

// The weight output: an inverse-variance map per image. The variance is the
// per-pixel sky background, plus the object signal itself when
// include_obj_var is set.

import(
	"fmt"

	"github.com/skysim-dev/skysim/pkg/simg"
)

func init() {
	RegisterExtraOutput("weight", func() Builder { return &WeightBuilder{} })
}

type WeightBuilder struct {
	BuilderBase
}

func (b *WeightBuilder)ProcessImage(index int, objNums []int, field *KindSpec, run *Run) error {
	w := simg.NewImage(run.Image.Bounds.Dx(), run.Image.Bounds.Dy())
	w.Bounds = run.Image.Bounds
	w.Scale = run.Image.Scale
	w.Fill(float32(run.SkyLevelPixel()))
	if field.IncludeObjVar && run.Signal != nil {
		w.AddImage(run.Signal)
	}
	w.InvertSelf()
	b.Data.Set(index, w)
	return nil
}

func (b *WeightBuilder)WriteFile(path string, field *KindSpec, run *Run) error {
	return writeImageSequence(path, b.Data)
}

func (b *WeightBuilder)WriteHdu(field *KindSpec, run *Run) (simg.HDU, error) {
	return singleImage(b.Data, "weight")
}

// writeImageSequence writes every data slot as one HDU of a standalone file.
func writeImageSequence(path string, data Sequence) error {
	hdus := make([]simg.HDU, 0, data.Len())
	for i := 0; i < data.Len(); i++ {
		v := data.Get(i)
		if v == nil {
			return fmt.Errorf("image %d was never processed", i)
		}
		hdus = append(hdus, v.(simg.HDU))
	}
	return simg.WriteMulti(path, hdus...)
}

// singleImage fetches the sole data slot for HDU-mode output, which only
// makes sense for single-image files.
func singleImage(data Sequence, kind string) (simg.HDU, error) {
	if data.Len() != 1 {
		return nil, fmt.Errorf("%s hdu output needs exactly 1 image per file, have %d", kind, data.Len())
	}
	v := data.Get(0)
	if v == nil {
		return nil, fmt.Errorf("%s image was never processed", kind)
	}
	return v.(simg.HDU), nil
}
