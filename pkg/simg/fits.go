package simg

import(
	"fmt"
	"os"

	"github.com/astrogo/fitsio"
)

// HDU is anything that can render itself as a FITS HDU: float images, int16
// masks, binary tables. The coordinator deals in this interface and stays
// ignorant of the FITS binary layout.
type HDU interface {
	FITSHDU() (fitsio.HDU, error)
}

func (im *Image)FITSHDU() (fitsio.HDU, error) {
	hdu := fitsio.NewImage(-32, []int{im.Bounds.Dx(), im.Bounds.Dy()})
	cards := []fitsio.Card{
		{Name: "PIXSCALE", Value: im.Scale, Comment: "arcsec / pixel"},
	}
	if err := hdu.Header().Append(cards...); err != nil {
		return nil, fmt.Errorf("append image header: %v", err)
	}
	if err := hdu.Write(im.Pix); err != nil {
		return nil, fmt.Errorf("write image pixels: %v", err)
	}
	return hdu, nil
}

func (m *Mask)FITSHDU() (fitsio.HDU, error) {
	hdu := fitsio.NewImage(16, []int{m.Bounds.Dx(), m.Bounds.Dy()})
	cards := []fitsio.Card{
		{Name: "PIXSCALE", Value: m.Scale, Comment: "arcsec / pixel"},
	}
	if err := hdu.Header().Append(cards...); err != nil {
		return nil, fmt.Errorf("append mask header: %v", err)
	}
	if err := hdu.Write(m.Pix); err != nil {
		return nil, fmt.Errorf("write mask pixels: %v", err)
	}
	return hdu, nil
}

// A Table accumulates rows and renders them as a FITS binary table HDU.
// Rows are pointers to structs whose fields carry `fits:"colname"` tags
// matching Cols.
type Table struct {
	Name string
	Cols []fitsio.Column
	rows []interface{}
}

func NewTable(name string, cols []fitsio.Column) *Table {
	return &Table{Name: name, Cols: cols}
}

func (t *Table)Append(row interface{}) {
	t.rows = append(t.rows, row)
}

func (t *Table)Len() int { return len(t.rows) }

func (t *Table)FITSHDU() (fitsio.HDU, error) {
	tbl, err := fitsio.NewTable(t.Name, t.Cols, fitsio.BINARY_TBL)
	if err != nil {
		return nil, fmt.Errorf("create table '%s': %v", t.Name, err)
	}
	for i, row := range t.rows {
		if err := tbl.Write(row); err != nil {
			return nil, fmt.Errorf("write table '%s' row %d: %v", t.Name, i, err)
		}
	}
	return tbl, nil
}

// EmptyPrimary is a dataless primary HDU, for files whose real payload is a
// table extension.
func EmptyPrimary() HDU { return emptyPrimary{} }

type emptyPrimary struct{}

func (emptyPrimary)FITSHDU() (fitsio.HDU, error) {
	return fitsio.NewImage(8, []int{}), nil
}

// WriteMulti writes the HDUs to a FITS file at path, first one primary. This
// is the terminal step for a fully composited file: the main image plus
// whatever extra HDUs the output coordinator collected.
func WriteMulti(path string, hdus ...HDU) error {
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open+w '%s': %v", path, err)
	}
	defer w.Close()

	f, err := fitsio.Create(w)
	if err != nil {
		return fmt.Errorf("fits create '%s': %v", path, err)
	}
	defer f.Close()

	for i, h := range hdus {
		fh, err := h.FITSHDU()
		if err != nil {
			return fmt.Errorf("build hdu %d for '%s': %v", i, path, err)
		}
		if err := f.Write(fh); err != nil {
			return fmt.Errorf("write hdu %d to '%s': %v", i, path, err)
		}
	}
	return nil
}

// WriteFITS writes a single-HDU file.
func WriteFITS(path string, h HDU) error {
	return WriteMulti(path, h)
}
