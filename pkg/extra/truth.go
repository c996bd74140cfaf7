package extra

// The truth output: a catalog row per simulated object, written as a FITS
// binary table. Rows are captured at stamp time and re-sorted by object
// number at finalize, since objects complete in arbitrary order.

import(
	"sort"

	"github.com/astrogo/fitsio"

	"github.com/skysim-dev/skysim/pkg/simg"
)

func init() {
	RegisterExtraOutput("truth", func() Builder { return &TruthBuilder{} })
}

type TruthRow struct {
	ObjNum int32   `fits:"obj_num"`
	X      float64 `fits:"x"`
	Y      float64 `fits:"y"`
	Flux   float64 `fits:"flux"`
	HLR    float64 `fits:"hlr"`
	Eta1   float64 `fits:"eta1"`
	Eta2   float64 `fits:"eta2"`
	G1     float64 `fits:"g1"`
	G2     float64 `fits:"g2"`
	Mu     float64 `fits:"mu"`
}

var truthColumns = []fitsio.Column{
	{Name: "obj_num", Format: "J"},
	{Name: "x", Format: "D"},
	{Name: "y", Format: "D"},
	{Name: "flux", Format: "D"},
	{Name: "hlr", Format: "D"},
	{Name: "eta1", Format: "D"},
	{Name: "eta2", Format: "D"},
	{Name: "g1", Format: "D"},
	{Name: "g2", Format: "D"},
	{Name: "mu", Format: "D"},
}

type TruthBuilder struct {
	BuilderBase
	table *simg.Table // assembled at Finalize, in-process from there on
}

func (b *TruthBuilder)ProcessStamp(objNum int, field *KindSpec, run *Run) error {
	row := &TruthRow{
		ObjNum: int32(objNum),
		X:      run.Pos[0],
		Y:      run.Pos[1],
		Flux:   run.Truth["flux"],
		HLR:    run.Truth["hlr"],
		Eta1:   run.Truth["eta1"],
		Eta2:   run.Truth["eta2"],
		G1:     run.Truth["g1"],
		G2:     run.Truth["g2"],
		Mu:     run.Truth["mu"],
	}
	b.Scratch.Set(objNum, row)
	return nil
}

func (b *TruthBuilder)ProcessImage(index int, objNums []int, field *KindSpec, run *Run) error {
	rows := make([]*TruthRow, 0, len(objNums))
	for _, n := range objNums {
		if v, ok := b.Scratch.Get(n); ok {
			rows = append(rows, v.(*TruthRow))
		}
	}
	b.Data.Set(index, rows)
	return nil
}

func (b *TruthBuilder)Finalize(field *KindSpec, run *Run) error {
	var all []*TruthRow
	for i := 0; i < b.Data.Len(); i++ {
		if v := b.Data.Get(i); v != nil {
			all = append(all, v.([]*TruthRow)...)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ObjNum < all[j].ObjNum })

	b.table = simg.NewTable("TRUTH", truthColumns)
	for _, row := range all {
		b.table.Append(row)
	}
	return nil
}

func (b *TruthBuilder)WriteFile(path string, field *KindSpec, run *Run) error {
	// Binary tables are extensions, so the file needs a bare primary first
	return simg.WriteMulti(path, simg.EmptyPrimary(), b.table)
}

func (b *TruthBuilder)WriteHdu(field *KindSpec, run *Run) (simg.HDU, error) {
	return b.table, nil
}
