package simg

import(
	"os"
	"path/filepath"
	"testing"

	"github.com/astrogo/fitsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readHDUs(t *testing.T, path string) []fitsio.HDU {
	t.Helper()
	r, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	f, err := fitsio.Open(r)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f.HDUs()
}

func TestWriteMultiRoundTrip(t *testing.T) {
	im := NewImage(8, 6)
	im.Scale = 0.19
	im.Set(3, 2, 42)

	mask := NewMask(8, 6)
	mask.Set(1, 1, 1)

	tbl := NewTable("TRUTH", []fitsio.Column{
		{Name: "obj_num", Format: "J"},
		{Name: "flux", Format: "D"},
	})
	tbl.Append(&struct {
		ObjNum int32   `fits:"obj_num"`
		Flux   float64 `fits:"flux"`
	}{ObjNum: 7, Flux: 123.5})

	path := filepath.Join(t.TempDir(), "out.fits")
	require.NoError(t, WriteMulti(path, im, mask, tbl))

	hdus := readHDUs(t, path)
	require.Len(t, hdus, 3)

	assert.Equal(t, -32, hdus[0].Header().Bitpix())
	assert.Equal(t, []int{8, 6}, hdus[0].Header().Axes())
	card := hdus[0].Header().Get("PIXSCALE")
	require.NotNil(t, card)
	assert.InDelta(t, 0.19, card.Value.(float64), 1e-9)

	assert.Equal(t, 16, hdus[1].Header().Bitpix())

	table, ok := hdus[2].(*fitsio.Table)
	require.True(t, ok)
	assert.Equal(t, "TRUTH", table.Name())
	assert.Equal(t, int64(1), table.NumRows())
}

func TestTableOnlyFileNeedsPrimary(t *testing.T) {
	tbl := NewTable("CATALOG", []fitsio.Column{{Name: "x", Format: "D"}})
	tbl.Append(&struct {
		X float64 `fits:"x"`
	}{X: 1.5})

	path := filepath.Join(t.TempDir(), "cat.fits")
	require.NoError(t, WriteMulti(path, EmptyPrimary(), tbl))

	hdus := readHDUs(t, path)
	require.Len(t, hdus, 2)
	_, ok := hdus[1].(*fitsio.Table)
	assert.True(t, ok)
}

func TestWriteMultiBadPath(t *testing.T) {
	err := WriteMulti(filepath.Join(t.TempDir(), "no-such-dir", "x.fits"), NewImage(2, 2))
	assert.Error(t, err)
}
