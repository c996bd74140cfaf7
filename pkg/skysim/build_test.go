package skysim

import(
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/astrogo/fitsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skysim-dev/skysim/pkg/extra"
)

func smallConfig(t *testing.T) *Config {
	c := NewConfig()
	c.Image.Size = 32
	c.Image.SkyLevel = 1.0e3
	c.Image.NProc = 1
	c.Gal.FluxMin = 1.0e3
	c.Gal.FluxMax = 1.0e4
	c.NObjects = 2
	c.Output.Dir = t.TempDir()
	c.Output.NFiles = 1
	one, two := 1, 2
	c.Output.Kinds = map[string]*extra.KindSpec{
		"badpix": {Hdu: &one},
		"weight": {Hdu: &two},
		"truth":  {FileName: "truth"},
	}
	require.NoError(t, c.FinalizeConfig())
	return &c
}

func openFITS(t *testing.T, path string) *fitsio.File {
	t.Helper()
	r, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	f, err := fitsio.Open(r)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestBuildFileEndToEnd(t *testing.T) {
	cfg := smallConfig(t)
	coord := extra.NewCoordinator(extra.DefaultRegistry(), &cfg.Output)

	primary := filepath.Join(cfg.Output.Dir, "cluster0000.fits")
	dur, err := BuildFile(cfg, coord, BuildParams{
		FileNum:  0,
		FileName: primary,
		Seed:     cfg.RandomSeed,
		Mass:     1.0e14,
		InWorker: true,
	})
	require.NoError(t, err)
	assert.Greater(t, dur, time.Duration(0))

	// primary image + badpix in hdu 1 + weight in hdu 2
	f := openFITS(t, primary)
	hdus := f.HDUs()
	require.Len(t, hdus, 3)
	assert.Equal(t, -32, hdus[0].Header().Bitpix())
	assert.Equal(t, []int{32, 32}, hdus[0].Header().Axes())
	assert.Equal(t, 16, hdus[1].Header().Bitpix(), "bad pixel mask")
	assert.Equal(t, -32, hdus[2].Header().Bitpix(), "weight map")

	// standalone truth catalog, one row per object
	tf := openFITS(t, filepath.Join(cfg.Output.Dir, "truth.fits"))
	thdus := tf.HDUs()
	require.Len(t, thdus, 2)
	table, ok := thdus[1].(*fitsio.Table)
	require.True(t, ok)
	assert.Equal(t, int64(cfg.NObjects), table.NumRows())
}

func TestBuildFileFailureLeavesCoordinatorUsable(t *testing.T) {
	cfg := smallConfig(t)
	zero := 0
	cfg.Output.Kinds["weight"].Hdu = &zero // invalid slot: every build fails

	coord := extra.NewCoordinator(extra.DefaultRegistry(), &cfg.Output)
	for i := 0; i < 2; i++ {
		_, err := BuildFile(cfg, coord, BuildParams{
			FileNum:  i,
			FileName: filepath.Join(cfg.Output.Dir, "bad.fits"),
			Seed:     cfg.RandomSeed,
			Mass:     1.0e14,
			InWorker: true,
		})
		// each attempt reports its own failure, not lifecycle residue from
		// the previous one
		require.Error(t, err)
		assert.ErrorContains(t, err, "hdu = 0 is invalid", "attempt %d", i)
	}
}

func TestBuildFileDeterministic(t *testing.T) {
	cfg := smallConfig(t)
	delete(cfg.Output.Kinds, "truth") // only hdu-mode kinds; no shared paths

	build := func(name string, seed int64) []byte {
		coord := extra.NewCoordinator(extra.DefaultRegistry(), &cfg.Output)
		path := filepath.Join(cfg.Output.Dir, name)
		_, err := BuildFile(cfg, coord, BuildParams{
			FileName: path,
			Seed:     seed,
			Mass:     1.0e14,
			InWorker: true,
		})
		require.NoError(t, err)
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		return raw
	}

	// same seed, same bytes
	assert.Equal(t, build("a.fits", 1234), build("b.fits", 1234))
	// different seed, different pixels
	assert.NotEqual(t, build("a.fits", 1234), build("c.fits", 4321))
}
