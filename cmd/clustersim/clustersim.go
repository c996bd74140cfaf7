package main

// Simulates cluster lensing: galaxies sheared and magnified by NFW halos of
// several masses, one directory per mass, several files per directory, all
// built in parallel by a pool of workers. Each file carries a bad pixel
// mask and a weight map as extra HDUs, plus a truth catalog.

import(
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/codahale/hdrhistogram"

	"github.com/skysim-dev/skysim/pkg/extra"
	"github.com/skysim-dev/skysim/pkg/skysim"
)

var(
	fConfig    string
	fVerbosity int
	fNProc     int
	fOutputDir string
)

func init() {
	flag.StringVar(&fConfig, "config", "", "yaml config file (optional; defaults are the cluster demo)")
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.IntVar(&fNProc, "nproc", 0, "worker count (0 = one per file, capped at NumCPU)")
	flag.StringVar(&fOutputDir, "out", "", "override output dir")
	flag.Parse()

	log.Printf("clustersim starting\n")
}

func main() {
	cfg := skysim.NewConfig()
	if fConfig != "" {
		var err error
		if cfg, err = skysim.LoadConfig(fConfig); err != nil {
			log.Fatal(err)
		}
	} else if err := cfg.FinalizeConfig(); err != nil {
		log.Fatal(err)
	}
	cfg.Verbosity = fVerbosity
	if fOutputDir != "" {
		cfg.Output.Dir = fOutputDir
	}
	if len(cfg.Output.Kinds) == 0 {
		one, two := 1, 2
		cfg.Output.Kinds = map[string]*extra.KindSpec{
			"badpix": {Hdu: &one},
			"weight": {Hdu: &two},
			"truth":  {FileName: "truth"},
		}
	}

	nfiles := cfg.Output.NFiles
	ntot := nfiles * len(cfg.NFW.MassList)

	nproc := fNProc
	if nproc <= 0 {
		nproc = runtime.NumCPU()
		if nproc > ntot {
			nproc = ntot
		}
	}
	log.Printf("NumCPU = %d. Using %d workers for %d files", runtime.NumCPU(), nproc, ntot)

	tasks := make(chan skysim.Task, ntot+nproc)
	results := make(chan skysim.Result, ntot)

	seed := cfg.RandomSeed
	fileNum := 0
	for i, mass := range cfg.NFW.MassList {
		dir := filepath.Join(cfg.Output.Dir, fmt.Sprintf("nfw%d", i+1))
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("mkdir '%s': %v", dir, err)
		}
		for j := 0; j < nfiles; j++ {
			fullName := filepath.Join(dir, fmt.Sprintf("cluster%04d.fits", j+1))
			p := skysim.BuildParams{
				FileNum:  fileNum,
				FileName: fullName,
				Seed:     seed,
				Mass:     mass,
				InWorker: true,
			}
			tasks <- skysim.Task{
				Build: func(coord *extra.Coordinator) (time.Duration, error) {
					return skysim.BuildFile(&cfg, coord, p)
				},
				Info: fullName,
			}
			seed += cfg.SeedStride()
			fileNum++
		}
	}

	newCoord := func() *extra.Coordinator {
		return extra.NewCoordinator(extra.DefaultRegistry(), &cfg.Output)
	}

	t1 := time.Now()
	skysim.RunWorkers(nproc, newCoord, tasks, results)

	// Drain while the workers are still going; the log lines interleave
	// with files still being drawn
	hist := hdrhistogram.New(1, int64(time.Hour/time.Millisecond), 3)
	failed := 0
	for i := 0; i < ntot; i++ {
		r := <-results
		if r.Err != nil {
			failed++
			log.Printf("%s: file %s FAILED: %v", r.Worker, r.Info, r.Err)
			continue
		}
		hist.RecordValue(r.Dur.Milliseconds())
		log.Printf("%s: time for file %s was %.3fs", r.Worker, r.Info, r.Dur.Seconds())
	}

	for k := 0; k < nproc; k++ {
		tasks <- skysim.StopTask
	}

	log.Printf("Total time using %d workers = %.3fs", nproc, time.Since(t1).Seconds())
	if hist.TotalCount() > 0 {
		log.Printf("Per-file build time: p50 = %dms, p90 = %dms, max = %dms",
			hist.ValueAtQuantile(50), hist.ValueAtQuantile(90), hist.Max())
	}
	if failed > 0 {
		log.Fatalf("%d of %d files failed", failed, ntot)
	}
}
