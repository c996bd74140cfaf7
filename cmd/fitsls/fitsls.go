package main

// Lists the HDUs of FITS files, a quick check that the extra outputs landed
// in the slots they were configured for.

import(
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/astrogo/fitsio"
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		log.Fatal("usage: fitsls file.fits [...]")
	}

	for _, path := range flag.Args() {
		if err := list(path); err != nil {
			log.Fatalf("%s: %v", path, err)
		}
	}
}

func list(path string) error {
	r, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open '%s': %v", path, err)
	}
	defer r.Close()

	f, err := fitsio.Open(r)
	if err != nil {
		return fmt.Errorf("fits open '%s': %v", path, err)
	}
	defer f.Close()

	fmt.Printf("%s:\n", path)
	for i, hdu := range f.HDUs() {
		hdr := hdu.Header()
		fmt.Printf("  hdu %d: name=%q bitpix=%d axes=%v\n", i, hdu.Name(), hdr.Bitpix(), hdr.Axes())
	}
	return nil
}
