package extra

// The output block of a run configuration. Scalar keys configure the
// primary output files and run-wide write policy; every other key is an
// extra-output kind block.

import(
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

/* Example:

output:
  dir: output
  nfiles: 5
  nimages: 1
  retry_io: 2
  noclobber: false
  badpix:
    hdu: 1
  weight:
    hdu: 2
    include_obj_var: true
  psf:
    dir: output
    file_name: psf.fits
  truth:
    file_name: truth
  preview:
    file_name: preview.png
    downsample: 4
*/

type OutputSpec struct {
	Dir       string
	NFiles    int
	NImages   int // images per file
	RetryIO   int // additional write attempts beyond the first
	NoClobber bool

	// Kinds holds the extra-output blocks, keyed by kind name.
	Kinds map[string]*KindSpec
}

// KindSpec is the per-kind field configuration. Exactly one of FileName /
// Hdu is normally set; a kind with neither is compute-only and contributes
// nothing at write time.
type KindSpec struct {
	FileName string `yaml:"file_name"`
	Dir      string `yaml:"dir"`
	Hdu      *int   `yaml:"hdu"`

	// Builder-specific knobs
	IncludeObjVar bool `yaml:"include_obj_var"` // weight: add object flux to the variance
	Downsample    int  `yaml:"downsample"`      // preview: linear downsample factor
}

// outputScalars keeps the non-kind keys separable during unmarshalling.
type outputScalars struct {
	Dir       string `yaml:"dir"`
	NFiles    int    `yaml:"nfiles"`
	NImages   int    `yaml:"nimages"`
	RetryIO   int    `yaml:"retry_io"`
	NoClobber bool   `yaml:"noclobber"`
}

var scalarOutputKeys = map[string]bool{
	"dir": true, "nfiles": true, "nimages": true, "retry_io": true, "noclobber": true,
}

func (o *OutputSpec)UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s outputScalars
	if err := unmarshal(&s); err != nil {
		return err
	}
	o.Dir = s.Dir
	o.NFiles = s.NFiles
	o.NImages = s.NImages
	o.RetryIO = s.RetryIO
	o.NoClobber = s.NoClobber
	o.Kinds = map[string]*KindSpec{}

	// Round-trip the kind sub-blocks through yaml again, since their keys
	// are open-ended
	var raw map[string]interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	for key, val := range raw {
		if scalarOutputKeys[key] {
			continue
		}
		b, err := yaml.Marshal(val)
		if err != nil {
			return fmt.Errorf("output.%s: %v", key, err)
		}
		ks := &KindSpec{}
		if err := yaml.Unmarshal(b, ks); err != nil {
			return fmt.Errorf("output.%s: expected a mapping: %v", key, err)
		}
		o.Kinds[key] = ks
	}
	return nil
}

// ResolvePath builds the final path for a file-mode kind: the kind's dir if
// set, else the output-wide dir, joined with the file name, which gets a
// .fits extension if it has none.
func (o *OutputSpec)ResolvePath(field *KindSpec) string {
	name := field.FileName
	if filepath.Ext(name) == "" {
		name += ".fits"
	}
	dir := field.Dir
	if dir == "" {
		dir = o.Dir
	}
	if dir != "" {
		name = filepath.Join(dir, name)
	}
	return name
}
