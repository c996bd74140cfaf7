package extra

import(
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOrderPreserved(t *testing.T) {
	r := NewRegistry()
	r.Register("psf", func() Builder { return &BuilderBase{} })
	r.Register("weight", func() Builder { return &BuilderBase{} })
	r.Register("badpix", func() Builder { return &BuilderBase{} })

	spec := &OutputSpec{Kinds: map[string]*KindSpec{
		"badpix": {},
		"psf":    {},
		"weight": {},
	}}
	assert.Equal(t, []string{"psf", "weight", "badpix"}, r.ActiveKinds(spec))
}

func TestRegistryReRegisterKeepsPosition(t *testing.T) {
	r := NewRegistry()
	first := func() Builder { return &BuilderBase{} }
	r.Register("a", first)
	r.Register("b", first)

	marker := &struct{ BuilderBase }{}
	r.Register("a", func() Builder { return marker })

	spec := &OutputSpec{Kinds: map[string]*KindSpec{"a": {}, "b": {}}}
	assert.Equal(t, []string{"a", "b"}, r.ActiveKinds(spec))

	proto, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Same(t, Builder(marker), proto())
}

func TestActiveKindsFiltersExactly(t *testing.T) {
	r := NewRegistry()
	r.Register("psf", func() Builder { return &BuilderBase{} })
	r.Register("weight", func() Builder { return &BuilderBase{} })

	// spec names one registered kind plus one unknown kind
	spec := &OutputSpec{Kinds: map[string]*KindSpec{
		"weight":  {},
		"unknown": {},
	}}
	assert.Equal(t, []string{"weight"}, r.ActiveKinds(spec))

	// nothing requested, nothing active
	assert.Empty(t, r.ActiveKinds(&OutputSpec{}))
}

func TestDefaultRegistryHasBuiltins(t *testing.T) {
	for _, name := range []string{"psf", "weight", "badpix", "truth", "preview"} {
		_, ok := DefaultRegistry().Lookup(name)
		assert.True(t, ok, "builtin kind %s", name)
	}
}
