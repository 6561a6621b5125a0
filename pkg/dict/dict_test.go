package dict

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderIntern(t *testing.T) {
	t.Run("dense first-seen codes", func(t *testing.T) {
		e := NewEncoder()

		assert.Equal(t, uint32(0), e.Intern(Parameter, "PM2.5"))
		assert.Equal(t, uint32(1), e.Intern(Parameter, "OZONE"))
		assert.Equal(t, uint32(2), e.Intern(Parameter, "CO"))
		assert.Equal(t, 3, e.Len(Parameter))
	})

	t.Run("repeated keys reuse codes", func(t *testing.T) {
		e := NewEncoder()

		first := e.Intern(Site, "Sacramento")
		second := e.Intern(Site, "Sacramento")
		assert.Equal(t, first, second)
		assert.Equal(t, 1, e.Len(Site))
	})

	t.Run("categories are independent", func(t *testing.T) {
		e := NewEncoder()

		assert.Equal(t, uint32(0), e.Intern(Parameter, "PM2.5"))
		assert.Equal(t, uint32(0), e.Intern(Unit, "UG/M3"))
		assert.Equal(t, uint32(1), e.Intern(Parameter, "UG/M3"))
	})
}

func TestEncoderLookup(t *testing.T) {
	e := NewEncoder()

	keys := []string{"United States", "Brazil", "Japan"}
	for _, k := range keys {
		code := e.Intern(CountryName, k)
		got, ok := e.Lookup(CountryName, code)
		require.True(t, ok)
		assert.Equal(t, k, got)
	}

	_, ok := e.Lookup(CountryName, 99)
	assert.False(t, ok)
}

func TestMerge(t *testing.T) {
	t.Run("disjoint sources extend target", func(t *testing.T) {
		dst := NewEncoder()
		a := NewEncoder()
		b := NewEncoder()

		a.Intern(Parameter, "PM2.5")
		a.Intern(Parameter, "OZONE")
		b.Intern(Parameter, "CO")

		remaps := Merge(dst, a, b)
		require.Len(t, remaps, 2)

		assert.Equal(t, 3, dst.Len(Parameter))
		assert.Equal(t, uint32(0), remaps[0].Apply(Parameter, 0))
		assert.Equal(t, uint32(1), remaps[0].Apply(Parameter, 1))
		assert.Equal(t, uint32(2), remaps[1].Apply(Parameter, 0))
	})

	t.Run("overlapping keys collapse to one code", func(t *testing.T) {
		dst := NewEncoder()
		a := NewEncoder()
		b := NewEncoder()

		a.Intern(Unit, "PPB")     // a:0
		a.Intern(Unit, "UG/M3")   // a:1
		b.Intern(Unit, "UG/M3")   // b:0, duplicate of a:1
		b.Intern(Unit, "PPM")     // b:1

		remaps := Merge(dst, a, b)

		assert.Equal(t, 3, dst.Len(Unit))
		assert.Equal(t, remaps[0].Apply(Unit, 1), remaps[1].Apply(Unit, 0))

		// Post-merge codes are authoritative: every remapped code resolves
		// back to the source key.
		key, ok := dst.Lookup(Unit, remaps[1].Apply(Unit, 0))
		require.True(t, ok)
		assert.Equal(t, "UG/M3", key)
	})

	t.Run("merge into non-empty target", func(t *testing.T) {
		dst := NewEncoder()
		dst.Intern(Agency, "EPA")

		src := NewEncoder()
		src.Intern(Agency, "CARB") // src:0
		src.Intern(Agency, "EPA")  // src:1, already in dst

		remaps := Merge(dst, src)

		assert.Equal(t, uint32(1), remaps[0].Apply(Agency, 0))
		assert.Equal(t, uint32(0), remaps[0].Apply(Agency, 1))
	})

	t.Run("deterministic for fixed source order", func(t *testing.T) {
		build := func() []Remap {
			srcs := make([]*Encoder, 4)
			for i := range srcs {
				srcs[i] = NewEncoder()
				for j := 0; j < 50; j++ {
					srcs[i].Intern(Site, fmt.Sprintf("site-%d-%d", i, j%17))
				}
			}
			return Merge(NewEncoder(), srcs...)
		}

		assert.Equal(t, build(), build())
	})
}

func TestRemapApplyOutOfRange(t *testing.T) {
	var r Remap
	assert.Equal(t, uint32(7), r.Apply(Parameter, 7))
}
