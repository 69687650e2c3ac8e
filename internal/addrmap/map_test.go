package addrmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-heep/socgen/internal/socerr"
)

func TestRegion_AllocateOnce(t *testing.T) {
	r, err := NewRegion("ao_peripherals", 0x20000000, 0x100000)
	require.NoError(t, err)

	require.NoError(t, r.Add(fixed(t, "SOC_ctrl", 0x0, 0x10000)))
	require.NoError(t, r.Add(floating(t, "Bootrom", 0x10000)))
	assert.ErrorIs(t, r.Add(floating(t, "Bootrom", 0x100)), socerr.ErrConfig)
	assert.ErrorIs(t, r.Add(fixed(t, "too_far", 0xff000, 0x2000)), socerr.ErrOverlap)

	require.NoError(t, r.Allocate())
	assert.True(t, r.Allocated())
	assert.ErrorIs(t, r.Allocate(), socerr.ErrConfig)
	assert.ErrorIs(t, r.Add(floating(t, "late", 0x10)), socerr.ErrConfig)

	c, ok := r.Lookup("Bootrom")
	require.True(t, ok)
	assert.Equal(t, uint64(0x10000), c.Offset)
}

func TestMap_EntriesAndLookup(t *testing.T) {
	ao, err := NewRegion("ao_peripherals", 0x20000000, 0x100000)
	require.NoError(t, err)
	require.NoError(t, ao.Add(floating(t, "gpio_ao", 0x10000)))
	require.NoError(t, ao.Add(fixed(t, "SOC_ctrl", 0x0, 0x10000)))
	require.NoError(t, ao.Allocate())

	per, err := NewRegion("peripherals", 0x30000000, 0x100000)
	require.NoError(t, err)
	require.NoError(t, per.Add(floating(t, "uart", 0x10000)))
	require.NoError(t, per.Allocate())

	m := NewMap()
	require.NoError(t, m.Add(per))
	require.NoError(t, m.Add(ao))

	e, ok := m.Lookup("ao_peripherals", "gpio_ao")
	require.True(t, ok)
	assert.Equal(t, uint64(0x20010000), e.Address)
	assert.Equal(t, uint64(0x10000), e.Offset)

	_, ok = m.Lookup("ao_peripherals", "uart")
	assert.False(t, ok)

	entries := m.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "SOC_ctrl", entries[0].Name)
	assert.Equal(t, "gpio_ao", entries[1].Name)
	assert.Equal(t, "uart", entries[2].Name)
}

func TestMap_RejectsOverlappingRegions(t *testing.T) {
	a, err := NewRegion("a", 0x1000, 0x1000)
	require.NoError(t, err)
	require.NoError(t, a.Allocate())
	b, err := NewRegion("b", 0x1800, 0x1000)
	require.NoError(t, err)
	require.NoError(t, b.Allocate())
	c, err := NewRegion("c", 0x9000, 0x10)
	require.NoError(t, err)

	m := NewMap()
	require.NoError(t, m.Add(a))
	assert.ErrorIs(t, m.Add(b), socerr.ErrOverlap)
	assert.ErrorIs(t, m.Add(c), socerr.ErrConfig)
	assert.ErrorIs(t, m.Add(a), socerr.ErrConfig)
}
