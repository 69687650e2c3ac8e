package endpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-heep/socgen/internal/socerr"
)

func TestNew_Defaults(t *testing.T) {
	for _, k := range []Kind{FastInterrupt, PLICInterrupt, DMATrigger, IOInput, IOOutput, IOOutputEnable} {
		ep, err := New(k)
		require.NoError(t, err, k.String())
		assert.Equal(t, 1, ep.Capacity)
		assert.Equal(t, "1'b0", ep.NotConnected)
		assert.Equal(t, k.String(), ep.TypeName())
	}

	_, err := New(Generic)
	assert.ErrorIs(t, err, socerr.ErrTypeMismatch)
	_, err = New(Kind(99))
	assert.ErrorIs(t, err, socerr.ErrTypeMismatch)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("dma_trigger")
	require.NoError(t, err)
	assert.Equal(t, DMATrigger, k)

	_, err = ParseKind("irq")
	assert.ErrorIs(t, err, socerr.ErrTypeMismatch)
}

func TestCompatible(t *testing.T) {
	fic, _ := New(FastInterrupt)
	plic, _ := New(PLICInterrupt)
	busA, err := NewGeneric("spi_bus", 2, 8, "")
	require.NoError(t, err)
	busB, err := NewGeneric("i2c_bus", 1, 8, "8'h0")
	require.NoError(t, err)

	assert.True(t, fic.Compatible(fic))
	assert.False(t, fic.Compatible(plic))
	assert.True(t, busA.Compatible(busA))
	assert.False(t, busA.Compatible(busB))
	assert.Equal(t, "'0", busA.NotConnected)
	assert.Equal(t, "8'h0", busB.NotConnected)
	assert.Equal(t, "generic:spi_bus", busA.TypeName())

	wide, err := plic.WithCapacity(4)
	require.NoError(t, err)
	assert.Equal(t, 4, wide.Capacity)
	assert.True(t, wide.Compatible(plic))

	_, err = plic.WithCapacity(0)
	assert.ErrorIs(t, err, socerr.ErrTypeMismatch)
	_, err = NewGeneric("", 1, 1, "")
	assert.ErrorIs(t, err, socerr.ErrTypeMismatch)
}
