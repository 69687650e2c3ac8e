package socerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsKind(t *testing.T) {
	err := New(ErrOverlap, "allocate", []string{"DMA", "SOC_ctrl"}, "%s overlaps %s", "DMA", "SOC_ctrl")

	assert.ErrorIs(t, err, ErrOverlap)
	assert.NotErrorIs(t, err, ErrNoSpace)
	assert.Equal(t, "allocate: overlap: DMA overlaps SOC_ctrl", err.Error())
}

func TestNames_ThroughWrapping(t *testing.T) {
	inner := New(ErrRouting, "route", []string{"uart_intr"}, "no target")
	wrapped := fmt.Errorf("generate: %w", inner)

	assert.True(t, errors.Is(wrapped, ErrRouting))
	assert.Equal(t, []string{"uart_intr"}, Names(wrapped))
	assert.Nil(t, Names(errors.New("plain")))
}
