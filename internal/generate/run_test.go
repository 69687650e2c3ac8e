package generate

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-heep/socgen/api"
	"github.com/x-heep/socgen/internal/config"
	"github.com/x-heep/socgen/internal/routing"
	"github.com/x-heep/socgen/internal/socerr"
)

func minimalSoC() *api.SoC {
	return &api.SoC{
		Name: "mini",
		Bus:  "onetoM",
		Root: "top",
		RAM: &api.RAM{Banks: []api.BankGroup{
			{Section: "code", Sizes: []uint64{32}},
			{Section: "data", Sizes: []uint64{32}},
		}},
		Regions: []api.Region{{
			Name:   "ao_peripherals",
			Base:   "0x20000000",
			Length: "0x00100000",
			Components: []api.Component{
				{Name: "SOC_ctrl", Offset: "0x0", Length: "0x10000"},
				{Name: "Bootrom", Length: "0x10000"},
				{Name: "DMA", Length: "0x10000"},
			},
		}},
		Nodes: []api.Node{{Name: "A", Parent: "top"}, {Name: "B", Parent: "top"}},
		Sources: []api.Source{
			{Name: "dma_intr", Node: "A", Kind: "fast_intr"},
		},
		Targets: []api.Target{
			{Name: "fic", Node: "B", Kind: "fast_intr"},
		},
	}
}

func TestRun_Minimal(t *testing.T) {
	id := uuid.MustParse("7f0c7a52-8d39-4d2c-9a53-0c1f3a2b4e11")
	res, err := Run(minimalSoC(), Options{RunID: id})
	require.NoError(t, err)

	assert.Equal(t, id, res.RunID)
	assert.Equal(t, "mini", res.Name)

	for name, want := range map[string]uint64{"SOC_ctrl": 0x20000000, "Bootrom": 0x20010000, "DMA": 0x20020000} {
		e, ok := res.AddressMap.Lookup("ao_peripherals", name)
		require.True(t, ok, name)
		assert.Equal(t, want, e.Address, name)
	}

	sections := res.Memory.Sections()
	require.Len(t, sections, 2)
	assert.Equal(t, uint64(0x8000), sections[0].End)

	bundles := res.Routing.Bundles()
	require.Len(t, bundles, 1)
	assert.Equal(t, "top", bundles[0].Point)
}

func TestRun_Default(t *testing.T) {
	soc, err := config.Default()
	require.NoError(t, err)

	res, err := Run(soc, Options{})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.RunID)

	cases := map[string]uint64{
		"SOC_ctrl":  0x20000000,
		"Bootrom":   0x20010000,
		"uart":      0x20090000,
		"spi_flash": 0x200a0000,
		"spi_memio": 0x200a8000,
	}
	for name, want := range cases {
		e, ok := res.AddressMap.Lookup("ao_peripherals", name)
		require.True(t, ok, name)
		assert.Equal(t, want, e.Address, name)
	}
	e, ok := res.AddressMap.Lookup("peripherals", "spi_host")
	require.True(t, ok)
	assert.Equal(t, uint64(0x30010000), e.Address)

	byID := map[string]string{}
	for _, b := range res.Routing.Bundles() {
		byID[b.ID] = b.Point
	}
	assert.Equal(t, "core_v_mini_mcu", byID["ao_peripheral_subsystem__peripheral_subsystem_bundle"])
	assert.Equal(t, "x_heep_system", byID["ao_peripheral_subsystem__pad_ring_bundle"])

	mcu, ok := res.Routing.Node("core_v_mini_mcu")
	require.True(t, ok)
	assert.Contains(t, mcu.Interfaces, "ao_peripheral_subsystem__peripheral_subsystem_bundle")
	assert.Contains(t, mcu.Ports, routingPort("ao_peripheral_subsystem__pad_ring_bundle", "ao_peripheral_subsystem"))

	periph, _ := res.Routing.Node("peripheral_subsystem")
	var scl []string
	for _, b := range periph.Bindings {
		if b.Endpoint == "i2c_scl_in" {
			scl = b.Refs
		}
	}
	assert.Equal(t, []string{"1'b0"}, scl)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*api.SoC)
		want   error
	}{
		{"fixed overlap", func(s *api.SoC) {
			s.Regions[0].Components[1].Offset = "0x8000"
		}, socerr.ErrOverlap},
		{"region full", func(s *api.SoC) {
			s.Regions[0].Length = "0x20000"
		}, socerr.ErrNoSpace},
		{"bad address", func(s *api.SoC) {
			s.Regions[0].Base = "twenty"
		}, socerr.ErrTypeMismatch},
		{"no ram", func(s *api.SoC) {
			s.RAM = nil
		}, socerr.ErrConfig},
		{"interleave on onetoM", func(s *api.SoC) {
			s.RAM.Banks = append(s.RAM.Banks, api.BankGroup{Section: "il", Interleaved: 2, Size: 32})
		}, socerr.ErrConfig},
		{"sizes and interleaved", func(s *api.SoC) {
			s.Bus = "NtoM"
			s.RAM.Banks[1] = api.BankGroup{Section: "data", Sizes: []uint64{32}, Interleaved: 2, Size: 32}
		}, socerr.ErrConfig},
		{"node before parent", func(s *api.SoC) {
			s.Nodes = append([]api.Node{{Name: "C", Parent: "A"}}, s.Nodes...)
		}, socerr.ErrConfig},
		{"unknown kind", func(s *api.SoC) {
			s.Sources[0].Kind = "irq"
		}, socerr.ErrTypeMismatch},
		{"no target", func(s *api.SoC) {
			s.Targets[0].Kind = "plic_intr"
		}, socerr.ErrRouting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			soc := minimalSoC()
			tt.mutate(soc)
			res, err := Run(soc, Options{})
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, res)
		})
	}
}

func routingPort(bundle, toward string) routing.Port {
	return routing.Port{Bundle: bundle, Toward: toward}
}
