// Package generate runs one synthesis pass over a SoC description: address
// allocation, memory layout and interconnect routing, in that order.
package generate

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/x-heep/socgen/api"
	"github.com/x-heep/socgen/internal/addrmap"
	"github.com/x-heep/socgen/internal/config"
	"github.com/x-heep/socgen/internal/endpoint"
	"github.com/x-heep/socgen/internal/memlayout"
	"github.com/x-heep/socgen/internal/routing"
	"github.com/x-heep/socgen/internal/socerr"
)

// Options tunes a run.
type Options struct {
	Logger *slog.Logger
	// RunID identifies the run in emitted artifacts; zero picks a random one.
	RunID uuid.UUID
}

// Result is everything the emitters consume.
type Result struct {
	RunID      uuid.UUID
	Name       string
	AddressMap *addrmap.Map
	Memory     *memlayout.Builder
	Routing    *routing.Plan
}

// Run synthesizes soc. Any failure aborts the run and no partial result is
// returned.
func Run(soc *api.SoC, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	id := opts.RunID
	if id == uuid.Nil {
		id = uuid.New()
	}
	log = log.With("run", id.String())

	amap, err := buildAddressMap(soc.Regions, log)
	if err != nil {
		return nil, fmt.Errorf("address allocation: %w", err)
	}
	mem, err := buildMemory(soc.Bus, soc.RAM, log)
	if err != nil {
		return nil, fmt.Errorf("memory layout: %w", err)
	}
	plan, err := buildRouting(soc, log)
	if err != nil {
		return nil, fmt.Errorf("routing: %w", err)
	}

	return &Result{
		RunID:      id,
		Name:       soc.Name,
		AddressMap: amap,
		Memory:     mem,
		Routing:    plan,
	}, nil
}

func buildAddressMap(regions []api.Region, log *slog.Logger) (*addrmap.Map, error) {
	amap := addrmap.NewMap()
	for _, rc := range regions {
		base, err := config.ParseAddr(rc.Name+".base", rc.Base)
		if err != nil {
			return nil, err
		}
		length, err := config.ParseAddr(rc.Name+".length", rc.Length)
		if err != nil {
			return nil, err
		}
		region, err := addrmap.NewRegion(rc.Name, base, length)
		if err != nil {
			return nil, err
		}
		for _, cc := range rc.Components {
			c, err := component(rc.Name, cc)
			if err != nil {
				return nil, err
			}
			if err := region.Add(c); err != nil {
				return nil, err
			}
		}
		if err := region.Allocate(); err != nil {
			return nil, err
		}
		if err := amap.Add(region); err != nil {
			return nil, err
		}
		for _, c := range region.ByOffset() {
			log.Debug("placed", "region", region.Name, "component", c.Name,
				"offset", fmt.Sprintf("0x%x", c.Offset), "length", fmt.Sprintf("0x%x", c.Length), "fixed", c.Fixed)
		}
		log.Info("region allocated", "region", region.Name,
			"base", fmt.Sprintf("0x%x", region.Base), "components", len(rc.Components))
	}
	return amap, nil
}

func component(region string, cc api.Component) (addrmap.Component, error) {
	field := region + "." + cc.Name
	length, err := config.ParseAddr(field+".length", cc.Length)
	if err != nil {
		return addrmap.Component{}, err
	}
	if cc.Offset == "" {
		return addrmap.NewFloating(cc.Name, length)
	}
	offset, err := config.ParseAddr(field+".offset", cc.Offset)
	if err != nil {
		return addrmap.Component{}, err
	}
	return addrmap.NewFixed(cc.Name, offset, length)
}

func buildMemory(busName string, ram *api.RAM, log *slog.Logger) (*memlayout.Builder, error) {
	if ram == nil {
		return nil, socerr.New(socerr.ErrConfig, "memory", nil, "no ram description")
	}
	bus, err := memlayout.ParseBus(busName)
	if err != nil {
		return nil, err
	}
	var start, window uint64
	if ram.Start != "" {
		if start, err = config.ParseAddr("ram.start", ram.Start); err != nil {
			return nil, err
		}
	}
	if ram.Window != "" {
		if window, err = config.ParseAddr("ram.window", ram.Window); err != nil {
			return nil, err
		}
	}
	b, err := memlayout.NewBuilder(bus, start, window)
	if err != nil {
		return nil, err
	}

	for _, g := range ram.Banks {
		switch {
		case g.Interleaved > 0 && len(g.Sizes) > 0:
			return nil, socerr.New(socerr.ErrConfig, "memory", []string{g.Section},
				"bank group %s sets both sizes and interleaved", g.Section)
		case g.Interleaved > 0:
			err = b.AddInterleavedBanks(g.Interleaved, g.Size, g.Section)
		default:
			err = b.AddBanks(g.Sizes, g.Section)
		}
		if err != nil {
			return nil, err
		}
	}
	for _, sc := range ram.Sections {
		s, err := section(sc)
		if err != nil {
			return nil, err
		}
		if err := b.AddLinkerSection(s); err != nil {
			return nil, err
		}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	log.Info("memory laid out", "bus", bus.String(), "banks", b.NumBanks(),
		"interleaved", b.NumInterleavedBanks(), "ram_size", fmt.Sprintf("0x%x", b.RAMSize()),
		"sections", len(b.Sections()))
	return b, nil
}

func section(sc api.Section) (memlayout.LinkerSection, error) {
	start, err := config.ParseAddr(sc.Name+".start", sc.Start)
	if err != nil {
		return memlayout.LinkerSection{}, err
	}
	var end uint64
	if sc.End != "" {
		if end, err = config.ParseAddr(sc.Name+".end", sc.End); err != nil {
			return memlayout.LinkerSection{}, err
		}
	}
	return memlayout.NewLinkerSection(sc.Name, start, end)
}

func buildRouting(soc *api.SoC, log *slog.Logger) (*routing.Plan, error) {
	h, err := routing.New(soc.Root, log)
	if err != nil {
		return nil, err
	}
	for _, n := range soc.Nodes {
		if err := h.RegisterNode(n.Name, n.Parent); err != nil {
			return nil, err
		}
	}
	for _, tc := range soc.Targets {
		ep, err := endpointFor(tc.Name, tc.Kind, tc.Variant, tc.Width, tc.Capacity, tc.NotConnected)
		if err != nil {
			return nil, err
		}
		if err := h.AddTarget(tc.Node, tc.Name, ep); err != nil {
			return nil, err
		}
	}
	for _, sc := range soc.Sources {
		ep, err := endpointFor(sc.Name, sc.Kind, sc.Variant, sc.Width, 0, "")
		if err != nil {
			return nil, err
		}
		if err := h.AddSource(sc.Node, sc.Name, ep, sc.To); err != nil {
			return nil, err
		}
	}
	return h.Route()
}

func endpointFor(name, kindName, variant string, width, capacity int, notConnected string) (endpoint.Endpoint, error) {
	kind, err := endpoint.ParseKind(kindName)
	if err != nil {
		return endpoint.Endpoint{}, fmt.Errorf("endpoint %s: %w", name, err)
	}
	if kind == endpoint.Generic {
		if capacity == 0 {
			capacity = 1
		}
		if width == 0 {
			width = 1
		}
		return endpoint.NewGeneric(variant, capacity, width, notConnected)
	}

	ep, err := endpoint.New(kind)
	if err != nil {
		return endpoint.Endpoint{}, err
	}
	if capacity > 0 {
		if ep, err = ep.WithCapacity(capacity); err != nil {
			return endpoint.Endpoint{}, err
		}
	}
	if width > 0 {
		ep.Width = width
	}
	if notConnected != "" {
		ep.NotConnected = notConnected
	}
	return ep, nil
}
