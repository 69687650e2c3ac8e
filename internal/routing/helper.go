// Package routing connects signal endpoints living at different levels of
// the module hierarchy and plans the wiring each module needs: bundle ports,
// local signals and the references used when instantiating each endpoint.
package routing

import (
	"io"
	"log/slog"

	"github.com/RoaringBitmap/roaring"

	"github.com/x-heep/socgen/internal/endpoint"
	"github.com/x-heep/socgen/internal/socerr"
	"github.com/x-heep/socgen/internal/tree"
)

type source struct {
	name string
	node tree.Handle
	ep   endpoint.Endpoint
	to   string
}

type target struct {
	name string
	node tree.Handle
	ep   endpoint.Endpoint
}

// Helper collects nodes and endpoints and routes them once.
type Helper struct {
	tree    *tree.Registry
	sources []source
	targets []target
	srcIdx  map[string]int
	tgtIdx  map[string]int
	routed  bool
	log     *slog.Logger
}

// New creates a helper whose tree holds only the root node. A nil logger
// discards.
func New(root string, log *slog.Logger) (*Helper, error) {
	if err := checkName("register node", "node", root); err != nil {
		return nil, err
	}
	reg, err := tree.NewRegistry(root)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Helper{
		tree:   reg,
		srcIdx: make(map[string]int),
		tgtIdx: make(map[string]int),
		log:    log,
	}, nil
}

// Tree exposes the node registry.
func (h *Helper) Tree() *tree.Registry { return h.tree }

// RegisterNode adds a node under parent. The parent must already exist and
// name may not contain Separator.
func (h *Helper) RegisterNode(name, parent string) error {
	if err := h.checkOpen("register node"); err != nil {
		return err
	}
	if err := checkName("register node", "node", name); err != nil {
		return err
	}
	_, err := h.tree.Register(name, parent)
	return err
}

// AddSource declares that node parent drives the signal name. A non-empty
// to names the target it must connect to; otherwise the first compatible
// target with spare capacity is chosen by Route.
func (h *Helper) AddSource(parent, name string, ep endpoint.Endpoint, to string) error {
	node, err := h.checkEndpoint("add source", parent, name, ep, h.srcIdx)
	if err != nil {
		return err
	}
	h.srcIdx[name] = len(h.sources)
	h.sources = append(h.sources, source{name: name, node: node, ep: ep, to: to})
	return nil
}

// AddTarget declares a socket on node parent accepting up to ep.Capacity sources.
func (h *Helper) AddTarget(parent, name string, ep endpoint.Endpoint) error {
	node, err := h.checkEndpoint("add target", parent, name, ep, h.tgtIdx)
	if err != nil {
		return err
	}
	h.tgtIdx[name] = len(h.targets)
	h.targets = append(h.targets, target{name: name, node: node, ep: ep})
	return nil
}

func (h *Helper) checkOpen(op string) error {
	if h.routed {
		return socerr.New(socerr.ErrConfig, op, nil, "routing already done")
	}
	return nil
}

func (h *Helper) checkEndpoint(op, parent, name string, ep endpoint.Endpoint, seen map[string]int) (tree.Handle, error) {
	if err := h.checkOpen(op); err != nil {
		return tree.None, err
	}
	if name == "" {
		return tree.None, socerr.New(socerr.ErrTypeMismatch, op, []string{parent}, "endpoint name is empty")
	}
	if err := checkName(op, "endpoint", name); err != nil {
		return tree.None, err
	}
	if err := ep.Validate(); err != nil {
		return tree.None, err
	}
	node, ok := h.tree.Lookup(parent)
	if !ok {
		return tree.None, socerr.New(socerr.ErrConfig, op, []string{name, parent},
			"endpoint %s on unknown node %s", name, parent)
	}
	if _, dup := seen[name]; dup {
		return tree.None, socerr.New(socerr.ErrConfig, op, []string{name}, "duplicate endpoint %s", name)
	}
	return node, nil
}

// Route matches every source to a target and plans the wiring. It runs once.
//
// Sources naming a target are matched first, in registration order, and
// skip the kind check. The others take the first compatible target, in
// registration order, that is not yet full.
func (h *Helper) Route() (*Plan, error) {
	if err := h.checkOpen("route"); err != nil {
		return nil, err
	}
	h.routed = true

	fill := make([]int, len(h.targets))
	full := roaring.New()
	matched := roaring.New()
	matches := make([]int, len(h.sources))

	take := func(si, ti int) {
		matches[si] = ti
		matched.Add(uint32(si))
		fill[ti]++
		if fill[ti] >= h.targets[ti].ep.Capacity {
			full.Add(uint32(ti))
		}
	}

	for si, s := range h.sources {
		if s.to == "" {
			continue
		}
		ti, ok := h.tgtIdx[s.to]
		if !ok {
			return nil, socerr.New(socerr.ErrRouting, "route", []string{s.name, s.to},
				"source %s names missing target %s", s.name, s.to)
		}
		if full.Contains(uint32(ti)) {
			return nil, socerr.New(socerr.ErrRouting, "route", []string{s.name, s.to},
				"source %s names full target %s (capacity %d)", s.name, s.to, h.targets[ti].ep.Capacity)
		}
		if t := h.targets[ti]; !s.ep.Compatible(t.ep) {
			h.log.Warn("named route crosses endpoint kinds",
				"source", s.name, "source_kind", s.ep.TypeName(),
				"target", t.name, "target_kind", t.ep.TypeName())
		}
		take(si, ti)
	}

	for si, s := range h.sources {
		if matched.Contains(uint32(si)) {
			continue
		}
		ti := -1
		for i, t := range h.targets {
			if !full.Contains(uint32(i)) && s.ep.Compatible(t.ep) {
				ti = i
				break
			}
		}
		if ti < 0 {
			return nil, socerr.New(socerr.ErrRouting, "route", []string{s.name},
				"no free %s target for source %s", s.ep.TypeName(), s.name)
		}
		take(si, ti)
	}

	plan, err := h.plan(matches)
	if err != nil {
		return nil, err
	}
	h.log.Info("routing done",
		"sources", len(h.sources), "targets", len(h.targets),
		"full_targets", full.GetCardinality(),
		"connections", len(plan.conns), "bundles", len(plan.bundles))
	return plan, nil
}
