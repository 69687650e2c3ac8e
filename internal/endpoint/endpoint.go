// Package endpoint models the signal endpoints that the routing helper
// connects: a closed set of kinds, each carrying its target capacity and the
// constant an unconnected target resolves to.
package endpoint

import (
	"fmt"

	"github.com/x-heep/socgen/internal/socerr"
)

// Kind is the concrete endpoint variant. Sources only match targets of the
// same Kind (and, for Generic, the same Variant).
type Kind int

const (
	FastInterrupt Kind = iota + 1
	PLICInterrupt
	DMATrigger
	IOInput
	IOOutput
	IOOutputEnable
	Generic
)

type kindInfo struct {
	name         string
	capacity     int
	notConnected string
	width        int
}

var kinds = map[Kind]kindInfo{
	FastInterrupt:  {"fast_intr", 1, "1'b0", 1},
	PLICInterrupt:  {"plic_intr", 1, "1'b0", 1},
	DMATrigger:     {"dma_trigger", 1, "1'b0", 1},
	IOInput:        {"io_in", 1, "1'b0", 1},
	IOOutput:       {"io_out", 1, "1'b0", 1},
	IOOutputEnable: {"io_oe", 1, "1'b0", 1},
	Generic:        {"generic", 1, "'0", 1},
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a configuration name such as "plic_intr" to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, info := range kinds {
		if info.name == s {
			return k, nil
		}
	}
	return 0, socerr.New(socerr.ErrTypeMismatch, "endpoint", []string{s}, "unknown endpoint kind %q", s)
}

// Endpoint is the typed description of one signal socket.
type Endpoint struct {
	Kind Kind
	// Variant distinguishes Generic endpoints; empty for the fixed kinds.
	Variant string
	// Capacity is the number of sources a target accepts before it is full.
	Capacity int
	// NotConnected is the value an unmatched target slot resolves to.
	NotConnected string
	Width        int
}

// New returns an endpoint of a fixed kind with its default capacity and
// not-connected constant.
func New(k Kind) (Endpoint, error) {
	info, ok := kinds[k]
	if !ok || k == Generic {
		return Endpoint{}, socerr.New(socerr.ErrTypeMismatch, "endpoint", []string{k.String()},
			"%s is not a fixed endpoint kind", k)
	}
	return Endpoint{
		Kind:         k,
		Capacity:     info.capacity,
		NotConnected: info.notConnected,
		Width:        info.width,
	}, nil
}

// NewGeneric returns a generic endpoint. Generic sources only match generic
// targets of the same variant. An empty notConnected selects the kind default.
func NewGeneric(variant string, capacity, width int, notConnected string) (Endpoint, error) {
	if variant == "" {
		return Endpoint{}, socerr.New(socerr.ErrTypeMismatch, "endpoint", nil, "generic endpoint needs a variant")
	}
	if capacity < 1 || width < 1 {
		return Endpoint{}, socerr.New(socerr.ErrTypeMismatch, "endpoint", []string{variant},
			"generic endpoint %s: capacity %d and width %d must be positive", variant, capacity, width)
	}
	if notConnected == "" {
		notConnected = kinds[Generic].notConnected
	}
	return Endpoint{
		Kind:         Generic,
		Variant:      variant,
		Capacity:     capacity,
		NotConnected: notConnected,
		Width:        width,
	}, nil
}

// WithCapacity returns a copy accepting n sources.
func (e Endpoint) WithCapacity(n int) (Endpoint, error) {
	if n < 1 {
		return Endpoint{}, socerr.New(socerr.ErrTypeMismatch, "endpoint", []string{e.Kind.String()},
			"capacity %d must be positive", n)
	}
	e.Capacity = n
	return e, nil
}

// Validate rejects endpoints not built by New or NewGeneric.
func (e Endpoint) Validate() error {
	if _, ok := kinds[e.Kind]; !ok {
		return socerr.New(socerr.ErrTypeMismatch, "endpoint", []string{e.Kind.String()}, "unknown endpoint kind %s", e.Kind)
	}
	if e.Capacity < 1 || e.Width < 1 {
		return socerr.New(socerr.ErrTypeMismatch, "endpoint", []string{e.TypeName()},
			"%s: capacity %d and width %d must be positive", e.TypeName(), e.Capacity, e.Width)
	}
	return nil
}

// Compatible reports whether a source of e may drive a target of o.
func (e Endpoint) Compatible(o Endpoint) bool {
	return e.Kind == o.Kind && e.Variant == o.Variant
}

// TypeName is the displayed variant, e.g. "plic_intr" or "generic:spi_bus".
func (e Endpoint) TypeName() string {
	if e.Kind == Generic {
		return "generic:" + e.Variant
	}
	return e.Kind.String()
}

// Role says whether an endpoint drives or receives a signal.
type Role int

const (
	Source Role = iota
	Target
)

func (r Role) String() string {
	if r == Source {
		return "source"
	}
	return "target"
}

// MarshalText renders the role by name.
func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }
