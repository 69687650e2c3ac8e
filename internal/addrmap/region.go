package addrmap

import (
	"sort"

	"github.com/x-heep/socgen/internal/socerr"
)

// Region is a bounded interval [0, Length) of the address space, mapped at
// the absolute address Base, owning a set of components.
type Region struct {
	Name   string
	Base   uint64
	Length uint64

	comps     []Component
	index     map[string]int
	allocated bool
}

// NewRegion creates an empty region.
func NewRegion(name string, base, length uint64) (*Region, error) {
	if name == "" {
		return nil, socerr.New(socerr.ErrTypeMismatch, "region", nil, "region name is empty")
	}
	if length == 0 {
		return nil, socerr.New(socerr.ErrTypeMismatch, "region", []string{name}, "region %s: length must be positive", name)
	}
	if base+length < base {
		return nil, socerr.New(socerr.ErrTypeMismatch, "region", []string{name}, "region %s: base + length overflows", name)
	}
	return &Region{
		Name:   name,
		Base:   base,
		Length: length,
		index:  make(map[string]int),
	}, nil
}

// Add registers a component. Names are unique per region and components can
// only be added before Allocate.
func (r *Region) Add(c Component) error {
	if r.allocated {
		return socerr.New(socerr.ErrConfig, "region", []string{r.Name, c.Name},
			"region %s already allocated, cannot add %s", r.Name, c.Name)
	}
	if _, dup := r.index[c.Name]; dup {
		return socerr.New(socerr.ErrConfig, "region", []string{r.Name, c.Name},
			"duplicate component %s in region %s", c.Name, r.Name)
	}
	if c.Fixed && c.End() > r.Length {
		return socerr.New(socerr.ErrOverlap, "region", []string{r.Name, c.Name},
			"%s [0x%x, 0x%x) exceeds region %s length 0x%x", c.Name, c.Offset, c.End(), r.Name, r.Length)
	}
	r.index[c.Name] = len(r.comps)
	r.comps = append(r.comps, c)
	return nil
}

// Allocate places the floating components and validates the result. It runs
// once per region.
func (r *Region) Allocate() error {
	if r.allocated {
		return socerr.New(socerr.ErrConfig, "region", []string{r.Name}, "region %s already allocated", r.Name)
	}
	placed, err := Allocate(r.Length, r.comps)
	if err != nil {
		return err
	}
	if err := Validate(r.Length, placed); err != nil {
		return err
	}
	r.comps = placed
	r.allocated = true
	return nil
}

// Allocated reports whether Allocate has completed.
func (r *Region) Allocated() bool { return r.allocated }

// Components returns a snapshot of the components in registration order.
func (r *Region) Components() []Component {
	out := make([]Component, len(r.comps))
	copy(out, r.comps)
	return out
}

// ByOffset returns a snapshot of the components sorted by offset.
func (r *Region) ByOffset() []Component {
	out := r.Components()
	sort.SliceStable(out, func(a, b int) bool { return out[a].Offset < out[b].Offset })
	return out
}

// Lookup returns the named component.
func (r *Region) Lookup(name string) (Component, bool) {
	i, ok := r.index[name]
	if !ok {
		return Component{}, false
	}
	return r.comps[i], true
}
