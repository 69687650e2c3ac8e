// Package addrmap places addressable components inside bounded address
// regions and exposes the resulting address map.
package addrmap

import (
	"fmt"
	"sort"

	"github.com/x-heep/socgen/internal/socerr"
)

// Component is an addressable item of a region. Offset is relative to the
// region start: given by the caller when Fixed, computed by Allocate otherwise.
type Component struct {
	Name   string
	Length uint64
	Fixed  bool
	Offset uint64
}

// End returns the first offset past the component.
func (c Component) End() uint64 { return c.Offset + c.Length }

// NewFixed builds a component at a caller-specified offset.
func NewFixed(name string, offset, length uint64) (Component, error) {
	if err := checkComponent(name, length); err != nil {
		return Component{}, err
	}
	if offset+length < offset {
		return Component{}, socerr.New(socerr.ErrTypeMismatch, "component", []string{name},
			"%s: offset 0x%x + length 0x%x overflows", name, offset, length)
	}
	return Component{Name: name, Length: length, Fixed: true, Offset: offset}, nil
}

// NewFloating builds a component whose offset is chosen by Allocate.
func NewFloating(name string, length uint64) (Component, error) {
	if err := checkComponent(name, length); err != nil {
		return Component{}, err
	}
	return Component{Name: name, Length: length}, nil
}

func checkComponent(name string, length uint64) error {
	if name == "" {
		return socerr.New(socerr.ErrTypeMismatch, "component", nil, "component name is empty")
	}
	if length == 0 {
		return socerr.New(socerr.ErrTypeMismatch, "component", []string{name}, "%s: length must be positive", name)
	}
	return nil
}

// interval is a free half-open range [start, end).
type interval struct {
	start, end uint64
}

func (iv interval) size() uint64 { return iv.end - iv.start }

// Allocate assigns offsets to every floating component of comps inside
// [0, regionLength) using first-fit-decreasing around the fixed ones.
//
// The result has the same order as comps. Fixed components keep their
// offsets. Floating components are placed largest first; equal lengths keep
// registration order. The heuristic can fail on inputs that a different
// order would fit.
func Allocate(regionLength uint64, comps []Component) ([]Component, error) {
	out := make([]Component, len(comps))
	copy(out, comps)

	seen := make(map[string]struct{}, len(out))
	var fixed, floating []int
	for i, c := range out {
		if _, dup := seen[c.Name]; dup {
			return nil, socerr.New(socerr.ErrConfig, "allocate", []string{c.Name}, "duplicate component %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		if c.Fixed {
			fixed = append(fixed, i)
		} else {
			floating = append(floating, i)
		}
	}

	sort.SliceStable(fixed, func(a, b int) bool { return out[fixed[a]].Offset < out[fixed[b]].Offset })
	sort.SliceStable(floating, func(a, b int) bool { return out[floating[a]].Length > out[floating[b]].Length })

	free := []interval{{0, regionLength}}
	placed := make([]int, 0, len(fixed))
	for _, idx := range fixed {
		c := out[idx]
		if c.End() < c.Offset {
			return nil, socerr.New(socerr.ErrOverlap, "allocate", []string{c.Name},
				"%s at 0x%x with length 0x%x overflows the address space", c.Name, c.Offset, c.Length)
		}
		if c.End() > regionLength {
			return nil, socerr.New(socerr.ErrOverlap, "allocate", []string{c.Name},
				"%s [0x%x, 0x%x) exceeds region length 0x%x", c.Name, c.Offset, c.End(), regionLength)
		}
		slot := containing(free, c.Offset, c.End())
		if slot < 0 {
			other := overlapping(out, placed, c)
			return nil, socerr.New(socerr.ErrOverlap, "allocate", []string{c.Name, other},
				"%s [0x%x, 0x%x) overlaps %s", c.Name, c.Offset, c.End(), other)
		}
		free = split(free, slot, c.Offset, c.End())
		placed = append(placed, idx)
	}

	for _, idx := range floating {
		c := &out[idx]
		slot := -1
		for i, iv := range free {
			if iv.size() >= c.Length {
				slot = i
				break
			}
		}
		if slot < 0 {
			return nil, socerr.New(socerr.ErrNoSpace, "allocate", []string{c.Name},
				"no free interval of 0x%x bytes for %s", c.Length, c.Name)
		}
		c.Offset = free[slot].start
		free[slot].start += c.Length
		if free[slot].size() == 0 {
			free = append(free[:slot], free[slot+1:]...)
		}
	}

	return out, nil
}

// containing returns the index of the free interval holding [start, end), or -1.
func containing(free []interval, start, end uint64) int {
	for i, iv := range free {
		if iv.start <= start && end <= iv.end {
			return i
		}
	}
	return -1
}

// split removes [start, end) from free[slot], keeping up to two remainders.
func split(free []interval, slot int, start, end uint64) []interval {
	iv := free[slot]
	var rest []interval
	if iv.start < start {
		rest = append(rest, interval{iv.start, start})
	}
	if end < iv.end {
		rest = append(rest, interval{end, iv.end})
	}
	out := make([]interval, 0, len(free)+1)
	out = append(out, free[:slot]...)
	out = append(out, rest...)
	return append(out, free[slot+1:]...)
}

func overlapping(comps []Component, placed []int, c Component) string {
	for _, idx := range placed {
		p := comps[idx]
		if p.Offset < c.End() && c.Offset < p.End() {
			return p.Name
		}
	}
	return "<unknown>"
}

// Validate checks that every component lies in [0, regionLength) and that no
// two components overlap. It does not modify comps.
func Validate(regionLength uint64, comps []Component) error {
	sorted := make([]Component, len(comps))
	copy(sorted, comps)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Offset < sorted[b].Offset })

	for i, c := range sorted {
		if c.End() > regionLength || c.End() < c.Offset {
			return socerr.New(socerr.ErrOverlap, "validate", []string{c.Name},
				"%s [0x%x, 0x%x) is outside region [0x0, 0x%x)", c.Name, c.Offset, c.End(), regionLength)
		}
		if i > 0 && sorted[i-1].End() > c.Offset {
			prev := sorted[i-1]
			return socerr.New(socerr.ErrOverlap, "validate", []string{prev.Name, c.Name},
				"%s [0x%x, 0x%x) overlaps %s [0x%x, 0x%x)",
				prev.Name, prev.Offset, prev.End(), c.Name, c.Offset, c.End())
		}
	}
	return nil
}

// String renders the component as name@offset+length.
func (c Component) String() string {
	return fmt.Sprintf("%s@0x%x+0x%x", c.Name, c.Offset, c.Length)
}
