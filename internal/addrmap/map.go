package addrmap

import (
	"sort"

	"github.com/x-heep/socgen/internal/socerr"
)

// Entry is one row of the address map.
type Entry struct {
	Region  string `json:"region"`
	Name    string `json:"name"`
	Offset  uint64 `json:"offset"`
	Address uint64 `json:"address"`
	Length  uint64 `json:"length"`
	Fixed   bool   `json:"fixed"`
}

// Map is the address map of all allocated regions.
type Map struct {
	regions []*Region
	byName  map[string]*Region
}

// NewMap returns an empty address map.
func NewMap() *Map {
	return &Map{byName: make(map[string]*Region)}
}

// Add inserts an allocated region. Region names are unique and regions must
// not overlap in absolute address space.
func (m *Map) Add(r *Region) error {
	if !r.Allocated() {
		return socerr.New(socerr.ErrConfig, "address map", []string{r.Name}, "region %s is not allocated", r.Name)
	}
	if _, dup := m.byName[r.Name]; dup {
		return socerr.New(socerr.ErrConfig, "address map", []string{r.Name}, "duplicate region %s", r.Name)
	}
	for _, o := range m.regions {
		if o.Base < r.Base+r.Length && r.Base < o.Base+o.Length {
			return socerr.New(socerr.ErrOverlap, "address map", []string{o.Name, r.Name},
				"region %s [0x%x, 0x%x) overlaps region %s [0x%x, 0x%x)",
				r.Name, r.Base, r.Base+r.Length, o.Name, o.Base, o.Base+o.Length)
		}
	}
	m.regions = append(m.regions, r)
	m.byName[r.Name] = r
	return nil
}

// Region returns the named region.
func (m *Map) Region(name string) (*Region, bool) {
	r, ok := m.byName[name]
	return r, ok
}

// Regions returns the regions in insertion order.
func (m *Map) Regions() []*Region {
	out := make([]*Region, len(m.regions))
	copy(out, m.regions)
	return out
}

// Lookup resolves a component of a region to its map entry.
func (m *Map) Lookup(region, name string) (Entry, bool) {
	r, ok := m.byName[region]
	if !ok {
		return Entry{}, false
	}
	c, ok := r.Lookup(name)
	if !ok {
		return Entry{}, false
	}
	return entry(r, c), true
}

// Entries returns every component sorted by absolute address.
func (m *Map) Entries() []Entry {
	var out []Entry
	for _, r := range m.regions {
		for _, c := range r.ByOffset() {
			out = append(out, entry(r, c))
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Address < out[b].Address })
	return out
}

func entry(r *Region, c Component) Entry {
	return Entry{
		Region:  r.Name,
		Name:    c.Name,
		Offset:  c.Offset,
		Address: r.Base + c.Offset,
		Length:  c.Length,
		Fixed:   c.Fixed,
	}
}
