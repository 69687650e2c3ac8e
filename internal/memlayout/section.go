package memlayout

import "github.com/x-heep/socgen/internal/socerr"

// LinkerSection is a named address range of the linker layout. A zero End
// means the end is inferred from the start of the next section, or from the
// end of RAM for the last one.
type LinkerSection struct {
	Name  string `json:"name"`
	Start uint64 `json:"start"`
	End   uint64 `json:"end,omitempty"`
}

// NewLinkerSection builds a section. Pass end 0 to infer it.
func NewLinkerSection(name string, start, end uint64) (LinkerSection, error) {
	if name == "" {
		return LinkerSection{}, socerr.New(socerr.ErrTypeMismatch, "section", nil, "section name is empty")
	}
	if end != 0 && end <= start {
		return LinkerSection{}, socerr.New(socerr.ErrTypeMismatch, "section", []string{name},
			"section %s: end 0x%x is not after start 0x%x", name, end, start)
	}
	return LinkerSection{Name: name, Start: start, End: end}, nil
}

// Length returns End-Start for a resolved section.
func (s LinkerSection) Length() uint64 {
	if s.End <= s.Start {
		return 0
	}
	return s.End - s.Start
}
