package memlayout

import (
	"github.com/x-heep/socgen/internal/socerr"
)

const (
	// MinBanks and MaxBanks bound the total bank count of a valid layout.
	MinBanks = 2
	MaxBanks = 16
)

// Builder appends RAM banks at increasing addresses and records one linker
// section per call. It is append-only and scoped to one generation run.
type Builder struct {
	bus   Bus
	base  uint64
	limit uint64 // first address past the RAM window
	next  uint64

	banks    []Bank
	groups   []ILGroup
	sections []LinkerSection
	names    map[string]struct{}
}

// NewBuilder starts an empty layout at base. window is the size of the RAM
// address window; 0 means up to the end of the 32-bit address space.
func NewBuilder(bus Bus, base, window uint64) (*Builder, error) {
	if base%WordSize != 0 {
		return nil, socerr.New(socerr.ErrTypeMismatch, "memory", nil, "ram base 0x%x is not word aligned", base)
	}
	limit := uint64(1) << 32
	if window != 0 {
		limit = base + window
	}
	if limit <= base {
		return nil, socerr.New(socerr.ErrTypeMismatch, "memory", nil, "ram window [0x%x, 0x%x) is empty", base, limit)
	}
	return &Builder{
		bus:   bus,
		base:  base,
		limit: limit,
		next:  base,
		names: make(map[string]struct{}),
	}, nil
}

// AddBanks appends one continuous bank per size and a section starting at
// the first of them.
func (b *Builder) AddBanks(sizesKiB []uint64, section string) error {
	if len(sizesKiB) == 0 {
		return socerr.New(socerr.ErrConfig, "add banks", []string{section}, "no bank sizes for section %s", section)
	}
	if err := b.checkSectionName(section); err != nil {
		return err
	}

	addr := b.next
	banks := make([]Bank, 0, len(sizesKiB))
	for i, size := range sizesKiB {
		bank, err := NewBank(size, addr, len(b.banks)+i, 0, 0)
		if err != nil {
			return err
		}
		if err := b.checkFits(bank.Name, addr, bank.Size()); err != nil {
			return err
		}
		addr += bank.Size()
		banks = append(banks, bank)
	}

	start := b.next
	b.commit(banks, addr)
	b.appendSection(LinkerSection{Name: section, Start: start})
	return nil
}

// AddInterleavedBanks appends a group of count banks of sizeKiB each whose
// words are spread across the banks, and a section covering the group.
// count must be a power of two of at least 2 and the bus must be NtoM.
func (b *Builder) AddInterleavedBanks(count int, sizeKiB uint64, section string) error {
	if b.bus != BusNtoM {
		return socerr.New(socerr.ErrConfig, "add interleaved banks", []string{section},
			"interleaved banks need an NtoM bus, have %s", b.bus)
	}
	if count < 2 || !isPow2(uint64(count)) {
		return socerr.New(socerr.ErrConfig, "add interleaved banks", []string{section},
			"interleaved bank count %d is not a power of two >= 2", count)
	}
	if err := b.checkSectionName(section); err != nil {
		return err
	}

	level := log2(uint64(count))
	start := b.next
	banks := make([]Bank, 0, count)
	for i := 0; i < count; i++ {
		bank, err := NewBank(sizeKiB, start+uint64(i)*WordSize, len(b.banks)+i, level, uint64(i))
		if err != nil {
			return err
		}
		banks = append(banks, bank)
	}
	total := banks[0].Size() * uint64(count)
	if err := b.checkFits(banks[0].Name, start, total); err != nil {
		return err
	}

	b.groups = append(b.groups, ILGroup{
		Start:     start,
		Size:      total,
		N:         count,
		FirstName: banks[0].Name,
	})
	b.commit(banks, start+total)
	b.appendSection(LinkerSection{Name: section, Start: start})
	return nil
}

// AddLinkerSection appends an explicit section. Sections are kept in
// ascending start order.
func (b *Builder) AddLinkerSection(s LinkerSection) error {
	if _, err := NewLinkerSection(s.Name, s.Start, s.End); err != nil {
		return err
	}
	if err := b.checkSectionName(s.Name); err != nil {
		return err
	}
	if n := len(b.sections); n > 0 && s.Start < b.sections[n-1].Start {
		prev := b.sections[n-1]
		return socerr.New(socerr.ErrConfig, "add section", []string{s.Name, prev.Name},
			"section %s at 0x%x starts before %s at 0x%x", s.Name, s.Start, prev.Name, prev.Start)
	}
	b.appendSection(s)
	return nil
}

func (b *Builder) checkSectionName(name string) error {
	if name == "" {
		return socerr.New(socerr.ErrConfig, "section", nil, "section name is empty")
	}
	if _, dup := b.names[name]; dup {
		return socerr.New(socerr.ErrConfig, "section", []string{name}, "duplicate section %s", name)
	}
	return nil
}

func (b *Builder) checkFits(name string, start, size uint64) error {
	if start+size > b.limit || start+size < start {
		return socerr.New(socerr.ErrNoSpace, "memory", []string{name},
			"bank %s [0x%x, 0x%x) exceeds ram window end 0x%x", name, start, start+size, b.limit)
	}
	return nil
}

func (b *Builder) commit(banks []Bank, next uint64) {
	b.banks = append(b.banks, banks...)
	b.next = next
}

func (b *Builder) appendSection(s LinkerSection) {
	b.names[s.Name] = struct{}{}
	b.sections = append(b.sections, s)
}

// Bus returns the bus capability the builder was created with.
func (b *Builder) Bus() Bus { return b.bus }

// Base returns the first RAM address.
func (b *Builder) Base() uint64 { return b.base }

// End returns the first address past the last bank.
func (b *Builder) End() uint64 { return b.next }

// RAMSize returns the total bank capacity in bytes.
func (b *Builder) RAMSize() uint64 { return b.next - b.base }

// NumBanks returns the total bank count.
func (b *Builder) NumBanks() int { return len(b.banks) }

// NumInterleavedBanks returns the number of banks in interleaved groups.
func (b *Builder) NumInterleavedBanks() int {
	n := 0
	for _, g := range b.groups {
		n += g.N
	}
	return n
}

// NumContinuousBanks returns the number of continuous banks.
func (b *Builder) NumContinuousBanks() int { return len(b.banks) - b.NumInterleavedBanks() }

// HasIL reports whether any interleaved group exists.
func (b *Builder) HasIL() bool { return len(b.groups) > 0 }

// Banks returns a snapshot of the banks in placement order.
func (b *Builder) Banks() []Bank {
	out := make([]Bank, len(b.banks))
	copy(out, b.banks)
	return out
}

// ILGroups returns a snapshot of the interleaved groups.
func (b *Builder) ILGroups() []ILGroup {
	out := make([]ILGroup, len(b.groups))
	copy(out, b.groups)
	return out
}

// Sections returns the sections in order with inferred ends filled in.
func (b *Builder) Sections() []LinkerSection {
	out := make([]LinkerSection, len(b.sections))
	copy(out, b.sections)
	for i := range out {
		if out[i].End != 0 {
			continue
		}
		if i+1 < len(out) {
			out[i].End = out[i+1].Start
		} else {
			out[i].End = b.next
		}
	}
	return out
}

// Validate checks the finished layout: bank count, section order starting
// with code then data, and resolved sections ordered inside RAM.
func (b *Builder) Validate() error {
	if n := len(b.banks); n < MinBanks || n > MaxBanks {
		return socerr.New(socerr.ErrConfig, "validate memory", nil,
			"bank count %d outside [%d, %d]", n, MinBanks, MaxBanks)
	}

	sections := b.Sections()
	for i, want := range []string{"code", "data"} {
		if i >= len(sections) {
			return socerr.New(socerr.ErrConfig, "validate memory", []string{want}, "missing section %s", want)
		}
		if sections[i].Name != want {
			return socerr.New(socerr.ErrConfig, "validate memory", []string{sections[i].Name},
				"section %d must be %s, got %s", i, want, sections[i].Name)
		}
	}

	for i, s := range sections {
		if s.End <= s.Start {
			return socerr.New(socerr.ErrConfig, "validate memory", []string{s.Name},
				"section %s resolves to empty range [0x%x, 0x%x)", s.Name, s.Start, s.End)
		}
		if s.Start < b.base || s.End > b.next {
			return socerr.New(socerr.ErrOverlap, "validate memory", []string{s.Name},
				"section %s [0x%x, 0x%x) is outside ram [0x%x, 0x%x)", s.Name, s.Start, s.End, b.base, b.next)
		}
		if i > 0 && sections[i-1].End > s.Start {
			prev := sections[i-1]
			return socerr.New(socerr.ErrOverlap, "validate memory", []string{prev.Name, s.Name},
				"section %s ends at 0x%x after %s starts at 0x%x", prev.Name, prev.End, s.Name, s.Start)
		}
	}
	return nil
}
