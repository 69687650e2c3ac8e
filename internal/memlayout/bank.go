// Package memlayout builds the RAM bank layout of the SoC and derives the
// linker sections placed on it.
package memlayout

import (
	"fmt"
	"math/bits"
	"strconv"

	"github.com/x-heep/socgen/internal/socerr"
)

// WordSize is the interleaving granule in bytes.
const WordSize = 4

// Bus is the capability class of the system bus.
type Bus int

const (
	// BusOneToM is the one-master-to-many-slaves bus; no interleaving.
	BusOneToM Bus = iota
	// BusNtoM is the crossbar bus; required for interleaved banks.
	BusNtoM
)

func (b Bus) String() string {
	switch b {
	case BusOneToM:
		return "onetoM"
	case BusNtoM:
		return "NtoM"
	default:
		return fmt.Sprintf("Bus(%d)", int(b))
	}
}

// ParseBus maps a configuration string to a Bus.
func ParseBus(s string) (Bus, error) {
	switch s {
	case "onetoM", "onetom", "":
		return BusOneToM, nil
	case "NtoM", "ntom":
		return BusNtoM, nil
	}
	return 0, socerr.New(socerr.ErrTypeMismatch, "bus", []string{s}, "unknown bus type %q", s)
}

// Bank is one RAM bank.
//
// A continuous bank (ILLevel 0) covers [Start, Start+Size()). A bank of an
// interleaved group of 2^ILLevel banks serves every word whose index modulo
// the group count equals ILOffset; Start is its first word.
type Bank struct {
	Name     string
	SizeKiB  uint64
	Start    uint64
	Index    int
	ILLevel  uint
	ILOffset uint64
}

// NewBank validates and builds a bank.
func NewBank(sizeKiB, start uint64, index int, ilLevel uint, ilOffset uint64) (Bank, error) {
	name := strconv.Itoa(index)
	if !isPow2(sizeKiB) {
		return Bank{}, socerr.New(socerr.ErrConfig, "bank", []string{name},
			"bank %s: size %d KiB is not a power of two", name, sizeKiB)
	}
	if start%WordSize != 0 {
		return Bank{}, socerr.New(socerr.ErrTypeMismatch, "bank", []string{name},
			"bank %s: start 0x%x is not word aligned", name, start)
	}
	if ilLevel >= 32 || ilOffset >= 1<<ilLevel {
		return Bank{}, socerr.New(socerr.ErrTypeMismatch, "bank", []string{name},
			"bank %s: interleaving offset %d out of range for level %d", name, ilOffset, ilLevel)
	}
	return Bank{
		Name:     name,
		SizeKiB:  sizeKiB,
		Start:    start,
		Index:    index,
		ILLevel:  ilLevel,
		ILOffset: ilOffset,
	}, nil
}

// Size returns the bank capacity in bytes.
func (b Bank) Size() uint64 { return b.SizeKiB * 1024 }

// Interleaved reports whether the bank belongs to an interleaved group.
func (b Bank) Interleaved() bool { return b.ILLevel > 0 }

// End returns the first address past the address span the bank serves.
func (b Bank) End() uint64 {
	groupStart := b.Start - b.ILOffset*WordSize
	return groupStart + b.Size()<<b.ILLevel
}

// ILGroup describes one interleaved bank group.
type ILGroup struct {
	Start     uint64
	Size      uint64
	N         int
	FirstName string
}

// End returns the first address past the group.
func (g ILGroup) End() uint64 { return g.Start + g.Size }

func isPow2(v uint64) bool { return v != 0 && v&(v-1) == 0 }

func log2(v uint64) uint { return uint(bits.TrailingZeros64(v)) }
