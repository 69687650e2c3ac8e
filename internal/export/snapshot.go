// Package export persists the result of a generation run: snapshot files in
// JSON or CBOR, a SQLite database of the address map and routing plan, and
// JSONPath queries over the snapshot.
package export

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"

	"github.com/x-heep/socgen/internal/addrmap"
	"github.com/x-heep/socgen/internal/generate"
	"github.com/x-heep/socgen/internal/memlayout"
	"github.com/x-heep/socgen/internal/routing"
	"github.com/x-heep/socgen/internal/socerr"
)

// Format is a snapshot encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatCBOR
)

func (f Format) String() string {
	if f == FormatCBOR {
		return "cbor"
	}
	return "json"
}

// Ext is the file extension of the format, dot included.
func (f Format) Ext() string { return "." + f.String() }

// ParseFormat accepts "json" and "cbor".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json", "":
		return FormatJSON, nil
	case "cbor":
		return FormatCBOR, nil
	}
	return 0, socerr.New(socerr.ErrConfig, "export", []string{s}, "unknown format %q", s)
}

// FormatOf picks the format from a file name.
func FormatOf(path string) (Format, error) {
	return ParseFormat(trimDot(filepath.Ext(path)))
}

func trimDot(ext string) string {
	if len(ext) > 0 && ext[0] == '.' {
		return ext[1:]
	}
	return ext
}

// Snapshot is the serializable view of a generate.Result.
type Snapshot struct {
	RunID   string   `json:"run_id"`
	Name    string   `json:"name"`
	Regions []Region `json:"regions"`
	Memory  Memory   `json:"memory"`
	Routing Routing  `json:"routing"`
}

type Region struct {
	Name       string          `json:"name"`
	Base       uint64          `json:"base"`
	Length     uint64          `json:"length"`
	Components []addrmap.Entry `json:"components"`
}

type Memory struct {
	Bus      string                    `json:"bus"`
	Base     uint64                    `json:"base"`
	End      uint64                    `json:"end"`
	Size     uint64                    `json:"size"`
	Banks    []Bank                    `json:"banks"`
	Groups   []Group                   `json:"interleaved_groups,omitempty"`
	Sections []memlayout.LinkerSection `json:"sections"`
}

type Bank struct {
	Name     string `json:"name"`
	Index    int    `json:"index"`
	SizeKiB  uint64 `json:"size_kib"`
	Start    uint64 `json:"start"`
	End      uint64 `json:"end"`
	ILLevel  uint   `json:"il_level,omitempty"`
	ILOffset uint64 `json:"il_offset,omitempty"`
}

type Group struct {
	Start     uint64 `json:"start"`
	Size      uint64 `json:"size"`
	Banks     int    `json:"banks"`
	FirstBank string `json:"first_bank"`
}

type Routing struct {
	Connections []routing.Connection `json:"connections"`
	Bundles     []routing.Bundle     `json:"bundles"`
	Nodes       []Node               `json:"nodes"`
}

// Node mirrors routing.NodePlan with the binding role spelled out, so both
// encodings carry the same text.
type Node struct {
	Name       string           `json:"name"`
	Parent     string           `json:"parent,omitempty"`
	Ports      []routing.Port   `json:"ports,omitempty"`
	Interfaces []string         `json:"interfaces,omitempty"`
	Signals    []routing.Signal `json:"signals,omitempty"`
	Bindings   []Binding        `json:"bindings,omitempty"`
}

type Binding struct {
	Endpoint string   `json:"endpoint"`
	Role     string   `json:"role"`
	Kind     string   `json:"kind"`
	Refs     []string `json:"refs"`
}

// NewSnapshot flattens res.
func NewSnapshot(res *generate.Result) *Snapshot {
	s := &Snapshot{
		RunID: res.RunID.String(),
		Name:  res.Name,
	}

	for _, r := range res.AddressMap.Regions() {
		sr := Region{Name: r.Name, Base: r.Base, Length: r.Length}
		for _, c := range r.ByOffset() {
			e, _ := res.AddressMap.Lookup(r.Name, c.Name)
			sr.Components = append(sr.Components, e)
		}
		s.Regions = append(s.Regions, sr)
	}

	mem := res.Memory
	s.Memory = Memory{
		Bus:      mem.Bus().String(),
		Base:     mem.Base(),
		End:      mem.End(),
		Size:     mem.RAMSize(),
		Sections: mem.Sections(),
	}
	for _, b := range mem.Banks() {
		s.Memory.Banks = append(s.Memory.Banks, Bank{
			Name:     b.Name,
			Index:    b.Index,
			SizeKiB:  b.SizeKiB,
			Start:    b.Start,
			End:      b.End(),
			ILLevel:  b.ILLevel,
			ILOffset: b.ILOffset,
		})
	}
	for _, g := range mem.ILGroups() {
		s.Memory.Groups = append(s.Memory.Groups, Group{Start: g.Start, Size: g.Size, Banks: g.N, FirstBank: g.FirstName})
	}

	plan := res.Routing
	s.Routing.Connections = plan.Connections()
	s.Routing.Bundles = plan.Bundles()
	for _, np := range plan.Nodes() {
		n := Node{
			Name:       np.Name,
			Parent:     np.Parent,
			Ports:      np.Ports,
			Interfaces: np.Interfaces,
			Signals:    np.Signals,
		}
		for _, b := range np.Bindings {
			n.Bindings = append(n.Bindings, Binding{Endpoint: b.Endpoint, Role: b.Role.String(), Kind: b.Kind, Refs: b.Refs})
		}
		s.Routing.Nodes = append(s.Routing.Nodes, n)
	}
	return s
}

// Encode serializes s. cbor falls back to the json field names.
func (s *Snapshot) Encode(f Format) ([]byte, error) {
	return encode(s, f)
}

func encode(v any, f Format) ([]byte, error) {
	if f == FormatCBOR {
		data, err := cbor.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode cbor: %w", err)
		}
		return data, nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a snapshot written by Encode.
func Decode(data []byte, f Format) (*Snapshot, error) {
	var s Snapshot
	var err error
	if f == FormatCBOR {
		err = cbor.Unmarshal(data, &s)
	} else {
		err = json.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s snapshot: %w", f, err)
	}
	return &s, nil
}
