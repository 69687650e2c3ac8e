package api

// SoC is the declarative description of one generated system-on-chip.
// Addresses and lengths are strings so configs can use hex ("0x10000").
type SoC struct {
	// Name of the generated system.
	Name string `hcl:"name,optional" yaml:"name" json:"name"`
	// Bus is "onetoM" or "NtoM". Interleaved RAM needs NtoM.
	Bus string `hcl:"bus,optional" yaml:"bus" json:"bus"`
	// Root is the top hierarchy node; every Node descends from it.
	Root string `hcl:"root,optional" yaml:"root" json:"root"`

	RAM     *RAM     `hcl:"ram,block" yaml:"ram" json:"ram,omitempty"`
	Regions []Region `hcl:"region,block" yaml:"regions" json:"regions,omitempty"`
	Nodes   []Node   `hcl:"node,block" yaml:"nodes" json:"nodes,omitempty"`
	Sources []Source `hcl:"source,block" yaml:"sources" json:"sources,omitempty"`
	Targets []Target `hcl:"target,block" yaml:"targets" json:"targets,omitempty"`
}

// RAM describes the bank layout. Bank groups are appended in order, each
// adding its linker section; explicit Sections follow them.
type RAM struct {
	Start    string      `hcl:"start,optional" yaml:"start" json:"start,omitempty"`
	Window   string      `hcl:"window,optional" yaml:"window" json:"window,omitempty"`
	Banks    []BankGroup `hcl:"banks,block" yaml:"banks" json:"banks"`
	Sections []Section   `hcl:"section,block" yaml:"sections" json:"sections,omitempty"`
}

// BankGroup is either a list of continuous bank sizes or an interleaved
// group of Interleaved banks of Size KiB each.
type BankGroup struct {
	Section     string   `hcl:"section,label" yaml:"section" json:"section"`
	Sizes       []uint64 `hcl:"sizes,optional" yaml:"sizes" json:"sizes,omitempty"`
	Interleaved int      `hcl:"interleaved,optional" yaml:"interleaved" json:"interleaved,omitempty"`
	Size        uint64   `hcl:"size,optional" yaml:"size" json:"size,omitempty"`
}

// Section is an explicit linker section. An empty End is inferred.
type Section struct {
	Name  string `hcl:"name,label" yaml:"name" json:"name"`
	Start string `hcl:"start" yaml:"start" json:"start"`
	End   string `hcl:"end,optional" yaml:"end" json:"end,omitempty"`
}

// Region is a bounded address window holding components.
type Region struct {
	Name       string      `hcl:"name,label" yaml:"name" json:"name"`
	Base       string      `hcl:"base" yaml:"base" json:"base"`
	Length     string      `hcl:"length" yaml:"length" json:"length"`
	Components []Component `hcl:"component,block" yaml:"components" json:"components,omitempty"`
}

// Component is an addressable peripheral. An empty Offset lets the
// allocator choose.
type Component struct {
	Name   string `hcl:"name,label" yaml:"name" json:"name"`
	Length string `hcl:"length" yaml:"length" json:"length"`
	Offset string `hcl:"offset,optional" yaml:"offset" json:"offset,omitempty"`
}

// Node is one module-instance level of the hierarchy.
type Node struct {
	Name   string `hcl:"name,label" yaml:"name" json:"name"`
	Parent string `hcl:"parent" yaml:"parent" json:"parent"`
}

// Source drives a signal from Node. To optionally names its target.
type Source struct {
	Name    string `hcl:"name,label" yaml:"name" json:"name"`
	Node    string `hcl:"node" yaml:"node" json:"node"`
	Kind    string `hcl:"kind" yaml:"kind" json:"kind"`
	Variant string `hcl:"variant,optional" yaml:"variant" json:"variant,omitempty"`
	Width   int    `hcl:"width,optional" yaml:"width" json:"width,omitempty"`
	To      string `hcl:"to,optional" yaml:"to" json:"to,omitempty"`
}

// Target is a socket on Node accepting up to Capacity sources.
type Target struct {
	Name         string `hcl:"name,label" yaml:"name" json:"name"`
	Node         string `hcl:"node" yaml:"node" json:"node"`
	Kind         string `hcl:"kind" yaml:"kind" json:"kind"`
	Variant      string `hcl:"variant,optional" yaml:"variant" json:"variant,omitempty"`
	Width        int    `hcl:"width,optional" yaml:"width" json:"width,omitempty"`
	Capacity     int    `hcl:"capacity,optional" yaml:"capacity" json:"capacity,omitempty"`
	NotConnected string `hcl:"not_connected,optional" yaml:"not_connected" json:"not_connected,omitempty"`
}
