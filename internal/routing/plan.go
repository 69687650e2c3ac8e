package routing

import (
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/x-heep/socgen/internal/endpoint"
	"github.com/x-heep/socgen/internal/socerr"
	"github.com/x-heep/socgen/internal/tree"
)

// Connection is one matched source/target pair.
type Connection struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	SourceNode string `json:"source_node"`
	TargetNode string `json:"target_node"`
	Kind       string `json:"kind"`
	Signal     string `json:"signal"`
	Width      int    `json:"width"`
	// Local is true when source and target share their owning node.
	Local bool `json:"local"`
	// Bundle is the bundle carrying the signal; empty when Local.
	Bundle string `json:"bundle,omitempty"`
	// Forward is true when the source sits on the first node of the
	// bundle's sorted pair.
	Forward bool `json:"forward,omitempty"`
	// CrossKind marks a named route between incompatible endpoint kinds.
	CrossKind bool `json:"cross_kind,omitempty"`
}

// BundleSignal is one signal carried by a bundle.
type BundleSignal struct {
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Forward bool   `json:"forward"`
}

// Bundle groups every signal exchanged between one unordered pair of nodes.
type Bundle struct {
	ID    string    `json:"id"`
	Pair  [2]string `json:"pair"`
	Point string    `json:"point"`
	// Members are the nodes exposing a bundle port: every node below Point
	// on the way to either end of Pair, the ends included.
	Members []string       `json:"members"`
	Signals []BundleSignal `json:"signals"`
}

// Port is a bundle port a node exposes. Toward is the end of the bundle's
// pair reached through the port.
type Port struct {
	Bundle string `json:"bundle"`
	Toward string `json:"toward"`
}

// Signal is a local wire declared inside a node.
type Signal struct {
	Name  string `json:"name"`
	Width int    `json:"width"`
}

// Binding is what an endpoint is connected to when its node instantiates it.
// Targets get one ref per capacity slot, unmatched slots holding the
// not-connected constant.
type Binding struct {
	Endpoint string        `json:"endpoint"`
	Role     endpoint.Role `json:"role"`
	Kind     string        `json:"kind"`
	Refs     []string      `json:"refs"`
}

// NodePlan is the routing artifact of one node.
type NodePlan struct {
	Name       string    `json:"name"`
	Parent     string    `json:"parent,omitempty"`
	Ports      []Port    `json:"ports,omitempty"`
	Interfaces []string  `json:"interfaces,omitempty"`
	Signals    []Signal  `json:"signals,omitempty"`
	Bindings   []Binding `json:"bindings,omitempty"`
}

// Plan is the result of Route.
type Plan struct {
	conns   []Connection
	bundles []Bundle
	nodes   []NodePlan
	byName  map[string]int
}

// Connections returns the matches in source registration order.
func (p *Plan) Connections() []Connection {
	out := make([]Connection, len(p.conns))
	copy(out, p.conns)
	return out
}

// Bundles returns the bundles in order of their first connection.
func (p *Plan) Bundles() []Bundle {
	out := make([]Bundle, len(p.bundles))
	copy(out, p.bundles)
	return out
}

// Nodes returns the per-node plans in node registration order.
func (p *Plan) Nodes() []NodePlan {
	out := make([]NodePlan, len(p.nodes))
	copy(out, p.nodes)
	return out
}

// Node returns the plan of the named node.
func (p *Plan) Node(name string) (NodePlan, bool) {
	i, ok := p.byName[name]
	if !ok {
		return NodePlan{}, false
	}
	return p.nodes[i], true
}

// Separator joins names inside generated identifiers. Node and endpoint
// names may not contain it.
const Separator = "__"

// SignalName is the identifier of the wire from source to target.
func SignalName(source, target string) string { return source + Separator + target }

// BundleID is the direction-independent identifier of the bundle between
// nodes a and b.
func BundleID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + Separator + b + "_bundle"
}

func checkName(op, what, name string) error {
	if strings.Contains(name, Separator) {
		return socerr.New(socerr.ErrTypeMismatch, op, []string{name},
			"%s name %q contains %q", what, name, Separator)
	}
	return nil
}

type nodePair struct{ a, b tree.Handle }

func pairOf(x, y tree.Handle) nodePair {
	if y < x {
		x, y = y, x
	}
	return nodePair{x, y}
}

func (h *Helper) plan(matches []int) (*Plan, error) {
	reg := h.tree
	p := &Plan{
		nodes:  make([]NodePlan, reg.Len()),
		byName: make(map[string]int, reg.Len()),
	}
	for _, hd := range reg.Handles() {
		n := reg.Node(hd)
		np := NodePlan{Name: n.Name}
		if n.Parent != tree.None {
			np.Parent = reg.Name(n.Parent)
		}
		p.nodes[hd] = np
		p.byName[n.Name] = int(hd)
	}

	bundleIdx := make(map[nodePair]int)
	bundleIDs := make(map[string]nodePair)
	signals := make(map[string]string)
	srcRef := make([]string, len(h.sources))
	tgtRefs := make([][]string, len(h.targets))

	for si, ti := range matches {
		s, t := h.sources[si], h.targets[ti]
		c := Connection{
			Source:     s.name,
			Target:     t.name,
			SourceNode: reg.Name(s.node),
			TargetNode: reg.Name(t.node),
			Kind:       s.ep.TypeName(),
			Signal:     SignalName(s.name, t.name),
			Width:      s.ep.Width,
			Local:      s.node == t.node,
			CrossKind:  !s.ep.Compatible(t.ep),
		}

		if prev, dup := signals[c.Signal]; dup {
			return nil, socerr.New(socerr.ErrConfig, "route", []string{prev, s.name},
				"sources %s and %s both produce signal %s", prev, s.name, c.Signal)
		}
		signals[c.Signal] = s.name

		ref := c.Signal
		if c.Local {
			np := &p.nodes[s.node]
			np.Signals = append(np.Signals, Signal{Name: c.Signal, Width: c.Width})
		} else {
			c.Bundle = BundleID(c.SourceNode, c.TargetNode)
			c.Forward = c.SourceNode < c.TargetNode
			key := pairOf(s.node, t.node)
			bi, ok := bundleIdx[key]
			if !ok {
				if other, dup := bundleIDs[c.Bundle]; dup {
					return nil, socerr.New(socerr.ErrConfig, "route",
						[]string{reg.Name(other.a), reg.Name(other.b), c.SourceNode, c.TargetNode},
						"node pairs (%s, %s) and (%s, %s) both map to bundle %s",
						reg.Name(other.a), reg.Name(other.b), c.SourceNode, c.TargetNode, c.Bundle)
				}
				bundleIDs[c.Bundle] = key
				bi = len(p.bundles)
				bundleIdx[key] = bi
				p.bundles = append(p.bundles, h.newBundle(p, c.Bundle, s.node, t.node))
			}
			b := &p.bundles[bi]
			b.Signals = append(b.Signals, BundleSignal{Name: c.Signal, Width: c.Width, Forward: c.Forward})
			ref = c.Bundle + "." + c.Signal
		}
		srcRef[si] = ref
		tgtRefs[ti] = append(tgtRefs[ti], ref)
		p.conns = append(p.conns, c)
		h.log.Debug("matched", "source", s.name, "target", t.name, "local", c.Local, "bundle", c.Bundle)
	}

	for si, s := range h.sources {
		np := &p.nodes[s.node]
		np.Bindings = append(np.Bindings, Binding{
			Endpoint: s.name,
			Role:     endpoint.Source,
			Kind:     s.ep.TypeName(),
			Refs:     []string{srcRef[si]},
		})
	}
	for ti, t := range h.targets {
		refs := tgtRefs[ti]
		for len(refs) < t.ep.Capacity {
			refs = append(refs, t.ep.NotConnected)
		}
		np := &p.nodes[t.node]
		np.Bindings = append(np.Bindings, Binding{
			Endpoint: t.name,
			Role:     endpoint.Target,
			Kind:     t.ep.TypeName(),
			Refs:     refs,
		})
	}
	return p, nil
}

// newBundle finds the bundling point of nodes x and y and records the ports
// and the interface instance along both paths.
func (h *Helper) newBundle(p *Plan, id string, x, y tree.Handle) Bundle {
	reg := h.tree
	a, b := x, y
	if reg.Name(b) < reg.Name(a) {
		a, b = b, a
	}
	point := reg.LCA(a, b)
	depth := reg.Node(point).Depth

	members := roaring.New()
	toward := make(map[uint32]string)
	for _, end := range []tree.Handle{a, b} {
		for _, n := range reg.Path(end)[depth+1:] {
			members.Add(uint32(n))
			toward[uint32(n)] = reg.Name(end)
		}
	}

	bundle := Bundle{
		ID:    id,
		Pair:  [2]string{reg.Name(a), reg.Name(b)},
		Point: reg.Name(point),
	}
	it := members.Iterator()
	for it.HasNext() {
		n := it.Next()
		bundle.Members = append(bundle.Members, reg.Name(tree.Handle(n)))
		np := &p.nodes[n]
		np.Ports = append(np.Ports, Port{Bundle: id, Toward: toward[n]})
	}
	p.nodes[point].Interfaces = append(p.nodes[point].Interfaces, id)
	return bundle
}
