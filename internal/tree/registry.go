// Package tree holds the module-instance hierarchy of the generated SoC.
//
// Nodes live in an append-only arena and refer to their parent by Handle,
// so ancestor walks never go through name lookups.
package tree

import "github.com/x-heep/socgen/internal/socerr"

// Handle indexes a Node in its Registry.
type Handle int

const (
	// Root is the handle of the pre-registered root node.
	Root Handle = 0
	// None is the parent handle of the root.
	None Handle = -1
)

// Node is one hierarchy level (one module instance).
type Node struct {
	Name   string
	Parent Handle
	Depth  int
}

// Registry owns every Node of a generation run.
type Registry struct {
	nodes  []Node
	byName map[string]Handle
}

// NewRegistry creates a registry holding only the root node.
func NewRegistry(root string) (*Registry, error) {
	if root == "" {
		return nil, socerr.New(socerr.ErrTypeMismatch, "register node", nil, "root name is empty")
	}
	return &Registry{
		nodes:  []Node{{Name: root, Parent: None}},
		byName: map[string]Handle{root: Root},
	}, nil
}

// Register appends a node under parent. Names are unique and the parent
// must already be registered.
func (r *Registry) Register(name, parent string) (Handle, error) {
	if name == "" {
		return None, socerr.New(socerr.ErrTypeMismatch, "register node", nil, "node name is empty")
	}
	if _, dup := r.byName[name]; dup {
		return None, socerr.New(socerr.ErrConfig, "register node", []string{name}, "duplicate node %s", name)
	}
	p, ok := r.byName[parent]
	if !ok {
		return None, socerr.New(socerr.ErrConfig, "register node", []string{name, parent},
			"node %s registered before its parent %s", name, parent)
	}
	h := Handle(len(r.nodes))
	r.nodes = append(r.nodes, Node{Name: name, Parent: p, Depth: r.nodes[p].Depth + 1})
	r.byName[name] = h
	return h, nil
}

// Lookup resolves a node name.
func (r *Registry) Lookup(name string) (Handle, bool) {
	h, ok := r.byName[name]
	return h, ok
}

// Node returns the node at h. h must come from this registry.
func (r *Registry) Node(h Handle) Node { return r.nodes[h] }

// Name returns the name of the node at h.
func (r *Registry) Name(h Handle) string { return r.nodes[h].Name }

// Len returns the number of nodes, root included.
func (r *Registry) Len() int { return len(r.nodes) }

// Handles returns every handle in registration order.
func (r *Registry) Handles() []Handle {
	out := make([]Handle, len(r.nodes))
	for i := range out {
		out[i] = Handle(i)
	}
	return out
}

// Path returns the handles from the root down to h, both included.
func (r *Registry) Path(h Handle) []Handle {
	path := make([]Handle, r.nodes[h].Depth+1)
	for i := len(path) - 1; i >= 0; i-- {
		path[i] = h
		h = r.nodes[h].Parent
	}
	return path
}

// LCA returns the deepest common ancestor of a and b: the last node of the
// longest common prefix of their root-first paths. A node is its own ancestor.
func (r *Registry) LCA(a, b Handle) Handle {
	pa, pb := r.Path(a), r.Path(b)
	lca := Root
	for i := 0; i < len(pa) && i < len(pb) && pa[i] == pb[i]; i++ {
		lca = pa[i]
	}
	return lca
}
