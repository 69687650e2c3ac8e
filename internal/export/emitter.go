package export

import (
	"fmt"
	"io"
	"log/slog"
	"path"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// NodesDir holds one plan file per hierarchy node.
const NodesDir = "nodes"

// Emitter writes snapshot files to a billy.Filesystem.
type Emitter struct {
	fs     billy.Filesystem
	format Format
	log    *slog.Logger
}

// NewEmitter creates an emitter writing format files into fs. A nil logger
// discards.
func NewEmitter(fs billy.Filesystem, format Format, log *slog.Logger) *Emitter {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Emitter{fs: fs, format: format, log: log}
}

// SnapshotFile is the name of the full snapshot written by Emit.
func (e *Emitter) SnapshotFile() string { return "snapshot" + e.format.Ext() }

// Emit writes the snapshot and the per-node plans, returning the written
// paths relative to the filesystem root.
func (e *Emitter) Emit(s *Snapshot) ([]string, error) {
	var written []string

	data, err := s.Encode(e.format)
	if err != nil {
		return nil, err
	}
	if err := util.WriteFile(e.fs, e.SnapshotFile(), data, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", e.SnapshotFile(), err)
	}
	written = append(written, e.SnapshotFile())

	if err := e.fs.MkdirAll(NodesDir, 0o755); err != nil {
		return written, fmt.Errorf("create %s: %w", NodesDir, err)
	}
	for _, n := range s.Routing.Nodes {
		if len(n.Ports) == 0 && len(n.Interfaces) == 0 && len(n.Signals) == 0 && len(n.Bindings) == 0 {
			e.log.Debug("node has no routing, skipped", "node", n.Name)
			continue
		}
		data, err := encode(n, e.format)
		if err != nil {
			return written, err
		}
		name := path.Join(NodesDir, n.Name+e.format.Ext())
		if err := util.WriteFile(e.fs, name, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, name)
	}

	e.log.Info("snapshot emitted", "root", e.fs.Root(), "format", e.format.String(), "files", len(written))
	return written, nil
}
