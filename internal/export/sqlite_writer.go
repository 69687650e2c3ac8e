package export

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS components (
	run_id TEXT NOT NULL,
	region TEXT NOT NULL,
	name TEXT NOT NULL,
	region_offset INTEGER NOT NULL,
	address INTEGER NOT NULL,
	length INTEGER NOT NULL,
	fixed INTEGER NOT NULL,
	PRIMARY KEY (run_id, region, name)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS banks (
	run_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	name TEXT NOT NULL,
	size_kib INTEGER NOT NULL,
	start_addr INTEGER NOT NULL,
	end_addr INTEGER NOT NULL,
	il_level INTEGER NOT NULL,
	il_offset INTEGER NOT NULL,
	PRIMARY KEY (run_id, idx)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS sections (
	run_id TEXT NOT NULL,
	name TEXT NOT NULL,
	start_addr INTEGER NOT NULL,
	end_addr INTEGER NOT NULL,
	PRIMARY KEY (run_id, name)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS connections (
	run_id TEXT NOT NULL,
	source TEXT NOT NULL,
	target TEXT NOT NULL,
	source_node TEXT NOT NULL,
	target_node TEXT NOT NULL,
	kind TEXT NOT NULL,
	signal TEXT NOT NULL,
	width INTEGER NOT NULL,
	local INTEGER NOT NULL,
	bundle TEXT,
	cross_kind INTEGER NOT NULL,
	PRIMARY KEY (run_id, source)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS node_ports (
	run_id TEXT NOT NULL,
	node TEXT NOT NULL,
	bundle TEXT NOT NULL,
	toward TEXT NOT NULL,
	PRIMARY KEY (run_id, node, bundle)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS bindings (
	run_id TEXT NOT NULL,
	node TEXT NOT NULL,
	endpoint TEXT NOT NULL,
	role TEXT NOT NULL,
	kind TEXT NOT NULL,
	slot INTEGER NOT NULL,
	ref TEXT NOT NULL,
	PRIMARY KEY (run_id, endpoint, role, slot)
) WITHOUT ROWID;
`

var runTables = []string{"runs", "components", "banks", "sections", "connections", "node_ports", "bindings"}

// SQLiteWriter stores snapshots in a SQLite database, one run per snapshot.
type SQLiteWriter struct {
	db  *sql.DB
	log *slog.Logger
	mu  sync.Mutex
}

// NewSQLiteWriter opens (or creates) dbPath and initializes the schema.
func NewSQLiteWriter(dbPath string, log *slog.Logger) (*SQLiteWriter, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteWriter{db: db, log: log}, nil
}

// Write stores s in one transaction, replacing any earlier rows of the same
// run.
func (w *SQLiteWriter) Write(s *Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	tx, err := w.db.Begin()
	if err != nil {
		return err
	}
	if err := writeRun(tx, s); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", s.RunID, err)
	}
	w.log.Info("run stored", "run", s.RunID, "regions", len(s.Regions),
		"banks", len(s.Memory.Banks), "connections", len(s.Routing.Connections))
	return nil
}

func writeRun(tx *sql.Tx, s *Snapshot) error {
	id := s.RunID
	for _, table := range runTables {
		col := "run_id"
		if table == "runs" {
			col = "id"
		}
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE "+col+" = ?", id); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO runs (id, name, created) VALUES (?, ?, ?)`,
		id, s.Name, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	err := insertAll(tx, `INSERT INTO components (run_id, region, name, region_offset, address, length, fixed) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		func(stmt *sql.Stmt) error {
			for _, r := range s.Regions {
				for _, c := range r.Components {
					if _, err := stmt.Exec(id, c.Region, c.Name, int64(c.Offset), int64(c.Address), int64(c.Length), c.Fixed); err != nil {
						return fmt.Errorf("component %s: %w", c.Name, err)
					}
				}
			}
			return nil
		})
	if err != nil {
		return err
	}

	err = insertAll(tx, `INSERT INTO banks (run_id, idx, name, size_kib, start_addr, end_addr, il_level, il_offset) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		func(stmt *sql.Stmt) error {
			for _, b := range s.Memory.Banks {
				if _, err := stmt.Exec(id, b.Index, b.Name, int64(b.SizeKiB), int64(b.Start), int64(b.End), int64(b.ILLevel), int64(b.ILOffset)); err != nil {
					return fmt.Errorf("bank %s: %w", b.Name, err)
				}
			}
			return nil
		})
	if err != nil {
		return err
	}

	err = insertAll(tx, `INSERT INTO sections (run_id, name, start_addr, end_addr) VALUES (?, ?, ?, ?)`,
		func(stmt *sql.Stmt) error {
			for _, sec := range s.Memory.Sections {
				if _, err := stmt.Exec(id, sec.Name, int64(sec.Start), int64(sec.End)); err != nil {
					return fmt.Errorf("section %s: %w", sec.Name, err)
				}
			}
			return nil
		})
	if err != nil {
		return err
	}

	err = insertAll(tx, `INSERT INTO connections (run_id, source, target, source_node, target_node, kind, signal, width, local, bundle, cross_kind) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		func(stmt *sql.Stmt) error {
			for _, c := range s.Routing.Connections {
				var bundle *string
				if c.Bundle != "" {
					b := c.Bundle
					bundle = &b
				}
				if _, err := stmt.Exec(id, c.Source, c.Target, c.SourceNode, c.TargetNode, c.Kind, c.Signal, c.Width, c.Local, bundle, c.CrossKind); err != nil {
					return fmt.Errorf("connection %s: %w", c.Signal, err)
				}
			}
			return nil
		})
	if err != nil {
		return err
	}

	err = insertAll(tx, `INSERT INTO node_ports (run_id, node, bundle, toward) VALUES (?, ?, ?, ?)`,
		func(stmt *sql.Stmt) error {
			for _, n := range s.Routing.Nodes {
				for _, p := range n.Ports {
					if _, err := stmt.Exec(id, n.Name, p.Bundle, p.Toward); err != nil {
						return fmt.Errorf("port %s.%s: %w", n.Name, p.Bundle, err)
					}
				}
			}
			return nil
		})
	if err != nil {
		return err
	}

	return insertAll(tx, `INSERT INTO bindings (run_id, node, endpoint, role, kind, slot, ref) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		func(stmt *sql.Stmt) error {
			for _, n := range s.Routing.Nodes {
				for _, b := range n.Bindings {
					for slot, ref := range b.Refs {
						if _, err := stmt.Exec(id, n.Name, b.Endpoint, b.Role, b.Kind, slot, ref); err != nil {
							return fmt.Errorf("binding %s: %w", b.Endpoint, err)
						}
					}
				}
			}
			return nil
		})
}

func insertAll(tx *sql.Tx, query string, fn func(*sql.Stmt) error) error {
	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	return fn(stmt)
}

// Close closes the database.
func (w *SQLiteWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.db.Close()
}
