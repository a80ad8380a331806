// Package sqlite provides a SQLite-backed ports.SpecStore.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/netspec/pkg/adapters/sqlite/migrations"
	"github.com/aretw0/netspec/pkg/codec"
	"github.com/aretw0/netspec/pkg/ports"
	"github.com/aretw0/netspec/pkg/spec"
	_ "modernc.org/sqlite"
)

// Store persists specs in a single SQLite table. Payloads are written in the
// binary wire format; the format column lets Load decode rows written otherwise.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (or creates) the database at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// sqlite has a single writer
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ApplyMigrations(context.Background(), sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save upserts the spec.
func (s *Store) Save(ctx context.Context, name string, ms *spec.MasterSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	if ms == nil {
		return fmt.Errorf("save %s: nil spec", name)
	}
	payload, err := codec.Marshal(codec.Binary, ms)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO specs (name, format, payload, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   format = excluded.format,
		   payload = excluded.payload,
		   updated_at = excluded.updated_at`,
		name, string(codec.Binary), payload, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save spec %s: %w", name, err)
	}
	return nil
}

// Load reads and decodes the spec.
func (s *Store) Load(ctx context.Context, name string) (*spec.MasterSpec, error) {
	if err := ports.ValidateName(name); err != nil {
		return nil, err
	}

	var format string
	var payload []byte
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT format, payload FROM specs WHERE name = ?`, name,
	).Scan(&format, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrSpecNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load spec %s: %w", name, err)
	}

	f, err := codec.ParseFormat(format)
	if err != nil {
		return nil, fmt.Errorf("load spec %s: %w", name, err)
	}
	var ms spec.MasterSpec
	if err := codec.Unmarshal(f, payload, &ms); err != nil {
		return nil, fmt.Errorf("load spec %s: %w", name, err)
	}
	return &ms, nil
}

// Delete removes the spec. Missing rows are not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM specs WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete spec %s: %w", name, err)
	}
	return nil
}

// List returns all spec names in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT name FROM specs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list specs: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan spec name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list specs: %w", err)
	}
	return names, nil
}
