// Package db mirrors loaded feature collections into DuckDB tables for
// ad-hoc SQL.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/joeblew999/zurich-quartiere/internal/attr"
	"github.com/joeblew999/zurich-quartiere/internal/geodata"
)

// MaxRows caps the rows returned by Query.
const MaxRows = 1000

// Config holds database configuration. An empty DataDir opens an in-memory
// database.
type Config struct {
	DataDir string
	DBName  string
}

// Store is a DuckDB connection holding one table per collection.
type Store struct {
	db *sql.DB
}

// Open opens (and creates) the database.
func Open(cfg Config) (*Store, error) {
	dsn := ""
	if cfg.DataDir != "" {
		duckdbDir := filepath.Join(cfg.DataDir, "duckdb")
		if err := os.MkdirAll(duckdbDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create duckdb directory: %w", err)
		}
		name := cfg.DBName
		if name == "" {
			name = "zurichmap"
		}
		dsn = filepath.Join(duckdbDir, name+".duckdb")
	}
	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("duckdb: %w", err)
	}
	return &Store{db: conn}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// TableName is the table a collection is registered under.
func TableName(fc *geodata.FeatureCollection) string {
	d := fc.Digest()
	if len(d) > 12 {
		d = d[:12]
	}
	return "ds_" + d
}

var reserved = []string{"centroid_lon", "centroid_lat", "geometry"}

// columnName avoids clashes between attributes and the derived columns.
func columnName(col string) string {
	if slices.Contains(reserved, strings.ToLower(col)) {
		return col + "_attr"
	}
	return col
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Register (re)creates the table for fc: every attribute as unrounded VARCHAR plus
// centroid_lon, centroid_lat and the GeoJSON geometry text.
func (s *Store) Register(ctx context.Context, fc *geodata.FeatureCollection) (string, error) {
	table := TableName(fc)
	cols := fc.Columns()

	defs := make([]string, 0, len(cols)+3)
	for _, c := range cols {
		defs = append(defs, quote(columnName(c))+" VARCHAR")
	}
	defs = append(defs, "centroid_lon DOUBLE", "centroid_lat DOUBLE", "geometry VARCHAR")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)", quote(table), strings.Join(defs, ", "))); err != nil {
		return "", fmt.Errorf("create %s: %w", table, err)
	}

	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)+3), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", quote(table), marks))
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i := range fc.Len() {
		rec := fc.Record(i)
		args := make([]any, 0, len(cols)+3)
		for _, v := range rec.Values {
			if v == nil {
				args = append(args, nil)
				continue
			}
			args = append(args, attr.Raw(v))
		}
		lon, lat, geom := geometryColumns(rec)
		args = append(args, lon, lat, geom)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return "", fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return table, tx.Commit()
}

func geometryColumns(rec geodata.Record) (lon, lat, geom any) {
	if rec.Geometry == nil {
		return nil, nil, nil
	}
	if b, err := geojson.NewGeometry(rec.Geometry).MarshalJSON(); err == nil {
		geom = string(b)
	}
	c, _ := planar.CentroidArea(rec.Geometry)
	if math.IsNaN(c[0]) || math.IsNaN(c[1]) {
		return nil, nil, geom
	}
	return c[0], c[1], geom
}

// Tables lists the registered tables.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Result is the outcome of Query.
type Result struct {
	Columns   []string         `json:"columns" doc:"Result column names"`
	Rows      []map[string]any `json:"rows" doc:"Result rows keyed by column"`
	Count     int              `json:"count" doc:"Number of rows returned"`
	Truncated bool             `json:"truncated,omitempty" doc:"More than MaxRows rows matched"`
}

// Query runs an ad-hoc statement and returns at most MaxRows rows.
func (s *Store) Query(ctx context.Context, query string) (*Result, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := &Result{Columns: columns, Rows: []map[string]any{}}
	for rows.Next() {
		if res.Count == MaxRows {
			res.Truncated = true
			break
		}
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		res.Rows = append(res.Rows, row)
		res.Count++
	}
	return res, rows.Err()
}
