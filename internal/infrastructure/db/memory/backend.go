package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/agriconnect/platform/internal/core/ports"
)

// The memory store doubles as a DataBackend for the statement shapes the SQL
// helpers emit: SELECT * FROM t [WHERE id = ?], INSERT INTO t (...) VALUES
// (...), UPDATE t SET ... WHERE id = ?, DELETE FROM t WHERE id = ?. Anything
// else is rejected; this backend exists to run the gateway against fixtures,
// not to be a SQL engine.

var (
	selectRe = regexp.MustCompile(`(?is)^\s*select\s+\*\s+from\s+(\w+)(\s+where\s+id\s*=\s*\?)?\s*;?\s*$`)
	insertRe = regexp.MustCompile(`(?is)^\s*insert\s+into\s+(\w+)\s*\(([^)]+)\)\s*values\s*\(([^)]+)\)\s*;?\s*$`)
	updateRe = regexp.MustCompile(`(?is)^\s*update\s+(\w+)\s+set\s+(.+?)\s+where\s+id\s*=\s*\?\s*;?\s*$`)
	deleteRe = regexp.MustCompile(`(?is)^\s*delete\s+from\s+(\w+)\s+where\s+id\s*=\s*\?\s*;?\s*$`)
)

var _ ports.DataBackend = (*Store)(nil)

func (s *Store) Query(_ context.Context, sql string, params []any) ([]ports.Row, error) {
	m := selectRe.FindStringSubmatch(sql)
	if m == nil {
		return nil, unsupported(sql)
	}
	table := m[1]
	rows := s.GetAll(table)

	if m[2] != "" {
		id, err := paramID(params, 0)
		if err != nil {
			return nil, err
		}
		for _, rec := range rows {
			if rid, ok := recordID(rec); ok && rid == id {
				return []ports.Row{ports.Row(rec)}, nil
			}
		}
		return nil, nil
	}

	out := make([]ports.Row, len(rows))
	for i, rec := range rows {
		out[i] = ports.Row(rec)
	}
	return out, nil
}

func (s *Store) Run(_ context.Context, sql string, params []any) (ports.RunResult, error) {
	if m := insertRe.FindStringSubmatch(sql); m != nil {
		cols := splitIdentifiers(m[2])
		if n := strings.Count(m[3], "?"); n != len(cols) || len(params) != n {
			return ports.RunResult{}, fmt.Errorf("memory: %d columns but %d values", len(cols), len(params))
		}
		rec := make(Record, len(cols))
		for i, col := range cols {
			rec[col] = params[i]
		}
		created := s.Create(m[1], rec)
		id, _ := recordID(created)
		return ports.RunResult{LastInsertID: id, Changes: 1}, nil
	}

	if m := updateRe.FindStringSubmatch(sql); m != nil {
		cols := assignmentColumns(m[2])
		if len(params) != len(cols)+1 {
			return ports.RunResult{}, fmt.Errorf("memory: %d assignments but %d params", len(cols), len(params))
		}
		id, err := paramID(params, len(cols))
		if err != nil {
			return ports.RunResult{}, err
		}
		patch := make(Record, len(cols))
		for i, col := range cols {
			patch[col] = params[i]
		}
		if s.Update(m[1], id, patch) == nil {
			return ports.RunResult{Changes: 0}, nil
		}
		return ports.RunResult{LastInsertID: id, Changes: 1}, nil
	}

	if m := deleteRe.FindStringSubmatch(sql); m != nil {
		id, err := paramID(params, 0)
		if err != nil {
			return ports.RunResult{}, err
		}
		if s.Delete(m[1], id) == nil {
			return ports.RunResult{Changes: 0}, nil
		}
		return ports.RunResult{Changes: 1}, nil
	}

	return ports.RunResult{}, unsupported(sql)
}

func (s *Store) Execute(ctx context.Context, sql string, params []any) ([]ports.Row, error) {
	if selectRe.MatchString(sql) {
		return s.Query(ctx, sql, params)
	}
	if _, err := s.Run(ctx, sql, params); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Store) RunScript(ctx context.Context, script string) error {
	for _, stmt := range strings.Split(script, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.Execute(ctx, stmt, nil); err != nil {
			return err
		}
	}
	return nil
}

// snapshot is the serialized form of the whole store.
type snapshot struct {
	Tables map[string][]Record `json:"tables"`
	NextID map[string]int64    `json:"next_id"`
}

func (s *Store) ExportSnapshot(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(snapshot{Tables: s.tables, NextID: s.nextID})
}

func (s *Store) ImportSnapshot(_ context.Context, data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("memory: decode snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = snap.Tables
	if s.tables == nil {
		s.tables = make(map[string][]Record)
	}
	s.nextID = snap.NextID
	if s.nextID == nil {
		s.nextID = make(map[string]int64)
	}
	for table := range s.tables {
		s.ensureTable(table)
	}
	return nil
}

func (s *Store) ResetToSeed(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = make(map[string][]Record)
	s.nextID = make(map[string]int64)
	s.initialized = make(map[string]bool)
	s.loadFixtures()
	return nil
}

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func unsupported(sql string) error {
	return fmt.Errorf("memory: unsupported statement: %s", strings.TrimSpace(sql))
}

// paramID reads params[idx] as a row id.
func paramID(params []any, idx int) (int64, error) {
	if idx >= len(params) {
		return 0, fmt.Errorf("memory: missing id parameter")
	}
	switch v := params[idx].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("memory: bad id parameter %q", v)
		}
		return id, nil
	}
	return 0, fmt.Errorf("memory: bad id parameter %v", params[idx])
}

func splitIdentifiers(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// assignmentColumns parses "a = ?, b = ?" into column names.
func assignmentColumns(set string) []string {
	parts := strings.Split(set, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		col, _, _ := strings.Cut(p, "=")
		out = append(out, strings.TrimSpace(col))
	}
	return out
}
