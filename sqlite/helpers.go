package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/fwojciec/serpblock"
)

// Keys of the record fields inside a key-value table.
const (
	keyVersion   = "version"
	keyBlocklist = "blocklist"
	keyDisabled  = "disabled"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// readTable returns all key-value pairs of a table.
func readTable(ctx context.Context, q queryer, table string) (map[string]string, error) {
	rows, err := q.QueryContext(ctx, "SELECT key, value FROM "+table)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	return values, nil
}

// recordFromValues builds a record from key-value pairs. An unparseable
// version reads as unversioned.
func recordFromValues(values map[string]string) *serpblock.Record {
	rec := &serpblock.Record{
		Blocklist: values[keyBlocklist],
		Disabled:  values[keyDisabled],
	}
	if v, ok := values[keyVersion]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			rec.Version = n
		}
	}
	return rec
}

// writeRecord upserts every field of rec into table.
func writeRecord(ctx context.Context, q queryer, table string, rec *serpblock.Record) error {
	fields := []struct {
		key   string
		value string
	}{
		{keyVersion, strconv.Itoa(rec.Version)},
		{keyBlocklist, rec.Blocklist},
		{keyDisabled, rec.Disabled},
	}
	for _, f := range fields {
		_, err := q.ExecContext(ctx, `
			INSERT INTO `+table+` (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, f.key, f.value)
		if err != nil {
			return fmt.Errorf("failed to write %s.%s: %w", table, f.key, err)
		}
	}
	return nil
}
