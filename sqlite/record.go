package sqlite

import (
	"context"
	"fmt"

	"github.com/fwojciec/serpblock"
)

// Compile-time interface verification.
var _ serpblock.RecordStorage = (*RecordStorage)(nil)

// RecordStorage implements serpblock.RecordStorage using SQLite.
type RecordStorage struct {
	db *DB
}

// NewRecordStorage creates a new RecordStorage.
func NewRecordStorage(db *DB) *RecordStorage {
	return &RecordStorage{db: db}
}

// Load returns the current record.
func (s *RecordStorage) Load(ctx context.Context) (*serpblock.Record, error) {
	values, err := readTable(ctx, s.db.db, syncTable)
	if err != nil {
		return nil, err
	}
	return recordFromValues(values), nil
}

// Update runs a read-modify-write of the record inside one transaction.
func (s *RecordStorage) Update(ctx context.Context, fn func(rec *serpblock.Record) error) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	values, err := readTable(ctx, tx, syncTable)
	if err != nil {
		return err
	}
	rec := recordFromValues(values)

	if err := fn(rec); err != nil {
		return err
	}

	if err := writeRecord(ctx, tx, syncTable, rec); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Migrate reads the current and the legacy record, lets fn rewrite the
// current one and drops the legacy area once the result is versioned.
func (s *RecordStorage) Migrate(ctx context.Context, fn func(rec, legacy *serpblock.Record) error) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	values, err := readTable(ctx, tx, syncTable)
	if err != nil {
		return err
	}
	rec := recordFromValues(values)

	legacyValues, err := readTable(ctx, tx, legacyTable)
	if err != nil {
		return err
	}
	var legacy *serpblock.Record
	if len(legacyValues) > 0 {
		legacy = recordFromValues(legacyValues)
	}

	if err := fn(rec, legacy); err != nil {
		return err
	}

	if err := writeRecord(ctx, tx, syncTable, rec); err != nil {
		return err
	}

	if rec.Version > 0 && legacy != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+legacyTable); err != nil {
			return fmt.Errorf("failed to clear legacy storage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// PutLegacy stores a record in the legacy, unversioned layout. Used to seed
// data exported by older installations before migrating it.
func (s *RecordStorage) PutLegacy(ctx context.Context, blocklist, disabled string) error {
	rows := map[string]string{keyBlocklist: blocklist, keyDisabled: disabled}
	for key, value := range rows {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO legacy_storage (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value)
		if err != nil {
			return fmt.Errorf("failed to write legacy %s: %w", key, err)
		}
	}
	return nil
}
