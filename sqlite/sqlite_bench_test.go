package sqlite_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/serpblock"
	"github.com/fwojciec/serpblock/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkWALMode compares write performance between WAL and rollback journal modes.
// This simulates a user adding patterns one at a time to a growing blocklist.
func BenchmarkWALMode(b *testing.B) {
	b.Run("rollback_journal", func(b *testing.B) {
		benchmarkRecordUpdates(b, false)
	})

	b.Run("wal_mode", func(b *testing.B) {
		benchmarkRecordUpdates(b, true)
	})
}

func benchmarkRecordUpdates(b *testing.B, useWAL bool) {
	b.Helper()

	tmpDir := b.TempDir()
	dbPath := filepath.Join(tmpDir, "bench.db")

	db := sqlite.NewDB(dbPath)
	require.NoError(b, db.Open())

	ctx := context.Background()
	if !useWAL {
		_, err := db.ExecContext(ctx, "PRAGMA journal_mode = DELETE")
		require.NoError(b, err)
	}

	defer func() {
		db.Close()
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	}()

	storage := sqlite.NewRecordStorage(db)
	var patterns []string

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		patterns = append(patterns, fmt.Sprintf("site%d.example.com", i))
		data, err := json.Marshal(patterns)
		require.NoError(b, err)

		err = storage.Update(ctx, func(rec *serpblock.Record) error {
			rec.Version = serpblock.StorageVersion
			rec.Blocklist = string(data)
			return nil
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}
