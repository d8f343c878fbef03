package serpblock

import "context"

// StorageVersion is the version marker written by the storage migration.
// Records without it predate versioning and are migrated once.
const StorageVersion = 1

// BlocklistService represents the authoritative, persisted set of blocked patterns.
// The list is kept sorted and free of duplicates.
type BlocklistService interface {
	// GetBlocklist returns a sorted window of the blocklist and its total size.
	GetBlocklist(ctx context.Context, filter BlocklistFilter) (*BlocklistPage, error)

	// AddPattern inserts a pattern. Adding an existing pattern is a no-op.
	// Returns EINVALID if the pattern is not a valid host.
	AddPattern(ctx context.Context, pattern string) error

	// AddPatterns inserts every pattern not yet present in a single write and
	// returns how many were actually added.
	AddPatterns(ctx context.Context, patterns []string) (int, error)

	// DeletePattern removes a pattern. Deleting an absent pattern is a no-op.
	DeletePattern(ctx context.Context, pattern string) error
}

// BlocklistFilter selects the window returned by GetBlocklist.
type BlocklistFilter struct {
	// Start is clamped to [0, total].
	Start int `json:"start"`

	// Num <= 0 returns everything from Start.
	Num int `json:"num"`
}

// BlocklistPage is a sorted window of the blocklist.
type BlocklistPage struct {
	Patterns []string `json:"blocklist"`
	Start    int      `json:"start"`
	Num      int      `json:"num"`
	Total    int      `json:"total"`

	// Revision fingerprints the whole list; it changes whenever the list does.
	Revision string `json:"revision"`
}

// Record is the persisted state layout: one synchronized key-value record.
type Record struct {
	Version int

	// Blocklist is the JSON-encoded, sorted array of patterns.
	Blocklist string

	// Disabled is "true" or "false".
	Disabled string
}

// RecordStorage persists the Record. Implementations must make Update and
// Migrate atomic with respect to other writers, including other processes
// sharing the same backing store.
type RecordStorage interface {
	// Load returns the current record. A missing record is returned zero-valued.
	Load(ctx context.Context) (*Record, error)

	// Update reads the latest record, passes it to fn and persists the
	// modified record. Nothing is written if fn returns an error.
	Update(ctx context.Context, fn func(rec *Record) error) error

	// Migrate is like Update but also passes the legacy, unversioned record
	// (nil if there is none). The legacy record is removed once the migrated
	// record carries a version.
	Migrate(ctx context.Context, fn func(rec *Record, legacy *Record) error) error
}
