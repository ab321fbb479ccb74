package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"showdown/internal/fileutil"
)

// Snapshot is the frozen catalog a rotation run consumes. Showdown order
// matches the index page and is the tie-break order for equal sort ranks.
type Snapshot struct {
	Showdowns []Dataset `json:"showdowns"`
}

// Len reports the number of showdowns in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Showdowns)
}

// BySlug returns the dataset for slug if present.
func (s Snapshot) BySlug(slug string) (Dataset, bool) {
	for _, dataset := range s.Showdowns {
		if dataset.Summary.Slug == slug {
			return dataset, true
		}
	}
	return Dataset{}, false
}

// Hash returns a stable digest of the snapshot content, recorded with each
// run so state can be traced back to the catalog it was computed from.
func (s Snapshot) Hash() string {
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Load reads a snapshot from path. A missing file is not an error: it returns
// an empty snapshot and ok=false so callers can distinguish "never probed"
// from a corrupt or unreadable cache.
func Load(path string) (Snapshot, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return snapshot, true, nil
}

// Save writes the snapshot to path, creating parent directories as needed.
// The write is atomic so a run interrupted mid-save never leaves a snapshot
// that the next run refuses to parse.
func Save(path string, snapshot Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := fileutil.WriteAtomic(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}
