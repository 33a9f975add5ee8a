// Package store persists the tender history as a JSON array on disk.
//
// The store is append-only across runs: callers load it, merge scraped
// tenders in memory and write the whole array back. There is no locking or
// versioning; concurrent runs can race on the read-merge-write cycle and lose
// updates. Single scheduled invocation is the supported deployment.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tenderwatch/pkg/models"
)

// Load reads the tender history from path. A missing file, a file that does
// not contain a JSON array, or invalid JSON all yield an empty history, not
// an error: corruption means "nothing known yet" and the next save rewrites
// the file.
func Load(path string) []models.Tender {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("could not read tender store, starting empty", "path", path, "error", err)
		}
		return nil
	}

	var tenders []models.Tender
	if err := json.Unmarshal(data, &tenders); err != nil {
		slog.Warn("tender store is not a valid JSON array, starting empty", "path", path, "error", err)
		return nil
	}

	return tenders
}

// Save writes the full tender history to path, creating parent directories as
// needed. Unlike Load, a failed save is an error: silently dropping history
// would re-alert every stored tender on the next run.
func Save(path string, tenders []models.Tender) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(tenders, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tenders: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write tender store: %w", err)
	}

	return nil
}
