package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/sediment-tracker/constants"
)

type DirStats struct {
	Scanned int // entries visited
	Matched int // ingestible files returned
	Hidden  int // hidden entries skipped
	Failed  int // entries that could not be read
}

// ScanDirectory walks root and returns the ingestible files in lexical order.
// Hidden files and directories are skipped when skipHidden is set. Unreadable
// entries are counted and logged, and the walk continues.
func ScanDirectory(root string, skipHidden bool, logger *slog.Logger) ([]string, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var files []string
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			logger.Warn("cannot read entry", "path", path, "error", walkErr)
			stats.Failed++
			return nil
		}
		if path == root {
			return nil
		}
		stats.Scanned++
		if skipHidden && isHidden(path) {
			stats.Hidden++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !Allowed(path) {
			return nil
		}
		stats.Matched++
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(files)
	logger.Info("directory scanned",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"hidden", stats.Hidden,
		"failed", stats.Failed,
	)
	return files, stats, nil
}

// Allowed reports whether path has an ingestible extension.
func Allowed(path string) bool {
	return constants.IsAllowedExt(filepath.Ext(path))
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
