package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"planetforge.ai/internal/persistence/indexdb"
	"planetforge.ai/internal/presets"
	"planetforge.ai/internal/worker"
)

type runIndex interface {
	worker.Recorder
	Close() error
	UpsertPresets(ctx context.Context, rows []indexdb.PresetRow) error
	RecentRuns(ctx context.Context, limit int) ([]worker.Record, error)
	Stats() indexdb.Stats
}

func openRunIndex(dataDir string, disableDB bool, logger *log.Logger) (runIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("PF_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		logger.Printf("run index disabled (PF_INDEX_BACKEND=%s)", backend)
		return nil, nil
	case "sqlite":
		return indexdb.OpenSQLite(filepath.Join(dataDir, "index", "runs.sqlite"))
	default:
		return nil, fmt.Errorf("unsupported PF_INDEX_BACKEND: %s", backend)
	}
}

func presetRows(list []presets.Preset) []indexdb.PresetRow {
	rows := make([]indexdb.PresetRow, 0, len(list))
	for _, p := range list {
		rows = append(rows, indexdb.PresetRow{Name: p.Name, Digest: p.Digest, YAML: string(p.Raw)})
	}
	return rows
}
