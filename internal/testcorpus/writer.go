package testcorpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/okian/trustgraph/internal/adapters/source"
)

// Write encodes doc as the kind export of prefix under dir and returns its path.
func Write(dir, prefix string, kind source.Kind, doc any) (string, error) {
	path := filepath.Join(dir, source.FileName(prefix, kind))
	return path, WriteJSON(path, doc)
}

// WriteJSON encodes v to path, creating parent directories.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteRange writes an empty {graph}_{lo}_{hi}.json range marker under dir.
func WriteRange(dir, graph string, lo, hi uint64) (string, error) {
	name := graph + "_" + strconv.FormatUint(lo, 10) + "_" + strconv.FormatUint(hi, 10) + ".json"
	path := filepath.Join(dir, name)
	return path, WriteJSON(path, map[string]any{})
}
