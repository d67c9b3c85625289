package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/natefinch/atomic"
)

// WriteJSON writes records as a pretty-printed UTF-8 JSON array, keeping
// non-ASCII text as-is. The parent directory is created if absent and the
// file lands via an atomic rename.
func WriteJSON(path string, records []map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if records == nil {
		records = []map[string]any{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	slog.Info("saved JSON", slog.String("path", path), slog.Int("records", len(records)))
	return nil
}

// WriteCSV writes records with a header equal to the lexicographically
// sorted union of all keys; records missing a key render an empty cell.
// An empty batch skips the file entirely with a warning.
func WriteCSV(path string, records []map[string]any) error {
	if len(records) == 0 {
		slog.Warn("no records to write, skipping CSV", slog.String("path", path))
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	keySet := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			keySet[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(keys); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	row := make([]string, len(keys))
	for _, r := range records {
		for i, k := range keys {
			row[i] = csvValue(r[k])
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	slog.Info("saved CSV", slog.String("path", path), slog.Int("records", len(records)))
	return nil
}

// csvValue renders one cell. Scalars render plainly, absent values as the
// empty string and anything structured as its JSON text.
func csvValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
