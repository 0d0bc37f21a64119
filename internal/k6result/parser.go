// Package k6result parses the JSON output written by k6 into a metrics.Store.
//
// Two input shapes are accepted. The primary one is line-delimited JSON as
// produced by `k6 run --out json`, where every line is an independent record.
// When no line yields a usable record the whole input is decoded as a single
// summary document (handleSummary data or --summary-export output).
package k6result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shiimaxx/k6-summary/internal/metrics"
)

// Stats describes how the input was consumed.
type Stats struct {
	Lines    int
	Records  int
	Skipped  int
	Fallback bool
}

// Parse reads all of r and returns the accumulated metric store. Lines that are
// not valid records are skipped; only read failures are returned as errors.
func Parse(r io.Reader) (*metrics.Store, Stats, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read results: %w", err)
	}

	store := metrics.NewStore()
	var stats Stats

	for _, raw := range bytes.Split(data, []byte("\n")) {
		line := bytes.TrimSpace(raw)
		if len(line) == 0 {
			continue
		}
		stats.Lines++

		rec, ok := classify(line)
		if !ok {
			stats.Skipped++
			continue
		}
		rec.apply(store)
		stats.Records++
	}

	if stats.Records == 0 {
		stats.Fallback = seedFromDocument(data, store)
	}

	return store, stats, nil
}

// summaryDocument is the single-document layout. Each metric entry either
// nests its statistics under "values" or holds them at the top level.
type summaryDocument struct {
	Metrics map[string]json.RawMessage `json:"metrics"`
}

// seedFromDocument decodes data as one JSON document and merges its top-level
// metrics map into store. It reports whether any metric was seeded.
func seedFromDocument(data []byte, store *metrics.Store) bool {
	var doc summaryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}

	seeded := false
	for name, data := range doc.Metrics {
		var entry map[string]any
		if !decodeObject(data, &entry) {
			continue
		}
		seeded = true

		if values, ok := entry["values"].(map[string]any); ok {
			store.Merge(name, numericValues(values))
			continue
		}
		store.Merge(name, numericValues(entry))
	}

	return seeded
}
