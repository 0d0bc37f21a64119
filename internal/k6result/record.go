package k6result

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"

	"github.com/shiimaxx/k6-summary/internal/metrics"
)

const (
	typeMetric  = "Metric"
	typeSummary = "Summary"
)

// Record is one classified line of k6 JSON output. The set of implementations
// is closed: MetricRecord and SummaryRecord. Lines of any other type are
// skipped by the parser.
type Record interface {
	apply(store *metrics.Store)
}

// MetricRecord carries a snapshot of a single metric's statistics.
type MetricRecord struct {
	Name   string
	Values map[string]float64
}

func (r MetricRecord) apply(store *metrics.Store) {
	store.Merge(r.Name, r.Values)
}

// SummaryRecord carries statistics for any number of metrics. Metrics is nil
// when the summary line had no metrics object.
type SummaryRecord struct {
	Metrics map[string]map[string]float64
}

func (r SummaryRecord) apply(store *metrics.Store) {
	for _, name := range slices.Sorted(maps.Keys(r.Metrics)) {
		store.Merge(name, r.Metrics[name])
	}
}

type rawRecord struct {
	Type    string                    `json:"type"`
	Data    *rawMetricData            `json:"data"`
	Metrics map[string]json.RawMessage `json:"metrics"`
}

type rawMetricData struct {
	Name   string         `json:"name"`
	Values map[string]any `json:"values"`
}

type rawMetricEntry struct {
	Values map[string]any `json:"values"`
}

// classify decodes a single line. ok is false for invalid JSON, unknown record
// types and Metric records without a name.
func classify(line []byte) (Record, bool) {
	var raw rawRecord
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, false
	}

	switch raw.Type {
	case typeMetric:
		if raw.Data == nil || raw.Data.Name == "" {
			return nil, false
		}
		return MetricRecord{Name: raw.Data.Name, Values: numericValues(raw.Data.Values)}, true

	case typeSummary:
		rec := SummaryRecord{}
		if raw.Metrics != nil {
			rec.Metrics = make(map[string]map[string]float64, len(raw.Metrics))
			for name, data := range raw.Metrics {
				var entry rawMetricEntry
				if !decodeObject(data, &entry) {
					continue
				}
				rec.Metrics[name] = numericValues(entry.Values)
			}
		}
		return rec, true

	default:
		return nil, false
	}
}

// decodeObject decodes data into v when data is a JSON object. Entries of any
// other shape (numbers, strings, null) report false.
func decodeObject(data json.RawMessage, v any) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return json.Unmarshal(trimmed, v) == nil
}

// numericValues keeps the numeric members of a decoded statistics object.
// k6 mixes booleans and strings into some of these objects.
func numericValues(values map[string]any) map[string]float64 {
	if values == nil {
		return nil
	}

	out := make(map[string]float64, len(values))
	for key, v := range values {
		if f, ok := v.(float64); ok {
			out[key] = f
		}
	}
	return out
}
