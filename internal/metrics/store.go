package metrics

import (
	"maps"
	"slices"
)

// Store maintains the latest statistic values reported for each k6 metric.
type Store struct {
	metrics map[string]map[string]float64
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{metrics: make(map[string]map[string]float64)}
}

// Merge records stats under name. Keys already present are overwritten, so the
// last snapshot in the stream wins.
func (s *Store) Merge(name string, stats map[string]float64) {
	values, ok := s.metrics[name]
	if !ok {
		values = make(map[string]float64, len(stats))
		s.metrics[name] = values
	}

	for key, v := range stats {
		values[key] = v
	}
}

// Get returns a copy of the statistics stored for name.
func (s *Store) Get(name string) (map[string]float64, bool) {
	values, ok := s.metrics[name]
	if !ok {
		return nil, false
	}
	return maps.Clone(values), true
}

// Names returns the stored metric names in sorted order.
func (s *Store) Names() []string {
	return slices.Sorted(maps.Keys(s.metrics))
}

func (s *Store) Len() int {
	return len(s.metrics)
}

// Value returns the statistic key of metric, probing every alias spelling of
// key. Missing metrics or statistics resolve to 0.
func (s *Store) Value(metric, key string) float64 {
	values, ok := s.metrics[metric]
	if !ok {
		return 0
	}

	for _, alias := range StatisticAliases(key) {
		if v, ok := values[alias]; ok {
			return v
		}
	}
	return 0
}
