package metrics

import (
	"testing"
)

func newTestStore(t *testing.T, metrics map[string]map[string]float64) *Store {
	t.Helper()
	store := NewStore()
	for name, stats := range metrics {
		store.Merge(name, stats)
	}
	return store
}
