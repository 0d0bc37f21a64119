package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_MergeLastWriteWins(t *testing.T) {
	store := NewStore()

	store.Merge("http_req_duration", map[string]float64{"a": 1})
	store.Merge("http_req_duration", map[string]float64{"a": 2, "b": 3})

	got, ok := store.Get("http_req_duration")
	require.True(t, ok)
	assert.Equal(t, map[string]float64{"a": 2, "b": 3}, got)
}

func TestStore_MergeKeepsUntouchedKeys(t *testing.T) {
	store := NewStore()

	store.Merge("vus", map[string]float64{"min": 1, "max": 10})
	store.Merge("vus", map[string]float64{"max": 50})

	assert.Equal(t, 1.0, store.Value("vus", "min"))
	assert.Equal(t, 50.0, store.Value("vus", "max"))
}

func TestStore_MergeNilInsertsName(t *testing.T) {
	store := NewStore()

	store.Merge("iterations", nil)

	got, ok := store.Get("iterations")
	require.True(t, ok)
	assert.Empty(t, got)
	assert.Equal(t, 1, store.Len())
}

func TestStore_NamesAreCaseSensitiveAndSorted(t *testing.T) {
	store := NewStore()

	store.Merge("vus", map[string]float64{"max": 1})
	store.Merge("VUs", map[string]float64{"max": 2})
	store.Merge("http_reqs", nil)

	assert.Equal(t, []string{"VUs", "http_reqs", "vus"}, store.Names())
	assert.Equal(t, 1.0, store.Value("vus", "max"))
	assert.Equal(t, 2.0, store.Value("VUs", "max"))
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore()
	store.Merge("http_reqs", map[string]float64{"count": 10})

	got, _ := store.Get("http_reqs")
	got["count"] = 99

	assert.Equal(t, 10.0, store.Value("http_reqs", "count"))
}

func TestStore_Value(t *testing.T) {
	store := NewStore()
	store.Merge("http_req_duration", map[string]float64{"p(90)": 1200, "p95": 1800, "avg": 640})
	store.Merge("empty", nil)

	tests := []struct {
		name   string
		metric string
		key    string
		want   float64
	}{
		{name: "literal key", metric: "http_req_duration", key: "avg", want: 640},
		{name: "bare percentile falls back to wrapped", metric: "http_req_duration", key: "p90", want: 1200},
		{name: "wrapped percentile falls back to bare", metric: "http_req_duration", key: "p(95)", want: 1800},
		{name: "numeric percentile", metric: "http_req_duration", key: "90", want: 1200},
		{name: "missing statistic", metric: "http_req_duration", key: "p99", want: 0},
		{name: "missing metric", metric: "purchase_success", key: "rate", want: 0},
		{name: "metric without statistics", metric: "empty", key: "count", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.Value(tt.metric, tt.key))
		})
	}
}

func TestStore_ValuePrefersLiteralSpelling(t *testing.T) {
	store := NewStore()
	store.Merge("http_req_duration", map[string]float64{"p90": 0, "p(90)": 900})

	assert.Equal(t, 0.0, store.Value("http_req_duration", "p90"))
	assert.Equal(t, 900.0, store.Value("http_req_duration", "p(90)"))
}
