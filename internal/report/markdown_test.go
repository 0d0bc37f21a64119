package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiimaxx/k6-summary/internal/metrics"
)

func evaluate(t *testing.T, s metrics.Scalars) metrics.Evaluation {
	t.Helper()
	eval, err := metrics.Evaluate(s, metrics.DefaultThresholds())
	require.NoError(t, err)
	return eval
}

func TestRender_AllPassed(t *testing.T) {
	s := metrics.Scalars{
		DurationAvg:          800,
		DurationMin:          120.456,
		DurationMax:          4100,
		DurationP90:          1500,
		DurationP95:          1800.5,
		DurationP99:          2900,
		TotalRequests:        1234567,
		RequestsPerSecond:    251.333,
		FailedRequests:       5,
		FailedRequestRate:    0.002,
		PurchaseSuccessRate:  0.97,
		PurchaseSuccessCount: 970,
		Iterations:           1000,
		MinVUs:               50,
		MaxVUs:               1200,
	}

	out := Render(s, evaluate(t, s))

	assert.Contains(t, out, "### ✅ All Thresholds Passed")
	assert.NotContains(t, out, "Some Thresholds Failed")
	assert.Contains(t, out, "| Total Requests | 1,234,567 | - |")
	assert.Contains(t, out, "| Requests/sec | 251.33 | ✅ OK |")
	assert.Contains(t, out, "| Failed Requests | 5 (0.20%) | ✅ PASS |")
	assert.Contains(t, out, "| Min | 120.46ms | - | - |")
	assert.Contains(t, out, "| **p90** | **1500.00ms** | **< 2000ms** | ✅ PASS |")
	assert.Contains(t, out, "| p95 | 1800.50ms | - | - |")
	assert.Contains(t, out, "| Purchase Success Rate | 97.00% | > 95% | ✅ PASS |")
	assert.Contains(t, out, "| Successful Purchases | 970 | - | - |")
	assert.Contains(t, out, "| Total Iterations | 1,000 | - | - |")
	assert.Contains(t, out, "| Max VUs | 1,200 |")
	assert.Contains(t, out, "| p90 Response Time | < 2000ms | 1500.00ms | ✅ PASS |")
	assert.Contains(t, out, "| Failed Requests | < 1% | 0.20% | ✅ PASS |")
	assert.Contains(t, out, "| Purchase Success | > 95% | 97.00% | ✅ PASS |")
	assert.True(t, strings.HasSuffix(out, "detailed JSON and CSV reports.\n"))
}

func TestRender_IndependentFailures(t *testing.T) {
	s := metrics.Scalars{DurationP90: 2500, FailedRequestRate: 0.005, PurchaseSuccessRate: 0.99, RequestsPerSecond: 120}

	out := Render(s, evaluate(t, s))

	assert.Contains(t, out, "### ❌ Some Thresholds Failed")
	assert.Contains(t, out, "| p90 Response Time | < 2000ms | 2500.00ms | ❌ FAIL |")
	assert.Contains(t, out, "| Failed Requests | < 1% | 0.50% | ✅ PASS |")
	assert.Contains(t, out, "| Purchase Success | > 95% | 99.00% | ✅ PASS |")
	assert.Contains(t, out, "| Requests/sec | 120.00 | ⚠️ LOW |")
}

func TestRender_SectionOrder(t *testing.T) {
	out := Render(metrics.Scalars{}, evaluate(t, metrics.Scalars{}))

	sections := []string{
		"## 📊 Performance Test Results",
		"### ❌ Some Thresholds Failed",
		"### 🌐 HTTP Request Metrics",
		"### ⏱️ Response Time Metrics",
		"### 🎯 Business Metrics",
		"### 👥 Virtual Users",
		"### 📋 Thresholds Summary",
		"📦 **Artifacts**",
	}

	last := -1
	for _, section := range sections {
		idx := strings.Index(out, section)
		require.NotEqual(t, -1, idx, "missing section %q", section)
		assert.Greater(t, idx, last, "section %q out of order", section)
		last = idx
	}
}

func TestRender_ZeroedInput(t *testing.T) {
	out := Render(metrics.Scalars{}, evaluate(t, metrics.Scalars{}))

	assert.Contains(t, out, "| Total Requests | 0 | - |")
	assert.Contains(t, out, "| Failed Requests | 0 (0.00%) | ✅ PASS |")
	assert.Contains(t, out, "| Average | 0.00ms | - | - |")
	assert.Contains(t, out, "| Purchase Success Rate | 0.00% | > 95% | ❌ FAIL |")
	assert.Contains(t, out, "| Min VUs | 0 |")
}

func TestRender_Deterministic(t *testing.T) {
	s := metrics.Scalars{DurationP90: 1999.999, TotalRequests: 42, FailedRequestRate: 0.0099}
	eval := evaluate(t, s)

	assert.Equal(t, Render(s, eval), Render(s, eval))
}

func TestRender_WithoutDefaultThresholds(t *testing.T) {
	out := Render(metrics.Scalars{}, metrics.Evaluation{AllPassed: true})

	assert.Contains(t, out, "| **p90** | **0.00ms** | **-** | - |")
	assert.Contains(t, out, "| Purchase Success Rate | 0.00% | - | - |")
}

func TestRenderError(t *testing.T) {
	out := RenderError(errors.New("boom"))

	assert.Equal(t, "## ❌ Error parsing results\n\nError: boom\n\nPlease check the k6 results file format.\n", out)
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "0"},
		{in: 999, want: "999"},
		{in: 1000, want: "1,000"},
		{in: 1234567.4, want: "1,234,567"},
		{in: 2.5, want: "3"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCount(tt.in))
	}
}

func TestFormatTarget(t *testing.T) {
	for _, th := range metrics.DefaultThresholds() {
		switch th.ID {
		case metrics.ThresholdDurationP90:
			assert.Equal(t, "< 2000ms", formatTarget(th))
		case metrics.ThresholdFailedRate:
			assert.Equal(t, "< 1%", formatTarget(th))
		case metrics.ThresholdPurchaseSuccess:
			assert.Equal(t, "> 95%", formatTarget(th))
		}
	}
}
