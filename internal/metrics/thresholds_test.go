package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_DefaultThresholds(t *testing.T) {
	tests := []struct {
		name        string
		scalars     Scalars
		wantP90     bool
		wantFailed  bool
		wantSuccess bool
		wantAll     bool
	}{
		{
			name:        "all pass",
			scalars:     Scalars{DurationP90: 1500, FailedRequestRate: 0.002, PurchaseSuccessRate: 0.97},
			wantP90:     true,
			wantFailed:  true,
			wantSuccess: true,
			wantAll:     true,
		},
		{
			name:        "slow p90 fails alone",
			scalars:     Scalars{DurationP90: 2500, FailedRequestRate: 0.005, PurchaseSuccessRate: 0.99},
			wantP90:     false,
			wantFailed:  true,
			wantSuccess: true,
			wantAll:     false,
		},
		{
			name:        "bounds are strict",
			scalars:     Scalars{DurationP90: 2000, FailedRequestRate: 0.01, PurchaseSuccessRate: 0.95},
			wantP90:     false,
			wantFailed:  false,
			wantSuccess: false,
			wantAll:     false,
		},
		{
			name:        "missing data",
			scalars:     Scalars{},
			wantP90:     true,
			wantFailed:  true,
			wantSuccess: false,
			wantAll:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := Evaluate(tt.scalars, DefaultThresholds())
			require.NoError(t, err)
			require.Len(t, eval.Results, 3)

			p90, ok := eval.Result(ThresholdDurationP90)
			require.True(t, ok)
			assert.Equal(t, tt.wantP90, p90.Passed)
			assert.Equal(t, tt.scalars.DurationP90, p90.Actual)

			failed, ok := eval.Result(ThresholdFailedRate)
			require.True(t, ok)
			assert.Equal(t, tt.wantFailed, failed.Passed)

			success, ok := eval.Result(ThresholdPurchaseSuccess)
			require.True(t, ok)
			assert.Equal(t, tt.wantSuccess, success.Passed)

			assert.Equal(t, tt.wantAll, eval.AllPassed)
		})
	}
}

func TestEvaluate_PreservesOrder(t *testing.T) {
	eval, err := Evaluate(Scalars{}, DefaultThresholds())
	require.NoError(t, err)

	var ids []string
	for _, r := range eval.Results {
		ids = append(ids, r.Threshold.ID)
	}
	assert.Equal(t, []string{ThresholdDurationP90, ThresholdFailedRate, ThresholdPurchaseSuccess}, ids)
}

func TestEvaluate_InvalidOperator(t *testing.T) {
	rules := []Threshold{{ID: "bad", Metric: MetricHTTPReqDuration, Statistic: "p90", Operator: "=>", Bound: 1}}

	_, err := Evaluate(Scalars{}, rules)
	assert.ErrorContains(t, err, "unsupported operator")
}

func TestEvaluate_UnknownScalar(t *testing.T) {
	rules := []Threshold{{ID: "bad", Metric: "checks", Statistic: "rate", Operator: ">", Bound: 0.9}}

	_, err := Evaluate(Scalars{}, rules)
	assert.ErrorContains(t, err, "no scalar")
}

func TestEvaluate_NoThresholds(t *testing.T) {
	eval, err := Evaluate(Scalars{}, nil)
	require.NoError(t, err)
	assert.True(t, eval.AllPassed)
	assert.Empty(t, eval.Results)
}

func TestDefaultThresholds_ReturnsFreshSlice(t *testing.T) {
	first := DefaultThresholds()
	first[0].Bound = 1

	assert.Equal(t, 2000.0, DefaultThresholds()[0].Bound)
}

func TestRequestRateHealthy(t *testing.T) {
	assert.True(t, RequestRateHealthy(Scalars{RequestsPerSecond: 250}))
	assert.False(t, RequestRateHealthy(Scalars{RequestsPerSecond: 249.99}))
}
