package metrics

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

const (
	ThresholdDurationP90     = "http_req_duration_p90"
	ThresholdFailedRate      = "http_req_failed_rate"
	ThresholdPurchaseSuccess = "purchase_success_rate"

	// RequestRateTarget is the requests/sec level the report flags as healthy.
	// It is advisory and does not take part in threshold evaluation.
	RequestRateTarget = 250.0
)

// Unit controls how a threshold's bound and actual value are displayed.
type Unit int

const (
	UnitMilliseconds Unit = iota
	UnitPercent
)

// Threshold binds a metric statistic to a comparison against a fixed bound.
type Threshold struct {
	ID        string
	Name      string
	Metric    string
	Statistic string
	Operator  string
	Bound     float64
	Unit      Unit
}

// DefaultThresholds returns the thresholds the flight-booking scenario is
// judged by. A fresh slice is returned on every call.
func DefaultThresholds() []Threshold {
	return []Threshold{
		{
			ID:        ThresholdDurationP90,
			Name:      "p90 Response Time",
			Metric:    MetricHTTPReqDuration,
			Statistic: "p90",
			Operator:  "<",
			Bound:     2000,
			Unit:      UnitMilliseconds,
		},
		{
			ID:        ThresholdFailedRate,
			Name:      "Failed Requests",
			Metric:    MetricHTTPReqFailed,
			Statistic: "rate",
			Operator:  "<",
			Bound:     0.01,
			Unit:      UnitPercent,
		},
		{
			ID:        ThresholdPurchaseSuccess,
			Name:      "Purchase Success",
			Metric:    MetricPurchaseSuccess,
			Statistic: "rate",
			Operator:  ">",
			Bound:     0.95,
			Unit:      UnitPercent,
		},
	}
}

// ThresholdResult is the outcome of a single threshold.
type ThresholdResult struct {
	Threshold Threshold
	Actual    float64
	Passed    bool
}

// Evaluation holds every threshold outcome and their conjunction.
type Evaluation struct {
	Results   []ThresholdResult
	AllPassed bool
}

// Result returns the outcome of the threshold with the given ID.
func (e Evaluation) Result(id string) (ThresholdResult, bool) {
	for _, r := range e.Results {
		if r.Threshold.ID == id {
			return r, true
		}
	}
	return ThresholdResult{}, false
}

// thresholdEnv is the environment threshold expressions are evaluated against.
type thresholdEnv struct {
	Value float64 `expr:"value"`
	Bound float64 `expr:"bound"`
}

var validOperators = map[string]bool{
	"<":  true,
	"<=": true,
	">":  true,
	">=": true,
	"==": true,
	"!=": true,
}

// compileThreshold turns a threshold into a boolean expression program.
func compileThreshold(t Threshold) (*vm.Program, error) {
	if !validOperators[t.Operator] {
		return nil, fmt.Errorf("threshold %q: unsupported operator %q", t.ID, t.Operator)
	}

	program, err := expr.Compile("value "+t.Operator+" bound", expr.Env(thresholdEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("threshold %q: compile expression: %w", t.ID, err)
	}
	return program, nil
}

// Evaluate checks every threshold against the scalars. Each rule is evaluated
// even when an earlier one failed, so every outcome can be reported.
func Evaluate(s Scalars, thresholds []Threshold) (Evaluation, error) {
	eval := Evaluation{
		Results:   make([]ThresholdResult, 0, len(thresholds)),
		AllPassed: true,
	}

	for _, t := range thresholds {
		actual, ok := s.lookup(t.Metric, t.Statistic)
		if !ok {
			return Evaluation{}, fmt.Errorf("threshold %q: no scalar for %s %s", t.ID, t.Metric, t.Statistic)
		}

		program, err := compileThreshold(t)
		if err != nil {
			return Evaluation{}, err
		}

		out, err := vm.Run(program, thresholdEnv{Value: actual, Bound: t.Bound})
		if err != nil {
			return Evaluation{}, fmt.Errorf("threshold %q: evaluate expression: %w", t.ID, err)
		}

		passed := out.(bool)
		eval.Results = append(eval.Results, ThresholdResult{Threshold: t, Actual: actual, Passed: passed})
		eval.AllPassed = eval.AllPassed && passed
	}

	return eval, nil
}

// RequestRateHealthy reports whether the observed request rate reached
// RequestRateTarget.
func RequestRateHealthy(s Scalars) bool {
	return s.RequestsPerSecond >= RequestRateTarget
}
