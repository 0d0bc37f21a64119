package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shiimaxx/k6-summary/internal/metrics"
)

// Summary is the machine-readable counterpart of the Markdown report.
type Summary struct {
	Passed     bool               `json:"passed"`
	Scalars    metrics.Scalars    `json:"scalars"`
	Thresholds []ThresholdOutcome `json:"thresholds"`
}

type ThresholdOutcome struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Metric    string  `json:"metric"`
	Statistic string  `json:"statistic"`
	Operator  string  `json:"operator"`
	Bound     float64 `json:"bound"`
	Actual    float64 `json:"actual"`
	Passed    bool    `json:"passed"`
}

func NewSummary(s metrics.Scalars, eval metrics.Evaluation) Summary {
	outcomes := make([]ThresholdOutcome, 0, len(eval.Results))
	for _, r := range eval.Results {
		outcomes = append(outcomes, ThresholdOutcome{
			ID:        r.Threshold.ID,
			Name:      r.Threshold.Name,
			Metric:    r.Threshold.Metric,
			Statistic: r.Threshold.Statistic,
			Operator:  r.Threshold.Operator,
			Bound:     r.Threshold.Bound,
			Actual:    r.Actual,
			Passed:    r.Passed,
		})
	}

	return Summary{
		Passed:     eval.AllPassed,
		Scalars:    s,
		Thresholds: outcomes,
	}
}

// WriteJSON writes the summary to path through a temporary file so readers
// never observe a partial document.
func WriteJSON(path string, s Summary) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	if err := enc.Encode(s); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode artifact: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close artifact: %w", err)
	}

	return os.Rename(tmp, path)
}
