// Package report renders load-test results for humans and machines.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/shiimaxx/k6-summary/internal/metrics"
)

const (
	statusPass = "✅ PASS"
	statusFail = "❌ FAIL"
	statusOK   = "✅ OK"
	statusLow  = "⚠️ LOW"
	noValue    = "-"
)

var printer = message.NewPrinter(language.English)

// Render produces the Markdown summary for the given scalars and threshold
// evaluation. The output depends only on its arguments.
func Render(s metrics.Scalars, eval metrics.Evaluation) string {
	var b strings.Builder

	b.WriteString("## 📊 Performance Test Results\n\n")
	if eval.AllPassed {
		b.WriteString("### ✅ All Thresholds Passed\n\n")
	} else {
		b.WriteString("### ❌ Some Thresholds Failed\n\n")
	}

	b.WriteString("### 🌐 HTTP Request Metrics\n\n")
	b.WriteString("| Metric | Value | Status |\n")
	b.WriteString("|--------|-------|--------|\n")
	fmt.Fprintf(&b, "| Total Requests | %s | %s |\n", formatCount(s.TotalRequests), noValue)
	fmt.Fprintf(&b, "| Requests/sec | %s | %s |\n", formatDecimal(s.RequestsPerSecond), advisoryStatus(metrics.RequestRateHealthy(s)))
	fmt.Fprintf(&b, "| Failed Requests | %s (%s) | %s |\n",
		formatCount(s.FailedRequests), formatPercent(s.FailedRequestRate), thresholdStatus(eval, metrics.ThresholdFailedRate))

	b.WriteString("\n### ⏱️ Response Time Metrics\n\n")
	b.WriteString("| Percentile | Value | Threshold | Status |\n")
	b.WriteString("|------------|-------|-----------|--------|\n")
	fmt.Fprintf(&b, "| Average | %s | - | - |\n", formatMillis(s.DurationAvg))
	fmt.Fprintf(&b, "| Min | %s | - | - |\n", formatMillis(s.DurationMin))
	fmt.Fprintf(&b, "| Max | %s | - | - |\n", formatMillis(s.DurationMax))
	fmt.Fprintf(&b, "| **p90** | **%s** | **%s** | %s |\n",
		formatMillis(s.DurationP90), thresholdTarget(eval, metrics.ThresholdDurationP90), thresholdStatus(eval, metrics.ThresholdDurationP90))
	fmt.Fprintf(&b, "| p95 | %s | - | - |\n", formatMillis(s.DurationP95))
	fmt.Fprintf(&b, "| p99 | %s | - | - |\n", formatMillis(s.DurationP99))

	b.WriteString("\n### 🎯 Business Metrics\n\n")
	b.WriteString("| Metric | Value | Threshold | Status |\n")
	b.WriteString("|--------|-------|-----------|--------|\n")
	fmt.Fprintf(&b, "| Purchase Success Rate | %s | %s | %s |\n",
		formatPercent(s.PurchaseSuccessRate), thresholdTarget(eval, metrics.ThresholdPurchaseSuccess), thresholdStatus(eval, metrics.ThresholdPurchaseSuccess))
	fmt.Fprintf(&b, "| Successful Purchases | %s | - | - |\n", formatCount(s.PurchaseSuccessCount))
	fmt.Fprintf(&b, "| Total Iterations | %s | - | - |\n", formatCount(s.Iterations))

	b.WriteString("\n### 👥 Virtual Users\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Min VUs | %s |\n", formatCount(s.MinVUs))
	fmt.Fprintf(&b, "| Max VUs | %s |\n", formatCount(s.MaxVUs))

	b.WriteString("\n### 📋 Thresholds Summary\n\n")
	b.WriteString("| Threshold | Target | Actual | Status |\n")
	b.WriteString("|-----------|--------|--------|--------|\n")
	for _, r := range eval.Results {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			r.Threshold.Name, formatTarget(r.Threshold), formatActual(r.Threshold.Unit, r.Actual), passFail(r.Passed))
	}

	b.WriteString("\n---\n\n")
	b.WriteString("📦 **Artifacts**: Check the workflow artifacts for detailed JSON and CSV reports.\n")

	return b.String()
}

// RenderError produces the banner printed when results could not be processed.
func RenderError(err error) string {
	return fmt.Sprintf("## ❌ Error parsing results\n\nError: %v\n\nPlease check the k6 results file format.\n", err)
}

func thresholdStatus(eval metrics.Evaluation, id string) string {
	r, ok := eval.Result(id)
	if !ok {
		return noValue
	}
	return passFail(r.Passed)
}

func thresholdTarget(eval metrics.Evaluation, id string) string {
	r, ok := eval.Result(id)
	if !ok {
		return noValue
	}
	return formatTarget(r.Threshold)
}

func passFail(passed bool) string {
	if passed {
		return statusPass
	}
	return statusFail
}

func advisoryStatus(healthy bool) string {
	if healthy {
		return statusOK
	}
	return statusLow
}

// formatTarget renders a bound the way k6 thresholds are usually written,
// e.g. "< 2000ms" or "> 95%".
func formatTarget(t metrics.Threshold) string {
	bound := t.Bound
	suffix := "ms"
	if t.Unit == metrics.UnitPercent {
		bound *= 100
		suffix = "%"
	}
	return t.Operator + " " + formatBound(bound) + suffix
}

func formatActual(unit metrics.Unit, v float64) string {
	if unit == metrics.UnitPercent {
		return formatPercent(v)
	}
	return formatMillis(v)
}

func formatBound(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatMillis(v float64) string {
	return formatDecimal(v) + "ms"
}

func formatPercent(rate float64) string {
	return formatDecimal(rate*100) + "%"
}

func formatCount(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}
