package metrics

const (
	MetricHTTPReqDuration = "http_req_duration"
	MetricHTTPReqs        = "http_reqs"
	MetricHTTPReqFailed   = "http_req_failed"
	MetricPurchaseSuccess = "purchase_success"
	MetricIterations      = "iterations"
	MetricVUs             = "vus"
)

// Scalars are the summary values pulled out of a Store. Durations are in
// milliseconds and rates are fractions in [0, 1].
type Scalars struct {
	DurationAvg float64 `json:"duration_avg_ms"`
	DurationMin float64 `json:"duration_min_ms"`
	DurationMax float64 `json:"duration_max_ms"`
	DurationP90 float64 `json:"duration_p90_ms"`
	DurationP95 float64 `json:"duration_p95_ms"`
	DurationP99 float64 `json:"duration_p99_ms"`

	TotalRequests     float64 `json:"total_requests"`
	RequestsPerSecond float64 `json:"requests_per_second"`

	FailedRequests    float64 `json:"failed_requests"`
	FailedRequestRate float64 `json:"failed_request_rate"`

	PurchaseSuccessRate  float64 `json:"purchase_success_rate"`
	PurchaseSuccessCount float64 `json:"purchase_success_count"`

	Iterations float64 `json:"iterations"`
	MinVUs     float64 `json:"min_vus"`
	MaxVUs     float64 `json:"max_vus"`
}

// Extract derives Scalars from the store. Every field falls back to 0 on its own
// when its metric or statistic is missing.
func Extract(s *Store) Scalars {
	return Scalars{
		DurationAvg: s.Value(MetricHTTPReqDuration, "avg"),
		DurationMin: s.Value(MetricHTTPReqDuration, "min"),
		DurationMax: s.Value(MetricHTTPReqDuration, "max"),
		DurationP90: s.Value(MetricHTTPReqDuration, "p90"),
		DurationP95: s.Value(MetricHTTPReqDuration, "p95"),
		DurationP99: s.Value(MetricHTTPReqDuration, "p99"),

		TotalRequests:     s.Value(MetricHTTPReqs, "count"),
		RequestsPerSecond: s.Value(MetricHTTPReqs, "rate"),

		FailedRequests:    s.Value(MetricHTTPReqFailed, "count"),
		FailedRequestRate: s.Value(MetricHTTPReqFailed, "rate"),

		PurchaseSuccessRate:  s.Value(MetricPurchaseSuccess, "rate"),
		PurchaseSuccessCount: s.Value(MetricPurchaseSuccess, "count"),

		Iterations: s.Value(MetricIterations, "count"),
		MinVUs:     s.Value(MetricVUs, "min"),
		MaxVUs:     s.Value(MetricVUs, "max"),
	}
}

// lookup resolves a scalar by the metric/statistic pair a threshold is bound to.
func (s Scalars) lookup(metric, statistic string) (float64, bool) {
	switch metric {
	case MetricHTTPReqDuration:
		switch statistic {
		case "avg":
			return s.DurationAvg, true
		case "min":
			return s.DurationMin, true
		case "max":
			return s.DurationMax, true
		case "p90", "p(90)":
			return s.DurationP90, true
		case "p95", "p(95)":
			return s.DurationP95, true
		case "p99", "p(99)":
			return s.DurationP99, true
		}
	case MetricHTTPReqs:
		switch statistic {
		case "count":
			return s.TotalRequests, true
		case "rate":
			return s.RequestsPerSecond, true
		}
	case MetricHTTPReqFailed:
		switch statistic {
		case "count":
			return s.FailedRequests, true
		case "rate":
			return s.FailedRequestRate, true
		}
	case MetricPurchaseSuccess:
		switch statistic {
		case "count":
			return s.PurchaseSuccessCount, true
		case "rate":
			return s.PurchaseSuccessRate, true
		}
	case MetricIterations:
		if statistic == "count" {
			return s.Iterations, true
		}
	case MetricVUs:
		switch statistic {
		case "min":
			return s.MinVUs, true
		case "max":
			return s.MaxVUs, true
		}
	}
	return 0, false
}
