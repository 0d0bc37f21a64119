package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"slices"
	"sort"
	"time"
)

const (
	defaultRPS        = 10.0
	defaultVUs        = 20
	defaultIterations = 0
	pointTimeFormat   = "2006-01-02T15:04:05.000000Z07:00"
	windowDuration    = 5 * time.Minute
	snapshotEvery     = 50

	formatJSONL   = "jsonl"
	formatSummary = "summary"
)

type metricKind string

const (
	kindTrend   metricKind = "trend"
	kindCounter metricKind = "counter"
	kindRate    metricKind = "rate"
	kindGauge   metricKind = "gauge"
)

var metricKinds = map[string]metricKind{
	"http_req_duration":  kindTrend,
	"iteration_duration": kindTrend,
	"http_reqs":          kindCounter,
	"iterations":         kindCounter,
	"http_req_failed":    kindRate,
	"purchase_success":   kindRate,
	"vus":                kindGauge,
}

// aggregator accumulates samples per metric and renders k6 style statistics.
type aggregator struct {
	values map[string][]float64
	start  time.Time
	last   time.Time
}

func newAggregator(start time.Time) *aggregator {
	return &aggregator{values: make(map[string][]float64), start: start, last: start}
}

func (a *aggregator) add(s sample) {
	a.values[s.Metric] = append(a.values[s.Metric], s.Value)
	if s.Time.After(a.last) {
		a.last = s.Time
	}
}

func (a *aggregator) names() []string {
	names := make([]string, 0, len(a.values))
	for name := range a.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// stats returns the statistics object for one metric as k6 reports it.
func (a *aggregator) stats(name string) map[string]float64 {
	values := a.values[name]
	if len(values) == 0 {
		return nil
	}

	switch metricKinds[name] {
	case kindTrend:
		sorted := slices.Clone(values)
		slices.Sort(sorted)
		return map[string]float64{
			"avg":   round2(mean(sorted)),
			"min":   round2(sorted[0]),
			"med":   round2(percentile(sorted, 50)),
			"max":   round2(sorted[len(sorted)-1]),
			"p(90)": round2(percentile(sorted, 90)),
			"p(95)": round2(percentile(sorted, 95)),
			"p(99)": round2(percentile(sorted, 99)),
		}
	case kindCounter:
		count := sum(values)
		elapsed := a.last.Sub(a.start).Seconds()
		rate := 0.0
		if elapsed > 0 {
			rate = count / elapsed
		}
		return map[string]float64{"count": count, "rate": round2(rate)}
	case kindRate:
		passes := sum(values)
		return map[string]float64{
			"rate":   passes / float64(len(values)),
			"count":  passes,
			"passes": passes,
			"fails":  float64(len(values)) - passes,
		}
	case kindGauge:
		return map[string]float64{
			"value": values[len(values)-1],
			"min":   slices.Min(values),
			"max":   slices.Max(values),
		}
	default:
		return map[string]float64{"count": float64(len(values))}
	}
}

func (a *aggregator) snapshot() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(a.values))
	for _, name := range a.names() {
		out[name] = a.stats(name)
	}
	return out
}

type metricLine struct {
	Type   string         `json:"type"`
	Data   metricLineData `json:"data"`
	Metric string         `json:"metric"`
}

type metricLineData struct {
	Name     string             `json:"name"`
	Type     metricKind         `json:"type"`
	Contains string             `json:"contains,omitempty"`
	Values   map[string]float64 `json:"values"`
}

type pointLine struct {
	Type   string        `json:"type"`
	Data   pointLineData `json:"data"`
	Metric string        `json:"metric"`
}

type pointLineData struct {
	Time  string            `json:"time"`
	Value float64           `json:"value"`
	Tags  map[string]string `json:"tags,omitempty"`
}

type summaryEntry struct {
	Type   metricKind         `json:"type"`
	Values map[string]float64 `json:"values"`
}

type summaryLine struct {
	Type    string                  `json:"type,omitempty"`
	Metrics map[string]summaryEntry `json:"metrics"`
}

type generatorOptions struct {
	Iterations int
	VUs        int
	BaseURL    string
	Format     string
	Start      time.Time
}

// generate simulates the journeys and writes them to w in the requested
// format. jsonl interleaves Point lines with periodic Metric snapshots and
// ends with a Summary line; summary writes one end-of-test document.
func generate(w io.Writer, opts generatorOptions, rng *rand.Rand) error {
	if opts.Format != formatJSONL && opts.Format != formatSummary {
		return fmt.Errorf("unknown format %q", opts.Format)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	agg := newAggregator(opts.Start)

	step := time.Duration(0)
	if opts.Iterations > 1 {
		step = windowDuration / time.Duration(opts.Iterations-1)
	}

	for i := range opts.Iterations {
		vus := 1 + rng.Intn(max(opts.VUs, 1))
		samples := simulateJourney(rng, opts.BaseURL, opts.Start.Add(step*time.Duration(i)), vus)
		for _, s := range samples {
			agg.add(s)
			if opts.Format != formatJSONL {
				continue
			}
			if err := enc.Encode(newPointLine(s)); err != nil {
				return fmt.Errorf("write point: %w", err)
			}
		}

		if opts.Format == formatJSONL && (i+1)%snapshotEvery == 0 {
			if err := writeSnapshot(enc, agg); err != nil {
				return err
			}
		}
	}

	if opts.Format == formatJSONL {
		if err := writeSnapshot(enc, agg); err != nil {
			return err
		}
		return enc.Encode(newSummaryLine("Summary", agg))
	}
	return enc.Encode(newSummaryLine("", agg))
}

func writeSnapshot(enc *json.Encoder, agg *aggregator) error {
	for _, name := range agg.names() {
		line := metricLine{
			Type:   "Metric",
			Metric: name,
			Data: metricLineData{
				Name:   name,
				Type:   metricKinds[name],
				Values: agg.stats(name),
			},
		}
		if metricKinds[name] == kindTrend {
			line.Data.Contains = "time"
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("write metric %s: %w", name, err)
		}
	}
	return nil
}

func newPointLine(s sample) pointLine {
	return pointLine{
		Type:   "Point",
		Metric: s.Metric,
		Data: pointLineData{
			Time:  s.Time.Format(pointTimeFormat),
			Value: s.Value,
			Tags:  s.Tags,
		},
	}
}

func newSummaryLine(recordType string, agg *aggregator) summaryLine {
	line := summaryLine{Type: recordType, Metrics: make(map[string]summaryEntry)}
	for name, values := range agg.snapshot() {
		line.Metrics[name] = summaryEntry{Type: metricKinds[name], Values: values}
	}
	return line
}

func resolveIterations(iterations int, rps float64) int {
	if iterations > 0 {
		return iterations
	}

	// four requests per journey
	derived := int(math.Round(rps * windowDuration.Seconds() / 4))
	if derived <= 0 {
		log.Fatalf("derived iteration count must be positive (rps=%.2f)", rps)
	}
	return derived
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
