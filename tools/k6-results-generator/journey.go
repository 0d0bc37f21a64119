package main

import (
	"math/rand"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://blazedemo.com"

	requestFailureRate  = 0.004
	purchaseFailureRate = 0.02
	slowRequestRate     = 0.08
)

// sample is a single observation of one metric, tagged like a k6 data point.
type sample struct {
	Metric string
	Time   time.Time
	Value  float64
	Tags   map[string]string
}

type step struct {
	name   string
	method string
	url    string
	minMs  float64
	maxMs  float64
}

// simulateJourney walks one virtual user through home, reserve, purchase and
// confirmation, returning the samples k6 would have recorded for it.
func simulateJourney(rng *rand.Rand, baseURL string, start time.Time, vus int) []sample {
	cities := randomCities(rng)
	page := renderReservePage(rng, cities)
	flight := extractFlightInfo(page)
	passenger := newPassengerTemplate(rng)

	purchase := url.Values{}
	purchase.Set("fromPort", cities.FromPort)
	purchase.Set("toPort", cities.ToPort)
	purchase.Set("flight", flight.Flight)
	purchase.Set("price", flight.Price)

	confirmation := url.Values{}
	for k, v := range passenger.formValues() {
		confirmation.Set(k, v)
	}

	steps := []step{
		{name: "home", method: "GET", url: baseURL + "/", minMs: 120, maxMs: 900},
		{name: "reserve", method: "GET", url: buildReserveURL(baseURL, cities), minMs: 200, maxMs: 1400},
		{name: "purchase", method: "POST", url: baseURL + "/purchase.php?" + purchase.Encode(), minMs: 180, maxMs: 1200},
		{name: "confirmation", method: "POST", url: baseURL + "/confirmation.php?" + confirmation.Encode(), minMs: 250, maxMs: 1600},
	}

	var samples []sample
	now := start
	allOK := true
	for _, s := range steps {
		duration := randomMillis(rng, s.minMs, s.maxMs)
		if rng.Float64() < slowRequestRate {
			duration *= 2 + rng.Float64()*2
		}
		failed := rng.Float64() < requestFailureRate
		status := "200"
		if failed {
			status = "503"
			allOK = false
		}
		tags := map[string]string{"name": s.name, "method": s.method, "url": s.url, "status": status}

		now = now.Add(time.Duration(duration * float64(time.Millisecond)))
		samples = append(samples,
			sample{Metric: "http_req_duration", Time: now, Value: duration, Tags: tags},
			sample{Metric: "http_reqs", Time: now, Value: 1, Tags: tags},
			sample{Metric: "http_req_failed", Time: now, Value: boolValue(failed), Tags: tags},
		)
	}

	purchased := allOK && rng.Float64() >= purchaseFailureRate
	samples = append(samples,
		sample{Metric: "purchase_success", Time: now, Value: boolValue(purchased), Tags: map[string]string{"flight": flight.Flight}},
		sample{Metric: "iterations", Time: now, Value: 1},
		sample{Metric: "iteration_duration", Time: now, Value: float64(now.Sub(start)) / float64(time.Millisecond)},
		sample{Metric: "vus", Time: now, Value: float64(vus)},
	)
	return samples
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
