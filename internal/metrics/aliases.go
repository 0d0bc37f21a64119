package metrics

import (
	"regexp"
	"strings"
)

// k6 spells percentile statistics differently depending on version and output
// mode. The alias table maps the spelling a caller asks for to every spelling
// that may hold the same value, in probe order:
//
//	requested   probed
//	p90         p90, p(90), 90
//	p(90)       p(90), p90, 90
//	90          90, p(90), p90
//	p99.9       p99.9, p(99.9), 99.9
//
// Any other key (avg, rate, count, ...) is probed as-is.
var (
	barePercentile    = regexp.MustCompile(`^p([0-9]+(?:\.[0-9]+)?)$`)
	wrappedPercentile = regexp.MustCompile(`^p\(([0-9]+(?:\.[0-9]+)?)\)$`)
	numericPercentile = regexp.MustCompile(`^[0-9]+(?:\.[0-9]+)?$`)
)

// StatisticAliases returns the spellings probed for key, starting with key itself.
func StatisticAliases(key string) []string {
	key = strings.TrimSpace(key)

	if m := barePercentile.FindStringSubmatch(key); m != nil {
		return []string{key, "p(" + m[1] + ")", m[1]}
	}

	if m := wrappedPercentile.FindStringSubmatch(key); m != nil {
		return []string{key, "p" + m[1], m[1]}
	}

	if numericPercentile.MatchString(key) {
		return []string{key, "p(" + key + ")", "p" + key}
	}

	return []string{key}
}
