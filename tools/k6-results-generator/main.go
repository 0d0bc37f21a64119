package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/go-faker/faker/v4"
)

type cliOptions struct {
	seed int64
	gen  generatorOptions
}

// parseOptions reads the command line into generator options. Journeys are
// spread over the five-minute window ending now.
func parseOptions(args []string, now time.Time, stderr io.Writer) (cliOptions, error) {
	fs := flag.NewFlagSet("k6-results-generator", flag.ContinueOnError)
	fs.SetOutput(stderr)

	seed := fs.Int64("seed", now.UnixNano(), "seed for synthetic data generation")
	iterations := fs.Int("iterations", defaultIterations, "booking journeys to simulate (default: derived from --rps)")
	rps := fs.Float64("rps", defaultRPS, "average requests per second over the five-minute window")
	vus := fs.Int("vus", defaultVUs, "maximum number of virtual users reported")
	baseURL := fs.String("base-url", defaultBaseURL, "site under test")
	format := fs.String("format", formatJSONL, "output format: jsonl or summary")
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	switch {
	case *iterations < 0:
		return cliOptions{}, fmt.Errorf("iterations must be non-negative: %d", *iterations)
	case *iterations == 0 && *rps <= 0:
		return cliOptions{}, fmt.Errorf("rps must be positive when iterations is not set: %.2f", *rps)
	case *vus <= 0:
		return cliOptions{}, fmt.Errorf("vus must be positive: %d", *vus)
	case *format != formatJSONL && *format != formatSummary:
		return cliOptions{}, fmt.Errorf("unknown format %q", *format)
	}

	return cliOptions{
		seed: *seed,
		gen: generatorOptions{
			Iterations: resolveIterations(*iterations, *rps),
			VUs:        *vus,
			BaseURL:    *baseURL,
			Format:     *format,
			Start:      now.UTC().Add(-windowDuration),
		},
	}, nil
}

func main() {
	opts, err := parseOptions(os.Args[1:], time.Now(), os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}

	faker.SetRandomSource(faker.NewSafeSource(rand.NewSource(opts.seed)))
	rng := rand.New(rand.NewSource(opts.seed))

	out := bufio.NewWriter(os.Stdout)
	if err := generate(out, opts.gen, rng); err != nil {
		log.Fatalf("generate results: %v", err)
	}
	if err := out.Flush(); err != nil {
		log.Fatalf("flush output: %v", err)
	}
}
