package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/shiimaxx/k6-summary/internal/metrics"
	"github.com/shiimaxx/k6-summary/internal/processor"
	"github.com/shiimaxx/k6-summary/internal/report"
	"github.com/shiimaxx/k6-summary/internal/source"
	"github.com/shiimaxx/k6-summary/pkg/config"
	"github.com/shiimaxx/k6-summary/pkg/logging"
)

const usage = "Usage: k6-summary <k6-results.json>"

var (
	errUsage            = errors.New("usage")
	errThresholdsFailed = errors.New("thresholds failed")
)

type rootOptions struct {
	jsonOut         string
	publish         bool
	failOnThreshold bool
}

func newRootCmd(cfg *config.Config, stdout io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "k6-summary <k6-results.json>",
		Short: "Render a Markdown pass/fail summary from k6 JSON results.",
		Long: `k6-summary reads the output of "k6 run --out json" (one JSON record per
line) or a single k6 summary document and prints a Markdown report with
request, latency, business and virtual-user metrics and the outcome of the
flight-booking thresholds.

The results location may be a local path or an s3://bucket/key URI. Files
ending in .gz are decompressed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			return runSummary(cmd.Context(), cfg, opts, args[0], stdout)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	cmd.Flags().StringVar(&opts.jsonOut, "json-out", "", "also write a JSON summary to this path")
	cmd.Flags().BoolVar(&opts.publish, "publish", cfg.PublishMetrics, "publish summary metrics to CloudWatch")
	cmd.Flags().BoolVar(&opts.failOnThreshold, "fail-on-threshold", false, "exit non-zero when any threshold failed")

	return cmd
}

func runSummary(ctx context.Context, cfg *config.Config, opts *rootOptions, location string, stdout io.Writer) error {
	log := logging.New(cfg.LogLevel, cfg.Debug)

	procOpts := processor.Options{
		ReportBucket: cfg.ReportBucket,
		ReportSuffix: cfg.ReportSuffix,
		Log:          log,
	}

	if source.IsS3URI(location) || opts.publish {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return fmt.Errorf("load AWS config: %w", err)
		}
		if source.IsS3URI(location) {
			procOpts.S3Client = s3.NewFromConfig(awsCfg)
		}
		if opts.publish {
			procOpts.Publisher = metrics.NewPublisher(
				cloudwatch.NewFromConfig(awsCfg),
				cfg.MetricNamespace,
				cfg.TestName,
				cfg.DryRun,
				log,
			)
		}
	}

	result, runErr := processor.New(procOpts).Run(ctx, location)
	if result == nil {
		if errors.Is(runErr, source.ErrNotFound) {
			return fmt.Errorf("%w: %w", errUsage, runErr)
		}
		return runErr
	}

	if _, err := io.WriteString(stdout, result.Report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if err := report.WriteJSON(opts.jsonOut, result.Summary()); err != nil {
		return fmt.Errorf("write json summary: %w", err)
	}

	if runErr != nil {
		return runErr
	}

	if opts.failOnThreshold && !result.Evaluation.AllPassed {
		return errThresholdsFailed
	}

	return nil
}
