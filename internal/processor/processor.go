// Package processor wires parsing, extraction, threshold evaluation, rendering
// and publishing into a single pass over one k6 results file.
package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/shiimaxx/k6-summary/internal/k6result"
	"github.com/shiimaxx/k6-summary/internal/metrics"
	"github.com/shiimaxx/k6-summary/internal/report"
	"github.com/shiimaxx/k6-summary/internal/source"
	"github.com/shiimaxx/k6-summary/pkg/logging"
)

const reportContentType = "text/markdown; charset=utf-8"

// ErrPublish marks a failure to send metrics to CloudWatch. The result is
// still returned alongside it.
var ErrPublish = errors.New("publish metrics")

// S3API is the subset of the S3 client the processor reads results from and
// writes reports to.
type S3API interface {
	source.S3API
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Result is everything derived from one results file.
type Result struct {
	Stats      k6result.Stats
	Scalars    metrics.Scalars
	Evaluation metrics.Evaluation
	Report     string
}

// Summary returns the machine-readable form of the result.
func (r *Result) Summary() report.Summary {
	return report.NewSummary(r.Scalars, r.Evaluation)
}

type Processor struct {
	s3Client     S3API
	publisher    *metrics.Publisher
	thresholds   []metrics.Threshold
	reportBucket string
	reportSuffix string
	log          logrus.FieldLogger
	now          func() time.Time
}

type Options struct {
	// S3Client is required for s3:// inputs and for HandleEvent.
	S3Client S3API
	// Publisher is optional; when nil nothing is sent to CloudWatch.
	Publisher *metrics.Publisher
	// ReportBucket overrides the bucket reports are written to by HandleEvent.
	// The bucket of the triggering object is used when empty.
	ReportBucket string
	ReportSuffix string
	Log          logrus.FieldLogger
}

func New(opts Options) *Processor {
	suffix := opts.ReportSuffix
	if suffix == "" {
		suffix = ".summary.md"
	}

	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}

	return &Processor{
		s3Client:     opts.S3Client,
		publisher:    opts.Publisher,
		thresholds:   metrics.DefaultThresholds(),
		reportBucket: opts.ReportBucket,
		reportSuffix: suffix,
		log:          log,
		now:          time.Now,
	}
}

// Run processes the results stored at location (a local path or s3:// URI).
func (p *Processor) Run(ctx context.Context, location string) (*Result, error) {
	p.log.WithField("input", location).Debug("opening results")

	rc, err := source.Open(ctx, location, p.s3Client)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return p.Process(ctx, rc)
}

// Process runs the pipeline over an already opened results stream. When only
// publishing fails the rendered result is returned together with an error
// wrapping ErrPublish.
func (p *Processor) Process(ctx context.Context, r io.Reader) (*Result, error) {
	store, stats, err := k6result.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"lines":    stats.Lines,
		"records":  stats.Records,
		"skipped":  stats.Skipped,
		"fallback": stats.Fallback,
		"metrics":  store.Len(),
	}).Info("parsed k6 results")

	if stats.Skipped > 0 {
		p.log.WithField("skipped", stats.Skipped).Debug("ignored lines that are not Metric or Summary records")
	}
	if store.Len() == 0 {
		p.log.Warn("no metrics found in results, report will contain zeroed values")
	}

	scalars := metrics.Extract(store)

	eval, err := metrics.Evaluate(scalars, p.thresholds)
	if err != nil {
		return nil, fmt.Errorf("evaluate thresholds: %w", err)
	}

	for _, res := range eval.Results {
		p.log.WithFields(logrus.Fields{
			"threshold": res.Threshold.ID,
			"actual":    res.Actual,
			"passed":    res.Passed,
		}).Debug("threshold evaluated")
	}

	result := &Result{
		Stats:      stats,
		Scalars:    scalars,
		Evaluation: eval,
		Report:     report.Render(scalars, eval),
	}

	if p.publisher != nil {
		data := p.publisher.MetricData(scalars, eval, p.now())
		if err := p.publisher.Publish(ctx, data); err != nil {
			p.log.WithError(err).Error("failed to publish metrics")
			return result, fmt.Errorf("%w: %w", ErrPublish, err)
		}
	}

	return result, nil
}

// HandleEvent renders a report for every k6 results object in the S3 event and
// stores it next to the results, or in the configured report bucket.
func (p *Processor) HandleEvent(ctx context.Context, s3Event events.S3Event) error {
	if p.s3Client == nil {
		return fmt.Errorf("s3 client is not configured")
	}

	for _, record := range s3Event.Records {
		bucket := record.S3.Bucket.Name
		if bucket == "" {
			return fmt.Errorf("missing bucket name in S3 event record")
		}

		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			return fmt.Errorf("decode object key %q: %w", record.S3.Object.Key, err)
		}

		if strings.HasSuffix(key, p.reportSuffix) {
			p.log.WithField("key", key).Debug("skipping generated report")
			continue
		}

		if err := p.processObject(ctx, bucket, key); err != nil {
			return fmt.Errorf("process s3://%s/%s: %w", bucket, key, err)
		}
	}

	return nil
}

func (p *Processor) processObject(ctx context.Context, bucket, key string) error {
	rc, err := source.OpenS3(ctx, p.s3Client, bucket, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	result, processErr := p.Process(ctx, rc)
	if result == nil {
		return processErr
	}

	reportBucket := p.reportBucket
	if reportBucket == "" {
		reportBucket = bucket
	}
	reportKey := strings.TrimSuffix(key, ".gz") + p.reportSuffix

	_, err = p.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(reportBucket),
		Key:         aws.String(reportKey),
		Body:        bytes.NewReader([]byte(result.Report)),
		ContentType: aws.String(reportContentType),
	})
	if err != nil {
		return fmt.Errorf("put report: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"report": fmt.Sprintf("s3://%s/%s", reportBucket, reportKey),
		"passed": result.Evaluation.AllPassed,
	}).Info("stored report")

	return processErr
}
