package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/sirupsen/logrus"
)

const (
	defaultMetricBatchSize = 20

	metricDimensionTestName = "TestName"

	metricNameThresholdsPassed = "ThresholdsPassed"
)

// CloudWatchAPI is the subset of the CloudWatch client used for publishing.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Publisher sends summary scalars to CloudWatch using PutMetricData.
type Publisher struct {
	client       CloudWatchAPI
	namespace    string
	testName     string
	maxBatchSize int
	dryRun       bool
	log          logrus.FieldLogger
}

func NewPublisher(client CloudWatchAPI, namespace, testName string, dryRun bool, log logrus.FieldLogger) *Publisher {
	return &Publisher{
		client:       client,
		namespace:    namespace,
		testName:     testName,
		maxBatchSize: defaultMetricBatchSize,
		dryRun:       dryRun,
		log:          log,
	}
}

// MetricData converts the scalars and threshold outcome into CloudWatch data
// points stamped with timestamp.
func (p *Publisher) MetricData(s Scalars, eval Evaluation, timestamp time.Time) []types.MetricDatum {
	dimensions := []types.Dimension{
		{Name: aws.String(metricDimensionTestName), Value: aws.String(p.testName)},
	}

	datum := func(name string, value float64, unit types.StandardUnit) types.MetricDatum {
		return types.MetricDatum{
			MetricName: aws.String(name),
			Timestamp:  aws.Time(timestamp),
			Dimensions: dimensions,
			Value:      aws.Float64(value),
			Unit:       unit,
		}
	}

	passed := 0.0
	if eval.AllPassed {
		passed = 1
	}

	return []types.MetricDatum{
		datum("DurationAvg", s.DurationAvg, types.StandardUnitMilliseconds),
		datum("DurationMin", s.DurationMin, types.StandardUnitMilliseconds),
		datum("DurationMax", s.DurationMax, types.StandardUnitMilliseconds),
		datum("DurationP90", s.DurationP90, types.StandardUnitMilliseconds),
		datum("DurationP95", s.DurationP95, types.StandardUnitMilliseconds),
		datum("DurationP99", s.DurationP99, types.StandardUnitMilliseconds),
		datum("RequestCount", s.TotalRequests, types.StandardUnitCount),
		datum("RequestRate", s.RequestsPerSecond, types.StandardUnitCountSecond),
		datum("FailedRequestCount", s.FailedRequests, types.StandardUnitCount),
		datum("FailedRequestRate", s.FailedRequestRate*100, types.StandardUnitPercent),
		datum("PurchaseSuccessRate", s.PurchaseSuccessRate*100, types.StandardUnitPercent),
		datum("PurchaseSuccessCount", s.PurchaseSuccessCount, types.StandardUnitCount),
		datum("Iterations", s.Iterations, types.StandardUnitCount),
		datum("MinVUs", s.MinVUs, types.StandardUnitCount),
		datum("MaxVUs", s.MaxVUs, types.StandardUnitCount),
		datum(metricNameThresholdsPassed, passed, types.StandardUnitNone),
	}
}

// Publish sends metric data to CloudWatch in batches that respect PutMetricData limits.
func (p *Publisher) Publish(ctx context.Context, data []types.MetricDatum) error {
	if len(data) == 0 {
		return nil
	}

	chunks, err := p.chunkMetricData(data)
	if err != nil {
		return fmt.Errorf("prepare metric batches: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"metrics":   len(data),
		"batches":   len(chunks),
		"namespace": p.namespace,
	}).Info("publishing metrics to CloudWatch")
	p.logMetrics(data)

	if p.dryRun {
		p.log.Info("dry run enabled, skipping actual publishing")
		return nil
	}

	for _, chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}

		input := &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(p.namespace),
			MetricData: chunk,
		}

		if _, err := p.client.PutMetricData(ctx, input); err != nil {
			return fmt.Errorf("put metric data: %w", err)
		}
	}

	return nil
}

// chunkMetricData splits the provided metric data into size-bounded batches.
func (p *Publisher) chunkMetricData(data []types.MetricDatum) ([][]types.MetricDatum, error) {
	size := p.maxBatchSize
	if size <= 0 {
		return nil, fmt.Errorf("invalid max batch size %d", size)
	}

	if len(data) == 0 {
		return [][]types.MetricDatum{}, nil
	}

	batches := make([][]types.MetricDatum, 0, (len(data)+size-1)/size)
	for start := 0; start < len(data); start += size {
		end := min(start+size, len(data))
		batches = append(batches, data[start:end])
	}

	return batches, nil
}

// logMetrics prints the data points at debug level.
func (p *Publisher) logMetrics(data []types.MetricDatum) {
	for _, d := range data {
		p.log.WithFields(logrus.Fields{
			"metric": aws.ToString(d.MetricName),
			"value":  aws.ToFloat64(d.Value),
			"unit":   d.Unit,
		}).Debug("metric datum")
	}
}
