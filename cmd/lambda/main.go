package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/shiimaxx/k6-summary/internal/metrics"
	"github.com/shiimaxx/k6-summary/internal/processor"
	"github.com/shiimaxx/k6-summary/pkg/config"
	"github.com/shiimaxx/k6-summary/pkg/logging"
)

// Handler is built once per cold start and reused across invocations.
type Handler struct {
	processor *processor.Processor
	log       logrus.FieldLogger
}

func NewHandler(ctx context.Context) (*Handler, error) {
	appCfg := config.Load()
	log := logging.New(appCfg.LogLevel, appCfg.Debug)

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	opts := processor.Options{
		S3Client:     s3.NewFromConfig(cfg),
		ReportBucket: appCfg.ReportBucket,
		ReportSuffix: appCfg.ReportSuffix,
		Log:          log,
	}
	if appCfg.PublishMetrics {
		opts.Publisher = metrics.NewPublisher(
			cloudwatch.NewFromConfig(cfg),
			appCfg.MetricNamespace,
			appCfg.TestName,
			appCfg.DryRun,
			log,
		)
	}

	return &Handler{processor: processor.New(opts), log: log}, nil
}

func (h *Handler) HandleS3Event(ctx context.Context, s3Event events.S3Event) error {
	h.log.WithField("records", len(s3Event.Records)).Info("processing S3 event")

	if err := h.processor.HandleEvent(ctx, s3Event); err != nil {
		h.log.WithError(err).Error("failed to process S3 event")
		return err
	}
	return nil
}

func main() {
	handler, err := NewHandler(context.Background())
	if err != nil {
		logging.New("error", false).Fatalf("failed to create handler: %v", err)
	}

	lambda.Start(handler.HandleS3Event)
}
