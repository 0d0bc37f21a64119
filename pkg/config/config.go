package config

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	keyLogLevel        = "log_level"
	keyDebug           = "debug"
	keyDryRun          = "dry_run"
	keyPublishMetrics  = "publish_metrics"
	keyMetricNamespace = "metric_namespace"
	keyTestName        = "test_name"
	keyReportBucket    = "report_bucket"
	keyReportSuffix    = "report_suffix"
	keyAWSRegion       = "aws_region"
)

type Config struct {
	LogLevel        string
	Debug           bool
	DryRun          bool
	PublishMetrics  bool
	MetricNamespace string
	TestName        string
	ReportBucket    string
	ReportSuffix    string
	AWS             AWSConfig
}

type AWSConfig struct {
	Region string
}

// Load reads configuration from the environment, e.g. METRIC_NAMESPACE or
// PUBLISH_METRICS=true.
func Load() *Config {
	return load(viper.New())
}

func load(v *viper.Viper) *Config {
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyDebug, false)
	v.SetDefault(keyDryRun, false)
	v.SetDefault(keyPublishMetrics, false)
	v.SetDefault(keyMetricNamespace, "K6Summary")
	v.SetDefault(keyTestName, "flight-booking")
	v.SetDefault(keyReportBucket, "")
	v.SetDefault(keyReportSuffix, ".summary.md")
	v.SetDefault(keyAWSRegion, "us-east-1")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{
		LogLevel:        v.GetString(keyLogLevel),
		Debug:           v.GetBool(keyDebug),
		DryRun:          v.GetBool(keyDryRun),
		PublishMetrics:  v.GetBool(keyPublishMetrics),
		MetricNamespace: v.GetString(keyMetricNamespace),
		TestName:        v.GetString(keyTestName),
		ReportBucket:    v.GetString(keyReportBucket),
		ReportSuffix:    v.GetString(keyReportSuffix),
		AWS: AWSConfig{
			Region: v.GetString(keyAWSRegion),
		},
	}
}
