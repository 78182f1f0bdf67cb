// Package observability emits operational metrics to CloudWatch. Emission is
// best-effort: a metric failure is logged and never propagates to callers.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric and dimension names.
const (
	MetricRequest         = "Request"
	MetricRequestLatency  = "RequestLatency"
	MetricUpstreamCall    = "UpstreamCall"
	MetricUpstreamLatency = "UpstreamCallLatency"

	DimRoute    = "Route"
	DimStatus   = "StatusClass"
	DimProvider = "Provider"
	DimResult   = "Result"
)

// MetricsCollector records request and upstream call outcomes.
type MetricsCollector interface {
	// RecordRequest records one handled HTTP request.
	RecordRequest(ctx context.Context, route string, status int, duration time.Duration)

	// RecordUpstream records one call to an upstream weather provider.
	RecordUpstream(ctx context.Context, provider, result string, duration time.Duration)
}

// CloudWatchClient abstracts the PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

var _ MetricsCollector = (*CloudWatchMetrics)(nil)

// CloudWatchMetrics implements MetricsCollector against CloudWatch.
type CloudWatchMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

// NewCloudWatchMetrics creates a collector publishing to the given namespace.
func NewCloudWatchMetrics(client CloudWatchClient, namespace string, logger *slog.Logger) *CloudWatchMetrics {
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchMetrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// statusClass buckets an HTTP status into "2xx" style dimension values so
// CloudWatch cardinality stays bounded.
func statusClass(status int) string {
	return fmt.Sprintf("%dxx", status/100)
}

// RecordRequest emits a count and a latency datum dimensioned by route and
// status class.
func (m *CloudWatchMetrics) RecordRequest(ctx context.Context, route string, status int, duration time.Duration) {
	dims := []cwtypes.Dimension{
		{Name: aws.String(DimRoute), Value: aws.String(route)},
		{Name: aws.String(DimStatus), Value: aws.String(statusClass(status))},
	}
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(MetricRequest),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: dims,
			},
			{
				MetricName: aws.String(MetricRequestLatency),
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Dimensions: dims,
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.ErrorContext(ctx, "failed to record request metric",
			"error", err,
			"route", route,
			"status", status,
		)
	}
}

// RecordUpstream emits a count and a latency datum dimensioned by provider
// and result.
func (m *CloudWatchMetrics) RecordUpstream(ctx context.Context, provider, result string, duration time.Duration) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(MetricUpstreamCall),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: aws.String(DimProvider), Value: aws.String(provider)},
					{Name: aws.String(DimResult), Value: aws.String(result)},
				},
			},
			{
				MetricName: aws.String(MetricUpstreamLatency),
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Dimensions: []cwtypes.Dimension{
					{Name: aws.String(DimProvider), Value: aws.String(provider)},
				},
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.ErrorContext(ctx, "failed to record upstream metric",
			"error", err,
			"provider", provider,
			"result", result,
		)
	}
}

// NoopMetrics discards all metrics. Used when metrics are disabled.
type NoopMetrics struct{}

var _ MetricsCollector = NoopMetrics{}

func (NoopMetrics) RecordRequest(context.Context, string, int, time.Duration)     {}
func (NoopMetrics) RecordUpstream(context.Context, string, string, time.Duration) {}
