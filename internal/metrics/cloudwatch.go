package metrics

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace                = "Harmonia/API"
	httpStatusServerError    = 500
	cloudwatchTimeoutSeconds = 5
)

// putMetricDataAPI is the part of the CloudWatch client we use
type putMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Client wraps CloudWatch client for custom metrics. A nil or disabled
// Client drops everything.
type Client struct {
	client      putMetricDataAPI
	enabled     bool
	environment string
}

// NewClient creates a CloudWatch metrics client. It is only enabled when
// asked to and the AWS config loads.
func NewClient(ctx context.Context, environment string, enabled bool) *Client {
	if !enabled {
		log.Printf("CloudWatch metrics: disabled (environment: %s)", environment)
		return &Client{environment: environment}
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("Failed to load AWS config for CloudWatch: %v", err)
		return &Client{environment: environment}
	}

	log.Printf("CloudWatch metrics: enabled (namespace: %s)", namespace)
	return &Client{
		client:      cloudwatch.NewFromConfig(cfg),
		enabled:     true,
		environment: environment,
	}
}

func (m *Client) active() bool {
	return m != nil && m.enabled && m.client != nil
}

// RecordAPIRequest records request count (or error count) and latency per endpoint
func (m *Client) RecordAPIRequest(endpoint string, statusCode int, duration time.Duration) {
	if !m.active() {
		return
	}

	metricName := "APIRequests"
	if statusCode >= httpStatusServerError {
		metricName = "APIErrors"
	}
	dimensions := m.dimensions("Endpoint", endpoint)

	go func() {
		m.putMetrics(
			datum(metricName, 1, types.StandardUnitCount, dimensions),
			datum("APILatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions),
		)
	}()
}

// RecordAnalysis records one analyzer run with its progression length and duration
func (m *Client) RecordAnalysis(kind string, chordCount int, duration time.Duration, success bool) {
	if !m.active() {
		return
	}

	dimensions := append(m.dimensions("Analysis", kind), types.Dimension{
		Name:  aws.String("Success"),
		Value: aws.String(strconv.FormatBool(success)),
	})

	go func() {
		m.putMetrics(
			datum("Analyses", 1, types.StandardUnitCount, dimensions),
			datum("AnalysisChords", float64(chordCount), types.StandardUnitCount, dimensions),
			datum("AnalysisDuration", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions),
		)
	}()
}

// RecordReview records a spaced-repetition review by quality rating
func (m *Client) RecordReview(quality int) {
	if !m.active() {
		return
	}

	dimensions := m.dimensions("Quality", strconv.Itoa(quality))
	go func() {
		m.putMetrics(datum("Reviews", 1, types.StandardUnitCount, dimensions))
	}()
}

func (m *Client) dimensions(name, value string) []types.Dimension {
	return []types.Dimension{
		{Name: aws.String(name), Value: aws.String(value)},
		{Name: aws.String("Environment"), Value: aws.String(m.environment)},
	}
}

func datum(name string, value float64, unit types.StandardUnit, dimensions []types.Dimension) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: dimensions,
	}
}

// putMetrics sends a batch of data points to CloudWatch
func (m *Client) putMetrics(data ...types.MetricDatum) {
	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(namespace),
		MetricData: data,
	})
	if err != nil {
		log.Printf("Failed to record %d CloudWatch metrics: %v", len(data), err)
	}
}
