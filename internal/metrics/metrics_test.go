package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloudWatch struct {
	mu     sync.Mutex
	inputs []*cloudwatch.PutMetricDataInput
	done   chan struct{}
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	f.mu.Unlock()
	f.done <- struct{}{}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestClient_DisabledIsNoop(t *testing.T) {
	var nilClient *Client
	assert.NotPanics(t, func() {
		nilClient.RecordAPIRequest("/health", 200, time.Millisecond)
		nilClient.RecordAnalysis("tension", 4, time.Millisecond, true)
		nilClient.RecordReview(5)
	})

	c := NewClient(context.Background(), "development", false)
	assert.False(t, c.active())
}

func TestClient_RecordAnalysis(t *testing.T) {
	fake := &fakeCloudWatch{done: make(chan struct{}, 1)}
	c := &Client{client: fake, enabled: true, environment: "test"}

	c.RecordAnalysis("reharm", 3, 12*time.Millisecond, true)

	select {
	case <-fake.done:
	case <-time.After(time.Second):
		t.Fatal("metrics were not sent")
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, namespace, *in.Namespace)
	require.Len(t, in.MetricData, 3)
	assert.Equal(t, "Analyses", *in.MetricData[0].MetricName)
	assert.Equal(t, 3.0, *in.MetricData[1].Value)
	assert.Equal(t, 12.0, *in.MetricData[2].Value)
	assert.Len(t, in.MetricData[0].Dimensions, 3)
}

func TestRecorder_Snapshot(t *testing.T) {
	r := NewRecorder(nil, NewSentryMetrics(false))
	ctx := context.Background()

	r.Analysis(ctx, "tension", 4, time.Millisecond, nil)
	r.Analysis(ctx, "tension", 0, time.Millisecond, errors.New("no chords provided"))
	r.Analysis(ctx, "functions", 3, time.Millisecond, nil)
	r.Review(ctx, "blues", 5)
	r.Review(ctx, "blues", 2)
	r.Review(ctx, "blues", 5)

	s := r.Snapshot()
	assert.Equal(t, int64(2), s.Analyses["tension"])
	assert.Equal(t, int64(1), s.Analyses["functions"])
	assert.Equal(t, int64(1), s.AnalysisFailures["tension"])
	assert.Equal(t, int64(3), s.Reviews)
	assert.Equal(t, [6]int64{0, 0, 1, 0, 0, 2}, s.ReviewsByQuality)

	// snapshots are copies
	s.Analyses["tension"] = 99
	assert.Equal(t, int64(2), r.Snapshot().Analyses["tension"])
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.APIRequest(context.Background(), "/health", 200, time.Millisecond)
		r.Analysis(context.Background(), "tension", 1, time.Millisecond, nil)
		r.Review(context.Background(), "x", 3)
	})
	assert.Empty(t, r.Snapshot().Analyses)
}
