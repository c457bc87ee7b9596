package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// MetricsPublisher pushes per-run pipeline counters to CloudWatch.
type MetricsPublisher struct {
	CW        CloudWatchAPI
	Namespace string
	nowFunc   func() time.Time
}

// NewMetricsPublisher returns a MetricsPublisher bound to a namespace.
func NewMetricsPublisher(cw CloudWatchAPI, namespace string) *MetricsPublisher {
	return &MetricsPublisher{
		CW:        cw,
		Namespace: namespace,
		nowFunc:   time.Now,
	}
}

// PublishRun records the disposition counts of one reconciliation run.
func (m *MetricsPublisher) PublishRun(ctx context.Context, listed, archived, quarantined, failed int) error {
	now := m.nowFunc()
	counts := []struct {
		name  string
		value int
	}{
		{"StagedObjectsListed", listed},
		{"ObjectsArchived", archived},
		{"ObjectsQuarantined", quarantined},
		{"InsertFailures", failed},
	}

	data := make([]cwtypes.MetricDatum, 0, len(counts))
	for _, c := range counts {
		v := float64(c.value)
		name := c.name
		data = append(data, cwtypes.MetricDatum{
			MetricName: &name,
			Value:      &v,
			Unit:       cwtypes.StandardUnitCount,
			Timestamp:  &now,
		})
	}

	_, err := m.CW.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  &m.Namespace,
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
