package observability

import (
	"context"
	"time"

	"crux-backend/domain/core/valueobjects"
	"crux-backend/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// CloudWatchClient is the subset of the CloudWatch API the recorder uses
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchRecorder sends domain counters to CloudWatch. Failures are
// logged and never reach the caller.
type CloudWatchRecorder struct {
	namespace string
	client    CloudWatchClient
	timeout   time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// NewCloudWatchRecorder creates a new CloudWatch recorder
func NewCloudWatchRecorder(namespace string, client CloudWatchClient, logger *zap.Logger) *CloudWatchRecorder {
	return &CloudWatchRecorder{
		namespace: namespace,
		client:    client,
		timeout:   2 * time.Second,
		now:       time.Now,
		logger:    logger,
	}
}

func (r *CloudWatchRecorder) DimensionsCreated(n int) {
	r.put(r.count("DimensionsCreated", n))
}

func (r *CloudWatchRecorder) DimensionsDeleted(reason events.DeletionReason, n int) {
	r.put(r.count("DimensionsDeleted", n, dimension("Reason", string(reason))))
}

func (r *CloudWatchRecorder) TagsSynchronized(resourceType valueobjects.ResourceType, added, removed int) {
	rt := dimension("ResourceType", string(resourceType))
	r.put(
		r.count("TagSyncs", 1, rt),
		r.count("TagsAdded", added, rt),
		r.count("TagsRemoved", removed, rt),
	)
}

func dimension(name, value string) types.Dimension {
	return types.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

func (r *CloudWatchRecorder) count(name string, n int, dims ...types.Dimension) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Dimensions: dims,
		Value:      aws.Float64(float64(n)),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(r.now()),
	}
}

func (r *CloudWatchRecorder) put(data ...types.MetricDatum) {
	if r.client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(r.namespace),
		MetricData: data,
	})
	if err != nil {
		r.logger.Warn("Failed to send metrics", zap.Error(err), zap.String("namespace", r.namespace))
	}
}
