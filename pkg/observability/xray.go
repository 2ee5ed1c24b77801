package observability

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"
)

// InstrumentAWSConfig adds X-Ray subsegments to every AWS SDK call made
// with clients built from cfg
func InstrumentAWSConfig(cfg *aws.Config) {
	awsv2.AWSV2Instrumentor(&cfg.APIOptions)
}

// XRayTracer opens X-Ray subsegments under the segment Lambda provides
type XRayTracer struct {
	serviceName string
}

// NewXRayTracer creates a new tracer instance
func NewXRayTracer(serviceName string) *XRayTracer {
	return &XRayTracer{serviceName: serviceName}
}

// TraceFunction runs fn inside a subsegment and records its error. Without
// an enclosing segment fn runs untraced.
func (t *XRayTracer) TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error {
	if xray.GetSegment(ctx) == nil {
		return fn(ctx)
	}
	ctx, seg := xray.BeginSubsegment(ctx, fmt.Sprintf("%s.%s", t.serviceName, name))
	if seg == nil {
		return fn(ctx)
	}

	err := fn(ctx)
	seg.Close(err)
	return err
}

// AddAnnotation adds an indexed annotation to the current segment
func (t *XRayTracer) AddAnnotation(ctx context.Context, key, value string) {
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddAnnotation(key, value)
	}
}
