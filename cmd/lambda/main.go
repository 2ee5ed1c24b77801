package main

import (
	"context"
	"log"
	"strings"
	"time"

	"crux-backend/infrastructure/config"
	"crux-backend/infrastructure/di"
	"crux-backend/pkg/auth"
	"crux-backend/pkg/observability"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"go.uber.org/zap"
)

// Global variables for Lambda lifecycle management
var (
	chiLambda *chiadapter.ChiLambdaV2
	container *di.Container
	tracer    *observability.XRayTracer

	coldStart     = true
	coldStartTime time.Time
)

// setup builds the container once per execution environment
func setup() {
	coldStartTime = time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.IsLambda = true

	// The container lives as long as the execution environment, so its
	// cleanup is never run.
	container, _, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	chiLambda = chiadapter.NewV2(container.Router())
	tracer = observability.NewXRayTracer("crux-backend")

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(coldStartTime)),
		zap.String("function", cfg.LambdaFunctionName),
	)
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	applyAuthorizerContext(&req)

	var resp events.APIGatewayV2HTTPResponse
	err := tracer.TraceFunction(ctx, "proxy", func(ctx context.Context) error {
		var err error
		resp, err = chiLambda.ProxyWithContextV2(ctx, req)
		return err
	})

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		coldStart = false
	}
	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Lambda-Request-ID"] = req.RequestContext.RequestID
	}

	if resp.StatusCode >= 500 {
		container.Logger.Error("Lambda error response",
			zap.String("method", req.RequestContext.HTTP.Method),
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.String("request_id", req.RequestContext.RequestID),
			zap.Int("status_code", resp.StatusCode),
		)
	}

	return resp, err
}

// applyAuthorizerContext replaces any client supplied author headers with
// the claims the API Gateway JWT authorizer verified. Without an authorizer
// context the headers are only removed, so the request is rejected.
func applyAuthorizerContext(req *events.APIGatewayV2HTTPRequest) {
	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}
	for name := range req.Headers {
		switch {
		case strings.EqualFold(name, auth.HeaderAuthorID),
			strings.EqualFold(name, auth.HeaderHomeID),
			strings.EqualFold(name, auth.HeaderUserRoles):
			delete(req.Headers, name)
		}
	}

	authorizer := req.RequestContext.Authorizer
	if authorizer == nil || authorizer.JWT == nil {
		return
	}
	claims := authorizer.JWT.Claims

	if sub := claims["sub"]; sub != "" {
		req.Headers[auth.HeaderAuthorID] = sub
	}
	if home := claims["home_id"]; home != "" {
		req.Headers[auth.HeaderHomeID] = home
	}
	if roles := parseClaimList(claims["roles"]); len(roles) > 0 {
		req.Headers[auth.HeaderUserRoles] = strings.Join(roles, ",")
	}
}

// parseClaimList reads an array claim, which API Gateway flattens to
// "[a b]" or "[a,b]"
func parseClaimList(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '"'
	})
}

// main is the entry point for the Lambda function
func main() {
	setup()
	lambda.Start(Handler)
}
