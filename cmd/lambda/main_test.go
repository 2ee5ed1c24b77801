package main

import (
	"testing"

	"crux-backend/pkg/auth"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
)

func TestApplyAuthorizerContext(t *testing.T) {
	t.Run("claims become headers", func(t *testing.T) {
		req := events.APIGatewayV2HTTPRequest{
			Headers: map[string]string{"x-author-id": "spoofed", "content-type": "application/json"},
			RequestContext: events.APIGatewayV2HTTPRequestContext{
				Authorizer: &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{
					JWT: &events.APIGatewayV2HTTPRequestContextAuthorizerJWTDescription{
						Claims: map[string]string{
							"sub":     "author-1",
							"home_id": "home-1",
							"roles":   "[admin editor]",
						},
					},
				},
			},
		}

		applyAuthorizerContext(&req)

		assert.Equal(t, "author-1", req.Headers[auth.HeaderAuthorID])
		assert.Equal(t, "home-1", req.Headers[auth.HeaderHomeID])
		assert.Equal(t, "admin,editor", req.Headers[auth.HeaderUserRoles])
		assert.NotContains(t, req.Headers, "x-author-id")
		assert.Equal(t, "application/json", req.Headers["content-type"])
	})

	t.Run("client headers are stripped without an authorizer", func(t *testing.T) {
		req := events.APIGatewayV2HTTPRequest{
			Headers: map[string]string{
				"X-Author-ID":  "spoofed",
				"x-user-roles": "admin",
			},
		}

		applyAuthorizerContext(&req)

		assert.Empty(t, req.Headers)
	})
}

func TestParseClaimList(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{raw: "", want: []string{}},
		{raw: "admin", want: []string{"admin"}},
		{raw: "[admin editor]", want: []string{"admin", "editor"}},
		{raw: `["admin","editor"]`, want: []string{"admin", "editor"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, parseClaimList(tt.raw))
		})
	}
}
