package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "crux-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newGenerator(t *testing.T, secret string) *JWTGenerator {
	t.Helper()
	g, err := NewJWTGenerator(JWTGeneratorConfig{
		SecretKey:  secret,
		Issuer:     "crux-auth",
		Audience:   []string{"crux-api"},
		ExpiryTime: time.Hour,
	})
	require.NoError(t, err)
	return g
}

func newValidator(t *testing.T) *JWTValidator {
	t.Helper()
	v, err := NewJWTValidator(JWTConfig{
		SecretKey: testSecret,
		Issuer:    "crux-auth",
		Audience:  []string{"crux-api"},
	})
	require.NoError(t, err)
	return v
}

func TestJWTValidator_RoundTrip(t *testing.T) {
	token, err := newGenerator(t, testSecret).GenerateToken("author-1", "home-1", []string{"admin"})
	require.NoError(t, err)

	claims, err := newValidator(t).ValidateToken("Bearer " + token)

	require.NoError(t, err)
	assert.Equal(t, "author-1", claims.AuthorID())
	assert.Equal(t, "home-1", claims.HomeID)
	assert.Equal(t, []string{"admin"}, claims.Roles)
}

func TestJWTValidator_Rejections(t *testing.T) {
	expired := newGenerator(t, testSecret)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	wrongAudience, err := NewJWTGenerator(JWTGeneratorConfig{
		SecretKey: testSecret,
		Issuer:    "crux-auth",
		Audience:  []string{"someone-else"},
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   func() string
		wantErr error
	}{
		{
			name:    "empty",
			token:   func() string { return "" },
			wantErr: ErrMissingToken,
		},
		{
			name: "expired",
			token: func() string {
				tok, _ := expired.GenerateToken("author-1", "", nil)
				return tok
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "wrong secret",
			token: func() string {
				tok, _ := newGenerator(t, "other-secret").GenerateToken("author-1", "", nil)
				return tok
			},
			wantErr: ErrInvalidSignature,
		},
		{
			name: "wrong audience",
			token: func() string {
				tok, _ := wrongAudience.GenerateToken("author-1", "", nil)
				return tok
			},
			wantErr: ErrInvalidClaims,
		},
		{
			name: "missing subject",
			token: func() string {
				tok, _ := newGenerator(t, testSecret).GenerateToken("", "", nil)
				return tok
			},
			wantErr: ErrInvalidClaims,
		},
		{
			name:    "garbage",
			token:   func() string { return "not.a.token" },
			wantErr: ErrInvalidToken,
		},
	}

	v := newValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateToken(tt.token())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBearerAuthenticator(t *testing.T) {
	token, err := newGenerator(t, testSecret).GenerateToken("author-1", "home-1", nil)
	require.NoError(t, err)
	authn := NewBearerAuthenticator(newValidator(t))

	t.Run("header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "bearer "+token)

		actor, err := authn.Authenticate(r)

		require.NoError(t, err)
		assert.Equal(t, "author-1", actor.AuthorID)
		assert.Equal(t, "home-1", actor.HomeID)
		assert.Equal(t, []string{"authenticated"}, actor.Roles)
	})

	t.Run("cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "auth_token", Value: token})

		actor, err := authn.Authenticate(r)

		require.NoError(t, err)
		assert.Equal(t, "author-1", actor.AuthorID)
	})

	t.Run("missing", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		_, err := authn.Authenticate(r)

		assert.True(t, pkgerrors.IsUnauthorized(err))
	})

	t.Run("non bearer scheme", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Basic abc")

		_, err := authn.Authenticate(r)

		assert.True(t, pkgerrors.IsUnauthorized(err))
	})
}

func TestGatewayAuthenticator(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(HeaderAuthorID, "author-9")
	r.Header.Set(HeaderHomeID, "home-9")
	r.Header.Set(HeaderUserRoles, "admin, editor")

	actor, err := GatewayAuthenticator{}.Authenticate(r)

	require.NoError(t, err)
	assert.Equal(t, "author-9", actor.AuthorID)
	assert.Equal(t, "home-9", actor.HomeID)
	assert.Equal(t, []string{"admin", "editor"}, actor.Roles)
	assert.True(t, actor.IsAdmin())

	_, err = GatewayAuthenticator{}.Authenticate(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, pkgerrors.IsUnauthorized(err))
}

func TestTokenBucketLimiter(t *testing.T) {
	// Arrange
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewTokenBucketLimiter(60, 2)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	// Act + Assert: burst of two, then empty
	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := limiter.Allow(ctx, "a")
	assert.False(t, ok)

	// other keys have their own bucket
	ok, _ = limiter.Allow(ctx, "b")
	assert.True(t, ok)

	// one token a second
	now = now.Add(time.Second)
	ok, _ = limiter.Allow(ctx, "a")
	assert.True(t, ok)

	require.NoError(t, limiter.Reset(ctx, "a"))
	ok, _ = limiter.Allow(ctx, "a")
	assert.True(t, ok)
}

func TestTokenBucketLimiter_SweepsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewTokenBucketLimiter(60, 1)
	limiter.now = func() time.Time { return now }

	_, _ = limiter.Allow(context.Background(), "a")
	now = now.Add(time.Hour)
	_, _ = limiter.Allow(context.Background(), "b")

	assert.Len(t, limiter.buckets, 1)
}

func TestAuthorRateLimiter_PrefixesKeys(t *testing.T) {
	inner := NewTokenBucketLimiter(60, 1)
	limiter := NewAuthorRateLimiterWith(inner, 60)

	ok, err := limiter.Allow(context.Background(), "author-1")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, inner.buckets, "author:author-1")
	assert.Equal(t, 60, limiter.RequestsPerMinute())
}

type mockDynamoDB struct {
	mock.Mock
}

func (m *mockDynamoDB) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.UpdateItemOutput)
	return out, args.Error(1)
}

func (m *mockDynamoDB) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.DeleteItemOutput)
	return out, args.Error(1)
}

func TestDistributedRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 30, 0, time.UTC)
	windowPK := "RATELIMIT#author:a#1704110400"

	t.Run("counts within the limit", func(t *testing.T) {
		client := new(mockDynamoDB)
		client.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
			pk := in.Key["PK"].(*types.AttributeValueMemberS).Value
			return aws.ToString(in.TableName) == "crux" && pk == windowPK
		})).Return(&dynamodb.UpdateItemOutput{
			Attributes: map[string]types.AttributeValue{
				"Count": &types.AttributeValueMemberN{Value: "3"},
			},
		}, nil)
		limiter := NewDistributedRateLimiter(client, "crux", 5, time.Minute)
		limiter.now = func() time.Time { return now }

		ok, err := limiter.Allow(context.Background(), "author:a")

		require.NoError(t, err)
		assert.True(t, ok)
		client.AssertExpectations(t)
	})

	t.Run("condition failure means limited", func(t *testing.T) {
		client := new(mockDynamoDB)
		client.On("UpdateItem", mock.Anything, mock.Anything).
			Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("limit")})
		limiter := NewDistributedRateLimiter(client, "crux", 5, time.Minute)

		ok, err := limiter.Allow(context.Background(), "author:a")

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("store failure fails open", func(t *testing.T) {
		client := new(mockDynamoDB)
		client.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))
		limiter := NewDistributedRateLimiter(client, "crux", 5, time.Minute)

		ok, err := limiter.Allow(context.Background(), "author:a")

		assert.Error(t, err)
		assert.True(t, ok)
	})

	t.Run("reset deletes the window", func(t *testing.T) {
		client := new(mockDynamoDB)
		client.On("DeleteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
			return in.Key["PK"].(*types.AttributeValueMemberS).Value == windowPK
		})).Return(&dynamodb.DeleteItemOutput{}, nil)
		limiter := NewDistributedRateLimiter(client, "crux", 5, time.Minute)
		limiter.now = func() time.Time { return now }

		require.NoError(t, limiter.Reset(context.Background(), "author:a"))
		client.AssertExpectations(t)
	})
}
