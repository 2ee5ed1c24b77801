package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActorRoundTripThroughContext(t *testing.T) {
	ctx := WithActor(context.Background(), Actor{AuthorID: "author-1", HomeID: "home-1", Roles: []string{"admin"}})

	actor, ok := GetActor(ctx)
	assert.True(t, ok)
	assert.Equal(t, "author-1", actor.AuthorID)
	assert.Equal(t, "home-1", actor.HomeID)
	assert.True(t, actor.IsAdmin())
	assert.True(t, HasRole(ctx, RoleAdmin))

	_, ok = GetActor(context.Background())
	assert.False(t, ok)
	assert.False(t, Actor{AuthorID: "x"}.IsAdmin())
}
