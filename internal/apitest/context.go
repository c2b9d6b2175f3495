package apitest

import (
	"context"

	"github.com/merchke/storefront/types"
)

func withUser(ctx context.Context, user types.User) context.Context {
	return context.WithValue(ctx, userKey, &user)
}

func userFrom(ctx context.Context) *types.User {
	user, _ := ctx.Value(userKey).(*types.User)
	return user
}
