package httpapi

import (
	"context"

	"github.com/listly-app/shopping-list-api/internal/app/authz"
)

type claimsKey struct{}

func WithClaims(ctx context.Context, c authz.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func ClaimsFromContext(ctx context.Context) (authz.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(authz.Claims)
	return c, ok && c.Subject != ""
}
