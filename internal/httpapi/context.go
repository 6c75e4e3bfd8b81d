package httpapi

import (
	"context"

	"github.com/sshauthd/sshauthd/internal/ticket"
)

type claimsKey struct{}

func withClaims(ctx context.Context, claims *ticket.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext retrieves the ticket claims TicketAuth attached to
// the request context, if any.
func ClaimsFromContext(ctx context.Context) (*ticket.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*ticket.Claims)
	return claims, ok
}
