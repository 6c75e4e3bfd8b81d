package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/sshauthd/sshauthd/internal/ticket"
)

// NewCORSMiddleware serves a read-only CORS policy; the control plane
// is an introspection surface, not a public API, so the wildcard
// origin is acceptable for the demo deployment this repo ships.
func NewCORSMiddleware() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// TicketAuth gates a handler behind a bearer-token session ticket
// issued by ticket.Issuer on a prior successful authentication.
type TicketAuth struct {
	issuer *ticket.JWTIssuer
}

func NewTicketAuth(issuer *ticket.JWTIssuer) *TicketAuth {
	return &TicketAuth{issuer: issuer}
}

func (m *TicketAuth) RequireTicket(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			WriteUnauthorized(w, "bearer ticket required")
			return
		}
		raw := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := m.issuer.Verify(raw)
		if err != nil {
			WriteUnauthorized(w, "invalid or expired ticket")
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}
