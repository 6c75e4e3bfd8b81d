// Package httpapi exposes the control-plane HTTP surface: liveness
// and readiness probes, and read-only introspection of the configured
// method registry and MAC algorithm table. It never touches the
// authentication state machine itself — that is driven entirely over
// the transport.Adapter, not HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sshauthd/sshauthd/internal/mac"
	"github.com/sshauthd/sshauthd/internal/registry"
	"github.com/sshauthd/sshauthd/internal/ticket"
)

type methodInfo struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

type macInfo struct {
	Name       string `json:"name"`
	Family     string `json:"family"`
	KeyBits    int    `json:"key_bits"`
	OutputBits int    `json:"output_bits"`
	ETM        bool   `json:"etm"`
}

// NewRouter builds the control-plane chi router, scoped down to this
// project's introspection routes. The probes are open; every /api/v1
// route is gated behind a session ticket.
func NewRouter(reg *registry.Registry, db *pgxpool.Pool, issuer *ticket.JWTIssuer) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(NewCORSMiddleware())
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteSuccess(w, map[string]string{"status": "ok"}, "")
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			WriteSuccess(w, map[string]string{"status": "ready"}, "")
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			WriteError(w, http.StatusServiceUnavailable, "database_unreachable", err)
			return
		}
		WriteSuccess(w, map[string]string{"status": "ready"}, "")
	})

	r.Route("/api/v1", func(r chi.Router) {
		auth := NewTicketAuth(issuer)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireTicket)

			r.Get("/methods", func(w http.ResponseWriter, r *http.Request) {
				var out []methodInfo
				for _, m := range reg.IterEnabled() {
					out = append(out, methodInfo{Name: m.Name(), Enabled: m.Enabled()})
				}
				WriteSuccess(w, out, "")
			})

			r.Get("/mac-algorithms", func(w http.ResponseWriter, r *http.Request) {
				out := make([]macInfo, 0, len(mac.Table))
				for _, d := range mac.Table {
					out = append(out, macInfo{
						Name:       d.Name,
						Family:     d.Family.String(),
						KeyBits:    d.KeyBits,
						OutputBits: d.OutputBits,
						ETM:        d.ETM,
					})
				}
				WriteSuccess(w, out, "")
			})
		})
	})

	return r
}
