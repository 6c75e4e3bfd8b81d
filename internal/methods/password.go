package methods

import (
	"context"
	"sync/atomic"

	"github.com/sshauthd/sshauthd/internal/domain"
	"github.com/sshauthd/sshauthd/pkg/password"
)

// Password verifies the request's password field against the bound
// record's bcrypt hash.
type Password struct {
	enabled atomic.Bool
	// PasswordOf must be set by the caller; it returns the plaintext
	// password carried by the current UserAuthRequest. A real
	// transport would parse it off the wire alongside user/service/
	// method; FakeTransport's requests carry it as an extra field.
	PasswordOf func(ctx context.Context) (string, error)
}

// NewPassword returns an enabled password method.
func NewPassword(passwordOf func(ctx context.Context) (string, error)) *Password {
	p := &Password{PasswordOf: passwordOf}
	p.enabled.Store(true)
	return p
}

func (p *Password) Name() string { return "password" }
func (p *Password) Enabled() bool { return p.enabled.Load() }

// SetEnabled lets configuration flip the method off at runtime; the
// registry reads this indirection freely, per the single connection
// goroutine resource model.
func (p *Password) SetEnabled(v bool) { p.enabled.Store(v) }

func (p *Password) Authenticate(ctx context.Context, session *domain.AuthContext) (domain.Result, error) {
	pw, err := p.PasswordOf(ctx)
	if err != nil {
		return domain.Result{Outcome: domain.ServerCausedFailure}, nil
	}

	if session.Record == nil || !session.Valid {
		// Still run the hash comparison against the fake record so
		// failure timing for unknown users matches failure timing for
		// real ones.
		if session.Record != nil {
			_ = password.VerifyPassword(session.Record.PasswordHash, pw)
		}
		return domain.Result{Outcome: domain.NotAuthenticated}, nil
	}

	if password.VerifyPassword(session.Record.PasswordHash, pw) != nil {
		return domain.Result{Outcome: domain.NotAuthenticated}, nil
	}

	return domain.Result{Outcome: domain.Authenticated}, nil
}
