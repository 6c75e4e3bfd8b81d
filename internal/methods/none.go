// Package methods holds the handful of authentication methods this
// repository implements directly, so the controller is exercisable
// end to end. Every other method (publickey, hostbased, gssapi, …) is
// an external collaborator represented only by domain.Method.
package methods

import (
	"context"

	"github.com/sshauthd/sshauthd/internal/domain"
)

// None is the free probe clients use to discover the advertised
// method list. It always fails, never postpones, and is always
// enabled — the registry and policy packages are responsible for
// keeping it out of the advertised list and the none-probe exception
// out of the failure counter, not this handler.
type None struct{}

func (None) Name() string { return "none" }
func (None) Enabled() bool { return true }

func (None) Authenticate(context.Context, *domain.AuthContext) (domain.Result, error) {
	return domain.Result{Outcome: domain.NotAuthenticated}, nil
}
