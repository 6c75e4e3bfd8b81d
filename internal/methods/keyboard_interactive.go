package methods

import (
	"context"
	"sync/atomic"

	"github.com/sshauthd/sshauthd/internal/domain"
)

// kbdInteractiveState is the per-connection continuation object: the
// first request installs it and postpones (nothing is sent to the
// client for that request), the second request (of the same method)
// supplies a response and completes.
type kbdInteractiveState struct {
	challengeSent bool
	stopped       bool
}

func (s *kbdInteractiveState) Stop() {
	s.stopped = true
}

// KeyboardInteractive demonstrates the postponement model: mutable
// per-method state owned by the context, reset whenever a fresh
// request names a different method.
type KeyboardInteractive struct {
	enabled atomic.Bool
	// ResponseOf returns the response text carried by the current
	// UserAuthRequest once the challenge has already been sent.
	ResponseOf func(ctx context.Context) (string, error)
	// Verify checks the challenge response for session's bound user.
	Verify func(session *domain.AuthContext, response string) bool
}

func NewKeyboardInteractive(responseOf func(ctx context.Context) (string, error), verify func(*domain.AuthContext, string) bool) *KeyboardInteractive {
	k := &KeyboardInteractive{ResponseOf: responseOf, Verify: verify}
	k.enabled.Store(true)
	return k
}

func (k *KeyboardInteractive) Name() string { return "keyboard-interactive" }
func (k *KeyboardInteractive) Enabled() bool { return k.enabled.Load() }
func (k *KeyboardInteractive) SetEnabled(v bool) { k.enabled.Store(v) }

func (k *KeyboardInteractive) Authenticate(ctx context.Context, session *domain.AuthContext) (domain.Result, error) {
	existing := session.State(k.Name())
	state, _ := existing.(*kbdInteractiveState)

	if state == nil || !state.challengeSent {
		state = &kbdInteractiveState{challengeSent: true}
		session.SetState(k.Name(), state)
		return domain.Result{Outcome: domain.Postponed}, nil
	}

	response, err := k.ResponseOf(ctx)
	if err != nil {
		return domain.Result{Outcome: domain.ServerCausedFailure}, nil
	}

	if k.Verify == nil || !k.Verify(session, response) {
		return domain.Result{Outcome: domain.NotAuthenticated}, nil
	}
	return domain.Result{Outcome: domain.Authenticated, Submethod: "pam"}, nil
}
