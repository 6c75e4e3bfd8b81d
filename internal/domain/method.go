// Package domain holds the types shared by the authentication
// registry, policy and controller: the method capability interface,
// the per-connection context, and the account record it binds to.
package domain

import "context"

// Outcome is the sum type a method handler returns. It deliberately
// avoids overloading a single integer with side-channel flags: a
// postponed or server-caused result is a distinct case, not a bit on
// top of NotAuthenticated.
type Outcome int

const (
	NotAuthenticated Outcome = iota
	Authenticated
	Postponed
	ServerCausedFailure
)

func (o Outcome) String() string {
	switch o {
	case Authenticated:
		return "authenticated"
	case Postponed:
		return "postponed"
	case ServerCausedFailure:
		return "server-caused-failure"
	default:
		return "not-authenticated"
	}
}

// Result is what a method handler hands back to the controller.
// Submethod is only meaningful alongside Authenticated and is carried
// through to the audit record (e.g. which public key algorithm, which
// keyboard-interactive device).
type Result struct {
	Outcome   Outcome
	Submethod string
}

// MethodState is per-method continuation state held by the context
// across a multi-message exchange (e.g. keyboard-interactive). The
// controller calls Stop on it whenever a fresh request arrives for a
// different method name, before discarding it.
type MethodState interface {
	Stop()
}

// Method is the fixed capability set every authentication method
// exposes to the controller. Enabled is read through a function
// rather than a cached bool so configuration can disable a method
// after startup without the registry needing to know about it.
type Method interface {
	Name() string
	Enabled() bool
	Authenticate(ctx context.Context, session *AuthContext) (Result, error)
}
