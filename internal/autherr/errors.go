// Package autherr defines the distinct error kinds the authentication
// core can produce, so callers can branch on kind with errors.As
// instead of matching strings.
package autherr

import "fmt"

// ProtocolViolationError covers unexpected messages, malformed fields,
// and any attempt to mutate the bound user or service after the first
// request.
type ProtocolViolationError struct {
	Reason string
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("protocol violation: %s", e.Reason)
}

// ConfigurationError covers a method-list policy that has no usable
// lists after pruning, or a list naming an unknown or disabled method
// where the caller required every name to be enabled.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// CredentialFailureError covers a method handler returning
// not-authenticated, a multi-method list not yet completed, or a
// failed root-allowed check.
type CredentialFailureError struct {
	Reason string
}

func (e *CredentialFailureError) Error() string {
	return fmt.Sprintf("credential failure: %s", e.Reason)
}

// ExhaustedAttemptsError covers failures reaching the configured
// ceiling. The controller itself reports that case by disconnecting
// and does not construct this error.
type ExhaustedAttemptsError struct {
	MaxAuthTries int
}

func (e *ExhaustedAttemptsError) Error() string {
	return fmt.Sprintf("too many authentication failures (max %d)", e.MaxAuthTries)
}

// ServerCausedFailureError marks a failure not attributable to the
// user's credentials; it never counts against max_authtries.
type ServerCausedFailureError struct {
	Reason string
}

func (e *ServerCausedFailureError) Error() string {
	return fmt.Sprintf("server-caused failure: %s", e.Reason)
}

// InternalError indicates a should-not-happen invariant break — a bug
// in the caller, not in the client's input.
type InternalError struct {
	Reason string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s", e.Reason)
}

// CryptoError and AllocationFailureError are the MAC engine's failure
// kinds, surfaced to the transport, which should disconnect. Init
// returns CryptoError when family state cannot be built; no engine
// path returns AllocationFailureError.
type CryptoError struct {
	Reason string
}

func (e *CryptoError) Error() string { return fmt.Sprintf("crypto error: %s", e.Reason) }

type AllocationFailureError struct {
	Reason string
}

func (e *AllocationFailureError) Error() string {
	return fmt.Sprintf("allocation failure: %s", e.Reason)
}

type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Reason)
}
