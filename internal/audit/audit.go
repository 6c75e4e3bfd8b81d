// Package audit records the controller's finish() decisions: one
// entry per UserAuthRequest outcome, emitted before the reply is
// sent.
package audit

import "go.uber.org/zap"

// Entry is one audit record: user, method, submethod, authenticated,
// partial, and the protocol tag.
type Entry struct {
	User          string
	Method        string
	Submethod     string
	Authenticated bool
	Partial       bool
	Protocol      string
}

// Recorder persists or forwards audit entries. Implementations must
// not block the controller indefinitely; a slow sink delays the
// reply, which is acceptable for an audit trail but not for the
// protocol state machine itself.
type Recorder interface {
	Record(e Entry)
}

// NoopRecorder discards every entry; used when no audit sink is
// configured (e.g. unit tests of the controller itself).
type NoopRecorder struct{}

func (NoopRecorder) Record(Entry) {}

// LogRecorder writes every entry through a structured logger.
// cmd/sshauthd pairs it with the Postgres recorder through Multi, so
// every entry is still visible in the logs when an audit row write
// fails.
type LogRecorder struct {
	Log *zap.Logger
}

func (r LogRecorder) Record(e Entry) {
	r.Log.Info("auth finish",
		zap.String("user", e.User),
		zap.String("method", e.Method),
		zap.String("submethod", e.Submethod),
		zap.Bool("authenticated", e.Authenticated),
		zap.Bool("partial", e.Partial),
		zap.String("protocol", e.Protocol),
	)
}

// Multi fans a single Record call out to every recorder given, in
// order. A failing recorder has no return value to fail with —
// Recorder is a forwarding sink, not a transactional write — so
// ordering only matters for log readability.
type Multi []Recorder

func (m Multi) Record(e Entry) {
	for _, r := range m {
		r.Record(e)
	}
}
