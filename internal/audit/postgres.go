package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresRecorder persists every audit entry to the auth_audit_log
// table managed by migrations/postgres. It is a thin struct around a
// pgxpool.Pool with one method per operation, no ORM in between.
type PostgresRecorder struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewPostgresRecorder(db *pgxpool.Pool, log *zap.Logger) *PostgresRecorder {
	return &PostgresRecorder{db: db, log: log}
}

// Record inserts one row. Write failures are logged, not returned —
// Recorder.Record has no error channel, since an audit sink must
// never be allowed to change the authentication outcome.
func (r *PostgresRecorder) Record(e Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO auth_audit_log (id, username, method, submethod, authenticated, partial, protocol, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := r.db.Exec(ctx, query,
		uuid.New(), e.User, e.Method, e.Submethod, e.Authenticated, e.Partial, e.Protocol, time.Now().UTC()); err != nil {
		r.log.Error("failed to write audit record", zap.Error(err), zap.String("user", e.User))
	}
}
