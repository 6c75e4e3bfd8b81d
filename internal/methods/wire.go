package methods

import (
	"context"
	"fmt"

	"github.com/sshauthd/sshauthd/internal/transport"
)

// FieldFromWire reads the next method-specific string field off the
// adapter the controller attached to ctx for this dispatch. Both
// Password and KeyboardInteractive use it as their default data
// source; callers that drive these methods outside the controller
// (tests building AuthContext directly) supply their own PasswordOf/
// ResponseOf instead.
func FieldFromWire(ctx context.Context) (string, error) {
	read, ok := transport.DataReader(ctx)
	if !ok {
		return "", fmt.Errorf("methods: no wire field reader in context")
	}
	return read()
}
