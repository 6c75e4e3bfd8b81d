// Package account implements the account oracle collaborator: "is
// this user allowed" lookup, and the deterministic fake record used
// to keep unknown-user attempts indistinguishable in timing from
// attempts against real accounts.
package account

import (
	"context"
	"sync"

	"github.com/sshauthd/sshauthd/internal/domain"
	"github.com/sshauthd/sshauthd/pkg/password"
)

// sshConnection is the only service name the controller will bind a
// user against; anything else fails admissibility regardless of
// whether the account exists.
const sshConnection = "ssh-connection"

// Oracle is the external collaborator the controller consults:
// Lookup, a deterministic FakeRecord, and the root-allowed predicate
// used by the controller's finish step.
type Oracle interface {
	// Lookup resolves user for the given service. ok is true iff the
	// account exists and service is admissible for it.
	Lookup(ctx context.Context, user, service string) (record *domain.Record, ok bool)
	FakeRecord(user string) *domain.Record
	RootAllowed(method string) bool
}

// InMemoryOracle is a demo/test implementation backing cmd/sshauthd
// when no external account store is configured. It is not meant for
// production use — a real deployment supplies its own Oracle, e.g.
// backed by PAM or an LDAP directory, both out of scope here.
type InMemoryOracle struct {
	mu          sync.RWMutex
	users       map[string]*domain.Record
	fakeHash    string
	rootAllowed map[string]bool
}

// NewInMemoryOracle seeds the oracle with users and the set of method
// names the superuser-equivalent account is allowed to authenticate
// with.
func NewInMemoryOracle(rootAllowedMethods []string) *InMemoryOracle {
	fakeHash, _ := password.HashPassword("$sshauthd$unreachable$")

	allowed := make(map[string]bool, len(rootAllowedMethods))
	for _, m := range rootAllowedMethods {
		allowed[m] = true
	}

	return &InMemoryOracle{
		users:       make(map[string]*domain.Record),
		fakeHash:    fakeHash,
		rootAllowed: allowed,
	}
}

// AddUser registers a user record with a plaintext password, hashed
// with the same pkg/password helper the teacher's HTTP delivery
// surface used for account creation.
func (o *InMemoryOracle) AddUser(username, plaintext string, isRoot bool) error {
	hash, err := password.HashPassword(plaintext)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.users[username] = &domain.Record{
		Username:     username,
		PasswordHash: hash,
		IsRoot:       isRoot,
	}
	return nil
}

func (o *InMemoryOracle) Lookup(_ context.Context, user, service string) (*domain.Record, bool) {
	if service != sshConnection {
		return o.FakeRecord(user), false
	}

	o.mu.RLock()
	defer o.mu.RUnlock()
	rec, exists := o.users[user]
	if !exists {
		return o.FakeRecord(user), false
	}
	return rec, true
}

func (o *InMemoryOracle) FakeRecord(user string) *domain.Record {
	return &domain.Record{Username: user, PasswordHash: o.fakeHash, IsRoot: false}
}

func (o *InMemoryOracle) RootAllowed(method string) bool {
	return o.rootAllowed[method]
}
