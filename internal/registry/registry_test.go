package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sshauthd/sshauthd/internal/domain"
	"github.com/sshauthd/sshauthd/internal/registry"
)

type stubMethod struct {
	name    string
	enabled bool
}

func (s stubMethod) Name() string { return s.name }
func (s stubMethod) Enabled() bool { return s.enabled }
func (s stubMethod) Authenticate(context.Context, *domain.AuthContext) (domain.Result, error) {
	return domain.Result{}, nil
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	reg := registry.New()
	err := reg.Register(stubMethod{name: "", enabled: true})
	require.Error(t, err)
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(stubMethod{name: "password", enabled: true}))
	err := reg.Register(stubMethod{name: "password", enabled: true})
	require.Error(t, err)
}

func TestEnabledAdvertisableExcludesNone(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(stubMethod{name: registry.NoneMethod, enabled: true}))
	require.NoError(t, reg.Register(stubMethod{name: "password", enabled: true}))
	require.NoError(t, reg.Register(stubMethod{name: "publickey", enabled: false}))

	names := names(reg.EnabledAdvertisable())
	assert.Equal(t, []string{"password"}, names)
}

func TestIterEnabledPreservesRegistrationOrder(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(stubMethod{name: "publickey", enabled: true}))
	require.NoError(t, reg.Register(stubMethod{name: registry.NoneMethod, enabled: true}))
	require.NoError(t, reg.Register(stubMethod{name: "password", enabled: true}))

	assert.Equal(t, []string{"publickey", registry.NoneMethod, "password"}, names(reg.IterEnabled()))
}

func TestEnabled(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(stubMethod{name: "password", enabled: false}))
	assert.False(t, reg.Enabled("password"))
	assert.False(t, reg.Enabled("nonexistent"))
}

func names(ms []domain.Method) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name()
	}
	return out
}
