package policy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sshauthd/sshauthd/internal/autherr"
	"github.com/sshauthd/sshauthd/internal/domain"
	"github.com/sshauthd/sshauthd/internal/policy"
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

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.Register(stubMethod{name: registry.NoneMethod, enabled: true}))
	require.NoError(t, reg.Register(stubMethod{name: "publickey", enabled: true}))
	require.NoError(t, reg.Register(stubMethod{name: "password", enabled: true}))
	require.NoError(t, reg.Register(stubMethod{name: "gssapi-with-mic", enabled: false}))
	return reg
}

func TestValidateRejectsNoneInList(t *testing.T) {
	reg := newRegistry(t)
	err := policy.Validate(reg, "none,password", true)
	require.Error(t, err)
	var cfgErr *autherr.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestValidateRejectsUnknownMethod(t *testing.T) {
	reg := newRegistry(t)
	err := policy.Validate(reg, "publickey,hostbased", true)
	require.Error(t, err)
}

func TestValidateRejectsDisabledWhenRequired(t *testing.T) {
	reg := newRegistry(t)
	err := policy.Validate(reg, "gssapi-with-mic,password", true)
	require.Error(t, err)
}

func TestSetupNoConfiguredListsIsNotAnError(t *testing.T) {
	reg := newRegistry(t)
	ctx := domain.New()
	require.NoError(t, policy.Setup(reg, ctx, nil, nil))
	assert.Empty(t, ctx.AuthMethodLists)
}

func TestSetupPrunesListsWithDisabledMethods(t *testing.T) {
	reg := newRegistry(t)
	ctx := domain.New()
	pruned := []string{}

	err := policy.Setup(reg, ctx, []string{
		"publickey,password",
		"gssapi-with-mic,password",
	}, func(list string) { pruned = append(pruned, list) })

	require.NoError(t, err)
	require.Len(t, ctx.AuthMethodLists, 1)
	assert.Equal(t, []string{"publickey", "password"}, ctx.AuthMethodLists[0])
	assert.Equal(t, []string{"gssapi-with-mic,password"}, pruned)
}

func TestSetupAllPrunedIsConfigurationError(t *testing.T) {
	reg := newRegistry(t)
	ctx := domain.New()

	err := policy.Setup(reg, ctx, []string{"gssapi-with-mic,password"}, nil)
	require.Error(t, err)
	var cfgErr *autherr.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestSetupRejectsNoneInConfiguredList(t *testing.T) {
	reg := newRegistry(t)
	ctx := domain.New()

	err := policy.Setup(reg, ctx, []string{"none,password"}, nil)
	require.Error(t, err)
}

func TestMethodAllowedNoPolicyInForce(t *testing.T) {
	ctx := domain.New()
	assert.True(t, policy.MethodAllowed(ctx, "password"))
}

func TestMethodAllowedRespectsListHead(t *testing.T) {
	reg := newRegistry(t)
	ctx := domain.New()
	require.NoError(t, policy.Setup(reg, ctx, []string{"publickey,password"}, nil))

	assert.True(t, policy.MethodAllowed(ctx, "publickey"))
	assert.False(t, policy.MethodAllowed(ctx, "password"))
}

func TestUpdateAdvancesListAndReportsCompletion(t *testing.T) {
	reg := newRegistry(t)
	ctx := domain.New()
	require.NoError(t, policy.Setup(reg, ctx, []string{"publickey,password"}, nil))

	completed, err := policy.Update(ctx, "publickey")
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, []string{"password"}, ctx.AuthMethodLists[0])

	completed, err = policy.Update(ctx, "password")
	require.NoError(t, err)
	assert.True(t, completed)
}

func TestUpdateWithNoPolicyInForceIsAlwaysComplete(t *testing.T) {
	ctx := domain.New()
	completed, err := policy.Update(ctx, "password")
	require.NoError(t, err)
	assert.True(t, completed)
}

func TestUpdateRejectsMethodNotAtHead(t *testing.T) {
	reg := newRegistry(t)
	ctx := domain.New()
	require.NoError(t, policy.Setup(reg, ctx, []string{"publickey,password"}, nil))

	_, err := policy.Update(ctx, "password")
	require.Error(t, err)
	var internalErr *autherr.InternalError
	assert.ErrorAs(t, err, &internalErr)
}

func TestAdvertiseJoinsAllowedMethods(t *testing.T) {
	reg := newRegistry(t)
	ctx := domain.New()
	require.NoError(t, policy.Setup(reg, ctx, []string{"publickey,password"}, nil))

	assert.Equal(t, "publickey", policy.Advertise(reg, ctx))
}
