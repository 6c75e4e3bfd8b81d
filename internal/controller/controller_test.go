package controller_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sshauthd/sshauthd/internal/account"
	"github.com/sshauthd/sshauthd/internal/audit"
	"github.com/sshauthd/sshauthd/internal/controller"
	"github.com/sshauthd/sshauthd/internal/domain"
	"github.com/sshauthd/sshauthd/internal/methods"
	"github.com/sshauthd/sshauthd/internal/registry"
	"github.com/sshauthd/sshauthd/internal/ticket"
	"github.com/sshauthd/sshauthd/internal/transport"
)

type recordingAuditor struct {
	entries []audit.Entry
}

func (r *recordingAuditor) Record(e audit.Entry) {
	r.entries = append(r.entries, e)
}

type acceptingPrivsep struct{}

func (acceptingPrivsep) NotifyService(context.Context, string, string) error { return nil }

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.Register(methods.None{}))
	require.NoError(t, reg.Register(methods.NewPassword(methods.FieldFromWire)))
	return reg
}

func newOracle(t *testing.T, rootAllowed ...string) *account.InMemoryOracle {
	t.Helper()
	o := account.NewInMemoryOracle(rootAllowed)
	require.NoError(t, o.AddUser("demo", "hunter2", false))
	require.NoError(t, o.AddUser("root", "toor", true))
	return o
}

func newController(reg *registry.Registry, oracle *account.InMemoryOracle, cfg controller.Config, auditor audit.Recorder) *controller.Controller {
	logger := zap.NewNop()
	return controller.New(logger, cfg, reg, oracle, acceptingPrivsep{}, auditor, ticket.NewJWTIssuer([]byte("test-secret-at-least-16-bytes"), "test", "test", 0))
}

func attachAndServiceRequest(t *testing.T, ctrl *controller.Controller) *transport.FakeTransport {
	t.Helper()
	tr := transport.NewFakeTransport()
	ctrl.Attach(tr)
	tr.Push(transport.MsgServiceRequest, "ssh-userauth")
	require.NoError(t, tr.Run(true, nil))
	require.False(t, tr.Disconnected)
	require.Len(t, tr.Sent, 1)
	assert.Equal(t, transport.MsgServiceAccept, tr.Sent[0].Type)
	return tr
}

func TestNoneProbeThenPasswordSuccess(t *testing.T) {
	reg := newRegistry(t)
	oracle := newOracle(t)
	auditor := &recordingAuditor{}
	ctrl := newController(reg, oracle, controller.Config{MaxAuthTries: 6}, auditor)

	tr := attachAndServiceRequest(t, ctrl)

	tr.Push(transport.MsgUserAuthRequest, "demo", "ssh-connection", "none")
	require.NoError(t, tr.Run(true, nil))
	require.False(t, tr.Disconnected)
	require.Len(t, tr.Sent, 2)
	assert.Equal(t, transport.MsgUserAuthFailure, tr.Sent[1].Type)

	tr.Push(transport.MsgUserAuthRequest, "demo", "ssh-connection", "password", "hunter2")
	require.NoError(t, tr.Run(true, nil))
	require.Len(t, tr.Sent, 3)
	assert.Equal(t, transport.MsgUserAuthSuccess, tr.Sent[2].Type)

	require.Len(t, auditor.entries, 2)
	assert.False(t, auditor.entries[0].Authenticated)
	assert.True(t, auditor.entries[1].Authenticated)
}

func TestNonePokeDoesNotCountAgainstFailures(t *testing.T) {
	reg := newRegistry(t)
	oracle := newOracle(t)
	ctrl := newController(reg, oracle, controller.Config{MaxAuthTries: 1}, nil)

	tr := attachAndServiceRequest(t, ctrl)

	tr.Push(transport.MsgUserAuthRequest, "demo", "ssh-connection", "none")
	require.NoError(t, tr.Run(true, nil))
	require.False(t, tr.Disconnected)

	tr.Push(transport.MsgUserAuthRequest, "demo", "ssh-connection", "password", "hunter2")
	require.NoError(t, tr.Run(true, nil))
	require.False(t, tr.Disconnected)
	assert.Equal(t, transport.MsgUserAuthSuccess, tr.Sent[len(tr.Sent)-1].Type)
}

func TestUserChangeMidSessionDisconnects(t *testing.T) {
	reg := newRegistry(t)
	oracle := newOracle(t)
	ctrl := newController(reg, oracle, controller.Config{MaxAuthTries: 6}, nil)

	tr := attachAndServiceRequest(t, ctrl)
	tr.Push(transport.MsgUserAuthRequest, "demo", "ssh-connection", "none")
	require.NoError(t, tr.Run(true, nil))

	tr.Push(transport.MsgUserAuthRequest, "someone-else", "ssh-connection", "none")
	require.NoError(t, tr.Run(true, nil))
	assert.True(t, tr.Disconnected)
}

func TestMultiMethodPartialSuccess(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(methods.None{}))
	require.NoError(t, reg.Register(methods.NewPassword(methods.FieldFromWire)))
	require.NoError(t, reg.Register(methods.NewKeyboardInteractive(methods.FieldFromWire, func(_ *domain.AuthContext, resp string) bool { return resp == "otp" })))

	oracle := newOracle(t)
	auditor := &recordingAuditor{}
	ctrl := newController(reg, oracle, controller.Config{
		MaxAuthTries: 6,
		AuthMethods:  []string{"password,keyboard-interactive"},
	}, auditor)

	tr := attachAndServiceRequest(t, ctrl)

	tr.Push(transport.MsgUserAuthRequest, "demo", "ssh-connection", "password", "hunter2")
	require.NoError(t, tr.Run(true, nil))
	require.False(t, tr.Disconnected)
	last := tr.Sent[len(tr.Sent)-1]
	require.Equal(t, transport.MsgUserAuthFailure, last.Type)
	assert.Equal(t, "1", last.Fields[1])

	require.Len(t, auditor.entries, 1)
	assert.False(t, auditor.entries[0].Authenticated)
	assert.True(t, auditor.entries[0].Partial)
}

func TestRootDowngradedWhenMethodNotAllowed(t *testing.T) {
	reg := newRegistry(t)
	oracle := newOracle(t, "publickey")
	auditor := &recordingAuditor{}
	ctrl := newController(reg, oracle, controller.Config{MaxAuthTries: 6}, auditor)

	tr := attachAndServiceRequest(t, ctrl)
	tr.Push(transport.MsgUserAuthRequest, "root", "ssh-connection", "password", "toor")
	require.NoError(t, tr.Run(true, nil))

	last := tr.Sent[len(tr.Sent)-1]
	assert.Equal(t, transport.MsgUserAuthFailure, last.Type)
	require.Len(t, auditor.entries, 1)
	assert.False(t, auditor.entries[0].Authenticated)
}

func TestExhaustedAttemptsDisconnects(t *testing.T) {
	reg := newRegistry(t)
	oracle := newOracle(t)
	ctrl := newController(reg, oracle, controller.Config{MaxAuthTries: 2}, nil)

	tr := attachAndServiceRequest(t, ctrl)

	tr.Push(transport.MsgUserAuthRequest, "demo", "ssh-connection", "password", "wrong-one")
	require.NoError(t, tr.Run(true, nil))
	require.False(t, tr.Disconnected)

	tr.Push(transport.MsgUserAuthRequest, "demo", "ssh-connection", "password", "wrong-two")
	require.NoError(t, tr.Run(true, nil))
	assert.True(t, tr.Disconnected)
	assert.Equal(t, "Too many authentication failures", tr.DisconnectReason)
}
