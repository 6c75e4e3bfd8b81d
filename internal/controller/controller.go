// Package controller implements the authentication state machine: it
// installs message handlers on the transport adapter, drives method
// handlers through the registry and policy packages, and enforces the
// session's success criteria.
package controller

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/sshauthd/sshauthd/internal/account"
	"github.com/sshauthd/sshauthd/internal/audit"
	"github.com/sshauthd/sshauthd/internal/autherr"
	"github.com/sshauthd/sshauthd/internal/domain"
	"github.com/sshauthd/sshauthd/internal/policy"
	"github.com/sshauthd/sshauthd/internal/registry"
	"github.com/sshauthd/sshauthd/internal/ticket"
	"github.com/sshauthd/sshauthd/internal/transport"
)

const sshUserauthService = "ssh-userauth"

// PrivsepMonitor is the notification-only slice of the privilege-
// separation collaborator the controller needs: told about the
// service/style of the first request. Any error from it disconnects
// the client.
type PrivsepMonitor interface {
	NotifyService(ctx context.Context, service, style string) error
}

// Config is the subset of configuration the controller enforces
// directly, including the already-loaded banner text; everything else
// (which methods exist, account records) is supplied through the
// other collaborators.
type Config struct {
	MaxAuthTries   int
	AuthMethods    []string // configured multi-method lists, comma-separated
	BannerText     string   // empty means no banner configured
	BannerBugCompat bool    // peer advertises the banner-bug compatibility flag
}

// Controller is constructed once per listener and Attach is called
// once per incoming connection.
type Controller struct {
	log      *zap.Logger
	cfg      Config
	registry *registry.Registry
	oracle   account.Oracle
	privsep  PrivsepMonitor
	auditor  audit.Recorder
	tickets  ticket.Issuer
}

func New(log *zap.Logger, cfg Config, reg *registry.Registry, oracle account.Oracle, privsep PrivsepMonitor, auditor audit.Recorder, tickets ticket.Issuer) *Controller {
	if auditor == nil {
		auditor = audit.NoopRecorder{}
	}
	return &Controller{log: log, cfg: cfg, registry: reg, oracle: oracle, privsep: privsep, auditor: auditor, tickets: tickets}
}

// Attach installs the Start-state dispatch table on adapter: only a
// ServiceRequest is accepted until the client asks for ssh-userauth.
func (c *Controller) Attach(adapter transport.Adapter) *domain.AuthContext {
	ctx := domain.New()

	adapter.InitDispatch(func(a transport.Adapter) error {
		return a.Disconnect("unexpected message before authentication")
	})
	adapter.Set(transport.MsgServiceRequest, func(a transport.Adapter) error {
		return c.handleServiceRequest(a, ctx)
	})

	return ctx
}

func (c *Controller) handleServiceRequest(a transport.Adapter, ctx *domain.AuthContext) error {
	service, err := a.GetCString()
	if err != nil {
		return a.Disconnect("malformed service request")
	}
	if err := a.GetEnd(); err != nil {
		return a.Disconnect("malformed service request")
	}

	if service != sshUserauthService {
		return a.Disconnect("unsupported service: " + service)
	}
	if ctx.Success {
		return a.Disconnect("service request after authentication success")
	}

	a.Set(transport.MsgUserAuthRequest, func(a transport.Adapter) error {
		return c.handleUserAuthRequest(a, ctx)
	})

	if err := a.Start(transport.MsgServiceAccept); err != nil {
		return err
	}
	if err := a.PutCString(service); err != nil {
		return err
	}
	if err := a.Send(); err != nil {
		return err
	}
	return a.WriteWait()
}

func (c *Controller) handleUserAuthRequest(a transport.Adapter, ctx *domain.AuthContext) error {
	user, err := a.GetCString()
	if err != nil {
		return a.Disconnect("malformed userauth request")
	}
	service, err := a.GetCString()
	if err != nil {
		return a.Disconnect("malformed userauth request")
	}
	method, err := a.GetCString()
	if err != nil {
		return a.Disconnect("malformed userauth request")
	}

	reqUser, style := splitStyle(user)

	if !ctx.Bound() {
		ctx.Attempt++

		record, ok := c.oracle.Lookup(context.Background(), reqUser, service)
		ctx.Bind(reqUser, service, style, ok, record)

		if c.privsep != nil {
			if err := c.privsep.NotifyService(context.Background(), service, style); err != nil {
				return a.Disconnect("privilege separation monitor unavailable")
			}
		}

		c.maybeSendBanner(a, ctx)

		if err := policy.Setup(c.registry, ctx, c.cfg.AuthMethods, func(list string) {
			c.log.Info("dropping method list with disabled method", zap.String("list", list))
		}); err != nil {
			return a.Disconnect(err.Error())
		}
	} else {
		ctx.Attempt++
		if reqUser != ctx.User || service != ctx.Service {
			return a.Disconnect("Change of username or service not allowed")
		}
	}

	ctx.Method = method
	ctx.ResetForRequest(method)

	outcome, submethod, err := c.dispatch(a, ctx, method)
	if err != nil {
		return err
	}

	return c.finish(a, ctx, outcome, method, submethod)
}

// dispatch decides whether method may run at all and, if so, invokes
// it. A disabled or not-yet-allowed method is treated as a failed
// attempt without ever calling the handler.
func (c *Controller) dispatch(a transport.Adapter, ctx *domain.AuthContext, method string) (domain.Outcome, string, error) {
	if ctx.Failures >= c.cfg.MaxAuthTries {
		return domain.NotAuthenticated, "", nil
	}
	if !c.registry.Enabled(method) || !policy.MethodAllowed(ctx, method) {
		return domain.NotAuthenticated, "", nil
	}

	m, ok := c.registry.Lookup(method)
	if !ok {
		return domain.NotAuthenticated, "", nil
	}

	reqCtx := transport.WithDataReader(context.Background(), a.GetCString)
	result, err := m.Authenticate(reqCtx, ctx)
	if err != nil {
		c.log.Error("method handler returned an error", zap.String("method", method), zap.Error(err))
		return domain.ServerCausedFailure, "", nil
	}
	return result.Outcome, result.Submethod, nil
}

// finish applies the root-downgrade and partial-success decisions,
// writes the audit record, and sends the terminal reply.
func (c *Controller) finish(a transport.Adapter, ctx *domain.AuthContext, outcome domain.Outcome, method, submethod string) error {
	authenticated := outcome == domain.Authenticated
	ctx.Postponed = outcome == domain.Postponed
	ctx.ServerCausedFailure = outcome == domain.ServerCausedFailure

	if authenticated && (!ctx.Valid || ctx.Postponed) {
		fatal(&autherr.InternalError{Reason: "authenticated result on an invalid or postponed context"})
	}

	if authenticated && ctx.Record != nil && ctx.Record.IsRoot && !c.oracle.RootAllowed(method) {
		authenticated = false
	}

	partial := false
	if authenticated && len(ctx.AuthMethodLists) > 0 {
		completed, err := policy.Update(ctx, method)
		if err != nil {
			fatal(err)
		}
		if !completed {
			authenticated = false
			partial = true
		}
	}

	c.auditor.Record(audit.Entry{
		User:          ctx.User,
		Method:        method,
		Submethod:     submethod,
		Authenticated: authenticated,
		Partial:       partial,
		Protocol:      "ssh2",
	})

	if ctx.Postponed {
		return nil
	}

	if authenticated {
		a.Set(transport.MsgUserAuthRequest, ignoreHandler)
		if err := a.Start(transport.MsgUserAuthSuccess); err != nil {
			return err
		}
		if err := a.Send(); err != nil {
			return err
		}
		if err := a.WriteWait(); err != nil {
			return err
		}
		ctx.Success = true

		if c.tickets != nil {
			if _, err := c.tickets.Issue(ctx.User, method); err != nil {
				c.log.Warn("failed to issue session ticket", zap.Error(err))
			}
		}
		return nil
	}

	isNoneProbe := ctx.Attempt == 1 && method == registry.NoneMethod
	if !ctx.ServerCausedFailure && !isNoneProbe {
		ctx.Failures++
	}

	if ctx.Failures >= c.cfg.MaxAuthTries {
		return a.Disconnect("Too many authentication failures")
	}

	if err := a.Start(transport.MsgUserAuthFailure); err != nil {
		return err
	}
	if err := a.PutCString(policy.Advertise(c.registry, ctx)); err != nil {
		return err
	}
	if err := a.PutU8(boolByte(partial)); err != nil {
		return err
	}
	if err := a.Send(); err != nil {
		return err
	}
	return a.WriteWait()
}

func (c *Controller) maybeSendBanner(a transport.Adapter, ctx *domain.AuthContext) {
	if ctx.BannerSent || c.cfg.BannerText == "" || c.cfg.BannerBugCompat {
		return
	}
	ctx.BannerSent = true

	if err := a.Start(transport.MsgUserAuthBanner); err != nil {
		return
	}
	if err := a.PutCString(c.cfg.BannerText); err != nil {
		return
	}
	if err := a.PutCString(""); err != nil {
		return
	}
	_ = a.Send()
	_ = a.WriteWait()
}

// ReadBannerFile loads a configured banner file, enforcing the 1
// byte .. 1 MiB size window; any I/O or size error means "no banner",
// never a fatal one.
func ReadBannerFile(path string) string {
	if path == "" || path == "none" {
		return ""
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() < 1 || info.Size() > 1048576 {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func ignoreHandler(transport.Adapter) error { return nil }

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func splitStyle(user string) (string, string) {
	if idx := strings.IndexByte(user, ':'); idx >= 0 {
		return user[:idx], user[idx+1:]
	}
	return user, ""
}

// fatal aborts the process on a should-not-happen invariant break —
// these indicate a bug in this package, not in client input.
func fatal(err error) {
	panic(err)
}
