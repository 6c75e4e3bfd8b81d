// Package main implements the sshauthd entry point: the SSH-2
// user-authentication core plus its MAC engine sub-core, wired up in
// numbered phases — config, logging, storage, domain collaborators,
// the controller itself, then the control-plane router and graceful
// shutdown.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/sshauthd/sshauthd/internal/account"
	"github.com/sshauthd/sshauthd/internal/audit"
	"github.com/sshauthd/sshauthd/internal/config"
	"github.com/sshauthd/sshauthd/internal/controller"
	"github.com/sshauthd/sshauthd/internal/domain"
	"github.com/sshauthd/sshauthd/internal/httpapi"
	"github.com/sshauthd/sshauthd/internal/mac"
	"github.com/sshauthd/sshauthd/internal/methods"
	"github.com/sshauthd/sshauthd/internal/privsep"
	"github.com/sshauthd/sshauthd/internal/registry"
	"github.com/sshauthd/sshauthd/internal/ticket"
	"github.com/sshauthd/sshauthd/internal/transport"
)

var (
	version   = "0.1.0"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func printVersion() {
	fmt.Printf("sshauthd version %s\n", version)
	if buildTime != "unknown" {
		fmt.Printf("Build Time: %s\n", buildTime)
	}
	if gitCommit != "unknown" {
		fmt.Printf("Git Commit: %s\n", gitCommit)
	}
	os.Exit(0)
}

func main() {
	if len(os.Args) > 1 {
		for _, arg := range os.Args[1:] {
			if arg == "--version" || arg == "-v" {
				printVersion()
			}
		}
	}

	// PHASE 1: configuration and logging.
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	if !mac.Valid(strings.Join(cfg.Auth.MACAlgorithms, ",")) {
		logger.Fatal("auth.mac_algorithms contains an unknown algorithm")
	}

	// PHASE 2: database connection for the audit trail.
	db, err := pgxpool.New(context.Background(), cfg.GetDSN())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(context.Background()); err != nil {
		logger.Warn("database unreachable at startup, audit writes will fail until it recovers", zap.Error(err))
	} else {
		logger.Info("connected to audit database")
	}

	// PHASE 3: method registry.
	reg := registry.New()
	mustRegister(logger, reg, methods.None{})
	mustRegister(logger, reg, methods.NewPassword(methods.FieldFromWire))
	mustRegister(logger, reg, methods.NewKeyboardInteractive(methods.FieldFromWire, verifyKeyboardInteractive))

	if err := config.ValidateAuthMethods(reg, cfg.Auth.AuthMethods); err != nil {
		logger.Fatal("invalid auth_methods configuration", zap.Error(err))
	}

	// PHASE 4: account oracle, ticket issuer, audit sink, privsep client.
	oracle := account.NewInMemoryOracle(cfg.Auth.RootAllowedMethods)
	if err := oracle.AddUser("demo", "correct horse battery staple", false); err != nil {
		logger.Fatal("failed to seed demo account", zap.Error(err))
	}
	if err := oracle.AddUser("root", "superuser-only-over-publickey", true); err != nil {
		logger.Fatal("failed to seed root account", zap.Error(err))
	}

	issuer := ticket.NewJWTIssuer([]byte(cfg.Ticket.SecretKey), "sshauthd", cfg.Ticket.Audience, cfg.Ticket.TTL)

	auditor := audit.Multi{
		audit.LogRecorder{Log: logger},
		audit.NewPostgresRecorder(db, logger),
	}

	var monitor controller.PrivsepMonitor
	if cfg.Privsep.MonitorAddr != "" {
		monitor = privsep.NewHTTPMonitor(cfg.Privsep.MonitorAddr)
	}

	// PHASE 5: the controller itself.
	ctrl := controller.New(logger, controller.Config{
		MaxAuthTries:    cfg.Auth.MaxAuthTries,
		AuthMethods:     cfg.Auth.AuthMethods,
		BannerText:      controller.ReadBannerFile(cfg.Auth.Banner),
		BannerBugCompat: cfg.Auth.BannerBugCompat,
	}, reg, oracle, monitor, auditor, issuer)

	// PHASE 6: demo dispatch loop, the same way a test would drive the
	// controller without a real socket — exercises the none-probe then
	// password-success path end to end at startup so an operator can
	// see the core working before any real client connects.
	runDemoExchange(logger, ctrl)

	// PHASE 7: control-plane HTTP surface.
	router := httpapi.NewRouter(reg, db, issuer)
	server := &http.Server{Addr: cfg.GetServerAddr(), Handler: router}

	go func() {
		logger.Info("starting control-plane HTTP surface", zap.String("addr", cfg.GetServerAddr()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("control-plane server failed", zap.Error(err))
		}
	}()

	// PHASE 8: graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("control-plane server forced to shut down", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func mustRegister(logger *zap.Logger, reg *registry.Registry, m domain.Method) {
	if err := reg.Register(m); err != nil {
		logger.Fatal("failed to register method", zap.String("method", m.Name()), zap.Error(err))
	}
}

// verifyKeyboardInteractive is the demo PAM stand-in: accepts any
// response equal to the literal string "letmein" for any bound user.
func verifyKeyboardInteractive(session *domain.AuthContext, response string) bool {
	return response == "letmein"
}

func runDemoExchange(logger *zap.Logger, ctrl *controller.Controller) {
	tr := transport.NewFakeTransport()
	ctrl.Attach(tr)

	tr.Push(transport.MsgServiceRequest, "ssh-userauth")
	tr.Push(transport.MsgUserAuthRequest, "demo", "ssh-connection", "none")
	tr.Push(transport.MsgUserAuthRequest, "demo", "ssh-connection", "password", "correct horse battery staple")

	if err := tr.Run(true, nil); err != nil {
		logger.Warn("demo exchange ended early", zap.Error(err))
		return
	}

	if tr.Disconnected {
		logger.Warn("demo exchange disconnected", zap.String("reason", tr.DisconnectReason))
		return
	}

	logger.Info("demo exchange completed", zap.Int("messages_sent", len(tr.Sent)))
}
