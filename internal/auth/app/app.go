// Package app wires the authentication service together and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fuelos-in/auth/internal/auth/audit"
	authhttp "github.com/fuelos-in/auth/internal/auth/http"
	"github.com/fuelos-in/auth/internal/auth/notify"
	"github.com/fuelos-in/auth/internal/auth/service"
	"github.com/fuelos-in/auth/internal/auth/store/drivers/sqlite"
	"github.com/fuelos-in/auth/pkg/jwtx"
	"github.com/fuelos-in/auth/pkg/slogx"
)

// Version is stamped at build time.
var Version = "dev"

// Run boots the service and blocks until the context is cancelled.
func Run(ctx context.Context, cfg Config) error {
	log := slogx.New(slogx.Config{
		Service: "fuelos-auth",
		Version: Version,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	st, err := sqlite.NewStore(cfg.DBFile)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if err := st.ApplyMigrations(); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	if err := service.EnsureSuperAdmin(ctx, st, cfg.SuperAdminEmail, cfg.SuperAdminPassword, log); err != nil {
		return err
	}

	tenantJWT, err := jwtx.NewHS256(cfg.JWTSecret, cfg.Issuer)
	if err != nil {
		return err
	}
	staffJWT, err := jwtx.NewHS256(cfg.AdminJWTSecret, cfg.Issuer)
	if err != nil {
		return err
	}

	dispatcher := audit.NewDispatcher(st.Audit(), log)
	defer dispatcher.Close()

	var notifier notify.Notifier
	if cfg.SMTPAddr != "" {
		notifier = &notify.SMTPNotifier{Addr: cfg.SMTPAddr, From: cfg.SMTPFrom, Auth: cfg.SMTPAuth()}
	} else {
		log.Warn("no SMTP configured, login codes will be logged")
		notifier = &notify.LogNotifier{Log: log}
	}

	sessions := service.NewSessionService(st, tenantJWT, staffJWT, cfg.Issuer, log)

	router := &authhttp.Router{
		Log:                 log,
		Login:               service.NewLoginService(st, sessions, dispatcher, log),
		Challenges:          service.NewChallengeService(st, sessions, notifier, dispatcher, log, cfg.OTPTTL),
		MFA:                 service.NewMFAService(st, dispatcher, cfg.Issuer, log),
		Passwords:           service.NewPasswordService(st, dispatcher, log),
		StaffMgmt:           service.NewStaffService(st, dispatcher, log),
		Store:               st,
		TenantVerifier:      tenantJWT,
		StaffVerifier:       staffJWT,
		ExposeChallengeCode: cfg.ExposeChallengeCode,
	}

	mux := http.NewServeMux()
	router.ApplyRoutes(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           slogx.HTTPMiddleware(log)(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	housekeeper := service.NewHousekeeper(st, log, cfg.HousekeepingInterval)
	go housekeeper.Run(ctx)

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
