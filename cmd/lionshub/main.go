// Lions Hub API server.
//
// @title Lions Hub API
// @version 1.0
// @description Multi-tenant club management: members, invitations, events, and public club subsites.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"lionshub/config"
	_ "lionshub/docs"
	"lionshub/internal/adapters/auth"
	"lionshub/internal/adapters/email"
	"lionshub/internal/adapters/storage"
	"lionshub/internal/adapters/supabase"
	httpdelivery "lionshub/internal/delivery/http"
	"lionshub/internal/delivery/http/controllers"
	"lionshub/internal/delivery/http/middleware"
	"lionshub/internal/repository/postgres"
	"lionshub/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to reach database", "err", err)
		os.Exit(1)
	}
	if err := postgres.ApplyMigrations(db); err != nil {
		logger.Error("failed to apply migrations", "err", err)
		os.Exit(1)
	}

	// Repositories
	tenantRepo := postgres.NewTenantRepository(db)
	memberRepo := postgres.NewMemberRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)

	// Adapters
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailProvider,
		FromAddress: cfg.FromAddress,
		FromName:    cfg.FromName,
		SES: email.SESConfig{
			Region:             cfg.SES.Region,
			AccessKeyID:        cfg.SES.AccessKeyID,
			SecretAccessKey:    cfg.SES.SecretAccessKey,
			InsecureSkipVerify: cfg.SES.InsecureSkipVerify,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	avatarStorage := storage.NewAvatarStorage(storage.S3Config{
		Region:          cfg.S3.Region,
		Bucket:          cfg.S3.Bucket,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		PublicBaseURL:   cfg.S3.PublicBaseURL,
	})
	sessions := auth.NewJWTSessions(cfg.JWTSecret)
	authAdmin := supabase.NewAdminClient(&http.Client{Timeout: 10 * time.Second}, cfg.Supabase.URL, cfg.Supabase.ServiceKey)

	// Services
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	permissionService := services.NewPermissionService(roleRepo)
	tenantService := services.NewTenantService(tenantRepo, permissionService, emailService, nil)
	invitationService := services.NewInvitationService(
		invitationRepo, memberRepo, tenantRepo, roleRepo,
		permissionService, emailService, cfg.AppBaseURL, logger, nil,
	)
	memberService := services.NewMemberService(
		memberRepo, roleRepo, permissionService,
		avatarStorage, authAdmin, logger, nil,
	)
	eventService := services.NewEventService(eventRepo, registrationRepo, permissionService, nil)

	// HTTP
	handler := httpdelivery.NewRouter(
		logger,
		tenantService,
		memberService,
		sessions,
		sessions,
		cfg.TokenExpiry,
		middleware.HostConfig{
			BaseDomain:        cfg.BaseDomain,
			AppSubdomains:     cfg.AppSubdomains,
			DefaultTenantSlug: cfg.DefaultTenantSlug,
		},
		cfg.CORSOrigins,
		httpdelivery.Controllers{
			Tenant:     controllers.NewTenantController(logger, tenantService, eventService),
			Invitation: controllers.NewInvitationController(logger, invitationService),
			Member:     controllers.NewMemberController(logger, memberService),
			Event:      controllers.NewEventController(logger, eventService),
		},
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	logger.Info("server stopped")
}
