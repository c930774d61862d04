// @title           STI Archives Portal API
// @version         1.0
// @description     Registration, review and credential delivery for the STI Archives portal.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stiarchives/portal/internal/api"
	"github.com/stiarchives/portal/internal/core/domain"
	"github.com/stiarchives/portal/internal/core/ports"
	"github.com/stiarchives/portal/internal/core/service"
	"github.com/stiarchives/portal/internal/infrastructure/db/jsonfile"
	"github.com/stiarchives/portal/internal/infrastructure/db/memory"
	mongostore "github.com/stiarchives/portal/internal/infrastructure/db/mongo"
	redisstore "github.com/stiarchives/portal/internal/infrastructure/db/redis"
	"github.com/stiarchives/portal/internal/infrastructure/http/handlers"
	"github.com/stiarchives/portal/internal/infrastructure/mail"
	"github.com/stiarchives/portal/internal/infrastructure/queue"
	"github.com/stiarchives/portal/internal/infrastructure/storage"
	"github.com/stiarchives/portal/internal/pkg/config"
	"github.com/stiarchives/portal/pkg/logger"
)

const shutdownGrace = 15 * time.Second

// userStore is a record store that can also report its health.
type userStore interface {
	ports.UserRepository
	handlers.Pinger
}

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "sti-archives-portal",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := map[string]handlers.Pinger{}

	// --- Record store ---
	var users userStore
	switch cfg.Store.Driver {
	case "mongo":
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Store.MongoURI, Database: cfg.Store.MongoDB})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongo")
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}()
		users = mongostore.NewUserRepository(db)
	default:
		users = jsonfile.NewUserRepository(cfg.Store.UsersFile)
	}
	health["store"] = users

	// --- Optional mutation lock ---
	var locker ports.MutationLocker
	if cfg.Lock.Mode == "redis" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Lock.RedisAddr, DB: cfg.Lock.RedisDB})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		lock := redisstore.NewMutationLock(rdb, cfg.Lock.TTL, cfg.Lock.Wait, log)
		locker = lock
		health["redis"] = lock
	}

	// --- Evidence files ---
	remote := remoteBackend(ctx, cfg, log)
	files := storage.NewFileStore(cfg.Files.UploadDir, remote, cfg.Files.RemoteTimeout, log)

	// --- Mail ---
	notifier := mail.NewSMTPNotifier(mail.Config{
		Host:     cfg.Mail.SMTPHost,
		Port:     cfg.Mail.SMTPPort,
		Username: cfg.Mail.SMTPUser,
		Password: cfg.Mail.SMTPPass,
		From:     cfg.Mail.From,
		Security: cfg.Mail.SMTPSecurity,
	})
	if cfg.Mail.SMTPHost == "" {
		log.Warn().Msg("SMTP_HOST not set, emails will fail to send")
	}
	dispatcher := queue.NewDispatcher(cfg.Mail.Workers, notifier, log)
	// Workers outlive the signal context so Shutdown can drain queued mail.
	dispatcher.Start(context.Background())

	// --- Services ---
	lifecycle := service.NewLifecycleService(service.LifecycleDeps{
		Users:       users,
		Files:       files,
		Notifier:    notifier,
		MailQueue:   dispatcher,
		Locker:      locker,
		Credentials: domain.NewCredentialGenerator(cfg.Creds.InstitutionDomain, cfg.Creds.PasswordLength),
		Mail:        service.MailContent{PortalURL: cfg.Mail.PortalURL},
	}, log)

	var auth ports.AuthService
	if cfg.Admin.GuardEnabled() {
		admins := memory.NewAdminRepository(cfg.Admin.Username, cfg.Admin.PasswordHash)
		auth = service.NewAuthService(admins, cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
		log.Info().Str("username", cfg.Admin.Username).Msg("admin guard enabled")
	} else {
		log.Warn().Msg("admin guard disabled, review endpoints are unauthenticated")
	}

	e := api.NewRouter(api.RouterDeps{
		Lifecycle:   lifecycle,
		Files:       files,
		Auth:        auth,
		JWTSecret:   cfg.Admin.JWTSecret,
		Health:      health,
		Log:         log,
		APIPrefix:   cfg.APIPrefix,
		BodyLimit:   cfg.BodyLimit,
		CORSOrigins: cfg.CORS,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http server shutdown failed")
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("mail queue did not drain in time")
	}

	log.Info().Msg("goodbye")
}

// remoteBackend builds the configured remote file backend. A backend that
// cannot be initialised leaves uploads on local disk.
func remoteBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) ports.RemoteBackend {
	var (
		backend ports.RemoteBackend
		err     error
	)
	switch cfg.Files.RemoteBackend {
	case "s3":
		backend, err = storage.NewS3Backend(ctx, storage.S3Config{
			Endpoint:      cfg.Files.S3Endpoint,
			Region:        cfg.Files.S3Region,
			Bucket:        cfg.Files.S3Bucket,
			AccessKey:     cfg.Files.S3AccessKey,
			SecretKey:     cfg.Files.S3SecretKey,
			PublicBaseURL: cfg.Files.S3PublicURL,
			KeyPrefix:     cfg.Files.S3KeyPrefix,
			UsePathStyle:  cfg.Files.S3UsePathStyle,
		})
	case "drive":
		backend, err = storage.NewDriveBackend(ctx, storage.DriveConfig{
			CredentialsFile: cfg.Files.DriveCredentialsFile,
			FolderID:        cfg.Files.DriveFolderID,
		})
	default:
		return nil
	}
	if err != nil {
		log.Warn().Err(err).Str("backend", cfg.Files.RemoteBackend).Msg("remote backend unavailable, storing uploads locally")
		return nil
	}
	log.Info().Str("backend", backend.Name()).Msg("remote backend ready")
	return backend
}
