package main

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	v10validator "github.com/go-playground/validator/v10"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/tradutema/delivery/internal/client"
	"github.com/tradutema/delivery/internal/config"
	"github.com/tradutema/delivery/internal/handler"
	"github.com/tradutema/delivery/internal/mailer"
	"github.com/tradutema/delivery/internal/middleware"
	"github.com/tradutema/delivery/internal/migrations"
	"github.com/tradutema/delivery/internal/repository"
	"github.com/tradutema/delivery/internal/service"
	"github.com/tradutema/delivery/internal/validator"
	"go.uber.org/zap"
	mail "gopkg.in/mail.v2"
)

func main() {
	if err := Execute(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func Execute() error {
	cfg, err := config.NewBuilder().LoadFlags().LoadEnv().Build()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel())
	if err != nil {
		return err
	}

	defer func() {
		_ = logger.Sync()
	}()

	db, err := sql.Open("pgx", cfg.DatabaseURI())
	if err != nil {
		return err
	}

	defer func(db *sql.DB) {
		err = db.Close()
	}(db)

	if err := migrations.Up(db); err != nil {
		return err
	}

	validationEngine := v10validator.New()
	if err := validationEngine.RegisterValidation("uploadtoken", validator.UploadToken); err != nil {
		return err
	}

	var (
		r     = chi.NewRouter()
		v     = validator.New(validationEngine)
		creds = client.NewCredentials(
			cfg.OAuthTokenURL(),
			cfg.OAuthClientID(),
			cfg.OAuthClientSecret(),
			cfg.OAuthRefreshToken(),
		)
		newStorage = func() service.StorageGateway {
			return client.NewDrive(creds, cfg.DriveAPIURL(), cfg.DriveUploadURL())
		}
		dialer     = mail.NewDialer(cfg.SMTPHost(), cfg.SMTPPort(), cfg.SMTPUsername(), cfg.SMTPPassword())
		dispatcher = mailer.NewDispatcher(dialer, cfg.MailFrom(), cfg.MailBCC(), logger)
		tokens     = repository.NewToken(db)
		notifier   = mailer.NewNotifications(
			dispatcher,
			repository.NewTemplate(db),
			tokens,
			v,
			cfg.AdminEmail(),
			cfg.PublicBaseURL(),
			cfg.AdminPanelURL(),
			logger,
		)
		ds = service.NewDelivery(
			repository.NewOrder(db),
			repository.NewProvider(db),
			tokens,
			newStorage,
			notifier,
			repository.NewAudit(db),
			cfg.PublicBaseURL(),
			logger,
		)
		dh = handler.NewDelivery(ds, v, logger)
	)

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging(logger))

	r.Get("/", dh.Form)
	r.Post("/", dh.Redeem)

	err = http.ListenAndServe(cfg.ServerAddress(), r)

	return err
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	loggerCfg := zap.NewProductionConfig()
	loggerCfg.Level = lvl

	return loggerCfg.Build()
}
