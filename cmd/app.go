package cmd

import (
	"log/slog"

	"github.com/gradsync/portal/internal"
	"github.com/gradsync/portal/internal/api"
	"github.com/gradsync/portal/internal/approvals"
	"github.com/gradsync/portal/internal/core/events"
	"github.com/gradsync/portal/internal/notifications"
	"github.com/gradsync/portal/internal/session"
	"github.com/gradsync/portal/internal/storage"
	"github.com/gradsync/portal/pkg/logger"
)

// app wires the client stack: config, shared HTTP client, durable cache,
// session, stores and services. Startup order matters: the cache restores
// the token into the client before any request can go out.
type app struct {
	Config        *internal.Config
	Logger        *slog.Logger
	Client        *api.Client
	Storage       *storage.Store
	Bus           *events.EventBus
	Session       *session.Service
	Notifications *notifications.Service
	Approvals     *approvals.Service
}

func initApp() (*app, error) {
	cfg, err := loadConfig(".")
	if err != nil {
		return nil, err
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	lg := logger.LoggerWrapper()

	client := api.NewClient(api.Config{
		BaseURL:        cfg.API.BaseURL,
		RequestTimeout: cfg.API.RequestTimeout,
	}, lg)

	store, err := storage.Open(cfg.Storage.Path, client, lg)
	if err != nil {
		return nil, err
	}

	bus := events.NewEventBus(lg)

	sess := session.NewService(store, bus, lg)
	sess.Restore()

	notificationService := notifications.NewService(client, notifications.NewStore(), cfg.Polling.Limit, lg)
	approvalService := approvals.NewService(client, bus, lg)

	return &app{
		Config:        cfg,
		Logger:        lg,
		Client:        client,
		Storage:       store,
		Bus:           bus,
		Session:       sess,
		Notifications: notificationService,
		Approvals:     approvalService,
	}, nil
}

func (a *app) Close() {
	if err := a.Storage.Close(); err != nil {
		a.Logger.Warn("failed to close local storage", "error", err)
	}
}
