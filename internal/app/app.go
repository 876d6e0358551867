// Package app wires the dashboard client: credential store, state stores,
// session manager, API client and the services on top of them.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/therapyassist/dashboard-go/internal/apiclient"
	"github.com/therapyassist/dashboard-go/internal/config"
	"github.com/therapyassist/dashboard-go/internal/credstore"
	"github.com/therapyassist/dashboard-go/internal/download"
	"github.com/therapyassist/dashboard-go/internal/notify"
	"github.com/therapyassist/dashboard-go/internal/service"
	"github.com/therapyassist/dashboard-go/internal/session"
	"github.com/therapyassist/dashboard-go/internal/state"
)

type App struct {
	Config *config.Config

	Store   *credstore.Store
	Auth    *state.AuthStore
	Chat    *state.ChatStore
	Session *session.Manager
	Client  *apiclient.Client
	Saver   *download.Saver

	AuthService    *service.AuthService
	UserService    *service.UserService
	SessionService *service.SessionService
	ChatService    *service.ChatService
	ReportService  *service.ReportService
	AdminService   *service.AdminService
}

type options struct {
	navigator session.Navigator
	notifier  notify.Notifier
	transport http.RoundTripper
}

type Option func(*options)

// WithNavigator sets what happens when the session ends.
func WithNavigator(nav session.Navigator) Option {
	return func(o *options) {
		o.navigator = nav
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

func defaultNavigator() {
	log.Info().Msg("signed out, run `dashboard login` to continue")
}

// New opens the credential store and builds every component from cfg.
// Close releases the store.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := options{
		navigator: session.NavigatorFunc(defaultNavigator),
		notifier:  notify.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	store, err := credstore.Open(ctx, cfg.StoreURL(), cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	a := &App{
		Config: cfg,
		Store:  store,
		Auth:   state.NewAuthStore(),
		Chat:   state.NewChatStore(),
		Saver:  download.NewSaver(cfg.DownloadDir),
	}
	a.Session = session.NewManager(store, a.Auth, a.Chat, o.navigator, o.notifier)

	clientOpts := []apiclient.Option{
		apiclient.WithTimeout(cfg.RequestTimeout()),
		apiclient.WithDownloadTimeout(cfg.DownloadTimeout()),
		apiclient.WithUnauthorizedHandler(a.Session.HandleUnauthorized),
	}
	if o.transport != nil {
		clientOpts = append(clientOpts, apiclient.WithTransport(o.transport))
	}
	a.Client, err = apiclient.New(cfg.BaseURL(), store, clientOpts...)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create api client: %w", err)
	}

	a.AuthService = service.NewAuthService(a.Client, a.Session, store, a.Auth, o.notifier)
	a.UserService = service.NewUserService(a.Client, o.notifier)
	a.SessionService = service.NewSessionService(a.Client, a.Chat, o.notifier)
	a.ChatService = service.NewChatService(a.Client, a.Chat, o.notifier)
	a.ReportService = service.NewReportService(a.Client, a.Chat, a.Auth, a.Saver, o.notifier)
	a.AdminService = service.NewAdminService(a.Client, o.notifier)

	log.Debug().
		Str("api_url", a.Client.BaseURL()).
		Str("download_dir", a.Saver.Dir()).
		Msg("dashboard client ready")
	return a, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
