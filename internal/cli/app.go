package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/emilythestrangee/reddit-companion/backend/internal/config"
	"github.com/emilythestrangee/reddit-companion/backend/internal/database"
	"github.com/emilythestrangee/reddit-companion/backend/internal/inbox"
	"github.com/emilythestrangee/reddit-companion/backend/internal/logging"
	"github.com/emilythestrangee/reddit-companion/backend/internal/notify"
	"github.com/emilythestrangee/reddit-companion/backend/internal/reddit"
	"github.com/emilythestrangee/reddit-companion/backend/internal/session"
	"github.com/emilythestrangee/reddit-companion/backend/internal/store"
	"github.com/emilythestrangee/reddit-companion/backend/internal/thirdparty"
)

// app is the set of services a command runs with.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	db       database.Service
	store    *store.Store
	reddit   *reddit.Client
	tokens   *session.Tokens
	resolver *thirdparty.Resolver
	poller   *inbox.Poller
}

func loadConfig(opts *RootOptions) (*config.Config, *logrus.Logger, error) {
	var files []string
	if opts.EnvFile != "" {
		files = append(files, opts.EnvFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, nil, err
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	return cfg, logging.New(cfg.LogLevel, cfg.LogFormat), nil
}

func newResolver(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*thirdparty.Resolver, error) {
	cache, err := thirdparty.NewCache(ctx, cfg.MediaCache, log)
	if err != nil {
		return nil, err
	}
	return thirdparty.NewResolver(
		thirdparty.NewImgurClient(cfg.Imgur.BaseURL, cfg.Imgur.ClientID, nil),
		thirdparty.NewGifHostClient(thirdparty.GfycatConfig(cfg.GifHosts.GfycatBaseURL), nil),
		thirdparty.NewGifHostClient(thirdparty.RedgifsConfig(cfg.GifHosts.RedgifsBaseURL), nil),
		cache,
		log,
	), nil
}

func newNotifier(cfg *config.Config, st *store.Store, log *logrus.Logger) notify.Notifier {
	fanout := notify.NewFanout().
		WithDeliveryLog(st).
		Add("store", notify.NewStoreNotifier(st)).
		Add("log", notify.NewLogNotifier(log))
	if cfg.Twilio.Enabled() {
		fanout.Add("sms", notify.NewSMSNotifier(cfg.Twilio))
	} else {
		log.Info("SMS notifications disabled: TWILIO_* not set")
	}
	return fanout
}

// newApp opens the database and builds every service.
func newApp(ctx context.Context, opts *RootOptions) (*app, error) {
	cfg, log, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	db, err := database.New(cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	st := store.New(db.GetDB())

	resolver, err := newResolver(ctx, cfg, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	client := reddit.New(reddit.Config{
		BaseURL:           cfg.Reddit.APIBaseURL,
		UserAgent:         cfg.Reddit.UserAgent,
		RequestsPerMinute: cfg.Reddit.RequestsPerMinute,
	}, log)
	tokens := session.NewTokens(reddit.NewAuthenticator(reddit.AuthConfig{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		RedirectURL:  cfg.Reddit.RedirectURL,
		TokenURL:     cfg.Reddit.TokenURL,
		UserAgent:    cfg.Reddit.UserAgent,
	}), st)

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		store:    st,
		reddit:   client,
		tokens:   tokens,
		resolver: resolver,
		poller:   inbox.NewPoller(client, tokens, st, newNotifier(cfg, st, log), cfg.Poller, log),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.WithError(err).Warn("closing database")
	}
}
