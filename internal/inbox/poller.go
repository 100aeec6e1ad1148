// Package inbox polls account inboxes and raises notifications for new messages.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/emilythestrangee/reddit-companion/backend/internal/apiresult"
	"github.com/emilythestrangee/reddit-companion/backend/internal/config"
	"github.com/emilythestrangee/reddit-companion/backend/internal/metrics"
	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
	"github.com/emilythestrangee/reddit-companion/backend/internal/notify"
	"github.com/emilythestrangee/reddit-companion/backend/internal/reddit"
)

type InboxFetcher interface {
	FetchInbox(ctx context.Context, token, where string, limit int) apiresult.Result[[]models.Message]
}

type TokenSource interface {
	AccessToken(ctx context.Context, acct *models.Account) (string, error)
}

type Store interface {
	NotifiableAccounts(ctx context.Context) ([]models.Account, error)
	UpsertMessages(ctx context.Context, account string, msgs []models.Message) error
	RefreshInbox(ctx context.Context, account string, msgs []models.Message) error
	NotifiedNames(ctx context.Context, account string, names []string) (map[string]bool, error)
	MarkNotified(ctx context.Context, account string, names ...string) error
}

// Report summarises one account poll. FetchFailed is set when the inbox could
// not be loaded from reddit.
type Report struct {
	Account     string `json:"account"`
	Full        bool   `json:"full"`
	Fetched     int    `json:"fetched"`
	Notified    int    `json:"notified"`
	FetchFailed bool   `json:"fetch_failed,omitempty"`
	Err         error  `json:"-"`
}

type Poller struct {
	reddit   InboxFetcher
	tokens   TokenSource
	store    Store
	notifier notify.Notifier
	cfg      config.Poller
	log      logrus.FieldLogger

	mu     sync.Mutex
	counts map[string]int

	// polls of one account share a single run
	inflight singleflight.Group
}

func NewPoller(fetcher InboxFetcher, tokens TokenSource, store Store, notifier notify.Notifier, cfg config.Poller, log logrus.FieldLogger) *Poller {
	if cfg.FullRefreshEvery < 1 {
		cfg.FullRefreshEvery = 1
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Poller{
		reddit:   fetcher,
		tokens:   tokens,
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		log:      log.WithField("component", "poller"),
		counts:   make(map[string]int),
	}
}

// isFull reports whether the account's next poll fetches the whole inbox.
func (p *Poller) isFull(account string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[account]%p.cfg.FullRefreshEvery == 0
}

func (p *Poller) advance(account string) {
	p.mu.Lock()
	p.counts[account]++
	p.mu.Unlock()
}

// PollAccount fetches one inbox, refreshes the cache and notifies about
// messages not notified before. The poll counter only advances after a
// successful fetch, so a failed full refresh is retried as a full one.
//
// Concurrent calls for the same account join the poll already running and
// get its report.
func (p *Poller) PollAccount(ctx context.Context, acct *models.Account) Report {
	v, _, _ := p.inflight.Do(acct.Username, func() (any, error) {
		return p.pollAccount(ctx, acct), nil
	})
	return v.(Report)
}

func (p *Poller) pollAccount(ctx context.Context, acct *models.Account) Report {
	report := Report{Account: acct.Username, Full: p.isFull(acct.Username)}
	log := p.log.WithFields(logrus.Fields{"account": acct.Username, "full": report.Full})

	fetched, err := p.fetch(ctx, acct, report.Full)
	if err != nil {
		metrics.InboxPoll(report.Full, "error")
		log.WithError(err).Warn("inbox poll failed")
		report.FetchFailed = true
		report.Err = err
		return report
	}
	p.advance(acct.Username)
	report.Fetched = len(fetched)

	if report.Full {
		err = p.store.RefreshInbox(ctx, acct.Username, fetched)
	} else {
		err = p.store.UpsertMessages(ctx, acct.Username, fetched)
	}
	if err != nil {
		metrics.InboxPoll(report.Full, "error")
		report.Err = fmt.Errorf("cache inbox: %w", err)
		return report
	}

	notified, err := p.store.NotifiedNames(ctx, acct.Username, names(fetched))
	if err != nil {
		metrics.InboxPoll(report.Full, "error")
		report.Err = fmt.Errorf("load notified messages: %w", err)
		return report
	}

	var delivered []string
	var errs []error
	for _, msg := range Diff(fetched, notified) {
		n := BuildNotification(acct, msg)
		if err := p.notifier.Notify(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", msg.Name, err))
			continue
		}
		delivered = append(delivered, msg.Name)
	}
	if err := p.store.MarkNotified(ctx, acct.Username, delivered...); err != nil {
		errs = append(errs, fmt.Errorf("mark notified: %w", err))
	}
	report.Notified = len(delivered)
	report.Err = errors.Join(errs...)

	outcome := "ok"
	if report.Err != nil {
		outcome = "partial"
		log.WithError(report.Err).Warn("some notifications were not delivered")
	}
	metrics.InboxPoll(report.Full, outcome)
	log.WithFields(logrus.Fields{"fetched": report.Fetched, "notified": report.Notified}).Debug("inbox polled")
	return report
}

func (p *Poller) fetch(ctx context.Context, acct *models.Account, full bool) ([]models.Message, error) {
	token, err := p.tokens.AccessToken(ctx, acct)
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}
	where := reddit.WhereUnread
	if full {
		where = reddit.WhereInbox
	}
	return p.reddit.FetchInbox(ctx, token, where, p.cfg.Limit).Unwrap()
}

// PollAll polls every account with notifications enabled. A failing account
// is reported and does not affect the others.
func (p *Poller) PollAll(ctx context.Context) ([]Report, error) {
	accounts, err := p.store.NotifiableAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	reports := make([]Report, len(accounts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i := range accounts {
		g.Go(func() error {
			reports[i] = p.PollAccount(gctx, &accounts[i])
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
		}
	}
	p.log.WithFields(logrus.Fields{"accounts": len(accounts), "failed": failed}).Info("📬 Inbox poll finished")
	return reports, nil
}

// Run polls once, then on the configured cron schedule until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	cronLog := cron.PrintfLogger(p.log)
	c := cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.SkipIfStillRunning(cronLog)))
	if _, err := c.AddFunc(p.cfg.Schedule, func() { p.runOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid poll schedule %q: %w", p.cfg.Schedule, err)
	}

	p.runOnce(ctx)
	c.Start()
	p.log.WithField("schedule", p.cfg.Schedule).Info("⏰ Inbox poller started")

	<-ctx.Done()
	<-c.Stop().Done()
	p.log.Info("Inbox poller stopped")
	return nil
}

func (p *Poller) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := p.PollAll(ctx); err != nil {
		p.log.WithError(err).Error("inbox poll round failed")
	}
}

// Diff returns the unread messages of fetched not present in notified,
// without duplicates and oldest first.
func Diff(fetched []models.Message, notified map[string]bool) []models.Message {
	seen := make(map[string]bool, len(fetched))
	var out []models.Message
	for _, m := range fetched {
		if !m.New || notified[m.Name] || seen[m.Name] {
			continue
		}
		seen[m.Name] = true
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedUTC.Before(out[j].CreatedUTC)
	})
	return out
}

func names(msgs []models.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Name
	}
	return out
}
