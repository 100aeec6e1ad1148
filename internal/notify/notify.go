// Package notify delivers inbox notifications to one or more sinks.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/emilythestrangee/reddit-companion/backend/internal/metrics"
	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// NotificationStore persists notifications for later listing.
type NotificationStore interface {
	SaveNotification(ctx context.Context, n *models.Notification) error
}

type StoreNotifier struct {
	store NotificationStore
}

func NewStoreNotifier(store NotificationStore) *StoreNotifier {
	return &StoreNotifier{store: store}
}

func (s *StoreNotifier) Notify(ctx context.Context, n models.Notification) error {
	if err := s.store.SaveNotification(ctx, &n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	return nil
}

type LogNotifier struct {
	log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(_ context.Context, n models.Notification) error {
	l.log.WithFields(logrus.Fields{
		"account": n.AccountName,
		"message": n.MessageName,
		"kind":    n.Kind,
		"link":    n.Link,
	}).Info("🔔 " + n.Title)
	return nil
}

type namedSink struct {
	name     string
	notifier Notifier
}

// DeliveryLog remembers which sinks already delivered a notification.
type DeliveryLog interface {
	DeliveredSinks(ctx context.Context, account, message string) (map[string]bool, error)
	RecordDelivery(ctx context.Context, account, message, sink string) error
}

// Fanout delivers to every sink and joins their errors. With a DeliveryLog,
// a retried notification only goes to the sinks that failed before.
type Fanout struct {
	sinks      []namedSink
	deliveries DeliveryLog
}

func NewFanout() *Fanout {
	return &Fanout{}
}

// Add registers a sink under a name used for metrics and delivery records.
func (f *Fanout) Add(name string, n Notifier) *Fanout {
	f.sinks = append(f.sinks, namedSink{name: name, notifier: n})
	return f
}

func (f *Fanout) WithDeliveryLog(l DeliveryLog) *Fanout {
	f.deliveries = l
	return f
}

func (f *Fanout) Notify(ctx context.Context, n models.Notification) error {
	done := map[string]bool{}
	if f.deliveries != nil {
		var err error
		if done, err = f.deliveries.DeliveredSinks(ctx, n.AccountName, n.MessageName); err != nil {
			return fmt.Errorf("load deliveries: %w", err)
		}
	}

	var errs []error
	for _, sink := range f.sinks {
		if done[sink.name] {
			metrics.Notification(sink.name, "skipped")
			continue
		}
		if err := sink.notifier.Notify(ctx, n); err != nil {
			metrics.Notification(sink.name, "error")
			errs = append(errs, fmt.Errorf("%s: %w", sink.name, err))
			continue
		}
		metrics.Notification(sink.name, "ok")
		if f.deliveries != nil {
			if err := f.deliveries.RecordDelivery(ctx, n.AccountName, n.MessageName, sink.name); err != nil {
				errs = append(errs, fmt.Errorf("%s: record delivery: %w", sink.name, err))
			}
		}
	}
	return errors.Join(errs...)
}
