// Package registry implements the match-and-reconcile protocol: a new
// report is checked against the opposite-status reports for the same
// serial number and, on a match, both sides are marked reunited in one
// transaction.
package registry

import (
	"context"
	"strconv"
	"strings"

	"lostwatch/internal/apperr"
	"lostwatch/internal/metrics"
	"lostwatch/internal/models"
	"lostwatch/internal/notify"
	"lostwatch/internal/store"
	"lostwatch/pkg/protocol"

	"github.com/apex/log"
	"github.com/moby/locker"
)

// Store is the record store as the registry uses it. *store.Store
// satisfies it.
type Store interface {
	Transaction(ctx context.Context, fn func(store.Records) error) error
	ListActive(ctx context.Context, statuses ...models.Status) ([]models.MapPoint, error)
	FirstActive(ctx context.Context, serial string, status models.Status) (*models.MapPoint, error)
	Stats(ctx context.Context) (models.Stats, error)
}

// Outcome is the result of one reconciliation.
type Outcome struct {
	Matched bool
	// Stored is the persisted new report, with its final status.
	Stored *models.WatchReport
	// Counterpart is the matched existing report, nil when unmatched.
	Counterpart *models.WatchReport
}

// CounterpartContact is the contact that gets notified on a match.
func (o Outcome) CounterpartContact() string {
	if o.Counterpart == nil {
		return ""
	}
	return o.Counterpart.Email
}

// FinderContact and LoserContact resolve the two sides of a match by the
// status each side was submitted with.
func (o Outcome) FinderContact() string {
	return o.contactFor(models.StatusFound)
}

func (o Outcome) LoserContact() string {
	return o.contactFor(models.StatusLost)
}

func (o Outcome) contactFor(side models.Status) string {
	if !o.Matched {
		return ""
	}
	if o.Counterpart.Status == side {
		return o.Counterpart.Email
	}
	return o.Stored.Email
}

// FindCounterpart returns the earliest report with the same serial number
// and the opposite status, or nil. It does not write.
func FindCounterpart(records store.Records, r *models.WatchReport) (*models.WatchReport, error) {
	opposite := r.Status.Opposite()
	if opposite == "" {
		return nil, apperr.Validation("status", "status must be one of [lost found]")
	}
	return records.FindBySerialStatus(r.SerialNumber, opposite)
}

// Reconcile persists r. Without a counterpart r is inserted unchanged.
// With one, the counterpart moves to reunited pointing at r's contact and
// r is inserted already reunited pointing back. Both writes go through the
// same records, so the caller's transaction decides their fate together.
func Reconcile(records store.Records, r *models.WatchReport, counterpart *models.WatchReport) (Outcome, error) {
	if counterpart == nil {
		if err := records.Insert(r); err != nil {
			return Outcome{}, err
		}
		return Outcome{Matched: false, Stored: r}, nil
	}

	if err := records.MarkReunited(counterpart.ID, counterpart.Status, r.Email); err != nil {
		return Outcome{}, err
	}
	r.Status = models.StatusReunited
	r.ReunitedWith = counterpart.Email
	if err := records.Insert(r); err != nil {
		return Outcome{}, err
	}

	// the returned counterpart keeps the status it was matched in, so the
	// finder and loser sides stay resolvable
	return Outcome{Matched: true, Stored: r, Counterpart: counterpart}, nil
}

type Service struct {
	store    Store
	notifier notify.Notifier
	locks    *locker.Locker
}

// New builds a Service. A nil notifier falls back to notify.LogNotifier.
func New(s Store, n notify.Notifier) *Service {
	if n == nil {
		n = notify.LogNotifier{}
	}
	return &Service{store: s, notifier: n, locks: locker.New()}
}

// Submit validates sub, matches it and persists the result. Submissions
// for the same serial number are serialized.
func (s *Service) Submit(ctx context.Context, sub Submission) (Outcome, error) {
	report, err := sub.Report()
	if err != nil {
		return Outcome{}, err
	}
	submitted := report.Status

	outcome, err := s.reconcile(ctx, report)
	if err != nil {
		metrics.ReconcileFailuresTotal.Inc()
		return Outcome{}, err
	}

	metrics.ReportsTotal.WithLabelValues(string(submitted), strconv.FormatBool(outcome.Matched)).Inc()
	if outcome.Matched {
		s.notifyCounterpart(ctx, outcome)
	}
	return outcome, nil
}

// reconcile runs match and write in one transaction while holding the
// serial number's lock.
func (s *Service) reconcile(ctx context.Context, report *models.WatchReport) (Outcome, error) {
	s.locks.Lock(report.SerialNumber)
	defer s.locks.Unlock(report.SerialNumber)

	var outcome Outcome
	err := s.store.Transaction(ctx, func(records store.Records) error {
		counterpart, err := FindCounterpart(records, report)
		if err != nil {
			return err
		}
		outcome, err = Reconcile(records, report, counterpart)
		return err
	})
	return outcome, err
}

func (s *Service) notifyCounterpart(ctx context.Context, o Outcome) {
	n := protocol.NewMatchNotice(
		o.CounterpartContact(),
		o.Stored.SerialNumber,
		firstNonEmpty(o.Counterpart.Model, o.Stored.Model),
		o.FinderContact(),
		o.LoserContact(),
	)
	if err := s.notifier.Notify(ctx, n); err != nil {
		metrics.NotifyFailuresTotal.Inc()
		log.WithError(err).WithField("notice_id", n.ID).Warn("match notice not delivered")
	}
}

// ListActive returns the public map points. filter may be empty, "lost" or
// "found"; anything else is a validation error.
func (s *Service) ListActive(ctx context.Context, filter string) ([]models.MapPoint, error) {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return s.store.ListActive(ctx)
	}
	st := models.Status(filter)
	if !st.Active() {
		return nil, apperr.Validation("status", "status must be one of [lost found]")
	}
	return s.store.ListActive(ctx, st)
}

// Lookup checks whether a found report exists for serial without filing
// anything.
func (s *Service) Lookup(ctx context.Context, serial string) (*models.MapPoint, error) {
	serial = models.NormalizeSerial(serial)
	if serial == "" {
		return nil, apperr.Validation("serial_number", "serial_number is a required field")
	}
	return s.store.FirstActive(ctx, serial, models.StatusFound)
}

func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	return s.store.Stats(ctx)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
