// Package reconcile folds asynchronous provider feedback back into
// notification state: per-letter status callbacks, the daily outbound
// acknowledgement audit and stuck-letter alerting.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/govnotify/letterpipe/internal/clock"
	"github.com/govnotify/letterpipe/internal/notification"
	"github.com/govnotify/letterpipe/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrInvalidProviderStatus = errors.New("invalid_provider_status")
	// ErrNotificationTechnicalFailure is returned after a rejection has
	// been persisted, so callers can alert without rolling anything back.
	ErrNotificationTechnicalFailure = errors.New("notification_technical_failure")
)

// ProviderStatus is the closed set of per-letter outcomes the provider
// reports. Anything else is an input error, never a guess.
type ProviderStatus int

const (
	StatusDespatched ProviderStatus = iota
	StatusRejected
)

func ParseProviderStatus(raw string) (ProviderStatus, error) {
	switch raw {
	case "Despatched":
		return StatusDespatched, nil
	case "Rejected":
		return StatusRejected, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidProviderStatus, raw)
}

func (s ProviderStatus) NotificationStatus() string {
	if s == StatusRejected {
		return notification.StatusTechnicalFailure
	}
	return notification.StatusDelivered
}

type Params struct {
	fx.In

	Repo  notification.Repository
	Clock clock.Clock
	Log   *zap.Logger
}

// Reconciler applies provider letter callbacks to notification state.
type Reconciler struct {
	repo    notification.Repository
	clock   clock.Clock
	log     *zap.Logger
	metrics *metrics.LetterMetrics
}

func NewReconciler(p Params) *Reconciler {
	return &Reconciler{
		repo:    p.Repo,
		clock:   p.Clock,
		log:     p.Log.Named("reconcile.callback"),
		metrics: metrics.Letters(),
	}
}

// ProcessCallback resolves a provider status report against the stored
// notification, whether live or already archived. Duplicates are absorbed
// with an info log; a rejection is persisted and then surfaced as
// ErrNotificationTechnicalFailure.
func (r *Reconciler) ProcessCallback(ctx context.Context, notificationID string, pageCount int, providerStatus string) error {
	status, err := ParseProviderStatus(providerStatus)
	if err != nil {
		r.metrics.CallbackProcessed("invalid_status")
		return err
	}
	target := status.NotificationStatus()

	n, historical, err := r.repo.FindByID(ctx, notificationID)
	if err != nil {
		r.metrics.CallbackProcessed("not_found")
		return err
	}

	if n.BillableUnits != pageCount {
		r.log.Info("page count discrepancy in provider callback",
			zap.String("notification_id", n.ID),
			zap.Int("billable_units", n.BillableUnits),
			zap.Int("page_count", pageCount),
		)
	}

	if notification.TerminalStatus(n.Status) && n.Status == target {
		r.log.Info("duplicate provider callback",
			zap.String("notification_id", n.ID),
			zap.String("service_id", n.ServiceID),
			zap.String("current_status", n.Status),
			zap.String("new_status", target),
			zap.String("provider", "dvla"),
		)
		r.metrics.CallbackProcessed("duplicate")
		return nil
	}

	now := r.clock.Now().UTC()
	n.Status = target
	n.UpdatedAt = &now
	if err := r.repo.Update(ctx, n, historical); err != nil {
		r.metrics.CallbackProcessed("update_failed")
		return fmt.Errorf("update notification %s: %w", n.ID, err)
	}

	if status == StatusRejected {
		r.metrics.CallbackProcessed("rejected")
		return fmt.Errorf("notification %s rejected by provider: %w", n.ID, ErrNotificationTechnicalFailure)
	}
	r.metrics.CallbackProcessed("delivered")
	return nil
}
