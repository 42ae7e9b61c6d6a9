package billing

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/voicecanvas/voicecanvas/app/models"
)

// Service is the subscription/quota reconciliation engine. It merges vendor
// billing events into the local Subscription and CharacterQuota rows. Every
// event is applied inside a single database transaction so two concurrent
// events for the same user cannot lose each other's writes.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a reconciliation service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// NewServiceFromDB creates a reconciliation service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// ApplySubscriptionGrant handles a subscription-granting event (checkout
// completed for a subscription plan, or a paid renewal invoice): plan-tier
// precedence, remaining-day time accrual, and temporary-quota accrual.
func (s *Service) ApplySubscriptionGrant(email string, details PlanDetails) error {
	if details.Kind != PlanKindSubscription {
		return errors.New("billing: plan details are not a subscription grant")
	}

	return s.repo.Transaction(func(tx Repository) error {
		user, err := s.resolveUser(tx, email)
		if err != nil {
			return err
		}
		now := s.now()

		existing, err := tx.GetSubscription(user.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// Renewal never downgrades the tier: an active yearly plan stays
		// yearly when a monthly grant arrives.
		planType := details.PlanType
		if existing != nil && existing.IsActive(now) &&
			models.PlanTypeRank(existing.PlanType) > models.PlanTypeRank(planType) {
			planType = existing.PlanType
		}

		// Remaining whole days of an active subscription carry over into
		// the new end date.
		endDate := now.AddDate(0, 0, details.DurationDays)
		if existing != nil && existing.IsActive(now) {
			remainingDays := int(math.Ceil(existing.EndDate.Sub(now).Hours() / 24))
			endDate = now.AddDate(0, 0, remainingDays+details.DurationDays)
		}

		if err := tx.UpsertSubscription(&models.Subscription{
			UserID:    user.ID,
			PlanType:  planType,
			StartDate: now,
			EndDate:   endDate,
			Status:    models.SubscriptionStatusActive,
		}); err != nil {
			return err
		}

		quota, err := tx.GetQuota(user.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if quota != nil && quota.QuotaExpiry != nil && quota.QuotaExpiry.After(now) {
			// Live temporary balance: stack the grant and extend the expiry.
			quota.TemporaryQuota += details.Characters
			quota.QuotaExpiry = &endDate
			return tx.UpsertQuota(quota)
		}

		// No balance, or an expired one: the stale remainder is discarded.
		return tx.UpsertQuota(&models.CharacterQuota{
			UserID:         user.ID,
			TemporaryQuota: details.Characters,
			QuotaExpiry:    &endDate,
		})
	})
}

// ApplyOneTimePurchase credits a permanent character grant. Permanent quota
// never expires and is never time-accrued.
func (s *Service) ApplyOneTimePurchase(email string, characters int64) error {
	return s.repo.Transaction(func(tx Repository) error {
		user, err := s.resolveUser(tx, email)
		if err != nil {
			return err
		}
		return tx.AddPermanentQuota(user.ID, characters)
	})
}

// SyncVendorSubscription writes the vendor-reported status and period end
// verbatim. No accrual: this event reflects the vendor's authoritative state.
func (s *Service) SyncVendorSubscription(email, status string, periodEnd time.Time) error {
	if status == "" {
		status = models.SubscriptionStatusActive
	}
	return s.repo.Transaction(func(tx Repository) error {
		user, err := s.resolveUser(tx, email)
		if err != nil {
			return err
		}
		return tx.UpdateSubscription(user.ID, map[string]interface{}{
			"status":   status,
			"end_date": periodEnd,
		})
	})
}

// CancelSubscription marks the subscription canceled. Quota is untouched;
// the remaining balance stays usable until its natural expiry.
func (s *Service) CancelSubscription(email string) error {
	return s.setStatus(email, models.SubscriptionStatusCanceled)
}

// MarkPaymentFailed marks the subscription payment_failed. No quota change.
func (s *Service) MarkPaymentFailed(email string) error {
	return s.setStatus(email, models.SubscriptionStatusPaymentFailed)
}

func (s *Service) setStatus(email, status string) error {
	return s.repo.Transaction(func(tx Repository) error {
		user, err := s.resolveUser(tx, email)
		if err != nil {
			return err
		}
		return tx.UpdateSubscription(user.ID, map[string]interface{}{"status": status})
	})
}

func (s *Service) resolveUser(tx Repository, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrMissingEmail
	}
	user, err := tx.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// RecordWebhookEvent persists a webhook payload idempotently, keyed on the
// vendor event id. The bool result is false when the event was seen before,
// which callers use to skip re-applying a grant on redelivery.
func (s *Service) RecordWebhookEvent(eventID, eventType, payloadJSON string, signatureValid bool) (bool, *models.BillingWebhookEvent, error) {
	id := strings.TrimSpace(eventID)
	if id == "" {
		sum := sha256.Sum256([]byte(payloadJSON))
		id = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        BillingProviderStripe,
		ProviderEventID: id,
		EventType:       strings.TrimSpace(eventType),
		PayloadJSON:     payloadJSON,
		SignatureValid:  signatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(webhookEventID uint, processingErr error) error {
	if webhookEventID == 0 {
		return errors.New("billing: webhook event id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}
