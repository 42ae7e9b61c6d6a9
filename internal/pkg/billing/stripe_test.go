package billing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"

	"github.com/voicecanvas/voicecanvas/app/models"
)

type fakeGateway struct {
	lineItemPrice string
	customerEmail string
	subPrice      string
}

func (g fakeGateway) CheckoutLineItemPriceID(string) (string, error) { return g.lineItemPrice, nil }
func (g fakeGateway) CustomerEmail(string) (string, error)           { return g.customerEmail, nil }
func (g fakeGateway) SubscriptionPriceID(string) (string, error)     { return g.subPrice, nil }

func stripeEvent(t *testing.T, id, eventType string, object interface{}) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(object)
	require.NoError(t, err)
	return stripe.Event{
		ID:   id,
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestProcessCheckoutCompletedSubscription(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(1, "alice@example.com")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)
	proc := NewWebhookProcessor(svc, testCatalog(), fakeGateway{lineItemPrice: "price_monthly"})

	event := stripeEvent(t, "evt_1", EventCheckoutCompleted, map[string]interface{}{
		"id":               "cs_1",
		"customer_details": map[string]string{"email": "alice@example.com"},
	})

	require.NoError(t, proc.Process(event, true))

	assert.Equal(t, models.PlanTypeMonthly, repo.subs[1].PlanType)
	assert.Equal(t, int64(100000), repo.quotas[1].TemporaryQuota)

	stored := repo.events["evt_1"]
	require.NotNil(t, stored)
	assert.NotNil(t, stored.ProcessedAt)
	assert.Empty(t, stored.ProcessingError)
}

func TestProcessCheckoutCompletedOneTime(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(1, "alice@example.com")
	svc := newTestService(repo, time.Now())
	proc := NewWebhookProcessor(svc, testCatalog(), fakeGateway{lineItemPrice: "price_1m"})

	event := stripeEvent(t, "evt_2", EventCheckoutCompleted, map[string]interface{}{
		"id":               "cs_2",
		"customer_details": map[string]string{"email": "alice@example.com"},
	})

	require.NoError(t, proc.Process(event, true))
	assert.Equal(t, int64(1000000), repo.quotas[1].PermanentQuota)
}

func TestProcessDuplicateEventAppliesOnce(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(1, "alice@example.com")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)
	proc := NewWebhookProcessor(svc, testCatalog(), fakeGateway{lineItemPrice: "price_monthly"})

	event := stripeEvent(t, "evt_dup", EventCheckoutCompleted, map[string]interface{}{
		"id":               "cs_3",
		"customer_details": map[string]string{"email": "alice@example.com"},
	})

	require.NoError(t, proc.Process(event, true))
	require.NoError(t, proc.Process(event, true))

	// Redelivery neither stacks quota nor extends the end date.
	assert.Equal(t, int64(100000), repo.quotas[1].TemporaryQuota)
	assert.Equal(t, now.AddDate(0, 0, 30), repo.subs[1].EndDate)
}

func TestProcessSubscriptionUpdated(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(1, "alice@example.com")
	repo.subs[1] = &models.Subscription{UserID: 1, Status: models.SubscriptionStatusActive}
	svc := newTestService(repo, time.Now())
	proc := NewWebhookProcessor(svc, testCatalog(), fakeGateway{customerEmail: "alice@example.com"})

	periodEnd := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	event := stripeEvent(t, "evt_3", EventSubscriptionUpdated, map[string]interface{}{
		"id":                 "sub_1",
		"customer":           map[string]string{"id": "cus_1"},
		"status":             "past_due",
		"current_period_end": periodEnd.Unix(),
	})

	require.NoError(t, proc.Process(event, true))
	assert.Equal(t, "past_due", repo.subs[1].Status)
	assert.Equal(t, periodEnd.Unix(), repo.subs[1].EndDate.Unix())
}

func TestProcessSubscriptionDeleted(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(1, "alice@example.com")
	repo.subs[1] = &models.Subscription{UserID: 1, Status: models.SubscriptionStatusActive}
	svc := newTestService(repo, time.Now())
	proc := NewWebhookProcessor(svc, testCatalog(), fakeGateway{customerEmail: "alice@example.com"})

	event := stripeEvent(t, "evt_4", EventSubscriptionDeleted, map[string]interface{}{
		"id":       "sub_1",
		"customer": map[string]string{"id": "cus_1"},
	})

	require.NoError(t, proc.Process(event, true))
	assert.Equal(t, models.SubscriptionStatusCanceled, repo.subs[1].Status)
}

func TestProcessInvoicePaymentSucceededRenewal(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(1, "alice@example.com")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)
	proc := NewWebhookProcessor(svc, testCatalog(), fakeGateway{
		customerEmail: "alice@example.com",
		subPrice:      "price_yearly",
	})

	event := stripeEvent(t, "evt_5", EventInvoicePaymentSucceeded, map[string]interface{}{
		"id":           "in_1",
		"customer":     map[string]string{"id": "cus_1"},
		"subscription": map[string]string{"id": "sub_1"},
	})

	require.NoError(t, proc.Process(event, true))
	assert.Equal(t, models.PlanTypeYearly, repo.subs[1].PlanType)
	assert.Equal(t, int64(1500000), repo.quotas[1].TemporaryQuota)
}

func TestProcessInvoiceWithoutSubscriptionIsIgnored(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(1, "alice@example.com")
	svc := newTestService(repo, time.Now())
	proc := NewWebhookProcessor(svc, testCatalog(), fakeGateway{customerEmail: "alice@example.com"})

	event := stripeEvent(t, "evt_6", EventInvoicePaymentSucceeded, map[string]interface{}{
		"id":       "in_2",
		"customer": map[string]string{"id": "cus_1"},
	})

	require.NoError(t, proc.Process(event, true))
	assert.Nil(t, repo.subs[1])
	assert.Nil(t, repo.quotas[1])
}

func TestProcessInvoicePaymentFailed(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(1, "alice@example.com")
	repo.subs[1] = &models.Subscription{UserID: 1, Status: models.SubscriptionStatusActive}
	svc := newTestService(repo, time.Now())
	proc := NewWebhookProcessor(svc, testCatalog(), fakeGateway{customerEmail: "alice@example.com"})

	event := stripeEvent(t, "evt_7", EventInvoicePaymentFailed, map[string]interface{}{
		"id":       "in_3",
		"customer": map[string]string{"id": "cus_1"},
	})

	require.NoError(t, proc.Process(event, true))
	assert.Equal(t, models.SubscriptionStatusPaymentFailed, repo.subs[1].Status)
}

func TestProcessStoresDispatchError(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, time.Now())
	proc := NewWebhookProcessor(svc, testCatalog(), fakeGateway{lineItemPrice: "price_monthly"})

	event := stripeEvent(t, "evt_8", EventCheckoutCompleted, map[string]interface{}{
		"id":               "cs_8",
		"customer_details": map[string]string{"email": "nobody@example.com"},
	})

	err := proc.Process(event, true)
	assert.ErrorIs(t, err, ErrUserNotFound)

	stored := repo.events["evt_8"]
	require.NotNil(t, stored)
	assert.Contains(t, stored.ProcessingError, "user not found")
}

func TestProcessIgnoresUnknownEventType(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, time.Now())
	proc := NewWebhookProcessor(svc, testCatalog(), fakeGateway{})

	event := stripeEvent(t, "evt_9", "charge.refunded", map[string]string{"id": "ch_1"})
	assert.NoError(t, proc.Process(event, true))
}

func TestParseWebhookEventUnsigned(t *testing.T) {
	body := []byte(`{"id":"evt_raw","type":"checkout.session.completed","data":{"object":{"id":"cs_raw"}}}`)

	event, err := ParseWebhookEvent(body, "", "", false)
	require.NoError(t, err)
	assert.Equal(t, "evt_raw", event.ID)
	assert.Equal(t, stripe.EventType(EventCheckoutCompleted), event.Type)

	_, err = ParseWebhookEvent([]byte("not json"), "", "", false)
	assert.Error(t, err)
}

func TestParseWebhookEventRejectsBadSignature(t *testing.T) {
	body := []byte(`{"id":"evt_signed","type":"checkout.session.completed"}`)

	_, err := ParseWebhookEvent(body, "t=1,v1=deadbeef", "whsec_test", true)
	assert.Error(t, err)
}
