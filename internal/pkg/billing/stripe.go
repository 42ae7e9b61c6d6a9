package billing

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/subscription"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/voicecanvas/voicecanvas/internal/pkg/env"
)

// InitStripe wires the Stripe API key from the environment.
func InitStripe() {
	stripe.Key = env.GetEnv("STRIPE_SECRET_KEY", "")
	if stripe.Key == "" {
		log.Warn("[Billing] STRIPE_SECRET_KEY not set, billing calls will fail")
	}
}

// Gateway covers the vendor lookups the webhook processor needs to resolve
// event references (session line items, customer emails, subscription
// prices). Isolated behind an interface so the processor tests run offline.
type Gateway interface {
	CheckoutLineItemPriceID(sessionID string) (string, error)
	CustomerEmail(customerID string) (string, error)
	SubscriptionPriceID(subscriptionID string) (string, error)
}

type stripeGateway struct{}

// NewStripeGateway returns a Gateway backed by the live Stripe API.
func NewStripeGateway() Gateway {
	return stripeGateway{}
}

func (stripeGateway) CheckoutLineItemPriceID(sessionID string) (string, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	iter := checkoutsession.ListLineItems(params)
	for iter.Next() {
		li := iter.LineItem()
		if li.Price != nil && li.Price.ID != "" {
			return li.Price.ID, nil
		}
	}
	if err := iter.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("billing: checkout session %s has no priced line item", sessionID)
}

func (stripeGateway) CustomerEmail(customerID string) (string, error) {
	cust, err := customer.Get(customerID, nil)
	if err != nil {
		return "", err
	}
	if cust.Email == "" {
		return "", ErrMissingEmail
	}
	return cust.Email, nil
}

func (stripeGateway) SubscriptionPriceID(subscriptionID string) (string, error) {
	sub, err := subscription.Get(subscriptionID, nil)
	if err != nil {
		return "", err
	}
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item.Price != nil && item.Price.ID != "" {
				return item.Price.ID, nil
			}
		}
	}
	return "", fmt.Errorf("billing: subscription %s has no priced item", subscriptionID)
}

// ParseWebhookEvent turns a raw webhook body into a Stripe event. Production
// verifies the signature against the endpoint secret; non-production parses
// the unsigned JSON directly so local replay tooling works.
func ParseWebhookEvent(body []byte, sigHeader, endpointSecret string, verifySignature bool) (stripe.Event, error) {
	if verifySignature {
		return webhook.ConstructEventWithOptions(body, sigHeader, endpointSecret, webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
	}

	var event stripe.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return stripe.Event{}, err
	}
	return event, nil
}

// WebhookProcessor resolves vendor references on an incoming event and feeds
// the result through the reconciliation engine, exactly once per event id.
type WebhookProcessor struct {
	service *Service
	catalog *Catalog
	gateway Gateway
}

// NewWebhookProcessor wires the processor from its collaborators.
func NewWebhookProcessor(service *Service, catalog *Catalog, gateway Gateway) *WebhookProcessor {
	return &WebhookProcessor{service: service, catalog: catalog, gateway: gateway}
}

// Process records the event for deduplication and applies it. Redelivered
// events that were already processed successfully are acknowledged without
// touching subscription or quota state.
func (p *WebhookProcessor) Process(event stripe.Event, signatureValid bool) error {
	created, stored, err := p.service.RecordWebhookEvent(event.ID, string(event.Type), string(event.Data.Raw), signatureValid)
	if err != nil {
		return err
	}
	if !created && stored.ProcessedAt != nil && stored.ProcessingError == "" {
		log.Infof("[Billing] Skipping duplicate webhook event %s (%s)", stored.ProviderEventID, stored.EventType)
		return nil
	}

	procErr := p.dispatch(event)
	if markErr := p.service.MarkWebhookProcessed(stored.ID, procErr); markErr != nil {
		log.Errorf("[Billing] Failed to mark webhook event %d processed: %v", stored.ID, markErr)
	}
	return procErr
}

func (p *WebhookProcessor) dispatch(event stripe.Event) error {
	switch string(event.Type) {
	case EventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("billing: invalid checkout session payload: %w", err)
		}
		email := ""
		if sess.CustomerDetails != nil {
			email = sess.CustomerDetails.Email
		}
		if email == "" {
			return ErrMissingEmail
		}

		priceID, err := p.gateway.CheckoutLineItemPriceID(sess.ID)
		if err != nil {
			return err
		}
		details, err := p.catalog.Lookup(priceID)
		if err != nil {
			return err
		}
		if details.Kind == PlanKindSubscription {
			return p.service.ApplySubscriptionGrant(email, details)
		}
		return p.service.ApplyOneTimePurchase(email, details.Characters)

	case EventSubscriptionUpdated:
		sub, email, err := p.subscriptionFromEvent(event)
		if err != nil {
			return err
		}
		periodEnd := time.Now()
		if sub.CurrentPeriodEnd > 0 {
			periodEnd = time.Unix(sub.CurrentPeriodEnd, 0)
		}
		return p.service.SyncVendorSubscription(email, string(sub.Status), periodEnd)

	case EventSubscriptionDeleted:
		_, email, err := p.subscriptionFromEvent(event)
		if err != nil {
			return err
		}
		return p.service.CancelSubscription(email)

	case EventInvoicePaymentSucceeded:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return fmt.Errorf("billing: invalid invoice payload: %w", err)
		}
		if invoice.Subscription == nil || invoice.Subscription.ID == "" {
			// One-off invoices carry no renewal grant.
			return nil
		}
		email, err := p.emailForCustomer(invoice.Customer)
		if err != nil {
			return err
		}
		priceID, err := p.gateway.SubscriptionPriceID(invoice.Subscription.ID)
		if err != nil {
			return err
		}
		details, err := p.catalog.Lookup(priceID)
		if err != nil {
			return err
		}
		if details.Kind != PlanKindSubscription {
			return nil
		}
		return p.service.ApplySubscriptionGrant(email, details)

	case EventInvoicePaymentFailed:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return fmt.Errorf("billing: invalid invoice payload: %w", err)
		}
		email, err := p.emailForCustomer(invoice.Customer)
		if err != nil {
			return err
		}
		return p.service.MarkPaymentFailed(email)

	default:
		// Intentionally ignore unhandled events.
		return nil
	}
}

func (p *WebhookProcessor) subscriptionFromEvent(event stripe.Event) (stripe.Subscription, string, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return sub, "", fmt.Errorf("billing: invalid subscription payload: %w", err)
	}
	email, err := p.emailForCustomer(sub.Customer)
	if err != nil {
		return sub, "", err
	}
	return sub, email, nil
}

func (p *WebhookProcessor) emailForCustomer(cust *stripe.Customer) (string, error) {
	if cust == nil || cust.ID == "" {
		return "", ErrMissingEmail
	}
	// Event payloads carry a bare customer reference; the email needs a
	// vendor lookup unless the payload happened to be expanded.
	if cust.Email != "" {
		return cust.Email, nil
	}
	return p.gateway.CustomerEmail(cust.ID)
}

// CreateCheckoutSession starts a Stripe Checkout Session for the given plan.
func CreateCheckoutSession(catalog *Catalog, checkoutPlan string) (*stripe.CheckoutSession, error) {
	priceID, ok := catalog.PriceIDForCheckoutPlan(checkoutPlan)
	if !ok {
		return nil, fmt.Errorf("billing: unknown checkout plan %q", checkoutPlan)
	}

	baseURL := strings.TrimRight(env.GetEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/")
	mode := stripe.CheckoutSessionModePayment
	successType := "quota"
	if IsSubscriptionCheckoutPlan(checkoutPlan) {
		mode = stripe.CheckoutSessionModeSubscription
		successType = "subscription"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(mode)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(fmt.Sprintf("%s/profile?success=true&type=%s", baseURL, successType)),
		CancelURL:  stripe.String(baseURL + "/pricing?canceled=true"),
	}

	return checkoutsession.New(params)
}
