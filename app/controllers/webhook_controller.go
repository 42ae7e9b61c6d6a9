package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v79"

	"github.com/voicecanvas/voicecanvas/internal/pkg/billing"
	"github.com/voicecanvas/voicecanvas/internal/pkg/env"
)

type webhookProcessor interface {
	Process(event stripe.Event, signatureValid bool) error
}

// WebhookController terminates Stripe webhooks. With an endpoint secret
// configured the signature is enforced; without one (local development) the
// raw JSON body is trusted.
type WebhookController struct {
	processor      webhookProcessor
	endpointSecret string
}

// NewWebhookController wires the controller. An empty secret disables
// signature verification.
func NewWebhookController(processor webhookProcessor, endpointSecret string) *WebhookController {
	return &WebhookController{processor: processor, endpointSecret: endpointSecret}
}

// NewWebhookControllerFromEnv reads STRIPE_WEBHOOK_SECRET.
func NewWebhookControllerFromEnv(processor *billing.WebhookProcessor) *WebhookController {
	return NewWebhookController(processor, env.GetEnv("STRIPE_WEBHOOK_SECRET", ""))
}

// HandleStripeWebhook handles POST /api/webhook/stripe. Processing failures
// answer 500 so the vendor redelivers the event.
func (wc *WebhookController) HandleStripeWebhook(c *fiber.Ctx) error {
	verify := wc.endpointSecret != ""
	event, err := billing.ParseWebhookEvent(c.Body(), c.Get("Stripe-Signature"), wc.endpointSecret, verify)
	if err != nil {
		log.Warnf("[Webhook] Rejected Stripe event: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid webhook payload",
		})
	}

	if err := wc.processor.Process(event, verify); err != nil {
		log.Errorf("[Webhook] Processing event %s (%s) failed: %v", event.ID, event.Type, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "webhook processing failed",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"received": true})
}
