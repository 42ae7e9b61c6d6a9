package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v79"

	"github.com/voicecanvas/voicecanvas/internal/pkg/billing"
)

type checkoutStarter func(catalog *billing.Catalog, plan string) (*stripe.CheckoutSession, error)

// CheckoutController starts Stripe Checkout Sessions for plan purchases.
type CheckoutController struct {
	catalog *billing.Catalog
	start   checkoutStarter
}

func NewCheckoutController(catalog *billing.Catalog) *CheckoutController {
	return &CheckoutController{catalog: catalog, start: billing.CreateCheckoutSession}
}

type checkoutRequest struct {
	Plan string `json:"plan"`
}

// HandleCreateSession handles POST /api/checkout/session.
func (cc *CheckoutController) HandleCreateSession(c *fiber.Ctx) error {
	var body checkoutRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if _, ok := cc.catalog.PriceIDForCheckoutPlan(body.Plan); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown plan"})
	}

	sess, err := cc.start(cc.catalog, body.Plan)
	if err != nil {
		log.Errorf("[Checkout] Creating session for plan %s failed: %v", body.Plan, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create checkout session"})
	}

	return c.JSON(fiber.Map{
		"id":  sess.ID,
		"url": sess.URL,
	})
}
