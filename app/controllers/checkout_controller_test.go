package controllers

import (
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"

	"github.com/voicecanvas/voicecanvas/internal/pkg/billing"
)

func checkoutTestApp(start checkoutStarter) (*fiber.App, *CheckoutController) {
	catalog := billing.NewCatalog("price_y", "price_m", "price_10k", "price_1m", "price_3m")
	cc := NewCheckoutController(catalog)
	cc.start = start
	app := fiber.New()
	app.Post("/api/checkout/session", cc.HandleCreateSession)
	return app, cc
}

func TestCreateCheckoutSession(t *testing.T) {
	var requestedPlan string
	app, _ := checkoutTestApp(func(_ *billing.Catalog, plan string) (*stripe.CheckoutSession, error) {
		requestedPlan = plan
		return &stripe.CheckoutSession{ID: "cs_test", URL: "https://checkout.stripe.com/pay/cs_test"}, nil
	})

	resp := postJSON(t, app, "/api/checkout/session", map[string]string{"plan": billing.CheckoutPlanYearly})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, billing.CheckoutPlanYearly, requestedPlan)

	var decoded map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, "cs_test", decoded["id"])
	assert.Contains(t, decoded["url"], "cs_test")
}

func TestCreateCheckoutSessionUnknownPlan(t *testing.T) {
	app, _ := checkoutTestApp(func(*billing.Catalog, string) (*stripe.CheckoutSession, error) {
		t.Fatal("no session should be started for an unknown plan")
		return nil, nil
	})

	resp := postJSON(t, app, "/api/checkout/session", map[string]string{"plan": "lifetime"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateCheckoutSessionVendorFailure(t *testing.T) {
	app, _ := checkoutTestApp(func(*billing.Catalog, string) (*stripe.CheckoutSession, error) {
		return nil, assert.AnError
	})

	resp := postJSON(t, app, "/api/checkout/session", map[string]string{"plan": billing.CheckoutPlanTenK})
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
