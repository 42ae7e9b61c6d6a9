package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

type fakeProcessor struct {
	err    error
	events []stripe.Event
}

func (p *fakeProcessor) Process(event stripe.Event, signatureValid bool) error {
	p.events = append(p.events, event)
	return p.err
}

func webhookTestApp(processor webhookProcessor, secret string) *fiber.App {
	app := fiber.New()
	wc := NewWebhookController(processor, secret)
	app.Post("/api/webhook/stripe", wc.HandleStripeWebhook)
	return app
}

func TestStripeWebhookAccepted(t *testing.T) {
	processor := &fakeProcessor{}
	app := webhookTestApp(processor, "")

	body := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)
	req := httptest.NewRequest("POST", "/api/webhook/stripe", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var decoded map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.True(t, decoded["received"])

	require.Len(t, processor.events, 1)
	assert.Equal(t, "evt_1", processor.events[0].ID)
}

func TestStripeWebhookMalformedBody(t *testing.T) {
	processor := &fakeProcessor{}
	app := webhookTestApp(processor, "")

	req := httptest.NewRequest("POST", "/api/webhook/stripe", bytes.NewReader([]byte("not json")))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, processor.events)
}

func TestStripeWebhookBadSignature(t *testing.T) {
	processor := &fakeProcessor{}
	app := webhookTestApp(processor, "whsec_test")

	body := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	req := httptest.NewRequest("POST", "/api/webhook/stripe", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, processor.events)
}

func TestStripeWebhookProcessingFailure(t *testing.T) {
	processor := &fakeProcessor{err: errors.New("user lookup failed")}
	app := webhookTestApp(processor, "")

	body := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`)
	req := httptest.NewRequest("POST", "/api/webhook/stripe", bytes.NewReader(body))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var decoded map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, "webhook processing failed", decoded["error"])
	assert.Contains(t, decoded["details"], "user lookup failed")
}
