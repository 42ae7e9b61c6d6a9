package billing

import (
	"github.com/voicecanvas/voicecanvas/app/models"
	"github.com/voicecanvas/voicecanvas/internal/pkg/env"
)

type PlanKind string

const (
	PlanKindSubscription PlanKind = "subscription"
	PlanKindOneTime      PlanKind = "one_time"
)

// Checkout plan names accepted by the checkout endpoint.
const (
	CheckoutPlanYearly  = "yearly"
	CheckoutPlanMonthly = "monthly"
	CheckoutPlanTenK    = "tenThousandChars"
	CheckoutPlanOneM    = "millionChars"
	CheckoutPlanThreeM  = "threeMillionChars"
)

// PlanDetails describes what a vendor price id grants.
type PlanDetails struct {
	Kind         PlanKind
	PlanType     string // yearly or monthly, subscription kind only
	DurationDays int    // subscription kind only
	Characters   int64
}

// Catalog maps vendor price identifiers to plan descriptors. The mapping is
// fixed at construction; an unknown price id is a fatal input error.
type Catalog struct {
	prices    map[string]PlanDetails
	checkouts map[string]string // checkout plan name -> price id
}

// NewCatalog builds the catalog from the five known price identifiers.
func NewCatalog(yearlyID, monthlyID, tenKID, oneMID, threeMID string) *Catalog {
	c := &Catalog{
		prices:    make(map[string]PlanDetails, 5),
		checkouts: make(map[string]string, 5),
	}

	add := func(priceID, checkoutPlan string, details PlanDetails) {
		if priceID == "" {
			return
		}
		c.prices[priceID] = details
		c.checkouts[checkoutPlan] = priceID
	}

	add(yearlyID, CheckoutPlanYearly, PlanDetails{
		Kind:         PlanKindSubscription,
		PlanType:     models.PlanTypeYearly,
		DurationDays: 365,
		Characters:   1500000,
	})
	add(monthlyID, CheckoutPlanMonthly, PlanDetails{
		Kind:         PlanKindSubscription,
		PlanType:     models.PlanTypeMonthly,
		DurationDays: 30,
		Characters:   100000,
	})
	add(tenKID, CheckoutPlanTenK, PlanDetails{Kind: PlanKindOneTime, Characters: 10000})
	add(oneMID, CheckoutPlanOneM, PlanDetails{Kind: PlanKindOneTime, Characters: 1000000})
	add(threeMID, CheckoutPlanThreeM, PlanDetails{Kind: PlanKindOneTime, Characters: 3000000})

	return c
}

// NewCatalogFromEnv builds the catalog from the STRIPE_*_PRICE_ID variables.
func NewCatalogFromEnv() *Catalog {
	return NewCatalog(
		env.GetEnv("STRIPE_YEARLY_PRICE_ID", ""),
		env.GetEnv("STRIPE_MONTHLY_PRICE_ID", ""),
		env.GetEnv("STRIPE_10K_PRICE_ID", ""),
		env.GetEnv("STRIPE_1M_PRICE_ID", ""),
		env.GetEnv("STRIPE_3M_PRICE_ID", ""),
	)
}

// Lookup resolves a vendor price id to its plan details.
func (c *Catalog) Lookup(priceID string) (PlanDetails, error) {
	details, ok := c.prices[priceID]
	if !ok {
		return PlanDetails{}, ErrInvalidPriceID
	}
	return details, nil
}

// PriceIDForCheckoutPlan resolves a checkout plan name to its price id.
func (c *Catalog) PriceIDForCheckoutPlan(plan string) (string, bool) {
	id, ok := c.checkouts[plan]
	return id, ok
}

// IsSubscriptionCheckoutPlan reports whether a checkout plan name buys a
// subscription rather than a one-time grant.
func IsSubscriptionCheckoutPlan(plan string) bool {
	return plan == CheckoutPlanYearly || plan == CheckoutPlanMonthly
}
