package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicecanvas/voicecanvas/app/models"
)

func testCatalog() *Catalog {
	return NewCatalog("price_yearly", "price_monthly", "price_10k", "price_1m", "price_3m")
}

func TestCatalogLookup(t *testing.T) {
	catalog := testCatalog()

	yearly, err := catalog.Lookup("price_yearly")
	require.NoError(t, err)
	assert.Equal(t, PlanKindSubscription, yearly.Kind)
	assert.Equal(t, models.PlanTypeYearly, yearly.PlanType)
	assert.Equal(t, 365, yearly.DurationDays)
	assert.Equal(t, int64(1500000), yearly.Characters)

	monthly, err := catalog.Lookup("price_monthly")
	require.NoError(t, err)
	assert.Equal(t, models.PlanTypeMonthly, monthly.PlanType)
	assert.Equal(t, 30, monthly.DurationDays)
	assert.Equal(t, int64(100000), monthly.Characters)

	oneTime, err := catalog.Lookup("price_3m")
	require.NoError(t, err)
	assert.Equal(t, PlanKindOneTime, oneTime.Kind)
	assert.Equal(t, int64(3000000), oneTime.Characters)
	assert.Equal(t, 0, oneTime.DurationDays)
}

func TestCatalogLookupUnknownPrice(t *testing.T) {
	catalog := testCatalog()

	_, err := catalog.Lookup("price_someone_elses")
	assert.ErrorIs(t, err, ErrInvalidPriceID)
}

func TestCatalogSkipsUnconfiguredPrices(t *testing.T) {
	catalog := NewCatalog("price_yearly", "", "", "", "")

	_, err := catalog.Lookup("price_yearly")
	assert.NoError(t, err)

	_, ok := catalog.PriceIDForCheckoutPlan(CheckoutPlanMonthly)
	assert.False(t, ok)
}

func TestPriceIDForCheckoutPlan(t *testing.T) {
	catalog := testCatalog()

	id, ok := catalog.PriceIDForCheckoutPlan(CheckoutPlanTenK)
	require.True(t, ok)
	assert.Equal(t, "price_10k", id)

	_, ok = catalog.PriceIDForCheckoutPlan("lifetime")
	assert.False(t, ok)
}

func TestIsSubscriptionCheckoutPlan(t *testing.T) {
	assert.True(t, IsSubscriptionCheckoutPlan(CheckoutPlanYearly))
	assert.True(t, IsSubscriptionCheckoutPlan(CheckoutPlanMonthly))
	assert.False(t, IsSubscriptionCheckoutPlan(CheckoutPlanTenK))
	assert.False(t, IsSubscriptionCheckoutPlan(CheckoutPlanOneM))
	assert.False(t, IsSubscriptionCheckoutPlan(CheckoutPlanThreeM))
}
