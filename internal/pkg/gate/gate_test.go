package gate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/voicecanvas/voicecanvas/app/models"
)

type fakePlanRepo struct {
	subs map[string]*models.Subscription
}

func (f *fakePlanRepo) GetOrCreatePlan(uint, time.Time) (*models.Subscription, *models.CharacterQuota, error) {
	panic("not used")
}

func (f *fakePlanRepo) GetSubscriptionByEmail(email string) (*models.Subscription, error) {
	sub, ok := f.subs[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sub, nil
}

func (f *fakePlanRepo) ConsumeCharacters(uint, int64) error { return nil }

func staticGate(limits Limits) *Gate {
	return New(StaticLimitResolver{Limits: limits})
}

func TestAcquireUpToLimit(t *testing.T) {
	g := staticGate(Limits{Anonymous: 1, Authenticated: 3})
	id := UserIdentity("alice@example.com")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, g.Acquire(ctx, id))
	}
	assert.Equal(t, 3, g.InUse(id))

	blocked, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := g.Acquire(blocked, id)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReleaseFreesSlot(t *testing.T) {
	g := staticGate(Limits{Anonymous: 1, Authenticated: 1})
	id := AnonymousIdentity()
	ctx := context.Background()

	require.NoError(t, g.Acquire(ctx, id))
	g.Release(id)
	assert.Equal(t, 0, g.InUse(id))

	require.NoError(t, g.Acquire(ctx, id))
	g.Release(id)
}

func TestAcquireUnblocksOnRelease(t *testing.T) {
	g := staticGate(Limits{Anonymous: 1, Authenticated: 1})
	id := AnonymousIdentity()
	ctx := context.Background()

	require.NoError(t, g.Acquire(ctx, id))

	acquired := make(chan error, 1)
	go func() {
		acquired <- g.Acquire(ctx, id)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire should block while the slot is held")
	case <-time.After(50 * time.Millisecond):
	}

	g.Release(id)

	select {
	case err := <-acquired:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter was not unblocked by release")
	}
	g.Release(id)
}

func TestIdentitiesAreIndependent(t *testing.T) {
	g := staticGate(Limits{Anonymous: 1, Authenticated: 1})
	ctx := context.Background()

	require.NoError(t, g.Acquire(ctx, UserIdentity("alice@example.com")))
	require.NoError(t, g.Acquire(ctx, UserIdentity("bob@example.com")))

	g.Release(UserIdentity("alice@example.com"))
	g.Release(UserIdentity("bob@example.com"))
}

func TestAnonymousCallersShareOneSlotPool(t *testing.T) {
	g := staticGate(Limits{Anonymous: 1, Authenticated: 3})
	ctx := context.Background()

	require.NoError(t, g.Acquire(ctx, AnonymousIdentity()))

	blocked, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := g.Acquire(blocked, AnonymousIdentity())
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	g.Release(AnonymousIdentity())
}

func TestSlotHandoffKeepsLimitEnforced(t *testing.T) {
	g := staticGate(Limits{Anonymous: 1, Authenticated: 1})
	id := UserIdentity("alice@example.com")
	ctx := context.Background()

	require.NoError(t, g.Acquire(ctx, id))

	acquired := make(chan error, 1)
	go func() {
		acquired <- g.Acquire(ctx, id)
	}()

	// Let the second acquire queue up on the slot before the handoff.
	select {
	case <-acquired:
		t.Fatal("second acquire should block while the slot is held")
	case <-time.After(50 * time.Millisecond):
	}

	g.Release(id)

	select {
	case err := <-acquired:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter was not unblocked by release")
	}
	assert.Equal(t, 1, g.InUse(id))

	// The handed-off slot is still the only one; a third acquire must wait.
	blocked, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	err := g.Acquire(blocked, id)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	g.Release(id)
	assert.Equal(t, 0, g.InUse(id))
}

func TestReleaseWithoutAcquireIsNoop(t *testing.T) {
	g := staticGate(DefaultLimits())
	g.Release(UserIdentity("nobody@example.com"))
	assert.Equal(t, 0, g.InUse(UserIdentity("nobody@example.com")))
}

func TestSubscriptionLimitResolver(t *testing.T) {
	now := time.Now()
	repo := &fakePlanRepo{subs: map[string]*models.Subscription{
		"vip@example.com": {
			UserID:   1,
			PlanType: models.PlanTypeYearly,
			EndDate:  now.AddDate(0, 0, 100),
			Status:   models.SubscriptionStatusActive,
		},
		"lapsed@example.com": {
			UserID:   2,
			PlanType: models.PlanTypeMonthly,
			EndDate:  now.AddDate(0, 0, -1),
			Status:   models.SubscriptionStatusActive,
		},
		"canceled@example.com": {
			UserID:   3,
			PlanType: models.PlanTypeYearly,
			EndDate:  now.AddDate(0, 0, 100),
			Status:   models.SubscriptionStatusCanceled,
		},
	}}
	resolver := NewSubscriptionLimitResolver(repo, DefaultLimits())

	assert.Equal(t, 1, resolver.Limit(AnonymousIdentity()))
	assert.Equal(t, 6, resolver.Limit(UserIdentity("vip@example.com")))
	assert.Equal(t, 3, resolver.Limit(UserIdentity("lapsed@example.com")))
	assert.Equal(t, 3, resolver.Limit(UserIdentity("canceled@example.com")))
	assert.Equal(t, 3, resolver.Limit(UserIdentity("newcomer@example.com")), "lookup miss degrades to base limit")
}

func TestLimitChangeAppliesAfterDrain(t *testing.T) {
	repo := &fakePlanRepo{subs: map[string]*models.Subscription{}}
	g := New(NewSubscriptionLimitResolver(repo, Limits{Anonymous: 1, Authenticated: 2, VIP: 4}))
	id := UserIdentity("alice@example.com")
	ctx := context.Background()

	require.NoError(t, g.Acquire(ctx, id))
	require.NoError(t, g.Acquire(ctx, id))
	g.Release(id)
	g.Release(id)

	// Upgrade lands once the previous slots have drained.
	repo.subs["alice@example.com"] = &models.Subscription{
		UserID:   1,
		PlanType: models.PlanTypeYearly,
		EndDate:  time.Now().AddDate(0, 0, 30),
		Status:   models.SubscriptionStatusActive,
	}

	for i := 0; i < 4; i++ {
		require.NoError(t, g.Acquire(ctx, id))
	}
	assert.Equal(t, 4, g.InUse(id))
	for i := 0; i < 4; i++ {
		g.Release(id)
	}
}
