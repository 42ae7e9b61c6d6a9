package gate

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/voicecanvas/voicecanvas/app/repository"
)

// Identity names one caller of the synthesis endpoint. Unauthenticated
// callers share one identity, authenticated callers are keyed by email.
type Identity struct {
	Key           string
	Email         string
	Authenticated bool
}

// AnonymousIdentity is the shared identity for all unauthenticated traffic.
// Every anonymous caller contends for the same slot pool.
func AnonymousIdentity() Identity {
	return Identity{Key: "anonymous"}
}

// UserIdentity keys a caller by its account email.
func UserIdentity(email string) Identity {
	return Identity{Key: "user:" + email, Email: email, Authenticated: true}
}

// Limits holds the per-tier concurrent synthesis slot counts.
type Limits struct {
	Anonymous     int
	Authenticated int
	VIP           int
}

// DefaultLimits returns the production slot counts.
func DefaultLimits() Limits {
	return Limits{Anonymous: 1, Authenticated: 3, VIP: 6}
}

// LimitResolver decides how many concurrent slots an identity gets. Resolved
// on every acquire so a tier upgrade takes effect without a restart.
type LimitResolver interface {
	Limit(identity Identity) int
}

type subscriptionLimitResolver struct {
	plans  repository.PlanRepository
	limits Limits
	now    func() time.Time
}

// NewSubscriptionLimitResolver grants the VIP slot count to callers with an
// unexpired active subscription and the base counts to everyone else.
func NewSubscriptionLimitResolver(plans repository.PlanRepository, limits Limits) LimitResolver {
	return &subscriptionLimitResolver{plans: plans, limits: limits, now: time.Now}
}

func (r *subscriptionLimitResolver) Limit(identity Identity) int {
	if !identity.Authenticated {
		return r.limits.Anonymous
	}
	sub, err := r.plans.GetSubscriptionByEmail(identity.Email)
	if err != nil {
		// Tier lookup failures degrade to the base limit, never to a block.
		log.Warnf("[Gate] Subscription lookup failed for %s: %v", identity.Email, err)
		return r.limits.Authenticated
	}
	if sub != nil && sub.IsActive(r.now()) {
		return r.limits.VIP
	}
	return r.limits.Authenticated
}

// StaticLimitResolver applies the same Limits without any storage lookup.
type StaticLimitResolver struct {
	Limits Limits
}

func (r StaticLimitResolver) Limit(identity Identity) int {
	if !identity.Authenticated {
		return r.Limits.Anonymous
	}
	return r.Limits.Authenticated
}

type slot struct {
	sem     chan struct{}
	limit   int
	inUse   int
	waiters int
}

// Gate bounds concurrent synthesis per identity with one buffered-channel
// semaphore per active identity. Slots with no holders and no waiters are
// pruned so the map does not grow with every identity ever seen.
type Gate struct {
	mu       sync.Mutex
	slots    map[string]*slot
	resolver LimitResolver
}

// New creates a Gate using the given limit resolver.
func New(resolver LimitResolver) *Gate {
	return &Gate{
		slots:    make(map[string]*slot),
		resolver: resolver,
	}
}

// Acquire blocks until the identity holds a free slot or ctx is done. Every
// successful Acquire must be paired with exactly one Release.
func (g *Gate) Acquire(ctx context.Context, identity Identity) error {
	limit := g.resolver.Limit(identity)
	if limit < 1 {
		limit = 1
	}

	g.mu.Lock()
	s, ok := g.slots[identity.Key]
	if !ok {
		s = &slot{sem: make(chan struct{}, limit), limit: limit}
		g.slots[identity.Key] = s
	} else if s.limit != limit && s.inUse == 0 && s.waiters == 0 {
		// A tier change applies once the identity's slots have drained.
		s.sem = make(chan struct{}, limit)
		s.limit = limit
	}
	// Counted before the blocking send so Release never prunes a slot
	// that still has a sender queued on its channel.
	s.waiters++
	sem := s.sem
	g.mu.Unlock()

	select {
	case sem <- struct{}{}:
		g.mu.Lock()
		s.waiters--
		s.inUse++
		g.mu.Unlock()
		return nil
	case <-ctx.Done():
		g.mu.Lock()
		s.waiters--
		g.pruneLocked(identity.Key, s)
		g.mu.Unlock()
		return ctx.Err()
	}
}

// Release frees one slot for the identity. Releasing an identity that holds
// no slot is a no-op.
func (g *Gate) Release(identity Identity) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.slots[identity.Key]
	if !ok || s.inUse == 0 {
		return
	}
	s.inUse--
	select {
	case <-s.sem:
	default:
	}
	g.pruneLocked(identity.Key, s)
}

// pruneLocked drops the identity's slot once nothing holds or waits on it.
// Callers must hold g.mu.
func (g *Gate) pruneLocked(key string, s *slot) {
	if s.inUse == 0 && s.waiters == 0 && g.slots[key] == s {
		delete(g.slots, key)
	}
}

// InUse reports the number of slots the identity currently holds.
func (g *Gate) InUse(identity Identity) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.slots[identity.Key]; ok {
		return s.inUse
	}
	return 0
}
