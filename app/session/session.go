// Package session keeps the per-shopper state the HTTP layer works on: one
// cart and one checkout flow per session id.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kenyaconnect/storefront/checkout"
	"github.com/kenyaconnect/storefront/models"
)

// Session owns a cart and its checkout flow. All cart access goes through
// the session lock.
type Session struct {
	ID string

	mu          sync.Mutex
	cart        *models.Cart
	flow        *checkout.Flow
	lastSeen    time.Time
	checkingOut atomic.Bool
}

// WithCart runs fn with exclusive access to the cart.
func (s *Session) WithCart(fn func(c *models.Cart)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.cart)
}

// Quote prices the current cart.
func (s *Session) Quote() checkout.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.Quote(s.cart.TotalPrice())
}

// Checkout submits a snapshot of the cart. The cart stays usable while
// payment is pending; a second checkout fails fast. On success the ordered
// quantities are taken out of the cart.
func (s *Session) Checkout(ctx context.Context, form checkout.Form) (*models.Order, error) {
	if !s.checkingOut.CompareAndSwap(false, true) {
		return nil, checkout.ErrCheckoutInProgress
	}
	defer s.checkingOut.Store(false)

	s.mu.Lock()
	snapshot := s.cart.Clone()
	s.mu.Unlock()

	order, err := s.flow.Submit(ctx, snapshot, form)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	removeOrdered(s.cart, order.Lines)
	return order, nil
}

// removeOrdered subtracts each order line from the cart. Units added while
// payment was pending stay.
func removeOrdered(c *models.Cart, lines []models.OrderLine) {
	for _, line := range lines {
		for _, item := range c.Items() {
			if item.Product.ID == line.ProductID {
				c.UpdateQuantity(line.ProductID, item.Quantity-line.Quantity)
				break
			}
		}
	}
}

func (s *Session) CheckoutState() checkout.State {
	return s.flow.State()
}

// FlowFactory builds the checkout flow for a new session.
type FlowFactory func(logger *zap.Logger) *checkout.Flow

// Registry maps session ids to sessions. Sessions idle longer than the TTL
// are dropped on the next access to the registry.
type Registry struct {
	newFlow FlowFactory
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry. A zero ttl keeps sessions forever.
func NewRegistry(newFlow FlowFactory, ttl time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		newFlow:  newFlow,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the live session for id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()
	s, ok := r.sessions[id]
	if ok {
		s.lastSeen = r.now()
	}
	return s, ok
}

// GetOrCreate returns the session for id, creating it when missing. Ids that
// are not UUIDs are replaced with a fresh one.
func (r *Registry) GetOrCreate(id string) (s *Session, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()
	if s, ok := r.sessions[id]; ok {
		s.lastSeen = r.now()
		return s, false
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	logger := r.logger.With(zap.String("session_id", id))
	s = &Session{
		ID:       id,
		cart:     models.NewCart(),
		flow:     r.newFlow(logger),
		lastSeen: r.now(),
	}
	s.cart.Subscribe(func(ev models.CartEvent) {
		logger.Debug("cart changed",
			zap.String("kind", string(ev.Kind)),
			zap.String("product_id", ev.ProductID),
			zap.Int("item_count", ev.ItemCount),
			zap.Int64("total", ev.Total),
		)
	})
	r.sessions[id] = s
	logger.Info("session created")
	return s, true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// sweepLocked drops expired sessions. Sessions with a checkout in flight are kept.
func (r *Registry) sweepLocked() {
	if r.ttl <= 0 {
		return
	}
	cutoff := r.now().Add(-r.ttl)
	for id, s := range r.sessions {
		if !s.lastSeen.Before(cutoff) {
			continue
		}
		if s.checkingOut.Load() {
			continue
		}
		delete(r.sessions, id)
		r.logger.Debug("session expired", zap.String("session_id", id))
	}
}
