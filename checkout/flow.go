// Package checkout runs the one-shot checkout: form validation, payment
// confirmation through a PaymentConfirmer, and order creation.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kenyaconnect/storefront/models"
	"github.com/kenyaconnect/storefront/notify"
)

type State string

const (
	Idle                        State = "idle"
	Validating                  State = "validating"
	AwaitingPaymentConfirmation State = "awaiting_payment_confirmation"
	Completed                   State = "completed"
)

// Flow is the checkout state machine for one shopping session.
//
//	Idle -> Validating -> AwaitingPaymentConfirmation -> Completed
//	Validating -> Idle                  (invalid form or empty cart)
//	AwaitingPaymentConfirmation -> Idle (confirmer error; cart kept)
//
// A completed flow may be submitted again for a new order.
type Flow struct {
	confirmer PaymentConfirmer
	pricing   Pricing
	timeout   time.Duration
	now       func() time.Time
	logger    *zap.Logger

	mu          sync.Mutex
	state       State
	subscribers []func(State)
}

type Option func(*Flow)

func WithPricing(p Pricing) Option {
	return func(f *Flow) { f.pricing = p }
}

// WithTimeout bounds how long Submit waits for the confirmer. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(f *Flow) { f.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func NewFlow(confirmer PaymentConfirmer, opts ...Option) *Flow {
	f := &Flow{
		confirmer: confirmer,
		pricing:   DefaultPricing,
		now:       time.Now,
		logger:    zap.NewNop(),
		state:     Idle,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Subscribe registers fn to be called with each new state.
func (f *Flow) Subscribe(fn func(State)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers = append(f.subscribers, fn)
}

// Quote prices a subtotal under the flow's shipping policy.
func (f *Flow) Quote(subtotal int64) Summary {
	return f.pricing.Quote(subtotal)
}

// Submit runs the whole checkout against cart. On success the cart is
// cleared and the order returned. Notices go to notify.FromContext(ctx).
// The caller owns cart and must not mutate it concurrently.
func (f *Flow) Submit(ctx context.Context, cart *models.Cart, form Form) (*models.Order, error) {
	if err := f.begin(); err != nil {
		return nil, err
	}
	notifier := notify.FromContext(ctx)

	phone, err := f.validate(cart, form)
	if err != nil {
		f.logger.Info("checkout validation failed", zap.Error(err))
		notifier.Notify(notify.Notice{Severity: notify.Error, Title: err.Error()})
		f.transition(Idle)
		return nil, err
	}

	summary := f.pricing.Quote(cart.TotalPrice())
	lines := models.SnapshotLines(cart.Items())
	req := PaymentRequest{
		Reference:   uuid.NewString(),
		Method:      form.method(),
		Phone:       phone,
		Amount:      summary.Total,
		Description: fmt.Sprintf("Order of %d item(s)", cart.TotalItemCount()),
	}

	f.transition(AwaitingPaymentConfirmation)
	f.logger.Info("awaiting payment confirmation",
		zap.String("reference", req.Reference),
		zap.String("method", req.Method),
		zap.Int64("amount", req.Amount),
	)

	receipt, err := f.confirm(ctx, req)
	if err != nil {
		f.logger.Warn("payment not confirmed", zap.String("reference", req.Reference), zap.Error(err))
		notifier.Notify(notify.Notice{
			Severity:    notify.Error,
			Title:       "Payment was not completed",
			Description: err.Error(),
		})
		f.transition(Idle)
		return nil, err
	}

	order := &models.Order{
		ID:               models.NewOrderID(f.now()),
		Lines:            lines,
		Subtotal:         summary.Subtotal,
		Shipping:         summary.Shipping,
		Total:            summary.Total,
		Customer:         form.customer(phone),
		PaymentMethod:    req.Method,
		PaymentReference: receipt.Reference,
		PlacedAt:         f.now(),
	}
	cart.Clear()
	f.transition(Completed)

	f.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.Int64("total", order.Total),
	)
	notifier.Notify(notify.Notice{
		Severity:    notify.Success,
		Title:       "Order placed successfully!",
		Description: "You will receive a confirmation email shortly.",
	})
	return order, nil
}

func (f *Flow) begin() error {
	if !f.transitionFrom(Validating, Idle, Completed) {
		return ErrCheckoutInProgress
	}
	return nil
}

func (f *Flow) validate(cart *models.Cart, form Form) (string, error) {
	if cart == nil || cart.Len() == 0 {
		return "", newValidationError("cart", "Your cart is empty")
	}
	return form.Validate()
}

func (f *Flow) confirm(ctx context.Context, req PaymentRequest) (*PaymentReceipt, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	receipt, err := f.confirmer.Confirm(ctx, req)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %v", ErrPaymentTimeout, err)
	}
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, fmt.Errorf("%w: confirmer returned no receipt", ErrPaymentDeclined)
	}
	return receipt, nil
}

func (f *Flow) transition(to State) {
	f.transitionFrom(to)
}

// transitionFrom moves to `to` if the current state is one of from, or
// unconditionally when from is empty. Subscribers run outside the lock.
func (f *Flow) transitionFrom(to State, from ...State) bool {
	f.mu.Lock()
	prev := f.state
	if len(from) > 0 {
		allowed := false
		for _, s := range from {
			if s == prev {
				allowed = true
				break
			}
		}
		if !allowed {
			f.mu.Unlock()
			return false
		}
	}
	f.state = to
	subs := make([]func(State), len(f.subscribers))
	copy(subs, f.subscribers)
	f.mu.Unlock()

	f.logger.Debug("checkout transition", zap.String("from", string(prev)), zap.String("to", string(to)))
	for _, fn := range subs {
		fn(to)
	}
	return true
}
