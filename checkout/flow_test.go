package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenyaconnect/storefront/models"
	"github.com/kenyaconnect/storefront/notify"
)

// --- Mock Confirmer ---

type MockConfirmer struct {
	Err     error
	Block   chan struct{}
	Started chan struct{}

	mu          sync.Mutex
	startOnce   sync.Once
	calls       int
	lastRequest PaymentRequest
}

func (m *MockConfirmer) Confirm(ctx context.Context, req PaymentRequest) (*PaymentReceipt, error) {
	m.mu.Lock()
	m.calls++
	m.lastRequest = req
	m.mu.Unlock()

	if m.Started != nil {
		m.startOnce.Do(func() { close(m.Started) })
	}
	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &PaymentReceipt{Reference: req.Reference, ConfirmedAt: time.Now()}, nil
}

func (m *MockConfirmer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Helpers ---

func validForm() Form {
	return Form{
		FirstName: "Wanjiru",
		LastName:  "Kamau",
		Email:     "wanjiru@example.com",
		Phone:     "0712345678",
		Address:   "123 Main Street",
		City:      "Nairobi",
		County:    "Nairobi County",
	}
}

func cartWith(price int64, qty int) *models.Cart {
	c := models.NewCart()
	c.AddQuantity(&models.Product{ID: "5", Name: "Kenya AA Coffee - 500g", Price: price}, qty)
	return c
}

var fixedNow = time.UnixMilli(1718000123456)

// --- Tests ---

func TestQuote(t *testing.T) {
	testCases := []struct {
		subtotal         int64
		expectedShipping int64
	}{
		{0, 300},
		{4999, 300},
		{5000, 0},
		{12000, 0},
	}

	for _, tc := range testCases {
		s := DefaultPricing.Quote(tc.subtotal)
		assert.Equal(t, tc.expectedShipping, s.Shipping, "subtotal %d", tc.subtotal)
		assert.Equal(t, tc.subtotal+tc.expectedShipping, s.Total)
		assert.Equal(t, tc.expectedShipping == 0, s.FreeShipping)
	}
}

func TestSubmitSuccess(t *testing.T) {
	confirmer := &MockConfirmer{}
	flow := NewFlow(confirmer, WithClock(func() time.Time { return fixedNow }))
	var states []State
	flow.Subscribe(func(s State) { states = append(states, s) })

	var rec notify.Recorder
	ctx := notify.WithNotifier(context.Background(), &rec)
	cart := cartWith(1500, 3)

	order, err := flow.Submit(ctx, cart, validForm())

	require.NoError(t, err)
	assert.Equal(t, "DK00123456", order.ID)
	assert.Equal(t, int64(4500), order.Subtotal)
	assert.Equal(t, int64(300), order.Shipping)
	assert.Equal(t, int64(4800), order.Total)
	assert.Equal(t, "254712345678", order.Customer.Phone)
	assert.Equal(t, MethodMpesa, order.PaymentMethod)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, 3, order.Lines[0].Quantity)

	assert.Equal(t, 0, cart.TotalItemCount(), "Cart should be cleared after checkout")
	assert.Equal(t, Completed, flow.State())
	assert.Equal(t, []State{Validating, AwaitingPaymentConfirmation, Completed}, states)

	assert.Equal(t, int64(4800), confirmer.lastRequest.Amount)
	assert.Equal(t, "254712345678", confirmer.lastRequest.Phone)
	assert.Equal(t, order.PaymentReference, confirmer.lastRequest.Reference)

	notices := rec.Notices()
	require.NotEmpty(t, notices)
	assert.Equal(t, "Order placed successfully!", notices[len(notices)-1].Title)
}

func TestSubmitFreeShipping(t *testing.T) {
	flow := NewFlow(&MockConfirmer{})

	order, err := flow.Submit(context.Background(), cartWith(2500, 2), validForm())

	require.NoError(t, err)
	assert.Equal(t, int64(0), order.Shipping)
	assert.Equal(t, int64(5000), order.Total)
}

func TestSubmitValidationErrors(t *testing.T) {
	testCases := []struct {
		name          string
		mutate        func(f *Form)
		emptyCart     bool
		expectedField string
	}{
		{name: "Missing first name", mutate: func(f *Form) { f.FirstName = "" }, expectedField: "form"},
		{name: "Blank email", mutate: func(f *Form) { f.Email = "   " }, expectedField: "form"},
		{name: "Missing phone", mutate: func(f *Form) { f.Phone = "" }, expectedField: "form"},
		{name: "Short phone", mutate: func(f *Form) { f.Phone = "07123" }, expectedField: "phone"},
		{name: "Too long after prefixing", mutate: func(f *Form) { f.Phone = "+1 202 555 0143" }, expectedField: "phone"},
		{name: "Card is disabled", mutate: func(f *Form) { f.PaymentMethod = MethodCard }, expectedField: "payment_method"},
		{name: "Unknown method", mutate: func(f *Form) { f.PaymentMethod = "paypal" }, expectedField: "payment_method"},
		{name: "Empty cart", mutate: func(f *Form) {}, emptyCart: true, expectedField: "cart"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			confirmer := &MockConfirmer{}
			flow := NewFlow(confirmer)
			var rec notify.Recorder
			ctx := notify.WithNotifier(context.Background(), &rec)

			cart := cartWith(1500, 2)
			if tc.emptyCart {
				cart = models.NewCart()
			}
			form := validForm()
			tc.mutate(&form)

			order, err := flow.Submit(ctx, cart, form)

			assert.Nil(t, order)
			assert.ErrorIs(t, err, ErrValidation)
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tc.expectedField, vErr.Field)
			assert.Equal(t, Idle, flow.State())
			assert.Equal(t, 0, confirmer.Calls(), "Confirmer must not be called on invalid input")
			if !tc.emptyCart {
				assert.Equal(t, 2, cart.TotalItemCount(), "Cart must be untouched")
			}
			notices := rec.Notices()
			require.Len(t, notices, 1)
			assert.Equal(t, notify.Error, notices[0].Severity)
		})
	}
}

func TestSubmitPaymentDeclinedKeepsCart(t *testing.T) {
	flow := NewFlow(&MockConfirmer{Err: ErrPaymentDeclined})
	cart := cartWith(1500, 1)

	_, err := flow.Submit(context.Background(), cart, validForm())

	assert.ErrorIs(t, err, ErrPaymentDeclined)
	assert.Equal(t, Idle, flow.State())
	assert.Equal(t, 1, cart.TotalItemCount())
}

func TestSubmitPaymentTimeout(t *testing.T) {
	confirmer := &MockConfirmer{Block: make(chan struct{})}
	flow := NewFlow(confirmer, WithTimeout(20*time.Millisecond))
	cart := cartWith(1500, 1)

	_, err := flow.Submit(context.Background(), cart, validForm())

	assert.ErrorIs(t, err, ErrPaymentTimeout)
	assert.Equal(t, Idle, flow.State())
	assert.Equal(t, 1, cart.TotalItemCount())
}

func TestSubmitWhileAwaitingConfirmation(t *testing.T) {
	confirmer := &MockConfirmer{Block: make(chan struct{}), Started: make(chan struct{})}
	flow := NewFlow(confirmer)

	done := make(chan error, 1)
	go func() {
		_, err := flow.Submit(context.Background(), cartWith(1500, 1), validForm())
		done <- err
	}()

	<-confirmer.Started
	assert.Equal(t, AwaitingPaymentConfirmation, flow.State())

	_, err := flow.Submit(context.Background(), cartWith(900, 1), validForm())
	assert.ErrorIs(t, err, ErrCheckoutInProgress)

	close(confirmer.Block)
	require.NoError(t, <-done)
	assert.Equal(t, Completed, flow.State())

	_, err = flow.Submit(context.Background(), cartWith(900, 1), validForm())
	assert.NoError(t, err, "A completed flow accepts a new checkout")
	assert.Equal(t, 2, confirmer.Calls())
}

func TestSimulatedConfirmer(t *testing.T) {
	s := NewSimulatedConfirmer(time.Millisecond, time.Millisecond)
	var rec notify.Recorder
	ctx := notify.WithNotifier(context.Background(), &rec)

	receipt, err := s.Confirm(ctx, PaymentRequest{Reference: "ref-1", Method: MethodMpesa, Amount: 4800})

	require.NoError(t, err)
	assert.Equal(t, "ref-1", receipt.Reference)
	require.Len(t, rec.Notices(), 1)
	assert.Equal(t, "M-Pesa payment request sent!", rec.Notices()[0].Title)
}

func TestSimulatedConfirmerHonoursDeadline(t *testing.T) {
	s := NewSimulatedConfirmer(time.Hour, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Confirm(ctx, PaymentRequest{Method: MethodMpesa})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSubmitWithSimulatedConfirmer(t *testing.T) {
	flow := NewFlow(NewSimulatedConfirmer(0, 0))
	var rec notify.Recorder
	ctx := notify.WithNotifier(context.Background(), &rec)

	order, err := flow.Submit(ctx, cartWith(1500, 3), validForm())

	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	titles := []string{}
	for _, n := range rec.Notices() {
		titles = append(titles, n.Title)
	}
	assert.Equal(t, []string{"M-Pesa payment request sent!", "Order placed successfully!"}, titles)
}
