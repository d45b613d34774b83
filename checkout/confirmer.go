package checkout

import (
	"context"
	"time"

	"github.com/kenyaconnect/storefront/notify"
)

// PaymentRequest is what the checkout hands to a payment confirmer.
type PaymentRequest struct {
	Reference   string
	Method      string
	Phone       string
	Amount      int64
	Description string
}

// PaymentReceipt is returned once the payer has confirmed.
type PaymentReceipt struct {
	Reference   string
	ConfirmedAt time.Time
}

// PaymentConfirmer submits a payment and blocks until it is confirmed,
// declined (ErrPaymentDeclined) or ctx expires (ErrPaymentTimeout).
type PaymentConfirmer interface {
	Confirm(ctx context.Context, req PaymentRequest) (*PaymentReceipt, error)
}

// SimulatedConfirmer stands in for an M-Pesa STK push. It waits PushDelay
// for the prompt to "reach" the phone, then ConfirmDelay for the PIN entry,
// and always succeeds.
type SimulatedConfirmer struct {
	PushDelay    time.Duration
	ConfirmDelay time.Duration
	Now          func() time.Time
}

func NewSimulatedConfirmer(pushDelay, confirmDelay time.Duration) *SimulatedConfirmer {
	return &SimulatedConfirmer{
		PushDelay:    pushDelay,
		ConfirmDelay: confirmDelay,
		Now:          time.Now,
	}
}

func (s *SimulatedConfirmer) Confirm(ctx context.Context, req PaymentRequest) (*PaymentReceipt, error) {
	if err := wait(ctx, s.PushDelay); err != nil {
		return nil, err
	}

	if req.Method == MethodMpesa {
		notify.FromContext(ctx).Notify(notify.Notice{
			Severity:    notify.Success,
			Title:       "M-Pesa payment request sent!",
			Description: "Please check your phone and enter your M-Pesa PIN to complete payment.",
		})
		if err := wait(ctx, s.ConfirmDelay); err != nil {
			return nil, err
		}
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return &PaymentReceipt{
		Reference:   req.Reference,
		ConfirmedAt: now(),
	}, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
