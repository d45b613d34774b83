package cart

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kenyaconnect/storefront/app/api"
	"github.com/kenyaconnect/storefront/app/session"
	"github.com/kenyaconnect/storefront/checkout"
	"github.com/kenyaconnect/storefront/models"
	"github.com/kenyaconnect/storefront/notify"
)

type QuoteResponse struct {
	checkout.Summary
	FormattedSubtotal string `json:"formatted_subtotal"`
	FormattedShipping string `json:"formatted_shipping"`
	FormattedTotal    string `json:"formatted_total"`
}

type OrderResponse struct {
	Order   *models.Order   `json:"order"`
	Notices []notify.Notice `json:"notices"`
}

type CheckoutHandler struct {
	sessions *session.Registry
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewCheckoutHandler(sessions *session.Registry, logger *zap.Logger) *CheckoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{
		sessions: sessions,
		notifier: notify.NewLogNotifier(logger),
		logger:   logger,
	}
}

func (h *CheckoutHandler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	s := resolveSession(w, r, h.sessions)
	summary := s.Quote()
	api.OKResponse(w, http.StatusOK, QuoteResponse{
		Summary:           summary,
		FormattedSubtotal: models.FormatPrice(summary.Subtotal),
		FormattedShipping: models.FormatPrice(summary.Shipping),
		FormattedTotal:    models.FormatPrice(summary.Total),
	})
}

// HandleSubmit runs the checkout to completion. The payment wait is not
// tied to the client connection; the flow's own timeout bounds it.
func (h *CheckoutHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var form checkout.Form
	if err := api.DecodeJSON(r, &form); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	s := resolveSession(w, r, h.sessions)
	ctx, rec := withRecorder(context.WithoutCancel(r.Context()), h.notifier)

	order, err := s.Checkout(ctx, form)
	if err != nil {
		var verr *checkout.ValidationError
		switch {
		case errors.As(err, &verr):
			api.ErrorResponse(w, http.StatusUnprocessableEntity, verr.Message, rec.Notices()...)
		case errors.Is(err, checkout.ErrCheckoutInProgress):
			api.ErrorResponse(w, http.StatusConflict, "Checkout already in progress", rec.Notices()...)
		case errors.Is(err, checkout.ErrPaymentTimeout):
			api.ErrorResponse(w, http.StatusGatewayTimeout, "Payment confirmation timed out", rec.Notices()...)
		case errors.Is(err, checkout.ErrPaymentDeclined):
			api.ErrorResponse(w, http.StatusPaymentRequired, "Payment was declined", rec.Notices()...)
		default:
			h.logger.Error("checkout failed", zap.String("session_id", s.ID), zap.Error(err))
			api.ErrorResponse(w, http.StatusBadGateway, "Payment was not completed", rec.Notices()...)
		}
		return
	}

	api.OKResponse(w, http.StatusCreated, OrderResponse{Order: order, Notices: rec.Notices()})
}
