// Package cart serves the shopping cart and checkout endpoints. Both work on
// the caller's session, identified by the X-Session-ID header or the
// session_id cookie.
package cart

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/kenyaconnect/storefront/app/api"
	"github.com/kenyaconnect/storefront/app/session"
	"github.com/kenyaconnect/storefront/models"
	"github.com/kenyaconnect/storefront/notify"
)

type ProductLookup interface {
	GetByID(id string) (*models.Product, error)
}

type Item struct {
	Product           api.Product `json:"product"`
	Quantity          int         `json:"quantity"`
	Subtotal          int64       `json:"subtotal"`
	FormattedSubtotal string      `json:"formatted_subtotal"`
}

type Response struct {
	SessionID      string          `json:"session_id"`
	Items          []Item          `json:"items"`
	ItemCount      int             `json:"item_count"`
	Total          int64           `json:"total"`
	FormattedTotal string          `json:"formatted_total"`
	Open           bool            `json:"open"`
	Notices        []notify.Notice `json:"notices,omitempty"`
}

type CartHandler struct {
	sessions *session.Registry
	products ProductLookup
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewCartHandler(sessions *session.Registry, products ProductLookup, logger *zap.Logger) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{
		sessions: sessions,
		products: products,
		notifier: notify.NewLogNotifier(logger),
		logger:   logger,
	}
}

func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s := resolveSession(w, r, h.sessions)
	h.respond(w, http.StatusOK, s, nil)
}

func (h *CartHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ProductID string `json:"product_id"`
		Quantity  *int   `json:"quantity"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}
	if input.ProductID == "" {
		api.ErrorResponse(w, http.StatusBadRequest, "Missing product_id")
		return
	}
	if quantity < 1 {
		api.ErrorResponse(w, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}

	product, err := h.products.GetByID(input.ProductID)
	if errors.Is(err, models.ErrProductNotFound) {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	s := resolveSession(w, r, h.sessions)
	ctx, rec := withRecorder(r.Context(), h.notifier)
	s.WithCart(func(c *models.Cart) {
		c.AddQuantity(product, quantity)
	})

	title := fmt.Sprintf("%s added to cart", product.Name)
	if quantity > 1 {
		title = fmt.Sprintf("%dx %s added to cart", quantity, product.Name)
	}
	notify.FromContext(ctx).Notify(notify.Notice{Severity: notify.Success, Title: title, Action: "View Cart"})

	h.respond(w, http.StatusOK, s, rec.Notices())
}

// HandleUpdateItem sets a line's quantity. A quantity below one removes the line.
func (h *CartHandler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Quantity *int `json:"quantity"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if input.Quantity == nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Missing quantity")
		return
	}

	id := r.PathValue("id")
	s := resolveSession(w, r, h.sessions)
	s.WithCart(func(c *models.Cart) {
		c.UpdateQuantity(id, *input.Quantity)
	})
	h.respond(w, http.StatusOK, s, nil)
}

func (h *CartHandler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s := resolveSession(w, r, h.sessions)
	s.WithCart(func(c *models.Cart) {
		c.Remove(id)
	})
	h.respond(w, http.StatusOK, s, nil)
}

func (h *CartHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	s := resolveSession(w, r, h.sessions)
	s.WithCart(func(c *models.Cart) {
		c.Clear()
	})
	h.respond(w, http.StatusOK, s, nil)
}

func (h *CartHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, (*models.Cart).Open)
}

func (h *CartHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, (*models.Cart).Close)
}

func (h *CartHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, (*models.Cart).Toggle)
}

func (h *CartHandler) setVisibility(w http.ResponseWriter, r *http.Request, change func(*models.Cart)) {
	s := resolveSession(w, r, h.sessions)
	s.WithCart(change)
	h.respond(w, http.StatusOK, s, nil)
}

func (h *CartHandler) respond(w http.ResponseWriter, status int, s *session.Session, notices []notify.Notice) {
	var resp Response
	s.WithCart(func(c *models.Cart) {
		resp = newResponse(s.ID, c)
	})
	resp.Notices = notices
	api.OKResponse(w, status, resp)
}

func newResponse(sessionID string, c *models.Cart) Response {
	lines := c.Items()
	items := make([]Item, len(lines))
	for i, li := range lines {
		items[i] = Item{
			Product:           api.NewProduct(li.Product),
			Quantity:          li.Quantity,
			Subtotal:          li.Subtotal(),
			FormattedSubtotal: models.FormatPrice(li.Subtotal()),
		}
	}
	return Response{
		SessionID:      sessionID,
		Items:          items,
		ItemCount:      c.TotalItemCount(),
		Total:          c.TotalPrice(),
		FormattedTotal: models.FormatPrice(c.TotalPrice()),
		Open:           c.IsOpen(),
	}
}
