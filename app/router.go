// Package app wires the HTTP handlers into a single instrumented router.
package app

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	storeadmin "github.com/kenyaconnect/storefront/admin"
	"github.com/kenyaconnect/storefront/app/admin"
	"github.com/kenyaconnect/storefront/app/api"
	"github.com/kenyaconnect/storefront/app/cart"
	"github.com/kenyaconnect/storefront/app/catalog"
	"github.com/kenyaconnect/storefront/app/categories"
	"github.com/kenyaconnect/storefront/app/session"
	"github.com/kenyaconnect/storefront/models"
)

const ServiceName = "storefront"

type Deps struct {
	Products *models.ProductsRepository
	Sessions *session.Registry
	Editor   *storeadmin.Editor
	Logger   *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	catalogHandler := catalog.NewCatalogHandler(d.Products)
	categoryHandler := categories.NewCategoryHandler(d.Products)
	cartHandler := cart.NewCartHandler(d.Sessions, d.Products, logger)
	checkoutHandler := cart.NewCheckoutHandler(d.Sessions, logger)
	adminHandler := admin.NewAdminHandler(d.Editor, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		api.OKResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /catalog", catalogHandler.HandleGet)
	mux.HandleFunc("GET /catalog/featured", catalogHandler.HandleGetFeatured)
	mux.HandleFunc("GET /catalog/{id}", catalogHandler.HandleGetProduct)

	mux.HandleFunc("GET /categories", categoryHandler.HandleGetAll)
	mux.HandleFunc("GET /categories/{id}", categoryHandler.HandleGet)

	mux.HandleFunc("GET /cart", cartHandler.HandleGet)
	mux.HandleFunc("DELETE /cart", cartHandler.HandleClear)
	mux.HandleFunc("POST /cart/items", cartHandler.HandleAddItem)
	mux.HandleFunc("PUT /cart/items/{id}", cartHandler.HandleUpdateItem)
	mux.HandleFunc("DELETE /cart/items/{id}", cartHandler.HandleRemoveItem)
	mux.HandleFunc("POST /cart/open", cartHandler.HandleOpen)
	mux.HandleFunc("POST /cart/close", cartHandler.HandleClose)
	mux.HandleFunc("POST /cart/toggle", cartHandler.HandleToggle)

	mux.HandleFunc("POST /checkout/quote", checkoutHandler.HandleQuote)
	mux.HandleFunc("POST /checkout", checkoutHandler.HandleSubmit)

	mux.HandleFunc("GET /admin/products", adminHandler.HandleList)
	mux.HandleFunc("POST /admin/products", adminHandler.HandleCreate)
	mux.HandleFunc("GET /admin/products/{id}", adminHandler.HandleGet)
	mux.HandleFunc("PUT /admin/products/{id}", adminHandler.HandleUpdate)
	mux.HandleFunc("DELETE /admin/products/{id}", adminHandler.HandleDelete)

	return otelhttp.NewHandler(logRequests(mux, logger), ServiceName,
		otelhttp.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/health" }),
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return "HTTP " + r.Method + " " + r.URL.Path
		}),
	)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
