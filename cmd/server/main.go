package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kenyaconnect/storefront/admin"
	"github.com/kenyaconnect/storefront/app"
	"github.com/kenyaconnect/storefront/app/session"
	"github.com/kenyaconnect/storefront/checkout"
	"github.com/kenyaconnect/storefront/config"
	"github.com/kenyaconnect/storefront/models"
	"github.com/kenyaconnect/storefront/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog := models.MustLoadCatalog()
	if cfg.CatalogFile != "" {
		if catalog, err = models.LoadCatalogFile(cfg.CatalogFile); err != nil {
			return err
		}
	}

	kv, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	defer kv.Close()

	confirmer := checkout.NewSimulatedConfirmer(cfg.PaymentPushDelay, cfg.PaymentConfirmDelay)
	pricing := checkout.Pricing{
		ShippingFee:           cfg.ShippingFee,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
	}
	sessions := session.NewRegistry(func(l *zap.Logger) *checkout.Flow {
		return checkout.NewFlow(confirmer,
			checkout.WithPricing(pricing),
			checkout.WithTimeout(cfg.PaymentTimeout),
			checkout.WithLogger(l),
		)
	}, cfg.SessionTTL, logger)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: app.NewRouter(app.Deps{
			Products: models.NewProductsRepository(catalog),
			Sessions: sessions,
			Editor:   admin.NewEditor(kv, logger.Named("admin")),
			Logger:   logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.StoreBackend),
			zap.Int("products", len(catalog.Products())),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	// Leave room for a pending payment confirmation to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.PaymentTimeout+5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
