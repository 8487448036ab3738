package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/atelier-nour/storefront/internal/handlers"
	"github.com/atelier-nour/storefront/internal/payments"
	"github.com/atelier-nour/storefront/internal/platform/config"
	"github.com/atelier-nour/storefront/internal/platform/observability"
	"github.com/atelier-nour/storefront/internal/repositories"
	"github.com/atelier-nour/storefront/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("storefront")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("configuration invalid", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	priceBook, err := repositories.LoadPriceBook(cfg.Pricing.PriceBookPath)
	if err != nil {
		logger.Fatal("failed to load price book", zap.Error(err))
	}
	logger.Info("price book loaded",
		zap.String("path", cfg.Pricing.PriceBookPath),
		zap.Int("products", priceBook.Len()),
	)

	feedRepo, err := repositories.NewFeedRepository(cfg.Catalog.FeedPath)
	if err != nil {
		logger.Fatal("failed to initialise feed repository", zap.Error(err))
	}

	stripeProvider, err := payments.NewStripeProvider(payments.StripeProviderConfig{
		APIKey: cfg.PSP.StripeAPIKey,
		Logger: observability.NewEventLogger(logger.Named("payments")),
		Clock:  time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise stripe payment provider", zap.Error(err))
	}

	checkoutService, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Prices:            priceBook,
		Payments:          stripeProvider,
		ShippingCountries: cfg.Checkout.ShippingCountries,
		Logger:            observability.NewEventLogger(logger.Named("checkout")),
		Clock:             time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise checkout service", zap.Error(err))
	}

	healthRepo, err := repositories.NewHealthRepository([]repositories.DependencyCheck{
		{
			Name: "price_book",
			Check: func(context.Context) error {
				_, err := repositories.LoadPriceBook(cfg.Pricing.PriceBookPath)
				return err
			},
		},
		{
			Name:  "catalog_feed",
			Check: feedRepo.Ping,
		},
	})
	if err != nil {
		logger.Fatal("failed to initialise health repository", zap.Error(err))
	}

	checkoutHandlers, err := handlers.NewCheckoutHandlers(checkoutService)
	if err != nil {
		logger.Fatal("failed to initialise checkout handlers", zap.Error(err))
	}
	productHandlers, err := handlers.NewProductHandlers(feedRepo)
	if err != nil {
		logger.Fatal("failed to initialise product handlers", zap.Error(err))
	}
	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthBuildInfo(buildVersion(), cfg.Environment),
		handlers.WithReadinessCollector(healthRepo),
	)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger.Named("http")),
			observability.RecoveryMiddleware(logger.Named("http")),
			observability.RequestLoggerMiddleware(),
		),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithProductHandlers(productHandlers),
		handlers.WithCheckoutHandlers(checkoutHandlers),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("storefront api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildVersion() string {
	if version := strings.TrimSpace(os.Getenv("STORE_BUILD_VERSION")); version != "" {
		return version
	}
	return "dev"
}
