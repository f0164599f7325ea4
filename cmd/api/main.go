package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront-cart/internal/config"
	"storefront-cart/internal/db"
	"storefront-cart/internal/domain"
	"storefront-cart/internal/httpserver"
	"storefront-cart/internal/repository/catalog"
	couponrepo "storefront-cart/internal/repository/coupon"
	cartsvc "storefront-cart/internal/service/cart"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	currency, err := domain.NormalizeCurrency(cfg.DefaultCurrency)
	if err != nil {
		logger.Fatalf("invalid DEFAULT_CURRENCY %q: %v", cfg.DefaultCurrency, err)
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	catalogRepo := catalog.NewPostgres(dbpool, logger)
	couponRepo := couponrepo.NewPostgres(dbpool, logger)
	cartService := cartsvc.New(cartsvc.Deps{
		Catalog:         catalogRepo,
		Coupons:         couponRepo,
		Logger:          logger,
		CheckoutURL:     cfg.CheckoutURL,
		DefaultCurrency: currency,
	})

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc: cartService,
		Cookies: httpserver.CookieConfig{
			CartName: cfg.CartCookie,
			IDName:   cfg.CartIDCookie,
			MaxAge:   cfg.CookieMaxAge,
			Secure:   cfg.CookieSecure,
		},
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
