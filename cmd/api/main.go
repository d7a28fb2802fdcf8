package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/events"
	"storefront/internal/httpserver"
	"storefront/internal/metrics"
	cartrepo "storefront/internal/repository/cart"
	contactrepo "storefront/internal/repository/contact"
	customerrepo "storefront/internal/repository/customer"
	feedbackrepo "storefront/internal/repository/feedback"
	orderrepo "storefront/internal/repository/order"
	paymentrepo "storefront/internal/repository/payment"
	productrepo "storefront/internal/repository/product"
	sessionrepo "storefront/internal/repository/session"
	supportrepo "storefront/internal/repository/support"
	userrepo "storefront/internal/repository/user"
	accountsvc "storefront/internal/service/account"
	cartsvc "storefront/internal/service/cart"
	contactsvc "storefront/internal/service/contact"
	customersvc "storefront/internal/service/customer"
	dashboardsvc "storefront/internal/service/dashboard"
	feedbacksvc "storefront/internal/service/feedback"
	ordersvc "storefront/internal/service/order"
	paymentsvc "storefront/internal/service/payment"
	productsvc "storefront/internal/service/product"
	supportsvc "storefront/internal/service/support"
)

type trackingPublisher interface {
	ordersvc.Publisher
	Close() error
}

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	if cfg.Session.Secret == "change-me" {
		logger.Printf("warning: SESSION_SECRET is the default value")
	}
	if cfg.Payment.WebhookSecret == "" {
		logger.Printf("warning: PAYMENT_WEBHOOK_SECRET is empty, every webhook will be rejected")
	}

	m := metrics.New()

	var publisher trackingPublisher = events.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := events.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			logger.Fatalf("init kafka: %v", err)
		}
		publisher = kp
	}
	defer publisher.Close()

	userRepo := userrepo.NewPostgres(dbpool, logger)
	sessionRepo := sessionrepo.NewPostgres(dbpool)
	customerRepo := customerrepo.NewPostgres(dbpool, logger)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	paymentRepo := paymentrepo.NewPostgres(dbpool, logger)
	supportRepo := supportrepo.NewPostgres(dbpool, logger)
	feedbackRepo := feedbackrepo.NewPostgres(dbpool, logger)
	contactRepo := contactrepo.NewPostgres(dbpool, logger)

	accountService := accountsvc.New(userRepo, customerRepo, sessionRepo, cfg.Session.Secret, cfg.Session.TTL, logger)
	if n, err := accountService.PurgeExpired(ctx); err != nil {
		logger.Printf("purge expired sessions: %v", err)
	} else if n > 0 {
		logger.Printf("purged %d expired sessions", n)
	}

	orderService := ordersvc.New(orderRepo, cartRepo, productRepo, ordersvc.Options{
		Currency:          cfg.Orders.Currency,
		DeliveryFeeCents:  cfg.Orders.DeliveryFeeCents,
		DefaultLocation:   cfg.Orders.DefaultLocation,
		EstimatedDelivery: cfg.Orders.EstimatedDelivery,
		PageSize:          cfg.Orders.PageSize,
	}, logger)
	gateway := paymentsvc.NewClient(cfg.Payment.BaseURL, cfg.Payment.PublicKey, cfg.Payment.SecretKey, cfg.Payment.Timeout, logger)
	paymentService := paymentsvc.New(paymentRepo, gateway, productRepo, orderService, paymentsvc.Options{
		PublicBaseURL: cfg.Payment.PublicBaseURL,
		WebhookSecret: cfg.Payment.WebhookSecret,
	}, logger)
	paymentService.UseRecorder(m)
	orderService.UseCheckout(paymentService)
	orderService.UsePublisher(publisher)
	orderService.UseRecorder(m)

	dashboardService := dashboardsvc.New(dashboardsvc.Sources{
		Products:  productRepo,
		Customers: customerRepo,
		Orders:    orderRepo,
		Feedback:  feedbackRepo,
		Contacts:  contactRepo,
		Tickets:   supportRepo,
	}, cfg.Orders.LowStockThreshold)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Accounts:    accountService,
		Customers:   customersvc.New(customerRepo, userRepo, orderRepo, cfg.Orders.PageSize),
		Products:    productsvc.New(productRepo, cfg.Orders.PageSize),
		Carts:       cartsvc.New(cartRepo, productRepo),
		Orders:      orderService,
		Payments:    paymentService,
		Dashboard:   dashboardService,
		Support:     supportsvc.New(supportRepo, cfg.Orders.PageSize, logger),
		Feedback:    feedbacksvc.New(feedbackRepo, orderRepo, cfg.Orders.PageSize),
		Contact:     contactsvc.New(contactRepo),
		Metrics:     m,
		StaffSignup: cfg.Session.StaffSignup,
	}, cfg.CORSOrigins)
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
