package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/feastly/order-svc/internal/dal/postgres"
	"github.com/feastly/order-svc/internal/dal/rabbitmq"
	outboxrepo "github.com/feastly/order-svc/internal/dal/repositories/outbox/postgres"
	stripedal "github.com/feastly/order-svc/internal/dal/stripe"
	"github.com/feastly/order-svc/internal/otel"
	"github.com/feastly/order-svc/internal/service/models/outbox"
	"github.com/feastly/order-svc/internal/service/services/checkoutsvc"
	"github.com/feastly/order-svc/internal/service/services/ordersvc"
	"github.com/feastly/order-svc/internal/service/services/paymentsvc"
	httptransport "github.com/feastly/order-svc/internal/transport/http"
	outboxworker "github.com/feastly/order-svc/internal/worker/outbox"
)

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	paymentSvc     *paymentsvc.PaymentService
	checkoutSvc    *checkoutsvc.CheckoutService
	transport      *httptransport.HTTPTransport
	outboxWorker   *outboxworker.Worker
	otelController *otel.OtelController
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()
	mustDeclareOrderTopology(rabbitClient)
	stripeGateway := stripedal.MustNewGateway()

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
	)

	paymentSvc := paymentsvc.MustNewPaymentService(
		paymentsvc.WithGateway(stripeGateway),
		paymentsvc.WithOrderWriter(orderSvc),
	)

	checkoutSvc := checkoutsvc.MustNewCheckoutService(
		checkoutsvc.WithOrderService(orderSvc),
		checkoutsvc.WithIntentService(paymentSvc),
		checkoutsvc.WithCardConfirmer(stripeGateway),
	)

	transport := httptransport.NewHTTPTransport(orderSvc, paymentSvc, checkoutSvc)
	transport.RegisterRoutes()

	outboxWorker := outboxworker.NewWorker(
		outboxrepo.NewOutboxRepository(postgresClient.DB()),
		rabbitClient,
	)

	return &App{
		orderSvc:       orderSvc,
		paymentSvc:     paymentSvc,
		checkoutSvc:    checkoutSvc,
		transport:      transport,
		outboxWorker:   outboxWorker,
		otelController: otelController,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
	}
}

// mustDeclareOrderTopology declares the exchange and queue order events
// are routed through, so outbox messages published by the worker have a
// destination before the first message is relayed.
func mustDeclareOrderTopology(client *rabbitmq.Client) {
	exchange := viper.GetString("rabbitmq.orders_exchange")
	queue := viper.GetString("rabbitmq.orders_queue")

	if err := client.DeclareExchange(rabbitmq.DeclareExchangeConfig{
		Name:    exchange,
		Kind:    "direct",
		Durable: true,
	}); err != nil {
		panic(fmt.Sprintf("Failed to declare orders exchange: %v", err))
	}

	if _, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:    queue,
		Durable: true,
	}); err != nil {
		panic(fmt.Sprintf("Failed to declare orders queue: %v", err))
	}

	for _, routingKey := range []string{outbox.RoutingKeyOrderCreated, outbox.RoutingKeyOrderPaid} {
		if err := client.BindQueue(queue, routingKey, exchange); err != nil {
			panic(fmt.Sprintf("Failed to bind orders queue: %v", err))
		}
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
