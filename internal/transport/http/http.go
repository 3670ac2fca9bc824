package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"

	stripedal "github.com/feastly/order-svc/internal/dal/stripe"
	"github.com/feastly/order-svc/internal/service/models/currency"
	"github.com/feastly/order-svc/internal/service/models/order"
	"github.com/feastly/order-svc/internal/service/services/checkoutsvc"
	"github.com/feastly/order-svc/internal/service/services/ordersvc"
	checkouthandler "github.com/feastly/order-svc/internal/transport/http/checkout"
	createorder "github.com/feastly/order-svc/internal/transport/http/create_order"
	getorder "github.com/feastly/order-svc/internal/transport/http/get_order"
	listorders "github.com/feastly/order-svc/internal/transport/http/list_orders"
	"github.com/feastly/order-svc/internal/transport/http/middleware/auth"
	patchorder "github.com/feastly/order-svc/internal/transport/http/patch_order"
	paymentintent "github.com/feastly/order-svc/internal/transport/http/payment_intent"
	"github.com/feastly/order-svc/internal/transport/http/webhook"
	"github.com/feastly/order-svc/pkg/http/middleware/trace"
	"github.com/feastly/order-svc/pkg/logger"
)

type orderService interface {
	CreateOrder(ctx context.Context, model ordersvc.CreateOrderModel) (*order.Order, error)
	GetOrder(ctx context.Context, orderID string) (*order.Order, error)
	ListOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	PatchOrder(ctx context.Context, orderID string, update order.UpdateOrderModel, source string) (*order.Order, error)
}

type paymentService interface {
	CreateIntent(ctx context.Context, amount int64, orderID string, cur currency.Currency) (*stripedal.Intent, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type checkoutService interface {
	Checkout(ctx context.Context, model checkoutsvc.CheckoutModel) (*checkoutsvc.CheckoutResult, error)
}

type HTTPTransport struct {
	server      *http.Server
	router      *chi.Mux
	orderSvc    orderService
	paymentSvc  paymentService
	checkoutSvc checkoutService
}

func NewHTTPTransport(orderSvc orderService, paymentSvc paymentService, checkoutSvc checkoutService) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:      server,
		router:      router,
		orderSvc:    orderSvc,
		paymentSvc:  paymentSvc,
		checkoutSvc: checkoutSvc,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport. The
// webhook route stays outside the auth middleware: the processor signs
// its requests instead of presenting a bearer token.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.NewAuthMiddleware())

			r.Post("/orders", h.createOrder)
			r.Get("/orders", h.listOrders)
			r.Get("/orders/{orderId}", h.getOrder)
			r.Patch("/orders/{orderId}", h.patchOrder)
			r.Post("/create-payment-intent", h.createPaymentIntent)
			r.Post("/checkout", h.checkout)
		})

		r.Post("/webhooks/payment", h.handlePaymentWebhook)
	})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.orderSvc)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orderSvc)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.orderSvc)
}

func (h *HTTPTransport) patchOrder(w http.ResponseWriter, r *http.Request) {
	patchorder.PatchOrder(w, r, h.orderSvc)
}

func (h *HTTPTransport) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	paymentintent.CreateIntent(w, r, h.paymentSvc)
}

func (h *HTTPTransport) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	webhook.HandlePayment(w, r, h.paymentSvc)
}

func (h *HTTPTransport) checkout(w http.ResponseWriter, r *http.Request) {
	checkouthandler.Checkout(w, r, h.checkoutSvc)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
