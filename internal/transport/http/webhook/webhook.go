package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/feastly/order-svc/internal/service/services/paymentsvc"
	"github.com/feastly/order-svc/internal/transport/http/respond"
)

type service interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type webhookResponse struct {
	Success bool `json:"success"`
}

// HandlePayment handles a payment processor webhook. The raw body is
// read before any decoding because the signature covers the exact
// bytes on the wire.
func HandlePayment(w http.ResponseWriter, r *http.Request, service service) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Failed to read request body", err)
		slog.Error("Error reading webhook body", "error", err)

		return
	}

	signature := r.Header.Get("Stripe-Signature")

	if err := service.HandleWebhook(r.Context(), payload, signature); err != nil {
		if errors.Is(err, paymentsvc.ErrInvalidSignature) {
			respond.Error(w, http.StatusBadRequest, "Invalid webhook signature", err)
			slog.Warn("Rejected webhook with invalid signature")

			return
		}
		respond.Error(w, http.StatusInternalServerError, "Failed to process webhook", err)
		slog.Error("Error processing webhook", "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, webhookResponse{Success: true})
}
