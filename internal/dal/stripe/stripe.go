package stripe

import (
	"context"
	"os"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/paymentintent"
	"github.com/stripe/stripe-go/v78/paymentmethod"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/feastly/order-svc/internal/service/models/currency"
	"github.com/feastly/order-svc/internal/service/models/order"
)

// MetadataOrderIDKey is the payment-intent metadata key carrying the
// public order identifier, used to correlate webhook events back to
// the order record.
const MetadataOrderIDKey = "orderId"

// Intent is the subset of a processor-side payment intent the service
// layer needs.
type Intent struct {
	ID           string
	ClientSecret string
}

// CardDetails are the raw card fields submitted by the checkout client.
type CardDetails struct {
	Number   string `json:"number"`
	ExpMonth int64  `json:"expMonth"`
	ExpYear  int64  `json:"expYear"`
	CVC      string `json:"cvc"`
}

// Gateway talks to the payment processor. It holds the webhook signing
// secret; the API key is installed process-wide at construction.
type Gateway struct {
	webhookSecret string
}

// MustNewGateway creates a new Gateway from environment configuration.
func MustNewGateway() *Gateway {
	key := os.Getenv("STRIPE_SECRET_KEY")
	if key == "" {
		panic("STRIPE_SECRET_KEY is not set")
	}
	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		panic("STRIPE_WEBHOOK_SECRET is not set")
	}

	stripe.Key = key

	return &Gateway{webhookSecret: secret}
}

// CreateIntent creates a payment intent for the given minor-unit amount,
// tagged with the order identifier as metadata. Nothing is persisted
// locally.
func (g *Gateway) CreateIntent(
	ctx context.Context,
	amount int64,
	cur currency.Currency,
	orderID string,
) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(cur.String()),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	params.AddMetadata(MetadataOrderIDKey, orderID)

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}

	return &Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// ConfirmIntent attaches a card payment method with the delivery contact
// as billing details and confirms the intent. A processor-side decline
// comes back as an error.
func (g *Gateway) ConfirmIntent(
	ctx context.Context,
	intentID string,
	card CardDetails,
	billing order.DeliveryInfo,
) error {
	pmParams := &stripe.PaymentMethodParams{
		Type: stripe.String(string(stripe.PaymentMethodTypeCard)),
		Card: &stripe.PaymentMethodCardParams{
			Number:   stripe.String(card.Number),
			ExpMonth: stripe.Int64(card.ExpMonth),
			ExpYear:  stripe.Int64(card.ExpYear),
			CVC:      stripe.String(card.CVC),
		},
		BillingDetails: &stripe.PaymentMethodBillingDetailsParams{
			Name:  stripe.String(billing.Name),
			Email: stripe.String(billing.Email),
			Phone: stripe.String(billing.Phone),
			Address: &stripe.AddressParams{
				Line1:      stripe.String(billing.Address),
				City:       stripe.String(billing.City),
				PostalCode: stripe.String(billing.PostalCode),
			},
		},
	}
	pmParams.Context = ctx

	pm, err := paymentmethod.New(pmParams)
	if err != nil {
		return err
	}

	confirmParams := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(pm.ID),
	}
	confirmParams.Context = ctx

	_, err = paymentintent.Confirm(intentID, confirmParams)

	return err
}

// VerifyWebhook checks the event signature against the signing secret
// and returns the parsed event. Any field of the payload is only
// trusted after this call succeeds.
func (g *Gateway) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
}
