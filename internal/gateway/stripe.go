package gateway

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	"github.com/clinichq/clinic-api/internal/config"
)

// CheckoutGateway creates hosted checkout sessions. Success and cancel are
// delivered back as separate callbacks carrying the appointment id.
type CheckoutGateway interface {
	CreateCheckoutSession(appointmentID uuid.UUID, patientName string, amount int64, successURL, cancelURL string) (string, error)
}

type stripeGateway struct {
	currency string
}

func NewStripeGateway(cfg config.PaymentConfig) CheckoutGateway {
	stripe.Key = cfg.StripeKey

	currency := cfg.Currency
	if currency == "" {
		currency = "usd"
	}
	return &stripeGateway{currency: currency}
}

func (g *stripeGateway) CreateCheckoutSession(appointmentID uuid.UUID, patientName string, amount int64, successURL, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(g.currency),
					UnitAmount: stripe.Int64(amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Appointment for %s", patientName)),
					},
				},
			},
		},
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		ClientReferenceID: stripe.String(appointmentID.String()),
	}

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}
