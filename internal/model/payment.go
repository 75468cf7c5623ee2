package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentMethodStripe = "stripe"
	PaymentStatusPaid   = "paid"
)

// Payment records one settled checkout. appointment_id carries a unique
// constraint, so an appointment can only ever have a single payment.
type Payment struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	Amount        int64     `db:"amount" json:"amount"` // minor units (cents)
	Currency      string    `db:"currency" json:"currency"`
	PaymentDate   time.Time `db:"payment_date" json:"payment_date"`
	PaymentMethod string    `db:"payment_method" json:"payment_method"`
	Status        string    `db:"status" json:"status"`
}

type CheckoutResponse struct {
	RedirectURL string `json:"redirect_url"`
}
