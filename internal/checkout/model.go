package checkout

import (
	"fitfuzz-storefront/internal/cart"
	"fitfuzz-storefront/internal/location"

	"github.com/shopspring/decimal"
)

type Step string

const (
	StepSummary    Step = "summary"
	StepPayment    Step = "payment"
	StepSubmitting Step = "submitting"
	StepDone       Step = "done"
	StepError      Step = "error"
)

type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentCard PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentCard
}

// Summary is a snapshot of the checkout. Totals keep full precision; the
// *Display fields are rounded to two places for presentation only.
type Summary struct {
	Step           Step               `json:"step"`
	Items          []cart.LineItem    `json:"items"`
	Location       *location.Location `json:"location"`
	PaymentMethod  PaymentMethod      `json:"payment_method"`
	ItemsTotal     decimal.Decimal    `json:"items_total"`
	DeliveryCharge decimal.Decimal    `json:"delivery_charge"`
	GrandTotal     decimal.Decimal    `json:"grand_total"`
	Submitting     bool               `json:"submitting"`
	LastError      string             `json:"last_error,omitempty"`
	TrackingID     string             `json:"tracking_id,omitempty"`

	ItemsTotalDisplay     string `json:"items_total_display"`
	DeliveryChargeDisplay string `json:"delivery_charge_display"`
	GrandTotalDisplay     string `json:"grand_total_display"`
}

type Result struct {
	TrackingID string `json:"tracking_id"`
}
