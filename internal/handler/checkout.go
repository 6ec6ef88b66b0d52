package handler

import (
	"errors"
	"net/http"

	"fitfuzz-storefront/internal/checkout"
	"fitfuzz-storefront/internal/utils"
)

type paymentRequest struct {
	PaymentMethod string `json:"payment_method" validate:"omitempty,oneof=cod card"`
}

// GetCheckout opens or refreshes the checkout summary.
func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	summary, err := session(r).Checkout.Begin(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}

// RefreshCheckoutLocation reloads the latest saved location from the
// backend.
func (h *Handler) RefreshCheckoutLocation(w http.ResponseWriter, r *http.Request) {
	o := session(r).Checkout
	if _, err := o.ResolveLocation(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o.Summary())
}

func (h *Handler) ProceedToPayment(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePayment(w, r)
	if !ok {
		return
	}

	o := session(r).Checkout
	if err := o.ProceedToPayment(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	if req.PaymentMethod != "" {
		if err := o.SetPaymentMethod(checkout.PaymentMethod(req.PaymentMethod)); err != nil {
			writeError(w, r, err)
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, o.Summary())
}

func (h *Handler) CheckoutBack(w http.ResponseWriter, r *http.Request) {
	o := session(r).Checkout
	if err := o.Back(); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o.Summary())
}

// SubmitCheckout places the order. A failed attempt keeps the checkout at
// the error step so the same request can be retried.
func (h *Handler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePayment(w, r)
	if !ok {
		return
	}

	o := session(r).Checkout
	if req.PaymentMethod != "" {
		if err := o.SetPaymentMethod(checkout.PaymentMethod(req.PaymentMethod)); err != nil {
			writeError(w, r, err)
			return
		}
	}

	result, err := o.Submit(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"tracking_id": result.TrackingID,
		"checkout":    o.Summary(),
	})
}

// decodePayment accepts an empty body; the payment method is optional.
func decodePayment(w http.ResponseWriter, r *http.Request) (paymentRequest, bool) {
	var req paymentRequest
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, utils.ErrEmptyBody) {
		writeDecodeError(w, err)
		return req, false
	}
	return req, true
}
