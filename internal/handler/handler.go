// Package handler exposes the storefront sessions over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"

	"fitfuzz-storefront/internal/auth"
	"fitfuzz-storefront/internal/backend"
	"fitfuzz-storefront/internal/cart"
	"fitfuzz-storefront/internal/catalog"
	"fitfuzz-storefront/internal/checkout"
	"fitfuzz-storefront/internal/feedback"
	"fitfuzz-storefront/internal/location"
	"fitfuzz-storefront/internal/logger"
	"fitfuzz-storefront/internal/middleware"
	"fitfuzz-storefront/internal/order"
	"fitfuzz-storefront/internal/storefront"
	"fitfuzz-storefront/internal/utils"
	"fitfuzz-storefront/internal/wishlist"

	"go.uber.org/zap"
)

// Authenticator verifies credentials against the backend.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*backend.User, error)
	SellerLogin(ctx context.Context, storeName, email, password string) (*backend.Seller, error)
}

type Handler struct {
	auth      Authenticator
	catalog   catalog.Service
	locations location.Service
	orders    order.Service
	feedback  feedback.Service
}

func NewHandler(
	a Authenticator,
	cat catalog.Service,
	locations location.Service,
	orders order.Service,
	reviews feedback.Service,
) *Handler {
	return &Handler{
		auth:      a,
		catalog:   cat,
		locations: locations,
		orders:    orders,
		feedback:  reviews,
	}
}

// session returns the device session DeviceSession attached. Routes are
// only mounted behind that middleware.
func session(r *http.Request) *storefront.Session {
	s, _ := middleware.SessionFrom(r.Context())
	return s
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps domain errors to HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		writeDecodeError(w, err)
		return
	}

	switch {
	case errors.Is(err, cart.ErrUserNotAuthenticated),
		errors.Is(err, wishlist.ErrLoginRequired),
		errors.Is(err, checkout.ErrNotAuthenticated),
		errors.Is(err, auth.ErrNotAuthenticated),
		errors.Is(err, location.ErrUserRequired),
		errors.Is(err, order.ErrUserRequired),
		errors.Is(err, feedback.ErrUserRequired):
		utils.WriteLoginRequired(w, err.Error())

	case errors.Is(err, auth.ErrSellerRequired):
		utils.WriteJSONError(w, err.Error(), http.StatusForbidden)

	case errors.Is(err, cart.ErrInvalidProductID),
		errors.Is(err, cart.ErrInvalidPrice),
		errors.Is(err, wishlist.ErrInvalidProductID),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrLocationRequired),
		errors.Is(err, checkout.ErrIncompleteVariant),
		errors.Is(err, checkout.ErrInvalidItem),
		errors.Is(err, checkout.ErrInvalidPaymentMethod),
		errors.Is(err, location.ErrMissingField),
		errors.Is(err, location.ErrUnknownVillage),
		errors.Is(err, order.ErrReasonRequired),
		errors.Is(err, catalog.ErrOptionUnavailable),
		errors.Is(err, catalog.ErrInvalidProductID),
		errors.Is(err, feedback.ErrInvalidProductID),
		errors.Is(err, feedback.ErrInvalidReviewID),
		errors.Is(err, feedback.ErrInvalidRating),
		errors.Is(err, feedback.ErrCommentRequired),
		errors.Is(err, feedback.ErrTooManyImages),
		errors.Is(err, auth.ErrInvalidUser),
		errors.Is(err, auth.ErrInvalidSeller):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)

	case errors.Is(err, order.ErrOrderItemNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)

	case errors.Is(err, checkout.ErrWrongStep),
		errors.Is(err, checkout.ErrSubmitInFlight),
		errors.Is(err, order.ErrAlreadyDelivered),
		errors.Is(err, order.ErrNotReturnable),
		errors.Is(err, order.ErrReturnAlreadyRequested):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)

	case errors.Is(err, checkout.ErrSubmitFailed):
		utils.WriteJSONError(w, backend.UserMessage(err, checkout.FailedOrderMessage), http.StatusBadGateway)

	default:
		writeBackendError(w, r, err)
	}
}

func writeBackendError(w http.ResponseWriter, r *http.Request, err error) {
	var be *backend.BackendError
	if errors.As(err, &be) {
		code := http.StatusBadGateway
		if be.Status == http.StatusUnauthorized || be.Status == http.StatusForbidden {
			code = be.Status
		}
		utils.WriteJSONError(w, backend.UserMessage(err, backend.GenericMessage), code)
		return
	}
	if errors.Is(err, catalog.ErrMasterData) {
		utils.WriteJSONError(w, err.Error(), http.StatusBadGateway)
		return
	}

	logger.FromCtx(r.Context()).Error("unhandled error",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	utils.WriteJSONError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
