// Package checkout drives the summary → payment → submit flow for one
// storefront session.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fitfuzz-storefront/internal/backend"
	"fitfuzz-storefront/internal/cart"
	"fitfuzz-storefront/internal/location"
	"fitfuzz-storefront/internal/logger"
	"fitfuzz-storefront/internal/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Cart is the part of the cart store the checkout reads and settles.
type Cart interface {
	UserID() int64
	Items() []cart.LineItem
	RemoveOrdered(ctx context.Context, userID int64, ordered []cart.LineItem)
}

type Locator interface {
	Latest(ctx context.Context, userID int64) (*location.Location, error)
}

type Placer interface {
	Checkout(ctx context.Context, req backend.CheckoutRequest, idempotencyKey string) (*backend.CheckoutResponse, error)
}

type Orchestrator struct {
	mu        sync.Mutex
	cart      Cart
	locations Locator
	placer    Placer
	newKey    func() string

	step       Step
	location   *location.Location
	method     PaymentMethod
	busy       bool
	gen        uint64
	lastError  string
	trackingID string
	idemKey    string
}

func NewOrchestrator(c Cart, locations Locator, placer Placer) *Orchestrator {
	return &Orchestrator{
		cart:      c,
		locations: locations,
		placer:    placer,
		newKey:    uuid.NewString,
		step:      StepSummary,
		method:    PaymentCOD,
	}
}

// Begin enters the summary step. An empty cart returns ErrEmptyCart and
// leaves the flow idle. The latest saved location is fetched when none is
// held yet; a failed fetch only leaves the location unset.
func (o *Orchestrator) Begin(ctx context.Context) (Summary, error) {
	if o.cart.UserID() == 0 {
		return Summary{}, ErrNotAuthenticated
	}
	if len(o.cart.Items()) == 0 {
		o.mu.Lock()
		if !o.busy {
			o.step = StepSummary
		}
		o.mu.Unlock()
		return o.Summary(), ErrEmptyCart
	}

	o.mu.Lock()
	if !o.busy && o.step == StepDone {
		o.step = StepSummary
		o.trackingID = ""
	}
	needLocation := o.location == nil
	o.mu.Unlock()

	if needLocation {
		if _, err := o.ResolveLocation(ctx); err != nil {
			logger.FromCtx(ctx).Warn("latest location unavailable",
				zap.String("service", "checkout"),
				zap.String("method", "Begin"),
				zap.Error(err),
			)
		}
	}
	return o.Summary(), nil
}

// Reset drops the location and any finished or failed attempt. It runs when
// the signed-in user changes. A submission still in flight completes for
// its own user but no longer touches this flow.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resetLocked()
}

func (o *Orchestrator) resetLocked() {
	o.gen++
	o.busy = false
	o.step = StepSummary
	o.location = nil
	o.method = PaymentCOD
	o.lastError = ""
	o.trackingID = ""
	o.idemKey = ""
}

// ResolveLocation fetches the user's most recently saved location and makes
// it the delivery location. A user with no saved location gets nil.
func (o *Orchestrator) ResolveLocation(ctx context.Context) (*location.Location, error) {
	userID := o.cart.UserID()
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}

	loc, err := o.locations.Latest(ctx, userID)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.location = loc
	o.mu.Unlock()
	return loc, nil
}

// UseLocation sets the delivery location, typically one just saved.
func (o *Orchestrator) UseLocation(loc *location.Location) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.location = loc
}

func (o *Orchestrator) ProceedToPayment(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.busy {
		return ErrSubmitInFlight
	}
	if len(o.cart.Items()) == 0 {
		return ErrEmptyCart
	}
	if o.location == nil {
		logger.FromCtx(ctx).Info("payment step blocked without location",
			zap.String("service", "checkout"),
		)
		return ErrLocationRequired
	}
	o.step = StepPayment
	o.lastError = ""
	return nil
}

// Back returns from payment, or from a failed submission, to summary.
func (o *Orchestrator) Back() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.busy {
		return ErrSubmitInFlight
	}
	if o.step == StepPayment || o.step == StepError {
		o.step = StepSummary
		o.lastError = ""
	}
	return nil
}

func (o *Orchestrator) SetPaymentMethod(m PaymentMethod) error {
	if !m.Valid() {
		return ErrInvalidPaymentMethod
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy {
		return ErrSubmitInFlight
	}
	o.method = m
	return nil
}

func (o *Orchestrator) Summary() Summary {
	items := o.cart.Items()

	o.mu.Lock()
	defer o.mu.Unlock()

	itemsTotal := decimal.Zero
	for _, it := range items {
		itemsTotal = itemsTotal.Add(it.Subtotal())
	}
	charge := decimal.Zero
	var loc *location.Location
	if o.location != nil {
		l := *o.location
		loc = &l
		charge = l.DeliveryCharge
	}
	grand := itemsTotal.Add(charge)

	return Summary{
		Step:                  o.step,
		Items:                 items,
		Location:              loc,
		PaymentMethod:         o.method,
		ItemsTotal:            itemsTotal,
		DeliveryCharge:        charge,
		GrandTotal:            grand,
		Submitting:            o.busy,
		LastError:             o.lastError,
		TrackingID:            o.trackingID,
		ItemsTotalDisplay:     itemsTotal.StringFixed(2),
		DeliveryChargeDisplay: charge.StringFixed(2),
		GrandTotalDisplay:     grand.StringFixed(2),
	}
}

// Submit places the order. Validation failures return before any backend
// call. On success the submitted quantities are taken off the cart. On failure the flow rests in
// StepError with LastError set and items, location and method kept, so
// Submit can simply be called again.
func (o *Orchestrator) Submit(ctx context.Context) (Result, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "checkout"),
		zap.String("method", "Submit"),
	)

	userID := o.cart.UserID()
	if userID == 0 {
		return Result{}, ErrNotAuthenticated
	}

	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		metrics.CheckoutSubmissions.WithLabelValues("duplicate").Inc()
		return Result{}, ErrSubmitInFlight
	}
	req, ordered, err := o.buildRequest(userID)
	if err != nil {
		o.mu.Unlock()
		metrics.CheckoutSubmissions.WithLabelValues("rejected").Inc()
		log.Info("checkout rejected", zap.Error(err))
		return Result{}, err
	}
	if o.idemKey == "" {
		o.idemKey = o.newKey()
	}
	key := o.idemKey
	gen := o.gen
	o.busy = true
	o.step = StepSubmitting
	o.lastError = ""
	o.mu.Unlock()

	log.Info("placing order",
		zap.Int64("user_id", userID),
		zap.Int("items", len(req.Items)),
		zap.String("total", req.Total.Decimal().String()),
		zap.String("idempotency_key", key),
	)

	resp, err := o.placer.Checkout(ctx, req, key)

	o.mu.Lock()
	defer o.mu.Unlock()

	// The cart is settled even when the caller has gone away.
	settleCtx := context.WithoutCancel(ctx)

	if gen != o.gen || o.cart.UserID() != userID {
		// The session moved on to another user while the order was in flight.
		if gen == o.gen {
			o.resetLocked()
		}
		if err != nil {
			log.Warn("order placement failed after session change", zap.Error(err))
			return Result{}, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
		}
		o.cart.RemoveOrdered(settleCtx, userID, ordered)
		metrics.CheckoutSubmissions.WithLabelValues("success").Inc()
		log.Info("order placed after session change", zap.String("tracking_id", resp.TrackingID))
		return Result{TrackingID: resp.TrackingID}, nil
	}
	o.busy = false

	if err != nil {
		o.step = StepError
		o.lastError = backend.UserMessage(err, FailedOrderMessage)
		metrics.CheckoutSubmissions.WithLabelValues("failed").Inc()
		log.Warn("order placement failed", zap.Error(err))
		return Result{}, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	o.cart.RemoveOrdered(settleCtx, userID, ordered)
	o.step = StepDone
	o.trackingID = resp.TrackingID
	o.idemKey = ""
	metrics.CheckoutSubmissions.WithLabelValues("success").Inc()
	log.Info("order placed", zap.String("tracking_id", resp.TrackingID))
	return Result{TrackingID: resp.TrackingID}, nil
}

// buildRequest validates the session and reduces each line to the fields
// the backend takes. It also returns the lines the request was built from.
// Callers hold o.mu.
func (o *Orchestrator) buildRequest(userID int64) (backend.CheckoutRequest, []cart.LineItem, error) {
	items := o.cart.Items()
	if len(items) == 0 {
		return backend.CheckoutRequest{}, nil, ErrEmptyCart
	}
	if o.location == nil {
		return backend.CheckoutRequest{}, nil, ErrLocationRequired
	}
	if o.step != StepPayment && o.step != StepError {
		return backend.CheckoutRequest{}, nil, ErrWrongStep
	}

	var incomplete, invalid []string
	for _, it := range items {
		if !it.Variant.Complete() {
			incomplete = append(incomplete, it.Name)
		}
		if !it.Navigable() {
			invalid = append(invalid, it.Name)
		}
	}
	if len(incomplete) > 0 {
		return backend.CheckoutRequest{}, nil, fmt.Errorf("%w: %s", ErrIncompleteVariant, strings.Join(incomplete, ", "))
	}
	if len(invalid) > 0 {
		return backend.CheckoutRequest{}, nil, fmt.Errorf("%w: %s", ErrInvalidItem, strings.Join(invalid, ", "))
	}

	total := decimal.Zero
	out := make([]backend.CheckoutItem, 0, len(items))
	for _, it := range items {
		total = total.Add(it.Subtotal())
		out = append(out, backend.CheckoutItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     backend.NewAmount(it.Price),
			SellerID:  it.SellerID,
			ColorID:   it.Variant.ColorID,
			SizeID:    it.Variant.SizeID,
		})
	}
	total = total.Add(o.location.DeliveryCharge)

	return backend.CheckoutRequest{
		UserID:        userID,
		LocationID:    o.location.ID,
		Items:         out,
		Total:         backend.NewAmount(total),
		PaymentMethod: string(o.method),
	}, items, nil
}
