package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fitfuzz-storefront/internal/backend"
	"fitfuzz-storefront/internal/cart"
	"fitfuzz-storefront/internal/identity"
	"fitfuzz-storefront/internal/location"
	"fitfuzz-storefront/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockLocator struct {
	mock.Mock
}

func (m *MockLocator) Latest(ctx context.Context, userID int64) (*location.Location, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*location.Location), args.Error(1)
}

type MockPlacer struct {
	mock.Mock
}

func (m *MockPlacer) Checkout(ctx context.Context, req backend.CheckoutRequest, key string) (*backend.CheckoutResponse, error) {
	args := m.Called(ctx, req, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.CheckoutResponse), args.Error(1)
}

// --- Helpers ---

const userID = int64(7)

func variant(color, size int64) identity.Variant {
	return identity.Variant{ColorID: &color, SizeID: &size}
}

func loc(charge int64) *location.Location {
	return &location.Location{ID: 3, Village: "Thamel", DeliveryCharge: decimal.NewFromInt(charge)}
}

func newCart(t *testing.T) *cart.Store {
	t.Helper()
	s := cart.NewStore(cart.NewRepository(storage.NewMemory()))
	s.SwitchUser(context.Background(), userID)
	return s
}

func addLine(t *testing.T, c *cart.Store, productID int64, price int64, qty int, v identity.Variant) {
	t.Helper()
	_, err := c.Add(context.Background(), cart.Candidate{
		ProductID: productID,
		Name:      "Item",
		Price:     decimal.NewFromInt(price),
		SellerID:  4,
		Variant:   v,
		Quantity:  qty,
	})
	require.NoError(t, err)
}

type fixture struct {
	cart    *cart.Store
	locator *MockLocator
	placer  *MockPlacer
	orch    *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{cart: newCart(t), locator: new(MockLocator), placer: new(MockPlacer)}
	f.orch = NewOrchestrator(f.cart, f.locator, f.placer)
	n := 0
	f.orch.newKey = func() string {
		n++
		return "key-" + string(rune('0'+n))
	}
	return f
}

// atPayment puts f at the payment step with a 1000 cart and 150 delivery.
func (f *fixture) atPayment(t *testing.T) {
	t.Helper()
	addLine(t, f.cart, 10, 500, 2, variant(1, 2))
	f.locator.On("Latest", mock.Anything, userID).Return(loc(150), nil)

	_, err := f.orch.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, f.orch.ProceedToPayment(context.Background()))
}

// --- Tests ---

func TestOrchestrator_BeginEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Begin(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCart)
	f.locator.AssertNotCalled(t, "Latest", mock.Anything, mock.Anything)
}

func TestOrchestrator_BeginAnonymous(t *testing.T) {
	f := newFixture(t)
	f.cart.SwitchUser(context.Background(), 0)

	_, err := f.orch.Begin(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestOrchestrator_GrandTotal(t *testing.T) {
	f := newFixture(t)
	addLine(t, f.cart, 10, 500, 2, variant(1, 2))
	f.locator.On("Latest", mock.Anything, userID).Return(loc(150), nil)

	sum, err := f.orch.Begin(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StepSummary, sum.Step)
	assert.True(t, sum.ItemsTotal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, sum.DeliveryCharge.Equal(decimal.NewFromInt(150)))
	assert.True(t, sum.GrandTotal.Equal(decimal.NewFromInt(1150)))
	assert.Equal(t, "1150.00", sum.GrandTotalDisplay)
}

func TestOrchestrator_DeliveryChangeShiftsTotalByDelta(t *testing.T) {
	f := newFixture(t)
	addLine(t, f.cart, 10, 500, 2, variant(1, 2))

	f.orch.UseLocation(loc(150))
	before := f.orch.Summary().GrandTotal

	f.orch.UseLocation(loc(275))
	after := f.orch.Summary().GrandTotal

	assert.True(t, after.Sub(before).Equal(decimal.NewFromInt(125)))
}

func TestOrchestrator_DisplayRoundsOnly(t *testing.T) {
	f := newFixture(t)
	_, err := f.cart.Add(context.Background(), cart.Candidate{
		ProductID: 1, Price: decimal.RequireFromString("0.125"), Variant: variant(1, 1), Quantity: 3,
	})
	require.NoError(t, err)
	f.orch.UseLocation(&location.Location{ID: 1, DeliveryCharge: decimal.Zero})

	sum := f.orch.Summary()
	assert.Equal(t, "0.375", sum.GrandTotal.String())
	assert.Equal(t, "0.38", sum.GrandTotalDisplay)
}

func TestOrchestrator_PaymentRequiresLocation(t *testing.T) {
	f := newFixture(t)
	addLine(t, f.cart, 10, 500, 1, variant(1, 2))
	f.locator.On("Latest", mock.Anything, userID).Return(nil, nil)

	_, err := f.orch.Begin(context.Background())
	require.NoError(t, err)

	err = f.orch.ProceedToPayment(context.Background())
	assert.ErrorIs(t, err, ErrLocationRequired)
	assert.Equal(t, StepSummary, f.orch.Summary().Step)
}

func TestOrchestrator_LocationFetchFailureIsSoft(t *testing.T) {
	f := newFixture(t)
	addLine(t, f.cart, 10, 500, 1, variant(1, 2))
	f.locator.On("Latest", mock.Anything, userID).Return(nil, errors.New("down"))

	sum, err := f.orch.Begin(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sum.Location)
}

func TestOrchestrator_BackAndPaymentMethod(t *testing.T) {
	f := newFixture(t)
	f.atPayment(t)

	assert.ErrorIs(t, f.orch.SetPaymentMethod("bitcoin"), ErrInvalidPaymentMethod)
	require.NoError(t, f.orch.SetPaymentMethod(PaymentCard))
	assert.Equal(t, PaymentCard, f.orch.Summary().PaymentMethod)

	require.NoError(t, f.orch.Back())
	assert.Equal(t, StepSummary, f.orch.Summary().Step)
}

func TestOrchestrator_SubmitRequiresPaymentStep(t *testing.T) {
	f := newFixture(t)
	addLine(t, f.cart, 10, 500, 1, variant(1, 2))
	f.orch.UseLocation(loc(150))

	_, err := f.orch.Submit(context.Background())
	assert.ErrorIs(t, err, ErrWrongStep)
	f.placer.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestrator_IncompleteVariantBlocksSubmit(t *testing.T) {
	f := newFixture(t)
	size := int64(2)
	addLine(t, f.cart, 10, 500, 1, identity.Variant{SizeID: &size})
	f.locator.On("Latest", mock.Anything, userID).Return(loc(150), nil)

	_, err := f.orch.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, f.orch.ProceedToPayment(context.Background()))

	_, err = f.orch.Submit(context.Background())
	assert.ErrorIs(t, err, ErrIncompleteVariant)
	f.placer.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 1, f.cart.Len())
}

func TestOrchestrator_SubmitSuccess(t *testing.T) {
	f := newFixture(t)
	f.atPayment(t)

	f.placer.On("Checkout", mock.Anything, mock.MatchedBy(func(req backend.CheckoutRequest) bool {
		if len(req.Items) != 1 {
			return false
		}
		it := req.Items[0]
		return req.UserID == userID &&
			req.LocationID == 3 &&
			req.PaymentMethod == "cod" &&
			req.Total.Decimal().Equal(decimal.NewFromInt(1150)) &&
			it.ProductID == 10 && it.Quantity == 2 && it.SellerID == 4 &&
			*it.ColorID == 1 && *it.SizeID == 2
	}), "key-1").Return(&backend.CheckoutResponse{Success: true, TrackingID: "TRK-1"}, nil)

	res, err := f.orch.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TRK-1", res.TrackingID)
	assert.Zero(t, f.cart.Len())

	sum := f.orch.Summary()
	assert.Equal(t, StepDone, sum.Step)
	assert.Equal(t, "TRK-1", sum.TrackingID)
	f.placer.AssertExpectations(t)
}

func TestOrchestrator_SubmitFailurePreservesState(t *testing.T) {
	f := newFixture(t)
	f.atPayment(t)
	require.NoError(t, f.orch.SetPaymentMethod(PaymentCard))

	f.placer.On("Checkout", mock.Anything, mock.Anything, "key-1").
		Return(nil, &backend.BackendError{Status: 400, Message: "Out of stock"}).Once()

	_, err := f.orch.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitFailed)
	assert.Equal(t, "Out of stock", backend.UserMessage(err, FailedOrderMessage))

	sum := f.orch.Summary()
	assert.Equal(t, StepError, sum.Step)
	assert.Equal(t, "Out of stock", sum.LastError)
	assert.Len(t, sum.Items, 1)
	assert.NotNil(t, sum.Location)
	assert.Equal(t, PaymentCard, sum.PaymentMethod)
	assert.False(t, sum.Submitting)

	f.placer.On("Checkout", mock.Anything, mock.Anything, "key-1").
		Return(&backend.CheckoutResponse{Success: true, TrackingID: "TRK-2"}, nil).Once()

	res, err := f.orch.Submit(context.Background())
	require.NoError(t, err, "retry reuses the same idempotency key")
	assert.Equal(t, "TRK-2", res.TrackingID)
}

func TestOrchestrator_GenericFailureMessage(t *testing.T) {
	f := newFixture(t)
	f.atPayment(t)
	f.placer.On("Checkout", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &backend.BackendError{Err: errors.New("timeout")})

	_, err := f.orch.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, FailedOrderMessage, f.orch.Summary().LastError)
}

type blockingPlacer struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
}

func (b *blockingPlacer) Checkout(ctx context.Context, req backend.CheckoutRequest, key string) (*backend.CheckoutResponse, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	close(b.started)
	<-b.release
	return &backend.CheckoutResponse{Success: true, TrackingID: "TRK"}, nil
}

func TestOrchestrator_DoubleSubmitGuard(t *testing.T) {
	c := newCart(t)
	addLine(t, c, 10, 500, 1, variant(1, 2))
	placer := &blockingPlacer{started: make(chan struct{}), release: make(chan struct{})}
	orch := NewOrchestrator(c, new(MockLocator), placer)
	orch.UseLocation(loc(150))
	require.NoError(t, orch.ProceedToPayment(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := orch.Submit(context.Background())
		done <- err
	}()

	select {
	case <-placer.started:
	case <-time.After(time.Second):
		t.Fatal("first submit never reached the backend")
	}

	assert.True(t, orch.Summary().Submitting)
	assert.Equal(t, StepSubmitting, orch.Summary().Step)

	_, err := orch.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	assert.ErrorIs(t, orch.Back(), ErrSubmitInFlight)

	close(placer.release)
	require.NoError(t, <-done)

	placer.mu.Lock()
	defer placer.mu.Unlock()
	assert.Equal(t, 1, placer.calls)
}

func TestOrchestrator_Reset(t *testing.T) {
	f := newFixture(t)
	f.atPayment(t)
	require.NoError(t, f.orch.SetPaymentMethod(PaymentCard))

	f.orch.Reset()

	sum := f.orch.Summary()
	assert.Equal(t, StepSummary, sum.Step)
	assert.Nil(t, sum.Location)
	assert.Equal(t, PaymentCOD, sum.PaymentMethod)
}

func startBlockedSubmit(t *testing.T, orch *Orchestrator, placer *blockingPlacer) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		_, err := orch.Submit(context.Background())
		done <- err
	}()

	select {
	case <-placer.started:
	case <-time.After(time.Second):
		t.Fatal("submit never reached the backend")
	}
	return done
}

func TestOrchestrator_SubmitKeepsLinesAddedInFlight(t *testing.T) {
	c := newCart(t)
	addLine(t, c, 10, 500, 2, variant(1, 2))
	placer := &blockingPlacer{started: make(chan struct{}), release: make(chan struct{})}
	orch := NewOrchestrator(c, new(MockLocator), placer)
	orch.UseLocation(loc(150))
	require.NoError(t, orch.ProceedToPayment(context.Background()))

	done := startBlockedSubmit(t, orch, placer)

	addLine(t, c, 10, 500, 1, variant(1, 2))
	addLine(t, c, 11, 80, 1, variant(2, 2))

	close(placer.release)
	require.NoError(t, <-done)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(10), items[0].ProductID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, int64(11), items[1].ProductID)
	assert.Equal(t, StepDone, orch.Summary().Step)
}

func TestOrchestrator_UserSwitchDuringSubmit(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	c := cart.NewStore(cart.NewRepository(mem))
	c.SwitchUser(ctx, userID)
	addLine(t, c, 10, 500, 2, variant(1, 2))

	locator := new(MockLocator)
	placer := &blockingPlacer{started: make(chan struct{}), release: make(chan struct{})}
	orch := NewOrchestrator(c, locator, placer)
	orch.UseLocation(loc(150))
	require.NoError(t, orch.ProceedToPayment(ctx))

	done := startBlockedSubmit(t, orch, placer)

	const otherUser = int64(99)
	c.SwitchUser(ctx, otherUser)
	orch.Reset()
	addLine(t, c, 20, 90, 1, variant(3, 3))

	sum := orch.Summary()
	assert.Equal(t, StepSummary, sum.Step)
	assert.Nil(t, sum.Location)
	assert.False(t, sum.Submitting)

	close(placer.release)
	require.NoError(t, <-done)

	assert.Equal(t, otherUser, c.UserID())
	require.Equal(t, 1, c.Len())
	assert.Equal(t, int64(20), c.Items()[0].ProductID)

	sum = orch.Summary()
	assert.Equal(t, StepSummary, sum.Step)
	assert.Nil(t, sum.Location)
	assert.Empty(t, sum.TrackingID)

	stored, err := cart.NewRepository(mem).Load(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, stored, "the first user's ordered lines leave their stored cart")

	locator.On("Latest", mock.Anything, otherUser).Return(nil, nil).Once()
	sum, err = orch.Begin(ctx)
	require.NoError(t, err)
	assert.Nil(t, sum.Location)
	locator.AssertExpectations(t)
}
