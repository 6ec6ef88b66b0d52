package location

import (
	"context"
	"errors"
	"testing"

	"fitfuzz-storefront/internal/backend"
	"fitfuzz-storefront/internal/identity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) LatestLocation(ctx context.Context, userID int64) (*backend.Location, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Location), args.Error(1)
}

func (m *MockGateway) Provinces(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockGateway) Districts(ctx context.Context, province string) ([]string, error) {
	args := m.Called(ctx, province)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockGateway) Villages(ctx context.Context, province, district string) ([]backend.Village, error) {
	args := m.Called(ctx, province, district)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backend.Village), args.Error(1)
}

func (m *MockGateway) SaveLocation(ctx context.Context, req backend.SaveLocationRequest) (*backend.Location, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Location), args.Error(1)
}

func amount(v int64) backend.Amount {
	return backend.NewAmount(decimal.NewFromInt(v))
}

// --- Tests ---

func TestService_Latest(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("LatestLocation", ctx, int64(7)).Return(&backend.Location{
			ID: identity.NewFlexID(3), Village: "Thamel", DeliveryCharge: amount(150),
		}, nil)

		loc, err := NewService(gw).Latest(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(3), loc.ID)
		assert.True(t, loc.DeliveryCharge.Equal(decimal.NewFromInt(150)))
	})

	t.Run("none", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("LatestLocation", ctx, int64(7)).Return(nil, nil)

		loc, err := NewService(gw).Latest(ctx, 7)
		require.NoError(t, err)
		assert.Nil(t, loc)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := NewService(new(MockGateway)).Latest(ctx, 0)
		assert.ErrorIs(t, err, ErrUserRequired)
	})
}

func TestService_Save(t *testing.T) {
	ctx := context.Background()
	villages := []backend.Village{
		{Village: "Thamel", Charge: amount(150)},
		{Village: "Baneshwor", Charge: amount(100)},
	}

	t.Run("charge comes from village", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("Villages", ctx, "Bagmati", "Kathmandu").Return(villages, nil)
		gw.On("SaveLocation", ctx, mock.MatchedBy(func(r backend.SaveLocationRequest) bool {
			return r.Village == "Baneshwor" && r.Charge.Decimal().Equal(decimal.NewFromInt(100)) && r.UserID == 7
		})).Return(&backend.Location{
			ID: identity.NewFlexID(11), Village: "Baneshwor", DeliveryCharge: amount(100),
		}, nil)

		loc, err := NewService(gw).Save(ctx, SaveInput{
			UserID: 7, Province: "Bagmati", District: "Kathmandu", Village: " Baneshwor ", Phone: "98",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(11), loc.ID)
		gw.AssertExpectations(t)
	})

	t.Run("unknown village", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("Villages", ctx, "Bagmati", "Kathmandu").Return(villages, nil)

		_, err := NewService(gw).Save(ctx, SaveInput{
			UserID: 7, Province: "Bagmati", District: "Kathmandu", Village: "Nowhere", Phone: "98",
		})
		assert.ErrorIs(t, err, ErrUnknownVillage)
		gw.AssertNotCalled(t, "SaveLocation", mock.Anything, mock.Anything)
	})

	t.Run("missing phone", func(t *testing.T) {
		_, err := NewService(new(MockGateway)).Save(ctx, SaveInput{
			UserID: 7, Province: "Bagmati", District: "Kathmandu", Village: "Thamel",
		})
		assert.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("backend failure", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("Villages", ctx, "Bagmati", "Kathmandu").Return(villages, nil)
		gw.On("SaveLocation", ctx, mock.Anything).Return(nil, &backend.BackendError{Status: 500})

		_, err := NewService(gw).Save(ctx, SaveInput{
			UserID: 7, Province: "Bagmati", District: "Kathmandu", Village: "Thamel", Phone: "98",
		})
		assert.ErrorIs(t, err, ErrFailedSaveLocation)
		var be *backend.BackendError
		assert.True(t, errors.As(err, &be))
	})
}

func TestService_Lookups(t *testing.T) {
	ctx := context.Background()
	gw := new(MockGateway)
	gw.On("Provinces", ctx).Return([]string{"Bagmati"}, nil)
	gw.On("Districts", ctx, "Bagmati").Return([]string{"Kathmandu"}, nil)
	svc := NewService(gw)

	p, err := svc.Provinces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bagmati"}, p)

	d, err := svc.Districts(ctx, "Bagmati")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kathmandu"}, d)

	_, err = svc.Districts(ctx, " ")
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = svc.Villages(ctx, "Bagmati", "")
	assert.ErrorIs(t, err, ErrMissingField)
}
