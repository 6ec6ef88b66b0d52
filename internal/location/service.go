package location

import (
	"context"
	"fmt"
	"strings"

	"fitfuzz-storefront/internal/backend"
	"fitfuzz-storefront/internal/logger"

	"go.uber.org/zap"
)

// Gateway is the backend surface used for delivery locations.
type Gateway interface {
	LatestLocation(ctx context.Context, userID int64) (*backend.Location, error)
	Provinces(ctx context.Context) ([]string, error)
	Districts(ctx context.Context, province string) ([]string, error)
	Villages(ctx context.Context, province, district string) ([]backend.Village, error)
	SaveLocation(ctx context.Context, req backend.SaveLocationRequest) (*backend.Location, error)
}

type Service interface {
	// Latest returns the user's most recently saved location, or nil.
	Latest(ctx context.Context, userID int64) (*Location, error)
	Provinces(ctx context.Context) ([]string, error)
	Districts(ctx context.Context, province string) ([]string, error)
	Villages(ctx context.Context, province, district string) ([]Village, error)
	Save(ctx context.Context, input SaveInput) (*Location, error)
}

type service struct {
	gw Gateway
}

func NewService(gw Gateway) Service {
	return &service{gw: gw}
}

func (s *service) Latest(ctx context.Context, userID int64) (*Location, error) {
	if userID <= 0 {
		return nil, ErrUserRequired
	}

	loc, err := s.gw.LatestLocation(ctx, userID)
	if err != nil {
		logger.FromCtx(ctx).Warn("fetch latest location failed",
			zap.String("service", "Location"),
			zap.String("method", "Latest"),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}
	return fromBackend(loc), nil
}

func (s *service) Provinces(ctx context.Context) ([]string, error) {
	return s.gw.Provinces(ctx)
}

func (s *service) Districts(ctx context.Context, province string) ([]string, error) {
	if strings.TrimSpace(province) == "" {
		return nil, ErrMissingField
	}
	return s.gw.Districts(ctx, province)
}

func (s *service) Villages(ctx context.Context, province, district string) ([]Village, error) {
	if strings.TrimSpace(province) == "" || strings.TrimSpace(district) == "" {
		return nil, ErrMissingField
	}

	raw, err := s.gw.Villages(ctx, province, district)
	if err != nil {
		return nil, err
	}

	out := make([]Village, 0, len(raw))
	for _, v := range raw {
		out = append(out, Village{Name: v.Village, Charge: v.Charge.Decimal()})
	}
	return out, nil
}

// Save resolves the delivery charge from the village list and stores the
// location for the user.
func (s *service) Save(ctx context.Context, input SaveInput) (*Location, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Location"),
		zap.String("method", "Save"),
		zap.Int64("user_id", input.UserID),
	)

	if input.UserID <= 0 {
		return nil, ErrUserRequired
	}
	input.Province = strings.TrimSpace(input.Province)
	input.District = strings.TrimSpace(input.District)
	input.Village = strings.TrimSpace(input.Village)
	input.Phone = strings.TrimSpace(input.Phone)
	if input.Province == "" || input.District == "" || input.Village == "" || input.Phone == "" {
		return nil, ErrMissingField
	}

	villages, err := s.Villages(ctx, input.Province, input.District)
	if err != nil {
		log.Error("village lookup failed", zap.Error(err))
		return nil, err
	}

	var village *Village
	for i := range villages {
		if villages[i].Name == input.Village {
			village = &villages[i]
			break
		}
	}
	if village == nil {
		log.Warn("unknown village", zap.String("village", input.Village))
		return nil, ErrUnknownVillage
	}

	saved, err := s.gw.SaveLocation(ctx, backend.SaveLocationRequest{
		UserID:   input.UserID,
		Province: input.Province,
		District: input.District,
		Village:  input.Village,
		Charge:   backend.NewAmount(village.Charge),
		Phone:    input.Phone,
	})
	if err != nil {
		log.Error("save location failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedSaveLocation, err)
	}

	log.Info("location saved", zap.Int64("location_id", saved.ID.Value))
	return fromBackend(saved), nil
}
