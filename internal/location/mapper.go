package location

import "fitfuzz-storefront/internal/backend"

func fromBackend(l *backend.Location) *Location {
	if l == nil {
		return nil
	}
	return &Location{
		ID:             l.ID.Value,
		Province:       l.Province,
		District:       l.District,
		Village:        l.Village,
		Phone:          l.Phone,
		DeliveryCharge: l.DeliveryCharge.Decimal(),
	}
}
