package order

import "fitfuzz-storefront/internal/backend"

func mapDelivery(d backend.Delivery) Delivery {
	return Delivery{
		Province:       d.Province,
		District:       d.District,
		Village:        d.Village,
		Phone:          d.Phone,
		DeliveryCharge: d.DeliveryCharge.Decimal(),
	}
}

func mapOrder(o backend.Order, returned map[int64]struct{}) Order {
	items := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		_, requested := returned[it.OrderItemID.Value]
		items = append(items, OrderItem{
			OrderItemID:     it.OrderItemID.Value,
			ProductID:       it.ProductID.Value,
			Quantity:        it.Quantity,
			Price:           it.Price.Decimal(),
			Status:          NormalizeStatus(it.Status),
			SellerName:      it.SellerName,
			ImageURL:        it.ImageURL,
			ReturnRequested: requested && it.OrderItemID.Valid,
		})
	}

	return Order{
		OrderID:       o.OrderID.Value,
		Total:         o.Total.Decimal(),
		Status:        NormalizeStatus(o.Status),
		CreatedAt:     o.CreatedAt,
		PaymentMethod: o.PaymentMethod,
		TrackingID:    o.TrackingID,
		Delivery:      mapDelivery(o.Delivery),
		Items:         items,
	}
}

func mapReturn(r backend.ReturnItem) ReturnRequest {
	return ReturnRequest{
		ID:            r.ID.Value,
		OrderID:       r.OrderID.Value,
		OrderItemID:   r.OrderItemID.Value,
		ProductID:     r.ProductID.Value,
		Reason:        r.Reason,
		Comments:      r.Comments,
		Status:        NormalizeStatus(r.Status),
		CreatedAt:     r.CreatedAt,
		Price:         r.Price.Decimal(),
		Quantity:      r.Quantity,
		ImageURL:      r.ImageURL,
		SellerName:    r.SellerName,
		TrackingID:    r.TrackingID,
		PaymentMethod: r.PaymentMethod,
		Delivery:      mapDelivery(r.Delivery),
	}
}
