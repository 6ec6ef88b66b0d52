package order

import (
	"context"
	"strconv"
	"strings"

	"fitfuzz-storefront/internal/backend"
	"fitfuzz-storefront/internal/logger"

	"go.uber.org/zap"
)

// Gateway is the backend surface for a customer's orders.
type Gateway interface {
	MyOrders(ctx context.Context, userID int64) ([]backend.Order, error)
	ReturnProducts(ctx context.Context, userID int64) ([]backend.ReturnItem, error)
	MarkDelivered(ctx context.Context, req backend.MarkDeliveredRequest) error
	ReturnProduct(ctx context.Context, req backend.ReturnProductRequest) error
}

type Service interface {
	// MyOrders lists the user's orders with ReturnRequested filled from the
	// user's return requests. A non-empty search keeps orders with an item
	// whose product id contains it.
	MyOrders(ctx context.Context, userID int64, search string) ([]Order, error)
	ReturnRequests(ctx context.Context, userID int64) ([]ReturnRequest, error)
	MarkDelivered(ctx context.Context, userID, orderID, productID int64) error
	RequestReturn(ctx context.Context, input ReturnInput) error
}

type service struct {
	gw Gateway
}

func NewService(gw Gateway) Service {
	return &service{gw: gw}
}

func (s *service) MyOrders(ctx context.Context, userID int64, search string) ([]Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Order"),
		zap.String("method", "MyOrders"),
		zap.Int64("user_id", userID),
	)

	if userID <= 0 {
		return nil, ErrUserRequired
	}

	raw, err := s.gw.MyOrders(ctx, userID)
	if err != nil {
		log.Error("fetch orders failed", zap.Error(err))
		return nil, err
	}

	returned := map[int64]struct{}{}
	returns, err := s.gw.ReturnProducts(ctx, userID)
	if err != nil {
		log.Warn("fetch return requests failed", zap.Error(err))
	}
	for _, r := range returns {
		if r.OrderItemID.Valid {
			returned[r.OrderItemID.Value] = struct{}{}
		}
	}

	search = strings.TrimSpace(search)
	orders := make([]Order, 0, len(raw))
	for _, o := range raw {
		mapped := mapOrder(o, returned)
		if search != "" && !matchesProduct(mapped, search) {
			continue
		}
		orders = append(orders, mapped)
	}
	return orders, nil
}

func (s *service) ReturnRequests(ctx context.Context, userID int64) ([]ReturnRequest, error) {
	if userID <= 0 {
		return nil, ErrUserRequired
	}

	raw, err := s.gw.ReturnProducts(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]ReturnRequest, 0, len(raw))
	for _, r := range raw {
		out = append(out, mapReturn(r))
	}
	return out, nil
}

func (s *service) MarkDelivered(ctx context.Context, userID, orderID, productID int64) error {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Order"),
		zap.String("method", "MarkDelivered"),
		zap.Int64("order_id", orderID),
		zap.Int64("product_id", productID),
	)

	orders, err := s.MyOrders(ctx, userID, "")
	if err != nil {
		return err
	}

	item, ok := findItem(orders, func(o Order, it OrderItem) bool {
		return o.OrderID == orderID && it.ProductID == productID
	})
	if !ok {
		log.Warn("order item not owned by user")
		return ErrOrderItemNotFound
	}
	if item.Status == StatusDelivered {
		return ErrAlreadyDelivered
	}

	if err := s.gw.MarkDelivered(ctx, backend.MarkDeliveredRequest{
		OrderID:   orderID,
		ProductID: productID,
	}); err != nil {
		log.Error("mark delivered failed", zap.Error(err))
		return err
	}

	log.Info("order item marked delivered")
	return nil
}

func (s *service) RequestReturn(ctx context.Context, input ReturnInput) error {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Order"),
		zap.String("method", "RequestReturn"),
		zap.Int64("order_item_id", input.OrderItemID),
	)

	if strings.TrimSpace(input.Reason) == "" {
		return ErrReasonRequired
	}

	orders, err := s.MyOrders(ctx, input.UserID, "")
	if err != nil {
		return err
	}

	item, ok := findItem(orders, func(_ Order, it OrderItem) bool {
		return it.OrderItemID == input.OrderItemID
	})
	if !ok {
		return ErrOrderItemNotFound
	}
	if item.ReturnRequested {
		return ErrReturnAlreadyRequested
	}
	if !item.Returnable() {
		return ErrNotReturnable
	}

	if err := s.gw.ReturnProduct(ctx, backend.ReturnProductRequest{
		OrderItemID: input.OrderItemID,
		UserID:      input.UserID,
		Reason:      strings.TrimSpace(input.Reason),
		Comments:    strings.TrimSpace(input.Comments),
	}); err != nil {
		log.Error("return request failed", zap.Error(err))
		return err
	}

	log.Info("return requested")
	return nil
}

func matchesProduct(o Order, search string) bool {
	for _, it := range o.Items {
		if strings.Contains(strconv.FormatInt(it.ProductID, 10), search) {
			return true
		}
	}
	return false
}

func findItem(orders []Order, match func(Order, OrderItem) bool) (OrderItem, bool) {
	for _, o := range orders {
		for _, it := range o.Items {
			if match(o, it) {
				return it, true
			}
		}
	}
	return OrderItem{}, false
}
