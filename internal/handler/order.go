package handler

import (
	"net/http"

	"fitfuzz-storefront/internal/identity"
	"fitfuzz-storefront/internal/order"
	"fitfuzz-storefront/internal/utils"
)

type markDeliveredRequest struct {
	OrderID   identity.FlexID `json:"order_id"`
	ProductID identity.FlexID `json:"product_id"`
}

type returnRequest struct {
	OrderItemID identity.FlexID `json:"order_item_id"`
	Reason      string          `json:"reason" validate:"required"`
	Comments    string          `json:"comments" validate:"max=1000"`
}

func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.MyOrders(r.Context(), session(r).Auth.UserID(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) ReturnRequests(w http.ResponseWriter, r *http.Request) {
	returns, err := h.orders.ReturnRequests(r.Context(), session(r).Auth.UserID())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if returns == nil {
		returns = []order.ReturnRequest{}
	}
	utils.WriteJSON(w, http.StatusOK, returns)
}

func (h *Handler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	var req markDeliveredRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	fields := map[string]string{}
	if !req.OrderID.Valid {
		fields["order_id"] = "is required"
	}
	if !req.ProductID.Valid {
		fields["product_id"] = "is required"
	}
	if len(fields) > 0 {
		writeDecodeError(w, &ValidationError{Fields: fields})
		return
	}

	err := h.orders.MarkDelivered(r.Context(), session(r).Auth.UserID(), req.OrderID.Value, req.ProductID.Value)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Order marked as delivered"})
}

func (h *Handler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	var req returnRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if !req.OrderItemID.Valid {
		writeDecodeError(w, &ValidationError{Fields: map[string]string{"order_item_id": "is required"}})
		return
	}

	err := h.orders.RequestReturn(r.Context(), order.ReturnInput{
		UserID:      session(r).Auth.UserID(),
		OrderItemID: req.OrderItemID.Value,
		Reason:      req.Reason,
		Comments:    req.Comments,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]string{"message": "Return request submitted"})
}
