package handler

import (
	"errors"
	"net/http"

	"fitfuzz-storefront/internal/cart"
	"fitfuzz-storefront/internal/catalog"
	"fitfuzz-storefront/internal/identity"
	"fitfuzz-storefront/internal/logger"
	"fitfuzz-storefront/internal/storefront"
	"fitfuzz-storefront/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type addCartItemRequest struct {
	ID        string          `json:"id" validate:"required"`
	ProductID identity.FlexID `json:"product_id"`
	Name      string          `json:"name" validate:"required"`
	ImageURL  string          `json:"image_url"`
	Price     decimal.Decimal `json:"price"`
	SellerID  identity.FlexID `json:"seller_id"`
	ColorID   identity.FlexID `json:"color_id"`
	SizeID    identity.FlexID `json:"size_id"`
	Quantity  int             `json:"quantity" validate:"gte=0,lte=99"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type cartResponse struct {
	Items             []cartLine      `json:"items"`
	TotalItems        int             `json:"total_items"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	TotalPriceDisplay string          `json:"total_price_display"`
}

type cartLine struct {
	cart.LineItem
	Key       string          `json:"key"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Navigable bool            `json:"navigable"`
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, cartView(session(r)))
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	s := session(r)
	if !s.Auth.Authenticated() {
		utils.WriteLoginRequired(w, "please log in to add items to your cart")
		return
	}

	productID := req.ProductID.Value
	if !req.ProductID.Valid {
		productID, _ = identity.ParseProductID(req.ID)
	}

	variant, err := h.describeVariant(r, productID, identity.Variant{
		ColorID: req.ColorID.Ptr(),
		SizeID:  req.SizeID.Ptr(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	line, err := s.Cart.Add(r.Context(), cart.Candidate{
		ID:        req.ID,
		ProductID: req.ProductID.Value,
		Name:      req.Name,
		ImageURL:  req.ImageURL,
		Price:     req.Price,
		SellerID:  req.SellerID.Value,
		Variant:   variant,
		Quantity:  req.Quantity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"item": newCartLine(line),
		"cart": cartView(s),
	})
}

// describeVariant fills option names from the product's options. Ids the
// product is not offered in are rejected; unavailable option data only
// costs the names.
func (h *Handler) describeVariant(r *http.Request, productID int64, v identity.Variant) (identity.Variant, error) {
	if v.Empty() {
		return v, nil
	}
	named, err := h.catalog.DescribeVariant(r.Context(), productID, v)
	if errors.Is(err, catalog.ErrOptionUnavailable) {
		return v, err
	}
	if err != nil {
		logger.FromCtx(r.Context()).Warn("variant names unavailable",
			zap.String("handler", "AddCartItem"),
			zap.Error(err),
		)
		return v, nil
	}
	return named, nil
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	s := session(r)
	key := chi.URLParam(r, "key")
	if _, ok := s.Cart.Find(key); !ok {
		utils.WriteJSONError(w, "cart item not found", http.StatusNotFound)
		return
	}

	s.Cart.UpdateQuantity(r.Context(), key, *req.Quantity)
	utils.WriteJSON(w, http.StatusOK, cartView(s))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	s.Cart.Remove(r.Context(), chi.URLParam(r, "key"))
	utils.WriteJSON(w, http.StatusOK, cartView(s))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	s.Cart.Clear(r.Context())
	utils.WriteJSON(w, http.StatusOK, cartView(s))
}

func cartView(s *storefront.Session) cartResponse {
	items := s.Cart.Items()
	lines := make([]cartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, newCartLine(it))
	}
	total := s.Cart.TotalPrice()
	return cartResponse{
		Items:             lines,
		TotalItems:        s.Cart.TotalItems(),
		TotalPrice:        total,
		TotalPriceDisplay: total.StringFixed(2),
	}
}

func newCartLine(it cart.LineItem) cartLine {
	return cartLine{
		LineItem:  it,
		Key:       it.Key(),
		Subtotal:  it.Subtotal(),
		Navigable: it.Navigable(),
	}
}
