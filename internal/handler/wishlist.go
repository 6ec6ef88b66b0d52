package handler

import (
	"errors"
	"net/http"
	"strconv"

	"fitfuzz-storefront/internal/identity"
	"fitfuzz-storefront/internal/storefront"
	"fitfuzz-storefront/internal/utils"
	"fitfuzz-storefront/internal/wishlist"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type wishlistItemRequest struct {
	ProductID identity.FlexID `json:"product_id"`
	Name      string          `json:"name" validate:"required"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url"`
}

func (req wishlistItemRequest) item() wishlist.Item {
	return wishlist.Item{
		ProductID: req.ProductID.Value,
		Name:      req.Name,
		Price:     req.Price,
		ImageURL:  req.ImageURL,
	}
}

type wishlistResponse struct {
	Items []wishlist.Item `json:"items"`
	Count int             `json:"count"`
}

func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, wishlistView(session(r)))
}

// AddWishlistItem saves a product. A signed-out shopper gets 401 with a
// login redirect; the item is remembered and saved once they sign in.
func (h *Handler) AddWishlistItem(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeWishlistItem(w, r)
	if !ok {
		return
	}

	s := session(r)
	if err := s.Wishlist.Add(r.Context(), req.item()); err != nil {
		if errors.Is(err, wishlist.ErrLoginRequired) {
			utils.WriteLoginRequired(w, "please log in to save items to your wishlist")
			return
		}
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, wishlistView(s))
}

func (h *Handler) ToggleWishlistItem(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeWishlistItem(w, r)
	if !ok {
		return
	}

	s := session(r)
	saved, err := s.Wishlist.Toggle(r.Context(), req.item())
	if err != nil {
		if errors.Is(err, wishlist.ErrLoginRequired) {
			utils.WriteLoginRequired(w, "please log in to save items to your wishlist")
			return
		}
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"saved":    saved,
		"wishlist": wishlistView(s),
	})
}

func (h *Handler) RemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		utils.WriteJSONError(w, wishlist.ErrInvalidProductID.Error(), http.StatusBadRequest)
		return
	}

	s := session(r)
	s.Wishlist.Remove(r.Context(), productID)
	utils.WriteJSON(w, http.StatusOK, wishlistView(s))
}

func (h *Handler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	s.Wishlist.Clear(r.Context())
	utils.WriteJSON(w, http.StatusOK, wishlistView(s))
}

func decodeWishlistItem(w http.ResponseWriter, r *http.Request) (wishlistItemRequest, bool) {
	var req wishlistItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return req, false
	}
	if !req.ProductID.Valid || req.ProductID.Value <= 0 {
		writeDecodeError(w, &ValidationError{Fields: map[string]string{"product_id": "is required"}})
		return req, false
	}
	return req, true
}

func wishlistView(s *storefront.Session) wishlistResponse {
	items := s.Wishlist.Items()
	if items == nil {
		items = []wishlist.Item{}
	}
	return wishlistResponse{Items: items, Count: len(items)}
}
