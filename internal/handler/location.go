package handler

import (
	"net/http"

	"fitfuzz-storefront/internal/location"
	"fitfuzz-storefront/internal/utils"

	"github.com/go-chi/chi/v5"
)

type saveLocationRequest struct {
	Province string `json:"province" validate:"required"`
	District string `json:"district" validate:"required"`
	Village  string `json:"village" validate:"required"`
	Phone    string `json:"phone" validate:"required,max=20"`
}

func (h *Handler) Provinces(w http.ResponseWriter, r *http.Request) {
	provinces, err := h.locations.Provinces(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, nonNil(provinces))
}

func (h *Handler) Districts(w http.ResponseWriter, r *http.Request) {
	districts, err := h.locations.Districts(r.Context(), chi.URLParam(r, "province"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, nonNil(districts))
}

func (h *Handler) Villages(w http.ResponseWriter, r *http.Request) {
	villages, err := h.locations.Villages(r.Context(), chi.URLParam(r, "province"), chi.URLParam(r, "district"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if villages == nil {
		villages = []location.Village{}
	}
	utils.WriteJSON(w, http.StatusOK, villages)
}

// SaveLocation stores a delivery location for the signed-in user and makes
// it the checkout's delivery location.
func (h *Handler) SaveLocation(w http.ResponseWriter, r *http.Request) {
	var req saveLocationRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	s := session(r)
	loc, err := h.locations.Save(r.Context(), location.SaveInput{
		UserID:   s.Auth.UserID(),
		Province: req.Province,
		District: req.District,
		Village:  req.Village,
		Phone:    req.Phone,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.Checkout.UseLocation(loc)
	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"location": loc,
		"checkout": s.Checkout.Summary(),
	})
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
