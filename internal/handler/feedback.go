package handler

import (
	"net/http"
	"strconv"

	"fitfuzz-storefront/internal/feedback"
	"fitfuzz-storefront/internal/identity"
	"fitfuzz-storefront/internal/utils"

	"github.com/go-chi/chi/v5"
)

type reviewRequest struct {
	ProductID identity.FlexID `json:"product_id"`
	Rating    int             `json:"rating" validate:"required,gte=1,lte=5"`
	Comment   string          `json:"comment" validate:"required,max=2000"`
	Images    []string        `json:"images" validate:"max=5,dive,url"`
}

func (h *Handler) ProductReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	reviews, err := h.feedback.ProductReviews(r.Context(), productID, session(r).Auth.UserID())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reviews)
}

func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if !req.ProductID.Valid {
		writeDecodeError(w, &ValidationError{Fields: map[string]string{"product_id": "is required"}})
		return
	}

	reviews, err := h.feedback.Submit(r.Context(), feedback.ReviewInput{
		UserID:    session(r).Auth.UserID(),
		ProductID: req.ProductID.Value,
		Rating:    req.Rating,
		Comment:   req.Comment,
		Images:    req.Images,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, reviews)
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(w, r, "reviewID")
	if !ok {
		return
	}

	if err := h.feedback.Delete(r.Context(), session(r).Auth.UserID(), reviewID); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Review deleted"})
}

// pathID reads a positive numeric URL parameter, answering 400 when it is
// not one.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		utils.WriteJSONError(w, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
