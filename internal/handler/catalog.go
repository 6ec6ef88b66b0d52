package handler

import (
	"net/http"

	"fitfuzz-storefront/internal/catalog"
	"fitfuzz-storefront/internal/utils"
)

func (h *Handler) ProductColors(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	colors, err := h.catalog.ProductColors(r.Context(), productID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, options(colors))
}

func (h *Handler) ProductSizes(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	sizes, err := h.catalog.ProductSizes(r.Context(), productID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, options(sizes))
}

func (h *Handler) Colors(w http.ResponseWriter, r *http.Request) {
	colors, err := h.catalog.Colors(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, options(colors))
}

func (h *Handler) Sizes(w http.ResponseWriter, r *http.Request) {
	sizes, err := h.catalog.Sizes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, options(sizes))
}

func options(opts []catalog.Option) []catalog.Option {
	if opts == nil {
		return []catalog.Option{}
	}
	return opts
}
