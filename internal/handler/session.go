package handler

import (
	"net/http"

	"fitfuzz-storefront/internal/auth"
	"fitfuzz-storefront/internal/logger"
	"fitfuzz-storefront/internal/utils"

	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sellerLoginRequest struct {
	StoreName string `json:"storeName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

type sessionResponse struct {
	User          *auth.User   `json:"user"`
	Seller        *auth.Seller `json:"seller"`
	CartItems     int          `json:"cart_items"`
	WishlistItems int          `json:"wishlist_items"`
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, sessionView(r))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	u, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		logger.FromCtx(r.Context()).Info("login rejected",
			zap.String("handler", "Login"),
			zap.Error(err),
		)
		writeError(w, r, err)
		return
	}

	user := auth.User{
		ID:    u.ID.Value,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		Token: u.Token,
	}
	if err := session(r).Auth.Login(r.Context(), user); err != nil {
		writeError(w, r, err)
		return
	}

	setAccessToken(w, user.Token)
	utils.WriteJSON(w, http.StatusOK, sessionView(r))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	session(r).Auth.Logout(r.Context())
	setAccessToken(w, "")
	utils.WriteJSON(w, http.StatusOK, sessionView(r))
}

func (h *Handler) SellerLogin(w http.ResponseWriter, r *http.Request) {
	var req sellerLoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	sl, err := h.auth.SellerLogin(r.Context(), req.StoreName, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	seller := auth.Seller{
		SellerID:  sl.SellerID.Value,
		StoreName: sl.StoreName,
		Email:     sl.Email,
		Token:     sl.Token,
	}
	if err := session(r).Auth.SellerLogin(r.Context(), seller); err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, sessionView(r))
}

func (h *Handler) SellerLogout(w http.ResponseWriter, r *http.Request) {
	session(r).Auth.SellerLogout(r.Context())
	utils.WriteJSON(w, http.StatusOK, sessionView(r))
}

// sessionView reports who is signed in on the device. Tokens stay server
// side.
func sessionView(r *http.Request) sessionResponse {
	s := session(r)
	resp := sessionResponse{
		User:          s.Auth.User(),
		Seller:        s.Auth.Seller(),
		CartItems:     s.Cart.TotalItems(),
		WishlistItems: s.Wishlist.Len(),
	}
	if resp.User != nil {
		resp.User.Token = ""
	}
	if resp.Seller != nil {
		resp.Seller.Token = ""
	}
	return resp
}

// setAccessToken mirrors the user's token into the access_token cookie; an
// empty token expires it.
func setAccessToken(w http.ResponseWriter, token string) {
	c := &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}
