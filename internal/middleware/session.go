package middleware

import (
	"context"
	"errors"
	"net/http"

	"fitfuzz-storefront/internal/auth"
	"fitfuzz-storefront/internal/logger"
	"fitfuzz-storefront/internal/storefront"
	"fitfuzz-storefront/internal/utils"
)

const HeaderDeviceID = "X-Device-ID"

type sessionKey struct{}

// Sessions resolves the device session for a request.
type Sessions interface {
	Get(ctx context.Context, deviceID string) (*storefront.Session, error)
}

// DeviceSession attaches the caller's device session to the request
// context. The access token forwarded to the backend is the request's own,
// or else the signed-in user's.
func DeviceSession(sessions Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deviceID := r.Header.Get(HeaderDeviceID)
			ctx := logger.WithDeviceID(r.Context(), deviceID)

			s, err := sessions.Get(ctx, deviceID)
			if errors.Is(err, storefront.ErrInvalidDeviceID) {
				utils.WriteJSONError(w, "missing or invalid X-Device-ID header", http.StatusBadRequest)
				return
			}
			if err != nil {
				utils.WriteJSONError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			token := auth.ExtractAccessToken(r)
			if token == "" {
				if u := s.Auth.User(); u != nil {
					token = u.Token
				}
			}
			ctx = auth.WithAccessToken(ctx, token)
			ctx = context.WithValue(ctx, sessionKey{}, s)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionFrom(ctx context.Context) (*storefront.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*storefront.Session)
	return s, ok && s != nil
}

// RequireUser answers 401 with a login redirect when no customer is signed
// in on the device.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFrom(r.Context())
		if !ok || !s.Auth.Authenticated() {
			utils.WriteLoginRequired(w, "please log in to continue")
			return
		}
		next.ServeHTTP(w, r)
	})
}
