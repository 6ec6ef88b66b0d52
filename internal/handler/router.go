package handler

import (
	"net/http"
	"time"

	"fitfuzz-storefront/internal/logger"
	"fitfuzz-storefront/internal/metrics"
	"fitfuzz-storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type RouterConfig struct {
	Handler       *Handler
	Sessions      middleware.Sessions
	Limiter       *middleware.RateLimiter
	Gatherer      prometheus.Gatherer
	AllowedOrigin string
	// Timeout bounds each request; zero disables it.
	Timeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handler

	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigin))
	if cfg.Limiter != nil {
		r.Use(cfg.Limiter.Middleware)
	}
	if cfg.Timeout > 0 {
		r.Use(chimw.Timeout(cfg.Timeout))
	}

	r.Get("/healthz", h.Healthz)
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(cfg.Gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.DeviceSession(cfg.Sessions))

		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Post("/seller/login", h.SellerLogin)
			r.Post("/seller/logout", h.SellerLogout)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/items", h.AddCartItem)
			r.Patch("/items/{key}", h.UpdateCartItem)
			r.Delete("/items/{key}", h.RemoveCartItem)
			r.Delete("/", h.ClearCart)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", h.GetWishlist)
			r.Post("/items", h.AddWishlistItem)
			r.Post("/toggle", h.ToggleWishlistItem)
			r.Delete("/items/{productID}", h.RemoveWishlistItem)
			r.Delete("/", h.ClearWishlist)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Get("/", h.GetCheckout)
			r.Post("/location", h.RefreshCheckoutLocation)
			r.Post("/payment", h.ProceedToPayment)
			r.Post("/back", h.CheckoutBack)
			r.Post("/submit", h.SubmitCheckout)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/colors", h.Colors)
			r.Get("/sizes", h.Sizes)
			r.Get("/products/{productID}/colors", h.ProductColors)
			r.Get("/products/{productID}/sizes", h.ProductSizes)
		})

		r.Route("/feedback", func(r chi.Router) {
			r.Get("/product/{productID}", h.ProductReviews)
			r.With(middleware.RequireUser).Post("/", h.SubmitReview)
			r.With(middleware.RequireUser).Delete("/{reviewID}", h.DeleteReview)
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/provinces", h.Provinces)
			r.Get("/districts/{province}", h.Districts)
			r.Get("/villages/{province}/{district}", h.Villages)
			r.With(middleware.RequireUser).Post("/", h.SaveLocation)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Get("/", h.MyOrders)
			r.Get("/returns", h.ReturnRequests)
			r.Put("/mark-delivered", h.MarkDelivered)
			r.Post("/returns", h.RequestReturn)
		})
	})

	return r
}
