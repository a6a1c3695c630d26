package routes

import (
	"github.com/flashoffers/api/internal/auth"
	"github.com/flashoffers/api/internal/handlers"
	"github.com/flashoffers/api/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// Handlers bundles the handler set the router mounts.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Users         *handlers.UserHandler
	Offers        *handlers.OfferHandler
	Notifications *handlers.NotificationHandler
	Push          *handlers.PushHandler
	Admin         *handlers.AdminHandler
}

// RegisterRoutes mounts the API under /api/v1.
//
// Three tiers of access: public (register, login, verification),
// authenticated (profile), and verified (feed, inbox, push). Admin
// endpoints additionally require the admin flag.
func RegisterRoutes(router chi.Router, h Handlers, tokenManager *auth.TokenManager, users auth.UserFetcher) {
	authLimit := middleware.RateLimitByIP(middleware.AuthRateLimit())
	verifyLimit := middleware.RateLimitByIP(middleware.VerificationRateLimit())

	router.Route("/api/v1", func(r chi.Router) {
		// Public endpoints. Verify and resend are keyed on email because
		// unverified accounts cannot log in to obtain a token.
		r.With(authLimit).Post("/auth/register", h.Auth.Register)
		r.With(authLimit).Post("/auth/login", h.Auth.Login)
		r.With(authLimit).Post("/auth/oauth", h.Auth.OAuthLogin)
		r.With(verifyLimit).Post("/auth/verify", h.Auth.Verify)
		r.With(verifyLimit).Post("/auth/resend", h.Auth.Resend)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(tokenManager, users))

			r.Get("/users/me", h.Users.Me)
			r.Patch("/users/me", h.Users.UpdateMe)
			r.Post("/users/me/telegram", h.Users.ConnectTelegram)
			r.Delete("/users/me/telegram", h.Users.DisconnectTelegram)

			// Verified accounts only
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireVerified)

				r.Get("/offers/next", h.Offers.Next)
				r.Get("/offers", h.Offers.List)
				r.Post("/offers/{id}/swipe", h.Offers.Swipe)
				r.Delete("/offers/{id}/swipe", h.Offers.Unswipe)
				r.Get("/offers/liked", h.Offers.Liked)
				r.Get("/offers/liked/{id}", h.Offers.LikedDetail)

				r.Get("/notifications", h.Notifications.List)
				r.Post("/notifications/{id}/read", h.Notifications.MarkRead)
				r.Post("/notifications/read-all", h.Notifications.MarkAllRead)
				r.Delete("/notifications/{id}", h.Notifications.Delete)

				r.Get("/push/public-key", h.Push.PublicKey)
				r.Post("/push/subscribe", h.Push.Subscribe)
				r.Post("/push/unsubscribe", h.Push.Unsubscribe)
				r.Get("/push/subscriptions", h.Push.List)
				r.Post("/push/test", h.Push.Test)
			})

			// Admin surface
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)

				r.Get("/admin/users", h.Admin.ListUsers)
				r.Get("/admin/users/{id}", h.Admin.GetUser)
				r.Patch("/admin/users/{id}", h.Admin.UpdateUser)
				r.Delete("/admin/users/{id}", h.Admin.DeleteUser)

				r.Get("/admin/offers", h.Admin.ListOffers)
				r.Get("/admin/offers/{id}", h.Admin.GetOffer)
				r.Post("/admin/offers", h.Admin.CreateOffer)
				r.Put("/admin/offers/{id}", h.Admin.UpdateOffer)
				r.Delete("/admin/offers/{id}", h.Admin.DeleteOffer)

				r.Get("/admin/actions", h.Admin.ListActions)
				r.Get("/admin/stats", h.Admin.Stats)
			})
		})
	})
}
