package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/wolt-backend/internal/app/handlers"
	"github.com/linemk/wolt-backend/internal/config"
	"github.com/linemk/wolt-backend/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/wolt-backend/internal/lib/logger/handlers/urllog"
)

// NewRouter собирает все маршруты /api/v1
func NewRouter(log *slog.Logger, jwtCfg config.JWTConfig, svc *Services) http.Handler {
	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	cookie := handlers.SessionCookie{Name: jwtCfg.CookieName, TTL: jwtCfg.TTL()}
	jwtMW := jwtmiddleware.NewJWTMiddleware(jwtCfg.Secret, jwtCfg.CookieName)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", handlers.SignupHandler(log, svc.Auth, cookie))
		r.Post("/auth/login", handlers.LoginHandler(log, svc.Auth, cookie))

		// каталог открыт без авторизации
		r.Get("/businesses", handlers.ListBusinessesHandler(log, svc.Catalog))
		r.Get("/businesses/{id}", handlers.GetBusinessHandler(log, svc.Catalog))
		r.Get("/businesses/{id}/menu", handlers.MenuHandler(log, svc.Catalog))
		r.Get("/businesses/{id}/reviews", handlers.ReviewsHandler(log, svc.Catalog))

		r.Group(func(r chi.Router) {
			r.Use(jwtMW)

			r.Get("/auth/logout", handlers.LogoutHandler(log, cookie))
			r.Get("/auth/me", handlers.MeHandler(log, svc.Auth))

			r.Get("/user", handlers.GetUserHandler(log, svc.Users))
			r.Put("/user", handlers.UpdateUserHandler(log, svc.Users))
			r.Delete("/user", handlers.DeleteUserHandler(log, svc.Users, cookie))
			r.Get("/user/cart", handlers.CartHandler(log, svc.Cart))
			r.Get("/user/locations", handlers.LocationsHandler(log, svc.Users))
			r.Put("/user/locations/add", handlers.AddLocationHandler(log, svc.Users))
			r.Put("/user/locations/remove", handlers.RemoveLocationHandler(log, svc.Users))
			r.Put("/user/locations/last", handlers.SetLastLocationHandler(log, svc.Users))

			r.Get("/favorites", handlers.FavoritesHandler(log, svc.Favorites))
			r.Get("/favorites/{id}", handlers.IsFavoriteHandler(log, svc.Favorites))
			r.Put("/favorites/add", handlers.AddFavoriteHandler(log, svc.Favorites))
			r.Put("/favorites/remove", handlers.RemoveFavoriteHandler(log, svc.Favorites))

			r.Put("/orders", handlers.EditOrderHandler(log, svc.Cart))
			r.Get("/orders/send", handlers.SendOrdersHandler(log, svc.Cart))
			r.Put("/orders/send", handlers.SendOrdersHandler(log, svc.Cart))
			r.Get("/orders/last", handlers.LastOrdersHandler(log, svc.Orders))
			r.Get("/orders/{id}", handlers.GetOrderHandler(log, svc.Orders))
			r.Put("/orders/{id}/delivered", handlers.DeliveredHandler(log, svc.Orders))

			r.Post("/businesses/{id}/review", handlers.AddReviewHandler(log, svc.Catalog))
			r.Get("/businesses/{id}/last-order", handlers.ShopOrdersHandler(log, svc.Orders))
		})
	})

	return router
}
