package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasiliy-maslov/storefront/internal/handler"
	"github.com/vasiliy-maslov/storefront/internal/identity"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Catalog *handler.CatalogHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
}

func NewRouter(sessions identity.Service, handlers Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		r.Use(handler.AuthMiddleware(sessions))

		handlers.Auth.RegisterRoutes(r)
		handlers.Catalog.RegisterRoutes(r)
		handlers.Cart.RegisterRoutes(r)
		handlers.Order.RegisterRoutes(r)
	})

	return r
}
