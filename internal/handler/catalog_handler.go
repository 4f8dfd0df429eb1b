package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/catalog"
)

// CatalogHandler отдаёт снапшот каталога и умеет перечитывать его целиком.
type CatalogHandler struct {
	catalog *catalog.Service
}

func NewCatalogHandler(catalogService *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleListProducts)
	router.Get("/categories", h.handleListCategories)
	router.Post("/catalog/refresh", h.handleRefresh)
}

func (h *CatalogHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	snap := h.catalog.Snapshot()
	respondWithJSON(w, http.StatusOK, snap.Products)
}

func (h *CatalogHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	snap := h.catalog.Snapshot()
	respondWithJSON(w, http.StatusOK, snap.Categories)
}

func (h *CatalogHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.catalog.Refresh(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to refresh catalog")
		respondWithError(w, mapErrorToStatusCode(err), "failed to refresh catalog")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{
		"products":   len(snap.Products),
		"categories": len(snap.Categories),
	})
}
