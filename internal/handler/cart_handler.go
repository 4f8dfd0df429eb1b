package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/checkout"
	"github.com/vasiliy-maslov/storefront/internal/money"
)

type CartResponse struct {
	Rows  []cart.Row `json:"rows"`
	Count int        `json:"count"`
	Total string     `json:"total"`
}

type SetQtyRequest struct {
	Qty int `json:"qty"`
}

type IncQtyRequest struct {
	ProductID int64 `json:"productId"`
	Delta     int   `json:"delta"`
}

// CartHandler — операции над активной корзиной.
type CartHandler struct {
	store   *cart.Store
	catalog checkout.CatalogSource
}

func NewCartHandler(store *cart.Store, catalogSource checkout.CatalogSource) *CartHandler {
	return &CartHandler{store: store, catalog: catalogSource}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/cart", h.handleGetCart)
	router.Post("/cart/items", h.handleIncQty)
	router.Put("/cart/items/{productID}", h.handleSetQty)
	router.Delete("/cart", h.handleClear)
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w)
}

func (h *CartHandler) handleIncQty(w http.ResponseWriter, r *http.Request) {
	var requestPayload IncQtyRequest
	if err := decodeBody(r, &requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
		return
	}
	if requestPayload.ProductID == 0 {
		respondWithError(w, http.StatusBadRequest, "productId is required")
		return
	}

	delta := requestPayload.Delta
	if delta == 0 {
		delta = 1
	}

	if err := h.store.IncQty(r.Context(), requestPayload.ProductID, delta); err != nil {
		log.Error().Err(err).Int64("product_id", requestPayload.ProductID).Msg("Failed to update cart")
		respondWithError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}

	h.respondCart(w)
}

func (h *CartHandler) handleSetQty(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var requestPayload SetQtyRequest
	if err := decodeBody(r, &requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
		return
	}

	if err := h.store.SetQty(r.Context(), productID, requestPayload.Qty); err != nil {
		log.Error().Err(err).Int64("product_id", productID).Msg("Failed to update cart")
		respondWithError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}

	h.respondCart(w)
}

func (h *CartHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		log.Error().Err(err).Msg("Failed to clear cart")
		respondWithError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	h.respondCart(w)
}

func (h *CartHandler) respondCart(w http.ResponseWriter) {
	rows := h.store.Rows()
	snap := h.catalog.Snapshot()

	respondWithJSON(w, http.StatusOK, CartResponse{
		Rows:  rows,
		Count: money.CartCount(rows),
		Total: money.CartTotal(rows, snap),
	})
}
