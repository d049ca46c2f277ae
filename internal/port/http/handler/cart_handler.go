package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/port/http/middleware"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/repository"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/service"
)

type addCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type syncCartRequest struct {
	Items []struct {
		ProductID string `json:"productId" validate:"required"`
		Quantity  int    `json:"quantity" validate:"gte=0"`
	} `json:"items" validate:"required,dive"`
}

type CartHandler struct {
	carts *service.CartService
	log   logger.Logger
}

func NewCartHandler(carts *service.CartService, log logger.Logger) *CartHandler {
	return &CartHandler{carts: carts, log: log}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	cart, err := h.carts.GetCart(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", Payload{"cart": cart})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if !decodeJSON(w, r, &req) || !checkStruct(w, &req) {
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	cart, err := h.carts.AddItem(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "item added to cart", Payload{"cart": cart})
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	cart, err := h.carts.UpdateItem(r.Context(), userID, chi.URLParam(r, "itemID"), req.Quantity)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "cart updated", Payload{"cart": cart})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	cart, err := h.carts.RemoveItem(r.Context(), userID, chi.URLParam(r, "itemID"))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "item removed", Payload{"cart": cart})
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	if err := h.carts.ClearCart(r.Context(), userID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "cart cleared", nil)
}

func (h *CartHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req syncCartRequest
	if !decodeJSON(w, r, &req) || !checkStruct(w, &req) {
		return
	}

	items := make([]service.SyncCartItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.SyncCartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	cart, err := h.carts.SyncCart(r.Context(), userID, items)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "cart synced", Payload{"cart": cart})
}
