package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/port/http/middleware"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/repository"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/service"
)

type createOrderRequest struct {
	AddressID     string `json:"addressId"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=cod razorpay"`
	Notes         string `json:"notes" validate:"omitempty,max=500"`
}

type verifyPaymentRequest struct {
	PaymentID string `json:"razorpayPaymentId" validate:"required"`
	Signature string `json:"razorpaySignature" validate:"required"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type updateOrderStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	Note           string `json:"note" validate:"omitempty,max=500"`
	Notes          string `json:"notes" validate:"omitempty,max=500"`
	TrackingNumber string `json:"trackingNumber"`
	CourierName    string `json:"courierName"`
}

type OrderHandler struct {
	orders *service.OrderService
	log    logger.Logger
}

func NewOrderHandler(orders *service.OrderService, log logger.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !decodeJSON(w, r, &req) || !checkStruct(w, &req) {
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	result, err := h.orders.CreateOrder(r.Context(), userID, service.CreateOrderInput{
		AddressID:     req.AddressID,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	payload := Payload{"order": result.Order}
	if result.Checkout != nil {
		payload["checkout"] = result.Checkout
	}
	respondSuccess(w, http.StatusCreated, "order placed", payload)
}

func (h *OrderHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if !decodeJSON(w, r, &req) || !checkStruct(w, &req) {
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	order, err := h.orders.VerifyPayment(r.Context(), userID, chi.URLParam(r, "id"), req.PaymentID, req.Signature)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "payment verified", Payload{"order": order})
}

func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, _ := middleware.UserIDFromContext(r.Context())
	result, err := h.orders.MyOrders(r.Context(), userID, queryInt(q.Get("page"), 1), queryInt(q.Get("limit"), 10))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", Payload{
		"orders":     result.Orders,
		"pagination": result.Pagination,
	})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	order, err := h.orders.GetOrder(r.Context(), userID, chi.URLParam(r, "id"), middleware.IsAdmin(r.Context()))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", Payload{"order": order})
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelOrderRequest
	// Body is optional for a cancellation.
	_ = decodeBodyIfPresent(r, &req)

	userID, _ := middleware.UserIDFromContext(r.Context())
	order, err := h.orders.CancelOrder(r.Context(), userID, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "order cancelled", Payload{"order": order})
}

func (h *OrderHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := repository.ListOrdersParams{
		Status:        q.Get("status"),
		PaymentStatus: q.Get("paymentStatus"),
		Page:          queryInt(q.Get("page"), 1),
		PageSize:      queryInt(q.Get("limit"), 10),
	}
	if start := q.Get("startDate"); start != "" {
		if t, err := time.Parse(time.RFC3339, start); err == nil {
			params.StartDate = &t
		}
	}
	if end := q.Get("endDate"); end != "" {
		if t, err := time.Parse(time.RFC3339, end); err == nil {
			params.EndDate = &t
		}
	}

	result, err := h.orders.AdminListOrders(r.Context(), params)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", Payload{
		"orders":     result.Orders,
		"pagination": result.Pagination,
	})
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderStatusRequest
	if !decodeJSON(w, r, &req) || !checkStruct(w, &req) {
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), service.UpdateStatusInput{
		Status:         req.Status,
		Note:           req.Note,
		Notes:          req.Notes,
		TrackingNumber: req.TrackingNumber,
		CourierName:    req.CourierName,
	})
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "order status updated", Payload{"order": order})
}

func (h *OrderHandler) Stats(w http.ResponseWriter, r *http.Request) {
	result, err := h.orders.Stats(r.Context())
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", Payload{
		"stats":        result.Stats,
		"recentOrders": result.Recent,
	})
}
