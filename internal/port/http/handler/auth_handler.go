package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/domain/entity"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/port/http/middleware"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/service"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,min=7,max=20"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Name  string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone string `json:"phone" validate:"omitempty,min=7,max=20"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

type addressRequest struct {
	Street    string `json:"street" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zipCode" validate:"required"`
	Phone     string `json:"phone" validate:"omitempty,min=7,max=20"`
	IsDefault bool   `json:"isDefault"`
}

type AuthHandler struct {
	auth *service.AuthService
	log  logger.Logger
}

func NewAuthHandler(auth *service.AuthService, log logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) || !checkStruct(w, &req) {
		return
	}

	user, token, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password, req.Phone)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "registration successful", Payload{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) || !checkStruct(w, &req) {
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "login successful", Payload{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	user, err := h.auth.GetProfile(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", Payload{"user": user})
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decodeJSON(w, r, &req) || !checkStruct(w, &req) {
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	user, err := h.auth.UpdateProfile(r.Context(), userID, req.Name, req.Phone)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "profile updated", Payload{"user": user})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) || !checkStruct(w, &req) {
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	if err := h.auth.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "password changed", nil)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeJSON(w, r, &req) || !checkStruct(w, &req) {
		return
	}

	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "password reset email sent", nil)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) || !checkStruct(w, &req) {
		return
	}

	token := chi.URLParam(r, "token")
	if err := h.auth.ResetPassword(r.Context(), token, req.Password); err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "password reset successful", nil)
}

func (h *AuthHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !decodeJSON(w, r, &req) || !checkStruct(w, &req) {
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	user, err := h.auth.AddAddress(r.Context(), userID, entity.Address{
		Street:    req.Street,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Phone:     req.Phone,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "address added", Payload{"addresses": user.Addresses})
}

func (h *AuthHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !decodeJSON(w, r, &req) || !checkStruct(w, &req) {
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	addressID := chi.URLParam(r, "addressID")
	user, err := h.auth.UpdateAddress(r.Context(), userID, addressID, entity.Address{
		Street:    req.Street,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Phone:     req.Phone,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "address updated", Payload{"addresses": user.Addresses})
}

func (h *AuthHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	addressID := chi.URLParam(r, "addressID")
	user, err := h.auth.DeleteAddress(r.Context(), userID, addressID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, "address deleted", Payload{"addresses": user.Addresses})
}
