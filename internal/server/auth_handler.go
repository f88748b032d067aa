package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/optimumcare/clinic-site/internal/server/middleware"
	"github.com/optimumcare/clinic-site/internal/types"
	"go.uber.org/zap"
)

// AuthHandler handles staff authentication requests.
type AuthHandler struct {
	staffService *StaffService
	jwtService   *JWTService
	logger       *zap.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(staffService *StaffService, jwtService *JWTService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		staffService: staffService,
		jwtService:   jwtService,
		logger:       logger,
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	user, err := h.staffService.Login(r.Context(), &req)
	if err != nil {
		h.fail(w, err)
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	h.logger.Info("staff login", zap.String("staff_id", user.ID.String()), zap.String("role", user.Role))
	writeJSON(w, h.logger, http.StatusOK, types.LoginResponse{User: user, Token: token})
}

// Me handles GET /admin/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	staffID, err := middleware.GetStaffID(r)
	if err != nil {
		writeError(w, h.logger, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.staffService.Get(r.Context(), staffID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, user)
}

// UpdatePassword handles PUT /admin/password for the authenticated staff member.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	staffID, err := middleware.GetStaffID(r)
	if err != nil {
		writeError(w, h.logger, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req types.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	if err := h.staffService.UpdatePassword(r.Context(), staffID, req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

func (h *AuthHandler) fail(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("auth request failed", zap.Error(err))
		writeError(w, h.logger, status, "internal server error")
		return
	}
	writeError(w, h.logger, status, err.Error())
}

// extractValidationErrors extracts the first validation failure as a message.
func extractValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}
