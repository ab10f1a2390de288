package handler

import (
	"net/http"

	"diplomsklad/internal/apierror"
	"diplomsklad/internal/dto"
	"diplomsklad/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{ svc service.UserService }

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) Get(c *gin.Context) {
	externalID, ok := int64Param(c, "external_id")
	if !ok {
		return
	}
	resp, err := h.svc.GetByExternalID(c.Request.Context(), externalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Register godoc
// @Summary Register a user; admin role requires the shared admin secret
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "User"
// @Success 201 {object} dto.UserResponse
// @Failure 403 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /api/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CheckAdminSecret answers {status: ok, token, expires_in} or 403 {status: error}.
func (h *UserHandler) CheckAdminSecret(c *gin.Context) {
	var req dto.CheckAdminSecretRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CheckAdminSecret(c.Request.Context(), req.Secret)
	if apierror.Is(err, apierror.KindForbidden) {
		c.JSON(http.StatusForbidden, dto.AdminTokenResponse{Status: "error"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
