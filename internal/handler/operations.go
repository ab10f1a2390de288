package handler

import (
	"net/http"

	"diplomsklad/internal/dto"
	"diplomsklad/internal/service"

	"github.com/gin-gonic/gin"
)

type OperationHandler struct{ svc service.OperationService }

func NewOperationHandler(svc service.OperationService) *OperationHandler {
	return &OperationHandler{svc: svc}
}

// Create godoc
// @Summary Record a stock movement (receive, ship, move, inventory)
// @Tags operations
// @Accept json
// @Produce json
// @Param body body dto.CreateOperationRequest true "Operation"
// @Success 201 {object} dto.OperationCreatedResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /api/operations [post]
func (h *OperationHandler) Create(c *gin.Context) {
	var req dto.CreateOperationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Record(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *OperationHandler) List(c *gin.Context) {
	var filter dto.OperationFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
