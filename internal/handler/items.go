package handler

import (
	"net/http"

	"diplomsklad/internal/dto"
	"diplomsklad/internal/service"

	"github.com/gin-gonic/gin"
)

type ItemHandler struct{ svc service.ItemService }

func NewItemHandler(svc service.ItemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

// Scan godoc
// @Summary Look up an item by barcode, creating a placeholder when unknown
// @Tags items
// @Accept json
// @Produce json
// @Param body body dto.ScanRequest true "Barcode"
// @Success 200 {object} dto.ItemEnvelope
// @Failure 400 {object} apierror.APIError
// @Router /api/items/scan [post]
func (h *ItemHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Scan(c.Request.Context(), req.Barcode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Create an item, booking any initial quantity as a receive operation
// @Tags items
// @Accept json
// @Produce json
// @Param body body dto.CreateItemRequest true "Item"
// @Success 201 {object} dto.ItemEnvelope
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /api/items [post]
func (h *ItemHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ItemHandler) ListByOwner(c *gin.Context) {
	externalID, ok := int64Param(c, "external_id")
	if !ok {
		return
	}
	resp, err := h.svc.ListByOwner(c.Request.Context(), externalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
