package handler

import (
	"net/http"

	"diplomsklad/internal/dto"
	"diplomsklad/internal/service"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct{ svc service.SyncService }

func NewSyncHandler(svc service.SyncService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

func (h *SyncHandler) Sync(c *gin.Context) {
	var req dto.SyncRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Sync(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SyncHandler) ListLogs(c *gin.Context) {
	var filter dto.SyncLogFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListLogs(c.Request.Context(), filter.Page, filter.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
