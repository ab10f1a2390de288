package handler

import (
	"fmt"
	"net/http"
	"time"

	"diplomsklad/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AdminHandler serves the document downloads behind the admin token.
type AdminHandler struct{ items service.ItemService }

func NewAdminHandler(items service.ItemService) *AdminHandler {
	return &AdminHandler{items: items}
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportStock streams the stock report as an XLSX workbook.
func (h *AdminHandler) ExportStock(c *gin.Context) {
	wb, err := h.items.ExportStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	defer wb.Close()

	name := fmt.Sprintf("stock_%s.xlsx", time.Now().UTC().Format("20060102_1504"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := wb.Write(c.Writer); err != nil {
		log.Error().Err(err).Msg("stock export: write failed")
	}
}

// ItemLabel returns the printable PDF label for one item.
func (h *AdminHandler) ItemLabel(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	pdf, err := h.items.Label(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="label_%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
