package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/dto"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/service"
	"github.com/Kike1196/beyco-sdadd-sub000/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler spreadsheet downloads
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportHonorarium honorarium report as .xlsx
// GET /api/v1/honorarium/export?start=&end=&instructor_id=
func (h *ExportHandler) ExportHonorarium(c *gin.Context) {
	var req dto.HonorariumReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 24001, "indique las fechas de inicio y fin (AAAA-MM-DD)")
		return
	}

	buf, filename, err := h.exportSvc.ExportHonorarium(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 24002, err.Error())
	case errors.Is(err, service.ErrExportNoData):
		response.NotFound(c, 24003, err.Error())
	default:
		response.InternalError(c)
	}
}
