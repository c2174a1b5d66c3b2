package handler

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/dto"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/normalize"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/service"
	"github.com/Kike1196/beyco-sdadd-sub000/pkg/response"
)

// ImportHandler bulk grade import endpoints
type ImportHandler struct {
	importSvc service.ImportService
}

// NewImportHandler creates an ImportHandler.
func NewImportHandler(importSvc service.ImportService) *ImportHandler {
	return &ImportHandler{importSvc: importSvc}
}

// ImportGrades POST /api/v1/import/grades
func (h *ImportHandler) ImportGrades(c *gin.Context) {
	var req dto.ImportGradesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 23001, "envíe entre 1 y 5000 registros en \"records\"")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	records := make([]normalize.Record, len(req.Records))
	for i, r := range req.Records {
		records[i] = normalize.Record(r)
	}

	report, err := h.importSvc.ImportGrades(c.Request.Context(), records, callerID)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	response.OK(c, report)
}

// ImportGradesExcel POST /api/v1/import/grades/excel (multipart field "file")
func (h *ImportHandler) ImportGradesExcel(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 23001, "adjunte el archivo en el campo \"file\"")
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		response.BadRequest(c, 23002, service.ErrImportInvalidFile.Error())
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 23002, service.ErrImportInvalidFile.Error())
		return
	}
	defer f.Close()

	report, err := h.importSvc.ImportGradesExcel(c.Request.Context(), f, callerID)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	response.OK(c, report)
}

func (h *ImportHandler) handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrImportEmpty):
		response.BadRequest(c, 23003, err.Error())
	case errors.Is(err, service.ErrImportInvalidFile):
		response.BadRequest(c, 23002, err.Error())
	default:
		response.InternalError(c)
	}
}
