package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/dto"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/service"
	pkgerrors "github.com/Kike1196/beyco-sdadd-sub000/pkg/errors"
	"github.com/Kike1196/beyco-sdadd-sub000/pkg/response"
)

// HonorariumHandler instructor payout endpoints
type HonorariumHandler struct {
	honorariumSvc service.HonorariumService
}

// NewHonorariumHandler creates a HonorariumHandler.
func NewHonorariumHandler(honorariumSvc service.HonorariumService) *HonorariumHandler {
	return &HonorariumHandler{honorariumSvc: honorariumSvc}
}

// Report aggregated payouts per instructor and month
// GET /api/v1/honorarium?start=YYYY-MM-DD&end=YYYY-MM-DD&instructor_id=
func (h *HonorariumHandler) Report(c *gin.Context) {
	var req dto.HonorariumReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 22001, "indique las fechas de inicio y fin (AAAA-MM-DD)")
		return
	}

	report, err := h.honorariumSvc.Report(c.Request.Context(), &req)
	if err != nil {
		h.handleHonorariumError(c, err)
		return
	}

	response.OK(c, report)
}

// MarkPaid records the payment of an instructor-month
// PUT /api/v1/honorarium/payments
func (h *HonorariumHandler) MarkPaid(c *gin.Context) {
	var req dto.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 22001, "parámetros inválidos")
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	payment, err := h.honorariumSvc.MarkPaid(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleHonorariumError(c, err)
		return
	}

	response.OK(c, payment)
}

func (h *HonorariumHandler) handleHonorariumError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDateRange), errors.Is(err, service.ErrInvalidYearMonth):
		response.BadRequest(c, 22002, err.Error())
	case errors.Is(err, service.ErrInstructorNotFound):
		response.NotFound(c, 22003, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 22004, "el pago fue modificado por otro usuario; recargue e intente de nuevo")
	default:
		response.InternalError(c)
	}
}
