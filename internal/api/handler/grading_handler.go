package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/dto"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/grading"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/service"
	"github.com/Kike1196/beyco-sdadd-sub000/pkg/response"
)

// GradingHandler grading session endpoints. The session belongs to the caller.
type GradingHandler struct {
	gradingSvc service.GradingService
}

// NewGradingHandler creates a GradingHandler.
func NewGradingHandler(gradingSvc service.GradingService) *GradingHandler {
	return &GradingHandler{gradingSvc: gradingSvc}
}

// Open opens a session on a course
// POST /api/v1/grading/sessions
func (h *GradingHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "parámetros inválidos")
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	session, err := h.gradingSvc.Open(c.Request.Context(), userID, req.CourseID)
	if err != nil {
		h.handleGradingError(c, userID, err)
		return
	}

	response.OK(c, session)
}

// Current the open session
// GET /api/v1/grading/sessions/current
func (h *GradingHandler) Current(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	session, err := h.gradingSvc.Current(c.Request.Context(), userID)
	if err != nil {
		h.handleGradingError(c, userID, err)
		return
	}

	response.OK(c, session)
}

// SetField edits one field of a student
// PUT /api/v1/grading/sessions/current/students/:student_id
func (h *GradingHandler) SetField(c *gin.Context) {
	var req dto.SetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "parámetros inválidos")
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	row, err := h.gradingSvc.SetField(c.Request.Context(), userID, c.Param("student_id"), &req)
	if err != nil {
		h.handleGradingError(c, userID, err)
		return
	}

	response.OK(c, row)
}

// SaveOne persists one student's pending edit
// POST /api/v1/grading/sessions/current/students/:student_id/save
func (h *GradingHandler) SaveOne(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	row, err := h.gradingSvc.SaveOne(c.Request.Context(), userID, c.Param("student_id"))
	if err != nil {
		h.handleGradingError(c, userID, err)
		return
	}

	response.OK(c, row)
}

// SaveAll persists every pending edit
// POST /api/v1/grading/sessions/current/save
func (h *GradingHandler) SaveAll(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.gradingSvc.SaveAll(c.Request.Context(), userID)
	if err != nil {
		h.handleGradingError(c, userID, err)
		return
	}

	response.OK(c, result)
}

// Close discards the session and its pending edits
// DELETE /api/v1/grading/sessions/current
func (h *GradingHandler) Close(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.gradingSvc.Close(c.Request.Context(), userID); err != nil {
		h.handleGradingError(c, userID, err)
		return
	}

	response.OK(c, nil)
}

// handleGradingError maps grading errors to HTTP answers. Notifications the
// failed call produced travel with the error.
func (h *GradingHandler) handleGradingError(c *gin.Context, userID string, err error) {
	notes := h.gradingSvc.DrainNotifications(userID)
	withNotes := gin.H{"notifications": notes}

	if failure, ok := service.ToValidationFailure(err); ok {
		failure.Notifications = notes
		response.ErrorWithData(c, http.StatusUnprocessableEntity, 20006, err.Error(), failure)
		return
	}

	var remote *grading.RemoteError
	switch {
	case errors.Is(err, service.ErrSessionNotOpen):
		response.ErrorWithData(c, http.StatusNotFound, 20001, err.Error(), withNotes)
	case errors.Is(err, service.ErrCourseNotFound):
		response.ErrorWithData(c, http.StatusNotFound, 20002, err.Error(), withNotes)
	case errors.Is(err, grading.ErrRosterNotFound):
		response.ErrorWithData(c, http.StatusNotFound, 20003, err.Error(), withNotes)
	case errors.Is(err, grading.ErrStudentNotInRoster):
		response.ErrorWithData(c, http.StatusNotFound, 20004, err.Error(), withNotes)
	case errors.Is(err, grading.ErrUnknownField), errors.Is(err, grading.ErrFieldNotApplicable):
		response.ErrorWithData(c, http.StatusBadRequest, 20005, err.Error(), withNotes)
	case errors.Is(err, grading.ErrNoPendingChanges):
		response.ErrorWithData(c, http.StatusBadRequest, 20007, err.Error(), withNotes)
	case errors.As(err, &remote):
		response.ErrorWithData(c, http.StatusConflict, 20008, remote.Message, withNotes)
	default:
		response.ErrorWithData(c, http.StatusInternalServerError, 50000, "error interno del servidor", withNotes)
	}
}
