package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/dto"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/service"
	"github.com/Kike1196/beyco-sdadd-sub000/pkg/response"
)

// CourseHandler course catalog endpoints
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler creates a CourseHandler.
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// List GET /api/v1/courses?start=&end=&instructor_id=
func (h *CourseHandler) List(c *gin.Context) {
	var req dto.CourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 21001, "parámetros inválidos")
		return
	}

	courses, err := h.courseSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, gin.H{"list": courses, "total": len(courses)})
}

// Get GET /api/v1/courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id", 21001)
	if !ok {
		return
	}

	course, err := h.courseSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// Roster GET /api/v1/courses/:id/roster
func (h *CourseHandler) Roster(c *gin.Context) {
	id, ok := paramID(c, "id", 21001)
	if !ok {
		return
	}

	students, err := h.courseSvc.Roster(c.Request.Context(), id)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, gin.H{"list": students})
}

// InstructorCalendar GET /api/v1/instructors/:id/calendar.ics
func (h *CourseHandler) InstructorCalendar(c *gin.Context) {
	id, ok := paramID(c, "id", 21001)
	if !ok {
		return
	}
	if !canSeeInstructor(c, id) {
		return
	}

	body, filename, err := h.courseSvc.InstructorCalendar(c.Request.Context(), id)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Attachment(c, filename, "text/calendar; charset=utf-8", body)
}

func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 21002, err.Error())
	case errors.Is(err, service.ErrInstructorNotFound):
		response.NotFound(c, 21003, err.Error())
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 21004, err.Error())
	default:
		response.InternalError(c)
	}
}
