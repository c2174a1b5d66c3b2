package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/api/middleware"
	"github.com/Kike1196/beyco-sdadd-sub000/pkg/jwt"
	"github.com/Kike1196/beyco-sdadd-sub000/pkg/response"
)

// MustGetUserID reads the user_id set by JWTAuth.
// On false a 401 has been written and the caller should return.
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.CtxUserID)
	if !exists {
		response.Unauthorized(c, 10002, "no autenticado")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "no autenticado")
		return "", false
	}
	return s, true
}

// MustGetRole reads the caller's role.
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.CtxRole)
	if !exists {
		response.Unauthorized(c, 10002, "no autenticado")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "no autenticado")
		return "", false
	}
	return s, true
}

// canSeeInstructor admins see every instructor, instructors only themselves.
func canSeeInstructor(c *gin.Context, instructorID int64) bool {
	role, ok := MustGetRole(c)
	if !ok {
		return false
	}
	if role == jwt.RoleAdmin {
		return true
	}
	own, _ := c.Get(middleware.CtxInstructorID)
	if id, _ := own.(int64); id != 0 && id == instructorID {
		return true
	}
	response.Forbidden(c, 10003, "no tiene permiso para esta operación")
	return false
}

// paramID parses a positive integer path parameter.
// On false a 400 has been written.
func paramID(c *gin.Context, name string, code int) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, code, "identificador inválido")
		return 0, false
	}
	return id, true
}
