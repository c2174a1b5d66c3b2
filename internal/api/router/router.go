package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Kike1196/beyco-sdadd-sub000/config"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/api/handler"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/api/middleware"
	"github.com/Kike1196/beyco-sdadd-sub000/pkg/jwt"
	"github.com/Kike1196/beyco-sdadd-sub000/pkg/redis"
)

// save endpoints hit the database once per student
const (
	saveRateLimit  = 60
	saveRateWindow = time.Minute
)

// Setup builds the Gin engine. rdb may be nil.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	r.GET("/health", h.Health.Check)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	{
		staff := middleware.RoleAuth(jwt.RoleAdmin, jwt.RoleInstructor)
		adminOnly := middleware.RoleAuth(jwt.RoleAdmin)
		saveLimit := middleware.RateLimit(rdb, saveRateLimit, saveRateWindow)

		// grading sessions
		grading := v1.Group("/grading/sessions", staff)
		{
			grading.POST("", h.Grading.Open)
			grading.GET("/current", h.Grading.Current)
			grading.DELETE("/current", h.Grading.Close)
			grading.PUT("/current/students/:student_id", h.Grading.SetField)
			grading.POST("/current/students/:student_id/save", saveLimit, h.Grading.SaveOne)
			grading.POST("/current/save", saveLimit, h.Grading.SaveAll)
		}

		// courses
		courses := v1.Group("/courses", staff)
		{
			courses.GET("", h.Course.List)
			courses.GET("/:id", h.Course.Get)
			courses.GET("/:id/roster", h.Course.Roster)
		}
		v1.GET("/instructors/:id/calendar.ics", staff, h.Course.InstructorCalendar)

		// honorarium
		honorarium := v1.Group("/honorarium", adminOnly)
		{
			honorarium.GET("", h.Honorarium.Report)
			honorarium.PUT("/payments", h.Honorarium.MarkPaid)
			honorarium.GET("/export", h.Export.ExportHonorarium)
		}

		// grade import
		imports := v1.Group("/import", adminOnly)
		{
			imports.POST("/grades", saveLimit, h.Import.ImportGrades)
			imports.POST("/grades/excel", saveLimit, h.Import.ImportGradesExcel)
		}
	}

	return r
}
