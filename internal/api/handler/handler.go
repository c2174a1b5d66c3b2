package handler

import "github.com/Kike1196/beyco-sdadd-sub000/internal/service"

// Handler aggregates every handler.
type Handler struct {
	Grading    *GradingHandler
	Course     *CourseHandler
	Honorarium *HonorariumHandler
	Export     *ExportHandler
	Import     *ImportHandler
	Health     *HealthHandler
}

// NewHandler creates the aggregate. checks feed the health endpoint.
func NewHandler(svc *service.Service, checks ...HealthCheck) *Handler {
	return &Handler{
		Grading:    NewGradingHandler(svc.Grading),
		Course:     NewCourseHandler(svc.Course),
		Honorarium: NewHonorariumHandler(svc.Honorarium),
		Export:     NewExportHandler(svc.Export),
		Import:     NewImportHandler(svc.Import),
		Health:     NewHealthHandler(checks...),
	}
}
