package service

import (
	"go.uber.org/zap"

	"github.com/Kike1196/beyco-sdadd-sub000/config"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/repository"
)

// Service aggregates every service.
type Service struct {
	Grading    GradingService
	Course     CourseService
	Honorarium HonorariumService
	Export     ExportService
	Import     ImportService
}

// NewService creates the aggregate. store may be nil; grading sessions then
// live only in process memory.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	store PendingStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		Grading:    NewGradingService(repo, store, logger),
		Course:     NewCourseService(cfg, repo, logger),
		Honorarium: NewHonorariumService(cfg, repo, logger),
		Export:     NewExportService(cfg, repo, logger),
		Import:     NewImportService(repo, logger),
	}
}
