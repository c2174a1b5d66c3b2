package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/dto"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/grading"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/normalize"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/repository"
)

// ── import module errors ──

var (
	ErrImportEmpty       = errors.New("el archivo no contiene registros")
	ErrImportInvalidFile = errors.New("el archivo no es un libro de Excel válido")
)

// ImportService bulk grade import from heterogeneous sources
type ImportService interface {
	// ImportGrades imports records in any key convention. Each record
	// succeeds or fails on its own.
	ImportGrades(ctx context.Context, records []normalize.Record, callerID string) (*dto.ImportReportResponse, error)
	// ImportGradesExcel reads the first sheet; the header row supplies the keys.
	ImportGradesExcel(ctx context.Context, r io.Reader, callerID string) (*dto.ImportReportResponse, error)
}

type importService struct {
	repo     *repository.Repository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewImportService creates an ImportService.
func NewImportService(repo *repository.Repository, logger *zap.Logger) ImportService {
	return &importService{repo: repo, validate: validator.New(), logger: logger}
}

// importedGrade validation rules of a normalized grade record.
// Scores are clamped to 0..100 before validation, as in the grading session.
type importedGrade struct {
	StudentID string `validate:"required,len=18,alphanum"`
	CourseID  int64  `validate:"required,gt=0"`
}

var importFieldMessages = map[string]string{
	"StudentID": "CURP inválida (18 caracteres alfanuméricos)",
	"CourseID":  "falta el identificador del curso",
}

// ────────────────────── ImportGrades ──────────────────────

func (s *importService) ImportGrades(ctx context.Context, records []normalize.Record, callerID string) (*dto.ImportReportResponse, error) {
	if len(records) == 0 {
		return nil, ErrImportEmpty
	}

	report := &dto.ImportReportResponse{
		Total:   len(records),
		Results: make([]dto.ImportRecordResult, 0, len(records)),
	}
	courses := make(map[int64]*model.Course)

	for i, raw := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := s.importOne(ctx, raw, callerID, courses)
		res.Row = i + 1
		if res.OK {
			report.Imported++
		} else {
			report.Failed++
		}
		report.Results = append(report.Results, res)
	}

	s.logger.Info("grade import finished",
		zap.Int("total", report.Total),
		zap.Int("imported", report.Imported),
		zap.Int("failed", report.Failed),
		zap.String("by", callerID),
	)
	return report, nil
}

func (s *importService) importOne(ctx context.Context, raw normalize.Record, callerID string, courses map[int64]*model.Course) dto.ImportRecordResult {
	g := normalize.Grade(raw)
	res := dto.ImportRecordResult{StudentID: g.StudentID, CourseID: g.CourseID}

	g.InitialExam = grading.ClampScore(g.InitialExam)
	g.FinalExam = grading.ClampScore(g.FinalExam)
	g.PracticalExam = grading.ClampScore(g.PracticalExam)

	if err := s.validate.Struct(importedGrade{StudentID: g.StudentID, CourseID: g.CourseID}); err != nil {
		res.Message = validationMessage(err)
		return res
	}

	course, err := s.course(ctx, g.CourseID, courses)
	if err != nil {
		res.Message = err.Error()
		return res
	}

	enrolled, err := s.repo.Student.IsEnrolled(ctx, g.CourseID, g.StudentID)
	if err != nil {
		s.logger.Error("failed to check enrollment", zap.String("student_id", g.StudentID), zap.Error(err))
		res.Message = err.Error()
		return res
	}
	if !enrolled {
		res.Message = grading.ErrStudentNotInRoster.Error()
		return res
	}

	var missing []grading.Field
	if g.FinalExam <= 0 {
		missing = append(missing, grading.FieldFinalExam)
	}
	if course.RequiresPracticalExam && g.PracticalExam <= 0 {
		missing = append(missing, grading.FieldPracticalExam)
	}
	if len(missing) > 0 {
		res.Message = (&grading.ValidationError{StudentID: g.StudentID, Missing: missing}).Error()
		return res
	}

	// imported average/result columns are ignored and recomputed
	grading.Evaluate(&g, course.RequiresPracticalExam)
	g.CreatedBy = &callerID
	g.UpdatedBy = &callerID

	if err := s.repo.Grade.Upsert(ctx, &g); err != nil {
		s.logger.Warn("imported grade rejected", zap.String("student_id", g.StudentID), zap.Int64("course_id", g.CourseID), zap.Error(err))
		res.Message = grading.TranslateRemoteMessage(err.Error())
		return res
	}

	res.OK = true
	res.Average = round2(g.Average)
	res.Result = g.Result
	return res
}

func (s *importService) course(ctx context.Context, id int64, cache map[int64]*model.Course) (*model.Course, error) {
	if c, ok := cache[id]; ok {
		if c == nil {
			return nil, ErrCourseNotFound
		}
		return c, nil
	}
	c, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cache[id] = nil
			return nil, ErrCourseNotFound
		}
		s.logger.Error("failed to get course", zap.Int64("course_id", id), zap.Error(err))
		return nil, err
	}
	cache[id] = c
	return c, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if m, ok := importFieldMessages[fe.Field()]; ok {
			msgs = append(msgs, m)
		} else {
			msgs = append(msgs, fmt.Sprintf("%s inválido", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

// ────────────────────── ImportGradesExcel ──────────────────────

func (s *importService) ImportGradesExcel(ctx context.Context, r io.Reader, callerID string) (*dto.ImportReportResponse, error) {
	records, err := readSheetRecords(r)
	if err != nil {
		return nil, err
	}
	return s.ImportGrades(ctx, records, callerID)
}

// readSheetRecords turns the first sheet into records keyed by the header row.
// Blank rows are skipped; blank cells are left out of the record.
func readSheetRecords(r io.Reader) ([]normalize.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ErrImportInvalidFile
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrImportEmpty
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, ErrImportInvalidFile
	}
	if len(rows) < 2 {
		return nil, ErrImportEmpty
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	var records []normalize.Record
	for _, row := range rows[1:] {
		rec := make(normalize.Record)
		for i, v := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if v = strings.TrimSpace(v); v != "" {
				rec[header[i]] = v
			}
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	if len(records) == 0 {
		return nil, ErrImportEmpty
	}
	return records, nil
}
