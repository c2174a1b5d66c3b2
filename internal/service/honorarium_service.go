package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Kike1196/beyco-sdadd-sub000/config"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/dto"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/grading"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/honorarium"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/repository"
)

// ── honorarium module errors ──

var (
	ErrInvalidYearMonth = errors.New("mes inválido, use el formato AAAA-MM")
)

// HonorariumService instructor payouts per month
type HonorariumService interface {
	Report(ctx context.Context, req *dto.HonorariumReportRequest) (*dto.HonorariumReportResponse, error)
	MarkPaid(ctx context.Context, req *dto.MarkPaidRequest, callerID string) (*dto.PaymentResponse, error)
}

type honorariumService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewHonorariumService creates a HonorariumService.
func NewHonorariumService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) HonorariumService {
	return &honorariumService{repo: repo, loc: cfg.Honorarium.Location(), logger: logger}
}

// honorariumReport an aggregated date range
type honorariumReport struct {
	start   time.Time
	end     time.Time
	periods []honorarium.Period
	notes   *notificationBuffer
}

// buildHonorariumReport loads the courses and payments of a range and aggregates them.
// Periods come out sorted by month, then instructor. Every course left out of
// the aggregation is reported as a warning notification.
func buildHonorariumReport(ctx context.Context, repo *repository.Repository, loc *time.Location, logger *zap.Logger, req *dto.HonorariumReportRequest) (*honorariumReport, error) {
	start, err := parseDate(req.Start, loc)
	if err != nil {
		return nil, ErrInvalidDateRange
	}
	end, err := parseDate(req.End, loc)
	if err != nil || end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	courses, err := repo.Course.List(ctx, repository.CourseFilter{From: &start, To: &end, InstructorID: req.InstructorID})
	if err != nil {
		logger.Error("failed to list courses for honorarium", zap.Error(err))
		return nil, err
	}

	notes := newNotificationBuffer(logger.With(zap.String("report", "honorarium")))
	periods, warnings := honorarium.Aggregate(courses, start, end, loc)
	for _, w := range warnings {
		notes.Notify(w.Error(), grading.SeverityWarning)
	}

	payments, err := repo.Payment.ListBetween(ctx, start.Format(honorarium.YearMonthLayout), end.Format(honorarium.YearMonthLayout))
	if err != nil {
		logger.Error("failed to list honorarium payments", zap.Error(err))
		return nil, err
	}
	honorarium.ApplyPayments(periods, payments)
	honorarium.Sort(periods)

	return &honorariumReport{start: start, end: end, periods: periods, notes: notes}, nil
}

// ────────────────────── Report ──────────────────────

func (s *honorariumService) Report(ctx context.Context, req *dto.HonorariumReportRequest) (*dto.HonorariumReportResponse, error) {
	report, err := buildHonorariumReport(ctx, s.repo, s.loc, s.logger, req)
	if err != nil {
		return nil, err
	}

	cursos, horas, total := honorarium.Totals(report.periods)
	resp := &dto.HonorariumReportResponse{
		Start:   formatDate(report.start),
		End:     formatDate(report.end),
		Periods: make([]dto.HonorariumPeriodResponse, 0, len(report.periods)),
		Cursos:  cursos,
		Horas:   horas,
		Total:   round2(total),

		Notifications: report.notes.drain(),
	}
	for i := range report.periods {
		resp.Periods = append(resp.Periods, toPeriodResponse(&report.periods[i]))
	}
	return resp, nil
}

func toPeriodResponse(p *honorarium.Period) dto.HonorariumPeriodResponse {
	resp := dto.HonorariumPeriodResponse{
		InstructorID:    p.InstructorID,
		InstructorName:  p.InstructorName,
		YearMonth:       p.YearMonth,
		Cursos:          p.Cursos,
		HorasImpartidas: p.HorasImpartidas,
		Total:           round2(p.Total),
		Status:          string(p.Status),
		Items:           make([]dto.HonorariumLineItemResponse, 0, len(p.Items)),
	}
	if p.PaidAt != nil {
		resp.PaidAt = formatDate(*p.PaidAt)
	}
	for _, it := range p.Items {
		resp.Items = append(resp.Items, dto.HonorariumLineItemResponse{
			CourseID:   it.CourseID,
			CourseName: it.CourseName,
			STPSCode:   it.STPSCode,
			Company:    it.Company,
			Date:       formatDate(it.Date),
			Hours:      it.Hours,
			Payout:     round2(it.Payout),
		})
	}
	return resp
}

// ────────────────────── MarkPaid ──────────────────────

func (s *honorariumService) MarkPaid(ctx context.Context, req *dto.MarkPaidRequest, callerID string) (*dto.PaymentResponse, error) {
	month, err := time.ParseInLocation(honorarium.YearMonthLayout, req.YearMonth, s.loc)
	if err != nil {
		return nil, ErrInvalidYearMonth
	}

	if _, err := s.repo.Instructor.GetByID(ctx, req.InstructorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstructorNotFound
		}
		s.logger.Error("failed to get instructor", zap.Int64("instructor_id", req.InstructorID), zap.Error(err))
		return nil, err
	}

	paidAt := time.Now().In(s.loc)
	if req.PaidAt != "" {
		if paidAt, err = parseDate(req.PaidAt, s.loc); err != nil {
			return nil, ErrInvalidDateRange
		}
	}

	amount := 0.0
	if req.Amount != nil {
		amount = *req.Amount
	} else {
		// default to what the month adds up to
		report, err := buildHonorariumReport(ctx, s.repo, s.loc, s.logger, &dto.HonorariumReportRequest{
			Start:        formatDate(month),
			End:          formatDate(month.AddDate(0, 1, -1)),
			InstructorID: &req.InstructorID,
		})
		if err != nil {
			return nil, err
		}
		_, _, amount = honorarium.Totals(report.periods)
	}

	payment := &model.HonorariumPayment{
		InstructorID: req.InstructorID,
		YearMonth:    req.YearMonth,
		PaidAt:       paidAt,
		Amount:       round2(amount),
		Reference:    req.Reference,
	}
	payment.Version = req.Version
	payment.UpdatedBy = &callerID
	if req.Version == 0 {
		payment.CreatedBy = &callerID
	}

	if err := s.repo.Payment.Save(ctx, payment); err != nil {
		s.logger.Warn("failed to record honorarium payment",
			zap.Int64("instructor_id", req.InstructorID),
			zap.String("year_month", req.YearMonth),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("honorarium payment recorded",
		zap.Int64("instructor_id", req.InstructorID),
		zap.String("year_month", req.YearMonth),
		zap.Float64("amount", payment.Amount),
		zap.String("by", callerID),
	)

	return &dto.PaymentResponse{
		InstructorID: payment.InstructorID,
		YearMonth:    payment.YearMonth,
		PaidAt:       formatDate(payment.PaidAt),
		Amount:       payment.Amount,
		Reference:    payment.Reference,
		Version:      payment.Version,
	}, nil
}
