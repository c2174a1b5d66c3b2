package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Kike1196/beyco-sdadd-sub000/config"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/dto"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/honorarium"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/repository"
)

// ── export module errors ──

var (
	ErrExportNoData       = errors.New("no hay cursos en el periodo seleccionado")
	ErrExportGenerateFail = errors.New("no se pudo generar el archivo de Excel")
)

// ExportService report exports.
// Files come back as a bytes.Buffer; the handler sets the HTTP headers.
type ExportService interface {
	// ExportHonorarium honorarium report as .xlsx: a summary sheet and an itemized sheet.
	ExportHonorarium(ctx context.Context, req *dto.HonorariumReportRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewExportService creates an ExportService.
func NewExportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, loc: cfg.Honorarium.Location(), logger: logger}
}

const (
	sheetSummary = "Resumen"
	sheetDetail  = "Detalle"
)

// ═══════════════════════════════════════════════════════════
// ExportHonorarium
// ═══════════════════════════════════════════════════════════
//
// Resumen: one row per instructor-month with status and totals, plus a grand total.
// Detalle: one row per course.

func (s *exportService) ExportHonorarium(ctx context.Context, req *dto.HonorariumReportRequest) (*bytes.Buffer, string, error) {
	report, err := buildHonorariumReport(ctx, s.repo, s.loc, s.logger, req)
	if err != nil {
		return nil, "", err
	}
	if len(report.periods) == 0 {
		return nil, "", ErrExportNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(sheetSummary)
	f.SetActiveSheet(idx)
	f.NewSheet(sheetDetail)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	moneyFmt := "$#,##0.00"
	moneyStyle, _ := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	totalStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &moneyFmt})

	// ── Resumen ──
	title := fmt.Sprintf("Honorarios del %s al %s", formatDate(report.start), formatDate(report.end))
	f.SetCellValue(sheetSummary, "A1", title)
	f.MergeCell(sheetSummary, "A1", "G1")
	f.SetCellStyle(sheetSummary, "A1", "A1", headerStyle)

	summaryHeader := []string{"Mes", "Instructor", "Cursos", "Horas", "Total", "Estatus", "Fecha de pago"}
	for i, h := range summaryHeader {
		f.SetCellValue(sheetSummary, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetSummary, "A2", "G2", headerStyle)

	row := 3
	for _, p := range report.periods {
		f.SetCellValue(sheetSummary, cell("A", row), p.YearMonth)
		f.SetCellValue(sheetSummary, cell("B", row), p.InstructorName)
		f.SetCellValue(sheetSummary, cell("C", row), p.Cursos)
		f.SetCellValue(sheetSummary, cell("D", row), p.HorasImpartidas)
		f.SetCellValue(sheetSummary, cell("E", row), round2(p.Total))
		f.SetCellValue(sheetSummary, cell("F", row), string(p.Status))
		if p.PaidAt != nil {
			f.SetCellValue(sheetSummary, cell("G", row), formatDate(*p.PaidAt))
		}
		row++
	}
	if row > 3 {
		f.SetCellStyle(sheetSummary, "E3", cell("E", row-1), moneyStyle)
	}

	cursos, horas, total := honorarium.Totals(report.periods)
	f.SetCellValue(sheetSummary, cell("A", row), "Total")
	f.SetCellValue(sheetSummary, cell("C", row), cursos)
	f.SetCellValue(sheetSummary, cell("D", row), horas)
	f.SetCellValue(sheetSummary, cell("E", row), round2(total))
	f.SetCellStyle(sheetSummary, cell("A", row), cell("E", row), totalStyle)

	f.SetColWidth(sheetSummary, "A", "A", 10)
	f.SetColWidth(sheetSummary, "B", "B", 30)
	f.SetColWidth(sheetSummary, "C", "D", 10)
	f.SetColWidth(sheetSummary, "E", "E", 14)
	f.SetColWidth(sheetSummary, "F", "G", 14)

	// ── Detalle ──
	detailHeader := []string{"Mes", "Instructor", "Fecha", "Curso", "Clave STPS", "Empresa", "Horas", "Honorario"}
	for i, h := range detailHeader {
		f.SetCellValue(sheetDetail, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetDetail, "A1", "H1", headerStyle)

	row = 2
	for _, p := range report.periods {
		for _, it := range p.Items {
			f.SetCellValue(sheetDetail, cell("A", row), p.YearMonth)
			f.SetCellValue(sheetDetail, cell("B", row), p.InstructorName)
			f.SetCellValue(sheetDetail, cell("C", row), formatDate(it.Date))
			f.SetCellValue(sheetDetail, cell("D", row), it.CourseName)
			f.SetCellValue(sheetDetail, cell("E", row), it.STPSCode)
			f.SetCellValue(sheetDetail, cell("F", row), it.Company)
			f.SetCellValue(sheetDetail, cell("G", row), it.Hours)
			f.SetCellValue(sheetDetail, cell("H", row), round2(it.Payout))
			row++
		}
	}
	if row > 2 {
		f.SetCellStyle(sheetDetail, "H2", cell("H", row-1), moneyStyle)
	}
	f.SetColWidth(sheetDetail, "A", "A", 10)
	f.SetColWidth(sheetDetail, "B", "B", 30)
	f.SetColWidth(sheetDetail, "C", "C", 12)
	f.SetColWidth(sheetDetail, "D", "D", 36)
	f.SetColWidth(sheetDetail, "E", "F", 20)
	f.SetColWidth(sheetDetail, "G", "H", 12)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("failed to write xlsx", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("honorarios_%s_%s.xlsx", formatDate(report.start), formatDate(report.end))
	return buf, filename, nil
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
