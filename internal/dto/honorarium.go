package dto

// ── honorarium ──

// HonorariumReportRequest report query; both bounds inclusive
type HonorariumReportRequest struct {
	Start        string `form:"start"         binding:"required,datetime=2006-01-02"`
	End          string `form:"end"           binding:"required,datetime=2006-01-02"`
	InstructorID *int64 `form:"instructor_id" binding:"omitempty,min=1"`
}

// HonorariumLineItemResponse one course in a period
type HonorariumLineItemResponse struct {
	CourseID   int64   `json:"course_id"`
	CourseName string  `json:"course_name"`
	STPSCode   string  `json:"stps_code"`
	Company    string  `json:"company"`
	Date       string  `json:"date"`
	Hours      float64 `json:"hours"`
	Payout     float64 `json:"payout"`
}

// HonorariumPeriodResponse one instructor-month
type HonorariumPeriodResponse struct {
	InstructorID    int64                        `json:"instructor_id"`
	InstructorName  string                       `json:"instructor_name"`
	YearMonth       string                       `json:"year_month"`
	Cursos          int                          `json:"cursos"`
	HorasImpartidas float64                      `json:"horas_impartidas"`
	Total           float64                      `json:"total"`
	Status          string                       `json:"status"`
	PaidAt          string                       `json:"paid_at,omitempty"`
	Items           []HonorariumLineItemResponse `json:"items"`
}

// HonorariumReportResponse report over a date range
type HonorariumReportResponse struct {
	Start   string                     `json:"start"`
	End     string                     `json:"end"`
	Periods []HonorariumPeriodResponse `json:"periods"`
	Cursos  int                        `json:"cursos"`
	Horas   float64                    `json:"horas"`
	Total   float64                    `json:"total"`
	// courses excluded from the aggregation, as warnings
	Notifications []NotificationResponse `json:"notifications"`
}

// MarkPaidRequest records the payment of an instructor-month.
// Amount defaults to the computed total; Version is 0 for a first payment.
type MarkPaidRequest struct {
	InstructorID int64    `json:"instructor_id" binding:"required,min=1"`
	YearMonth    string   `json:"year_month"    binding:"required,datetime=2006-01"`
	PaidAt       string   `json:"paid_at"       binding:"omitempty,datetime=2006-01-02"`
	Amount       *float64 `json:"amount"        binding:"omitempty,min=0"`
	Reference    string   `json:"reference"     binding:"omitempty,max=100"`
	Version      int      `json:"version"       binding:"omitempty,min=0"`
}

// PaymentResponse a recorded payment
type PaymentResponse struct {
	InstructorID int64   `json:"instructor_id"`
	YearMonth    string  `json:"year_month"`
	PaidAt       string  `json:"paid_at"`
	Amount       float64 `json:"amount"`
	Reference    string  `json:"reference,omitempty"`
	Version      int     `json:"version"`
}
