package dto

// ── shared ──

// DateLayout date-only fields on the wire
const DateLayout = "2006-01-02"

// NotificationResponse a user-facing message produced while handling the request
type NotificationResponse struct {
	Message  string `json:"message"`
	Severity string `json:"severity"` // info | success | warning | error
}

// DateRangeRequest inclusive date range, YYYY-MM-DD
type DateRangeRequest struct {
	Start string `form:"start" binding:"omitempty,datetime=2006-01-02"`
	End   string `form:"end"   binding:"omitempty,datetime=2006-01-02"`
}
