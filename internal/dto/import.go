package dto

// ── grade import ──

// ImportGradesRequest grade records in any key convention
type ImportGradesRequest struct {
	Records []map[string]interface{} `json:"records" binding:"required,min=1,max=5000"`
}

// ImportRecordResult outcome of one record; Row is 1-based
type ImportRecordResult struct {
	Row       int     `json:"row"`
	StudentID string  `json:"student_id,omitempty"`
	CourseID  int64   `json:"course_id,omitempty"`
	OK        bool    `json:"ok"`
	Average   float64 `json:"average,omitempty"`
	Result    string  `json:"result,omitempty"`
	Message   string  `json:"message,omitempty"`
}

// ImportReportResponse import outcome
type ImportReportResponse struct {
	Total    int                  `json:"total"`
	Imported int                  `json:"imported"`
	Failed   int                  `json:"failed"`
	Results  []ImportRecordResult `json:"results"`
}
