package dto

// ── grading sessions ──

// OpenSessionRequest opens a grading session on a course
type OpenSessionRequest struct {
	CourseID int64 `json:"course_id" binding:"required,min=1"`
}

// SetFieldRequest user input for one field; value is the raw text typed
type SetFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// GradeRowResponse live view of one student. Empty scores are null.
type GradeRowResponse struct {
	StudentID         string   `json:"student_id"`
	FullName          string   `json:"full_name"`
	JobTitle          string   `json:"job_title,omitempty"`
	InitialExam       *float64 `json:"initial_exam"`
	FinalExam         *float64 `json:"final_exam"`
	PracticalExam     *float64 `json:"practical_exam,omitempty"`
	Notes             string   `json:"notes"`
	Average           float64  `json:"average"`
	Result            string   `json:"result"`
	HasPendingChanges bool     `json:"has_pending_changes"`
	CanSave           bool     `json:"can_save"`
}

// SessionResponse the whole grading view of a course
type SessionResponse struct {
	Course        CourseResponse         `json:"course"`
	PendingCount  int                    `json:"pending_count"`
	Rows          []GradeRowResponse     `json:"rows"`
	Notifications []NotificationResponse `json:"notifications"`
}

// RowResponse one updated row
type RowResponse struct {
	Row           GradeRowResponse       `json:"row"`
	PendingCount  int                    `json:"pending_count"`
	Notifications []NotificationResponse `json:"notifications"`
}

// SaveFailureResponse a student whose save failed
type SaveFailureResponse struct {
	StudentID string `json:"student_id"`
	Message   string `json:"message"`
}

// SaveAllResponse outcome of a batch save
type SaveAllResponse struct {
	Succeeded     int                    `json:"succeeded"`
	Failed        int                    `json:"failed"`
	Failures      []SaveFailureResponse  `json:"failures,omitempty"`
	PendingCount  int                    `json:"pending_count"`
	Notifications []NotificationResponse `json:"notifications"`
}

// InvalidEntryResponse a pending edit missing required fields
type InvalidEntryResponse struct {
	StudentID string   `json:"student_id"`
	Missing   []string `json:"missing"`
}

// ValidationFailureResponse error payload of a rejected save
type ValidationFailureResponse struct {
	Invalid       []InvalidEntryResponse `json:"invalid"`
	Notifications []NotificationResponse `json:"notifications,omitempty"`
}
