package dto

// ── courses ──

// CourseListRequest course listing query
type CourseListRequest struct {
	DateRangeRequest
	InstructorID *int64 `form:"instructor_id" binding:"omitempty,min=1"`
}

// CourseResponse course
type CourseResponse struct {
	ID                    int64   `json:"id"`
	Name                  string  `json:"name"`
	STPSCode              string  `json:"stps_code"`
	Date                  string  `json:"date"`
	Place                 string  `json:"place"`
	Company               string  `json:"company"`
	Hours                 float64 `json:"hours"`
	RequiresPracticalExam bool    `json:"requires_practical_exam"`
	InstructorID          *int64  `json:"instructor_id,omitempty"`
	InstructorName        string  `json:"instructor_name,omitempty"`
	Price                 float64 `json:"price"`
	InstructorPayout      float64 `json:"instructor_payout"`
}

// StudentResponse student of a roster
type StudentResponse struct {
	ID              string `json:"id"`
	FullName        string `json:"full_name"`
	GivenName       string `json:"given_name"`
	PaternalSurname string `json:"paternal_surname"`
	MaternalSurname string `json:"maternal_surname"`
	JobTitle        string `json:"job_title"`
	BirthDate       string `json:"birth_date,omitempty"`
}
