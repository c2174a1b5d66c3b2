package model

// Grade one row per (student, course).
// Sub-scores are 0..100; 0 means not entered.
type Grade struct {
	StudentID     string  `gorm:"type:varchar(18);primaryKey" json:"student_id"`
	CourseID      int64   `gorm:"primaryKey"                  json:"course_id"`
	InitialExam   float64 `gorm:"not null;default:0"          json:"initial_exam"`
	FinalExam     float64 `gorm:"not null;default:0"          json:"final_exam"`
	PracticalExam float64 `gorm:"not null;default:0"          json:"practical_exam"`
	Average       float64 `gorm:"not null;default:0"          json:"average"`
	Result        string  `gorm:"type:varchar(10)"            json:"result"` // APTO | NO APTO | ""
	Notes         string  `gorm:"type:text"                   json:"notes"`
	BaseModel
}

// TableName table name
func (Grade) TableName() string { return "grades" }
