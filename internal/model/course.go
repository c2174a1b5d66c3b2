package model

import "time"

// Course a scheduled training course
type Course struct {
	CourseID              int64     `gorm:"primaryKey;autoIncrement"   json:"course_id"`
	Name                  string    `gorm:"type:varchar(200);not null" json:"name"`
	STPSCode              string    `gorm:"type:varchar(50)"           json:"stps_code"`
	Date                  time.Time `gorm:"type:date;not null"         json:"date"`
	Place                 string    `gorm:"type:varchar(200)"          json:"place"`
	Company               string    `gorm:"type:varchar(200)"          json:"company"`
	Hours                 float64   `gorm:"not null;default:0"         json:"hours"`
	RequiresPracticalExam bool      `gorm:"not null;default:false"     json:"requires_practical_exam"`
	InstructorID          *int64    `gorm:"index"                      json:"instructor_id,omitempty"`
	Price                 float64   `gorm:"not null;default:0"         json:"price"`
	InstructorPayout      float64   `gorm:"not null;default:0"         json:"instructor_payout"` // 0 = not set
	SoftDeleteModel

	Instructor *Instructor `gorm:"foreignKey:InstructorID;references:InstructorID" json:"instructor,omitempty"`
}

// TableName table name
func (Course) TableName() string { return "courses" }
