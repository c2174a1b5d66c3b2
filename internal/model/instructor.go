package model

// Instructor course instructor
type Instructor struct {
	InstructorID int64  `gorm:"primaryKey;autoIncrement"        json:"instructor_id"`
	Name         string `gorm:"type:varchar(150);not null"       json:"name"`
	Email        string `gorm:"type:varchar(255)"                json:"email"`
	Phone        string `gorm:"type:varchar(30)"                 json:"phone"`
	IsActive     bool   `gorm:"not null;default:true"            json:"is_active"`
	SoftDeleteModel
}

// TableName table name
func (Instructor) TableName() string { return "instructors" }
