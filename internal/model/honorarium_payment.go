package model

import "time"

// HonorariumPayment marks an instructor's month as paid
type HonorariumPayment struct {
	InstructorID int64     `gorm:"primaryKey"                  json:"instructor_id"`
	YearMonth    string    `gorm:"type:char(7);primaryKey"     json:"year_month"` // 2006-01
	PaidAt       time.Time `gorm:"type:timestamptz;not null"   json:"paid_at"`
	Amount       float64   `gorm:"not null;default:0"          json:"amount"`
	Reference    string    `gorm:"type:varchar(100)"           json:"reference"`
	VersionedModel
}

// TableName table name
func (HonorariumPayment) TableName() string { return "honorarium_payments" }
