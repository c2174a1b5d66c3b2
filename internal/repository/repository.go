package repository

import "gorm.io/gorm"

// Repository aggregates every repository.
type Repository struct {
	Instructor InstructorRepository
	Course     CourseRepository
	Student    StudentRepository
	Grade      GradeRepository
	Payment    HonorariumPaymentRepository
}

// NewRepository creates the aggregate.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Instructor: NewInstructorRepo(db),
		Course:     NewCourseRepo(db),
		Student:    NewStudentRepo(db),
		Grade:      NewGradeRepo(db),
		Payment:    NewHonorariumPaymentRepo(db),
	}
}
