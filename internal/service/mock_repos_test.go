package service

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/Kike1196/beyco-sdadd-sub000/config"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/repository"
	pkgerrors "github.com/Kike1196/beyco-sdadd-sub000/pkg/errors"
)

// ── Mock InstructorRepository ──

type mockInstructorRepo struct {
	instructors map[int64]*model.Instructor
}

func newMockInstructorRepo() *mockInstructorRepo {
	return &mockInstructorRepo{instructors: make(map[int64]*model.Instructor)}
}

func (m *mockInstructorRepo) GetByID(_ context.Context, id int64) (*model.Instructor, error) {
	if ins, ok := m.instructors[id]; ok {
		return ins, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[int64]*model.Course
	// listed, when set, is returned by List as is
	listed []model.Course
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[int64]*model.Course)}
}

func (m *mockCourseRepo) GetByID(_ context.Context, id int64) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context, filter repository.CourseFilter) ([]model.Course, error) {
	if m.listed != nil {
		return m.listed, nil
	}
	var result []model.Course
	for _, c := range m.courses {
		day := c.Date.Format("2006-01-02")
		if filter.From != nil && day < filter.From.Format("2006-01-02") {
			continue
		}
		if filter.To != nil && day > filter.To.Format("2006-01-02") {
			continue
		}
		if filter.InstructorID != nil && (c.InstructorID == nil || *c.InstructorID != *filter.InstructorID) {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].CourseID < result[j].CourseID
	})
	return result, nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students    map[string]*model.Student
	enrollments map[int64][]string
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{
		students:    make(map[string]*model.Student),
		enrollments: make(map[int64][]string),
	}
}

func (m *mockStudentRepo) enroll(courseID int64, students ...model.Student) {
	for i := range students {
		st := students[i]
		m.students[st.StudentID] = &st
		m.enrollments[courseID] = append(m.enrollments[courseID], st.StudentID)
	}
}

func (m *mockStudentRepo) ListRoster(_ context.Context, courseID int64) ([]model.Student, error) {
	result := []model.Student{}
	for _, id := range m.enrollments[courseID] {
		result = append(result, *m.students[id])
	}
	return result, nil
}

func (m *mockStudentRepo) IsEnrolled(_ context.Context, courseID int64, studentID string) (bool, error) {
	for _, id := range m.enrollments[courseID] {
		if id == studentID {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock GradeRepository ──

type mockGradeRepo struct {
	grades    map[string]*model.Grade
	upsertErr map[string]error // by student id
	upserts   int
}

func newMockGradeRepo() *mockGradeRepo {
	return &mockGradeRepo{
		grades:    make(map[string]*model.Grade),
		upsertErr: make(map[string]error),
	}
}

func gradeKey(studentID string, courseID int64) string {
	return fmt.Sprintf("%s|%d", studentID, courseID)
}

func (m *mockGradeRepo) Get(_ context.Context, studentID string, courseID int64) (*model.Grade, error) {
	if g, ok := m.grades[gradeKey(studentID, courseID)]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGradeRepo) ListByCourse(_ context.Context, courseID int64) ([]model.Grade, error) {
	var result []model.Grade
	for _, g := range m.grades {
		if g.CourseID == courseID {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGradeRepo) Upsert(_ context.Context, grade *model.Grade) error {
	m.upserts++
	if err, ok := m.upsertErr[grade.StudentID]; ok {
		return err
	}
	cp := *grade
	m.grades[gradeKey(grade.StudentID, grade.CourseID)] = &cp
	return nil
}

// ── Mock HonorariumPaymentRepository ──

type mockPaymentRepo struct {
	payments map[string]*model.HonorariumPayment
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: make(map[string]*model.HonorariumPayment)}
}

func paymentKey(instructorID int64, yearMonth string) string {
	return fmt.Sprintf("%d|%s", instructorID, yearMonth)
}

func (m *mockPaymentRepo) ListBetween(_ context.Context, from, to string) ([]model.HonorariumPayment, error) {
	var result []model.HonorariumPayment
	for _, p := range m.payments {
		if p.YearMonth >= from && p.YearMonth <= to {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPaymentRepo) Save(_ context.Context, payment *model.HonorariumPayment) error {
	key := paymentKey(payment.InstructorID, payment.YearMonth)
	existing, ok := m.payments[key]
	if payment.Version == 0 {
		if ok {
			return pkgerrors.ErrOptimisticLock
		}
		payment.Version = 1
	} else {
		if !ok || existing.Version != payment.Version {
			return pkgerrors.ErrOptimisticLock
		}
		payment.Version++
	}
	cp := *payment
	m.payments[key] = &cp
	return nil
}

// ── Mock PendingStore ──

type mockPendingStore struct {
	data map[string][]byte
}

func newMockPendingStore() *mockPendingStore {
	return &mockPendingStore{data: make(map[string][]byte)}
}

func (m *mockPendingStore) SavePending(_ context.Context, userID string, payload []byte) error {
	m.data[userID] = payload
	return nil
}

func (m *mockPendingStore) LoadPending(_ context.Context, userID string) ([]byte, error) {
	return m.data[userID], nil
}

func (m *mockPendingStore) DeletePending(_ context.Context, userID string) error {
	delete(m.data, userID)
	return nil
}

// ── fixture ──

type mocks struct {
	instructors *mockInstructorRepo
	courses     *mockCourseRepo
	students    *mockStudentRepo
	grades      *mockGradeRepo
	payments    *mockPaymentRepo
}

func newMockRepository() (*repository.Repository, *mocks) {
	m := &mocks{
		instructors: newMockInstructorRepo(),
		courses:     newMockCourseRepo(),
		students:    newMockStudentRepo(),
		grades:      newMockGradeRepo(),
		payments:    newMockPaymentRepo(),
	}
	repo := &repository.Repository{
		Instructor: m.instructors,
		Course:     m.courses,
		Student:    m.students,
		Grade:      m.grades,
		Payment:    m.payments,
	}
	return repo, m
}

func testConfig() *config.Config {
	return &config.Config{
		Server:     config.ServerConfig{BaseURL: "https://capacita.example.mx"},
		Honorarium: config.HonorariumConfig{Timezone: "UTC"},
	}
}
