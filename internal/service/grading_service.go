package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/dto"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/grading"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/repository"
)

// ── grading module errors ──

var (
	ErrSessionNotOpen = errors.New("no hay una sesión de calificación abierta")
)

// PendingStore keeps one snapshot of unsaved edits per user so a session
// survives restarts and moves between instances. Implemented by pkg/redis.Client.
type PendingStore interface {
	SavePending(ctx context.Context, userID string, payload []byte) error
	LoadPending(ctx context.Context, userID string) ([]byte, error)
	DeletePending(ctx context.Context, userID string) error
}

// pendingSnapshot stored payload; CourseID tells which course the edits belong to.
type pendingSnapshot struct {
	CourseID int64                 `json:"course_id"`
	Edits    []grading.PendingEdit `json:"edits"`
}

// GradingService grading sessions, one per caller.
//
// Each caller has at most one open session. Opening a session on another
// course discards the previous course's pending edits.
type GradingService interface {
	Open(ctx context.Context, userID string, courseID int64) (*dto.SessionResponse, error)
	Current(ctx context.Context, userID string) (*dto.SessionResponse, error)
	SetField(ctx context.Context, userID, studentID string, req *dto.SetFieldRequest) (*dto.RowResponse, error)
	SaveOne(ctx context.Context, userID, studentID string) (*dto.RowResponse, error)
	SaveAll(ctx context.Context, userID string) (*dto.SaveAllResponse, error)
	Close(ctx context.Context, userID string) error
	// DrainNotifications returns what a failed call left in the caller's session.
	DrainNotifications(userID string) []dto.NotificationResponse
}

type sessionEntry struct {
	mu      sync.Mutex
	session *grading.Session
	notes   *notificationBuffer
}

type gradingService struct {
	repo   *repository.Repository
	store  PendingStore
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// NewGradingService creates a GradingService. store may be nil.
func NewGradingService(repo *repository.Repository, store PendingStore, logger *zap.Logger) GradingService {
	return &gradingService{
		repo:     repo,
		store:    store,
		logger:   logger,
		sessions: make(map[string]*sessionEntry),
	}
}

func (s *gradingService) entry(userID string) (*sessionEntry, error) {
	s.mu.Lock()
	e, ok := s.sessions[userID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotOpen
	}
	return e, nil
}

// ────────────────────── Open ──────────────────────

func (s *gradingService) Open(ctx context.Context, userID string, courseID int64) (*dto.SessionResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("failed to load course", zap.Int64("course_id", courseID), zap.Error(err))
		return nil, err
	}

	notes := newNotificationBuffer(s.logger.With(zap.String("user_id", userID), zap.Int64("course_id", courseID)))
	session, err := grading.OpenSession(ctx, newGradingStore(s.repo), notes, s.logger, *course, userID)
	if err != nil {
		if !errors.Is(err, grading.ErrRosterNotFound) {
			s.logger.Error("failed to open grading session", zap.Int64("course_id", courseID), zap.Error(err))
		}
		return nil, err
	}

	// locked before it is published so no request sees it half restored
	e := &sessionEntry{session: session, notes: notes}
	e.mu.Lock()
	defer e.mu.Unlock()

	s.mu.Lock()
	prev := s.sessions[userID]
	s.sessions[userID] = e
	s.mu.Unlock()

	// reopening the same course keeps its edits; another course drops them
	var carried []grading.PendingEdit
	dropped := 0
	if prev != nil {
		prev.mu.Lock()
		prevCourse := prev.session.Course().CourseID
		prevEdits := prev.session.PendingEdits()
		prev.mu.Unlock()
		if prevCourse == courseID {
			carried = prevEdits
		} else {
			dropped = len(prevEdits)
		}
	}

	// the stored snapshot may predate this process; edits of any other course are dropped
	snap := s.loadSnapshot(ctx, userID)
	if snap != nil && snap.CourseID != courseID {
		s.deleteSnapshot(ctx, userID)
		if prev == nil {
			dropped = len(snap.Edits)
		}
		snap = nil
	}

	if dropped > 0 {
		notes.Notify(fmt.Sprintf("Se descartaron %d cambios sin guardar del curso anterior", dropped), grading.SeverityWarning)
	}

	switch {
	case len(carried) > 0:
		e.session.RestorePending(carried)
	case snap != nil:
		if n := e.session.RestorePending(snap.Edits); n > 0 {
			notes.Notify(fmt.Sprintf("Se recuperaron %d cambios sin guardar", n), grading.SeverityInfo)
		}
	}
	return s.sessionResponse(e), nil
}

// ────────────────────── Current ──────────────────────

func (s *gradingService) Current(_ context.Context, userID string) (*dto.SessionResponse, error) {
	e, err := s.entry(userID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return s.sessionResponse(e), nil
}

// ────────────────────── SetField ──────────────────────

func (s *gradingService) SetField(ctx context.Context, userID, studentID string, req *dto.SetFieldRequest) (*dto.RowResponse, error) {
	field, err := grading.ParseField(req.Field)
	if err != nil {
		return nil, err
	}

	e, err := s.entry(userID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.session.SetField(studentID, field, req.Value); err != nil {
		return nil, err
	}
	s.saveSnapshot(ctx, userID, e)

	return s.rowResponse(e, studentID)
}

// ────────────────────── SaveOne ──────────────────────

func (s *gradingService) SaveOne(ctx context.Context, userID, studentID string) (*dto.RowResponse, error) {
	e, err := s.entry(userID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.session.SaveOne(ctx, studentID); err != nil {
		return nil, err
	}
	s.saveSnapshot(ctx, userID, e)

	return s.rowResponse(e, studentID)
}

// ────────────────────── SaveAll ──────────────────────

func (s *gradingService) SaveAll(ctx context.Context, userID string) (*dto.SaveAllResponse, error) {
	e, err := s.entry(userID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	result, err := e.session.SaveAll(ctx)
	if result.Succeeded > 0 {
		s.saveSnapshot(ctx, userID, e)
	}
	if err != nil {
		return nil, err
	}

	resp := &dto.SaveAllResponse{
		Succeeded:    result.Succeeded,
		Failed:       result.Failed,
		PendingCount: e.session.PendingCount(),
	}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, dto.SaveFailureResponse{StudentID: f.StudentID, Message: f.Message})
	}
	resp.Notifications = e.notes.drain()
	return resp, nil
}

// ────────────────────── Close ──────────────────────

func (s *gradingService) Close(ctx context.Context, userID string) error {
	s.mu.Lock()
	_, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotOpen
	}

	s.deleteSnapshot(ctx, userID)
	return nil
}

func (s *gradingService) DrainNotifications(userID string) []dto.NotificationResponse {
	e, err := s.entry(userID)
	if err != nil {
		return []dto.NotificationResponse{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.notes.drain()
}

// ── snapshots ──

// saveSnapshot stores the pending edits of e. Caller holds e.mu.
// An entry replaced by a later Open no longer writes, so it cannot clobber
// the snapshot of the course now open.
func (s *gradingService) saveSnapshot(ctx context.Context, userID string, e *sessionEntry) {
	if s.store == nil {
		return
	}
	s.mu.Lock()
	current := s.sessions[userID] == e
	s.mu.Unlock()
	if !current {
		return
	}

	courseID := e.session.Course().CourseID
	edits := e.session.PendingEdits()
	if len(edits) == 0 {
		s.deleteSnapshot(ctx, userID)
		return
	}
	payload, err := json.Marshal(pendingSnapshot{CourseID: courseID, Edits: edits})
	if err != nil {
		s.logger.Warn("failed to encode pending edits", zap.Error(err))
		return
	}
	if err := s.store.SavePending(ctx, userID, payload); err != nil {
		s.logger.Warn("failed to store pending edits",
			zap.String("user_id", userID), zap.Int64("course_id", courseID), zap.Error(err))
	}
}

func (s *gradingService) loadSnapshot(ctx context.Context, userID string) *pendingSnapshot {
	if s.store == nil {
		return nil
	}
	payload, err := s.store.LoadPending(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load pending edits", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	if len(payload) == 0 {
		return nil
	}

	var snap pendingSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		s.logger.Warn("discarding unreadable pending edits", zap.String("user_id", userID), zap.Error(err))
		s.deleteSnapshot(ctx, userID)
		return nil
	}
	return &snap
}

func (s *gradingService) deleteSnapshot(ctx context.Context, userID string) {
	if s.store == nil {
		return
	}
	if err := s.store.DeletePending(ctx, userID); err != nil {
		s.logger.Warn("failed to delete pending edits", zap.String("user_id", userID), zap.Error(err))
	}
}

// ── views ──

func (s *gradingService) sessionResponse(e *sessionEntry) *dto.SessionResponse {
	course := e.session.Course()
	rows := e.session.Rows()
	resp := &dto.SessionResponse{
		Course:       toCourseResponse(&course),
		PendingCount: e.session.PendingCount(),
		Rows:         make([]dto.GradeRowResponse, 0, len(rows)),
	}
	for _, r := range rows {
		resp.Rows = append(resp.Rows, toGradeRowResponse(r, course.RequiresPracticalExam))
	}
	resp.Notifications = e.notes.drain()
	return resp
}

func (s *gradingService) rowResponse(e *sessionEntry, studentID string) (*dto.RowResponse, error) {
	row, err := e.session.Row(studentID)
	if err != nil {
		return nil, err
	}
	return &dto.RowResponse{
		Row:           toGradeRowResponse(row, e.session.Course().RequiresPracticalExam),
		PendingCount:  e.session.PendingCount(),
		Notifications: e.notes.drain(),
	}, nil
}

func toGradeRowResponse(r grading.Row, requiresPractical bool) dto.GradeRowResponse {
	resp := dto.GradeRowResponse{
		StudentID:         r.Student.StudentID,
		FullName:          r.Student.FullName(),
		JobTitle:          r.Student.JobTitle,
		InitialExam:       r.InitialExam.Number,
		FinalExam:         r.FinalExam.Number,
		Notes:             r.Notes,
		Average:           round2(r.Average),
		Result:            string(r.Result),
		HasPendingChanges: r.HasPendingChanges,
		CanSave:           r.CanSave,
	}
	if requiresPractical {
		resp.PracticalExam = r.PracticalExam.Number
	}
	return resp
}

// ToValidationFailure builds the error payload of a rejected save.
func ToValidationFailure(err error) (*dto.ValidationFailureResponse, bool) {
	var batch *grading.BatchValidationError
	if errors.As(err, &batch) {
		resp := &dto.ValidationFailureResponse{}
		for _, v := range batch.Invalid {
			resp.Invalid = append(resp.Invalid, toInvalidEntry(v))
		}
		return resp, true
	}
	var single *grading.ValidationError
	if errors.As(err, &single) {
		return &dto.ValidationFailureResponse{Invalid: []dto.InvalidEntryResponse{toInvalidEntry(single)}}, true
	}
	return nil, false
}

func toInvalidEntry(v *grading.ValidationError) dto.InvalidEntryResponse {
	entry := dto.InvalidEntryResponse{StudentID: v.StudentID}
	for _, f := range v.Missing {
		entry.Missing = append(entry.Missing, string(f))
	}
	return entry
}

var (
	_ grading.Repository = (*gradingStore)(nil)
	_ grading.Notifier   = (*notificationBuffer)(nil)
)
