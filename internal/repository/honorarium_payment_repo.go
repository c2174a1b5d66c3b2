package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
	pkgerrors "github.com/Kike1196/beyco-sdadd-sub000/pkg/errors"
)

// HonorariumPaymentRepository recorded honorarium payments
type HonorariumPaymentRepository interface {
	ListBetween(ctx context.Context, fromYearMonth, toYearMonth string) ([]model.HonorariumPayment, error)
	Save(ctx context.Context, payment *model.HonorariumPayment) error
}

type honorariumPaymentRepo struct {
	db *gorm.DB
}

// NewHonorariumPaymentRepo creates a HonorariumPaymentRepository.
func NewHonorariumPaymentRepo(db *gorm.DB) HonorariumPaymentRepository {
	return &honorariumPaymentRepo{db: db}
}

// ListBetween payments whose month lies in [from, to]; months are "2006-01" strings and sort lexically.
func (r *honorariumPaymentRepo) ListBetween(ctx context.Context, fromYearMonth, toYearMonth string) ([]model.HonorariumPayment, error) {
	var list []model.HonorariumPayment
	err := r.db.WithContext(ctx).
		Where("year_month >= ? AND year_month <= ?", fromYearMonth, toYearMonth).
		Order("year_month ASC, instructor_id ASC").
		Find(&list).Error
	return list, err
}

// Save inserts a new payment (Version 0) or updates an existing one guarded by
// its version. A lost race in either case yields ErrOptimisticLock.
func (r *honorariumPaymentRepo) Save(ctx context.Context, payment *model.HonorariumPayment) error {
	if payment.Version == 0 {
		payment.Version = 1
		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(payment)
		if result.Error != nil {
			payment.Version = 0
			return result.Error
		}
		if result.RowsAffected == 0 {
			payment.Version = 0
			return pkgerrors.ErrOptimisticLock
		}
		return nil
	}

	oldVersion := payment.Version
	result := r.db.WithContext(ctx).
		Model(&model.HonorariumPayment{}).
		Where("instructor_id = ? AND year_month = ? AND version = ?", payment.InstructorID, payment.YearMonth, oldVersion).
		Updates(map[string]interface{}{
			"paid_at":    payment.PaidAt,
			"amount":     payment.Amount,
			"reference":  payment.Reference,
			"updated_by": payment.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	payment.Version = oldVersion + 1
	return nil
}
