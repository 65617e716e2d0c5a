package attempts

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, attempt *Attempt) error
	ListByStudent(ctx context.Context, studentID int64, limit, offset int) ([]Attempt, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, attempt *Attempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *repository) ListByStudent(ctx context.Context, studentID int64, limit, offset int) ([]Attempt, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&Attempt{}).Where("student_id = ?", studentID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []Attempt
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, total, err
}
