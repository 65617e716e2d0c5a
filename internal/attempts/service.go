package attempts

import (
	"context"
	"fmt"
	"math"
)

type Service interface {
	Record(ctx context.Context, attempt *Attempt) error
	ListForStudent(ctx context.Context, studentID int64, q ListQuery) (*PaginatedAttempts, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Record(ctx context.Context, attempt *Attempt) error {
	if err := s.repo.Create(ctx, attempt); err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

func (s *service) ListForStudent(ctx context.Context, studentID int64, q ListQuery) (*PaginatedAttempts, error) {
	q.normalize()
	offset := (q.Page - 1) * q.Limit

	rows, total, err := s.repo.ListByStudent(ctx, studentID, q.Limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	if rows == nil {
		rows = []Attempt{}
	}

	return &PaginatedAttempts{
		Attempts:   rows,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
	}, nil
}
