package history

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, action *StationAction) error
	GetByFilter(ctx context.Context, filter ActionFilter) ([]StationAction, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, action *StationAction) error {
	return r.db.WithContext(ctx).Create(action).Error
}

func (r *repository) GetByFilter(ctx context.Context, filter ActionFilter) ([]StationAction, int64, error) {
	var actions []StationAction
	var total int64

	query := r.db.WithContext(ctx).Model(&StationAction{})

	if filter.Operator != "" {
		query = query.Where("operator = ?", filter.Operator)
	}
	if filter.EventID != "" {
		query = query.Where("event_id = ?", filter.EventID)
	}
	if filter.PersonID != "" {
		query = query.Where("person_id = ?", filter.PersonID)
	}
	if filter.Action != "" {
		query = query.Where("action ILIKE ?", "%"+filter.Action+"%")
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&actions).Error; err != nil {
		return nil, 0, err
	}

	return actions, total, nil
}
