package notify

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListRecent(ctx context.Context, limit int, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id uint) error
	MarkAllRead(ctx context.Context) error
	UnreadCount(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) ListRecent(ctx context.Context, limit int, unreadOnly bool) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.WithContext(ctx).Model(&Notification{})
	if unreadOnly {
		query = query.Where("read = ?", false)
	}
	var notifications []Notification
	err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error
	return notifications, err
}

func (r *repository) MarkRead(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&Notification{}).Where("id = ?", id).Update("read", true).Error
}

func (r *repository) MarkAllRead(ctx context.Context) error {
	return r.db.WithContext(ctx).Model(&Notification{}).Where("read = ?", false).Update("read", true).Error
}

func (r *repository) UnreadCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Notification{}).Where("read = ?", false).Count(&count).Error
	return count, err
}
