package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Option mutates the query before it is executed.
type Option func(*gorm.DB) *gorm.DB

// WithOrder applies an ORDER BY clause, e.g. "created_at desc".
func WithOrder(order string) Option {
	return func(tx *gorm.DB) *gorm.DB {
		if order == "" {
			return tx
		}
		return tx.Order(order)
	}
}

// WithLimit caps the number of returned rows.
func WithLimit(limit int) Option {
	return func(tx *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return tx
		}
		return tx.Limit(limit)
	}
}

// Repository is a typed data store for a single gorm model.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	Find(ctx context.Context, filter *T, opts ...Option) ([]*T, error)
	FindOne(ctx context.Context, filter *T) (*T, error)
	Delete(ctx context.Context, filter *T) (int64, error)
}

type store[T any] struct {
	db *gorm.DB
}

// ProvideStore builds a Repository bound to the given connection.
func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) Create(ctx context.Context, record *T) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *store[T]) Find(ctx context.Context, filter *T, opts ...Option) ([]*T, error) {
	tx := s.db.WithContext(ctx)
	if filter != nil {
		tx = tx.Where(filter)
	}
	for _, opt := range opts {
		tx = opt(tx)
	}

	var records []*T
	if err := tx.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *store[T]) FindOne(ctx context.Context, filter *T) (*T, error) {
	var record T
	err := s.db.WithContext(ctx).Where(filter).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Delete removes matching rows and reports how many were deleted.
func (s *store[T]) Delete(ctx context.Context, filter *T) (int64, error) {
	var model T
	tx := s.db.WithContext(ctx).Where(filter).Delete(&model)
	return tx.RowsAffected, tx.Error
}
