// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"contentplanner/internal/models"
)

// GormStore handles content piece operations through GORM. It backs the
// MySQL deployment, where the schema comes from AutoMigrate.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GormStore on an open GORM connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// FindAll returns every content piece ordered by ID.
func (s *GormStore) FindAll(ctx context.Context) ([]models.ContentPiece, error) {
	items := []models.ContentPiece{}
	if err := s.db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list content pieces: %w", err)
	}
	return items, nil
}

// FindByID retrieves a content piece by ID. Returns nil if not found.
func (s *GormStore) FindByID(ctx context.Context, id int64) (*models.ContentPiece, error) {
	var p models.ContentPiece
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content piece by id: %w", err)
	}
	return &p, nil
}

// ExistsByID reports whether a content piece with the given ID exists.
func (s *GormStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.ContentPiece{}).Where("id = ?", id).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("content piece exists: %w", err)
	}
	return n > 0, nil
}

// Save creates the piece when it has no ID and otherwise relies on GORM's
// Save, which updates every column and inserts when no row matched.
func (s *GormStore) Save(ctx context.Context, p *models.ContentPiece) (*models.ContentPiece, error) {
	saved := *p
	tx := s.db.WithContext(ctx)
	if saved.ID == 0 {
		if err := tx.Create(&saved).Error; err != nil {
			return nil, fmt.Errorf("create content piece: %w", err)
		}
		return &saved, nil
	}
	if err := tx.Save(&saved).Error; err != nil {
		return nil, fmt.Errorf("save content piece: %w", err)
	}
	return &saved, nil
}

// DeleteByID removes a content piece. Deleting a missing ID is a no-op.
func (s *GormStore) DeleteByID(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(&models.ContentPiece{}, id).Error; err != nil {
		return fmt.Errorf("delete content piece: %w", err)
	}
	return nil
}

// DeleteAll removes every content piece.
func (s *GormStore) DeleteAll(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.ContentPiece{}).Error
	if err != nil {
		return fmt.Errorf("delete all content pieces: %w", err)
	}
	return nil
}

// Count returns the number of stored content pieces.
func (s *GormStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.ContentPiece{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count content pieces: %w", err)
	}
	return int(n), nil
}

// Ping verifies the underlying connection pool is reachable.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("sql.DB error: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
