// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements persistence for content pieces. Three backends
// share the Repository contract: PostgreSQL (database/sql + pgx), MySQL
// through GORM, and an in-memory map.
package store

import (
	"context"

	"contentplanner/internal/models"
)

// Repository is the storage contract the API layer depends on.
//
// FindByID returns (nil, nil) when the piece does not exist. Save inserts
// when the piece has no ID (assigning a fresh one) and otherwise replaces
// every column of the row with that ID, inserting it if absent.
type Repository interface {
	FindAll(ctx context.Context) ([]models.ContentPiece, error)
	FindByID(ctx context.Context, id int64) (*models.ContentPiece, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Save(ctx context.Context, p *models.ContentPiece) (*models.ContentPiece, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}
