// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"contentplanner/internal/models"
)

// OpenMySQL returns a GORM DB connected to MySQL with the content_pieces
// table created or updated by AutoMigrate.
func OpenMySQL(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("mysql dsn is empty")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:      logger.Default.LogMode(logger.Warn),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql.DB error: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := AutoMigrate(db); err != nil {
		sqlDB.Close()
		return nil, err
	}

	slog.Info("database connected", "driver", "mysql")
	return db, nil
}

// AutoMigrate creates or updates the schema GORM derives from the models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.ContentPiece{}); err != nil {
		return fmt.Errorf("gorm automigrate: %w", err)
	}
	return nil
}
