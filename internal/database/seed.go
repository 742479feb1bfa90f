package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"contentplanner/internal/models"
)

// PieceSeeder is the part of the content store Seed needs.
type PieceSeeder interface {
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, p *models.ContentPiece) (*models.ContentPiece, error)
}

// DemoPieces returns the sample content pieces used to populate an empty
// development database, one per pillar.
func DemoPieces(now time.Time) []models.ContentPiece {
	demo := func(title, pillar, format, status, performance string) models.ContentPiece {
		return models.ContentPiece{
			Title:         models.StringPtr(title),
			ContentPillar: models.StringPtr(pillar),
			Format:        models.StringPtr(format),
			Status:        models.StringPtr(status),
			Performance:   models.StringPtr(performance),
			Notes:         models.StringPtr("Notes"),
			UploadDate:    models.TimePtr(now),
			Link:          models.StringPtr("Link"),
			Script:        models.StringPtr("Script"),
			Shotlist:      models.StringPtr("Shotlist"),
			Hook:          models.StringPtr("Hook"),
			Caption:       models.StringPtr("Caption"),
		}
	}
	return []models.ContentPiece{
		demo("Tech Video 1", "Tech", "Talking Head", models.StatusIdeation, "High"),
		demo("Business Video 1", "Business", "List Video", models.StatusNeedsScripting, "Medium"),
		demo("Lifestyle Video 1", "Lifestyle", "Talking Head", models.StatusReadyToPost, "High"),
	}
}

// Seed populates an empty content store with the demo pieces. It does
// nothing when any piece already exists.
func Seed(ctx context.Context, s PieceSeeder) error {
	count, err := s.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed check content: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	now := time.Now().UTC().Truncate(time.Second)
	for _, p := range DemoPieces(now) {
		if _, err := s.Save(ctx, &p); err != nil {
			return fmt.Errorf("seed insert %q: %w", *p.Title, err)
		}
	}

	slog.Info("database seeded with demo content", "pieces", len(DemoPieces(now)))
	return nil
}
