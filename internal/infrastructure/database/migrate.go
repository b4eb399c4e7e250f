package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/shadefast/moderation-api/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.PolicyCheck{},
		&entities.Challenge{},
		&entities.ChallengeEntry{},
		&entities.Post{},
		&entities.Poll{},
		&entities.PollVote{},
		&entities.Community{},
		&entities.CommunityMembership{},
	); err != nil {
		return err
	}
	log.Info().Msg("applied moderation schema migrations")
	return nil
}
