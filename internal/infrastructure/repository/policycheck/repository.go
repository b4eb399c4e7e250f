package policycheck

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/shadefast/moderation-api/internal/domain/moderation"
	"github.com/shadefast/moderation-api/internal/infrastructure/database/entities"
)

// Repository handles policy check persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes the latest check for an object path, overwriting any prior
// record for the same path.
func (r *Repository) Upsert(ctx context.Context, check *domain.PolicyCheck) error {
	entity := mapDomain(check)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "object_path"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_uuid",
			"media_type",
			"mime_type",
			"byte_size",
			"status",
			"provider",
			"provider_reference",
			"reason",
			"confidence",
			"labels",
			"checked_at",
		}),
	}).Create(&entity).Error
}

// LatestByPath returns the most recent check for the path and uploader, or
// nil when none exists.
func (r *Repository) LatestByPath(ctx context.Context, objectPath, userID string) (*domain.PolicyCheck, error) {
	var entity entities.PolicyCheck
	err := r.db.WithContext(ctx).
		Where("object_path = ? AND user_uuid = ?", objectPath, userID).
		Order("checked_at DESC").
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	check := mapEntity(entity)
	return &check, nil
}

func mapDomain(check *domain.PolicyCheck) entities.PolicyCheck {
	return entities.PolicyCheck{
		ID:                check.ID,
		UserUUID:          check.UserID,
		ObjectPath:        check.ObjectPath,
		MediaType:         string(check.MediaType),
		MIMEType:          check.MIMEType,
		ByteSize:          check.ByteSize,
		Status:            string(check.Status),
		Provider:          check.Provider,
		ProviderReference: check.ProviderReference,
		Reason:            check.Reason,
		Confidence:        check.Confidence,
		Labels:            pq.StringArray(check.Labels),
		CheckedAt:         check.CheckedAt,
	}
}

func mapEntity(entity entities.PolicyCheck) domain.PolicyCheck {
	return domain.PolicyCheck{
		ID:                entity.ID,
		UserID:            entity.UserUUID,
		ObjectPath:        entity.ObjectPath,
		MediaType:         domain.MediaType(entity.MediaType),
		MIMEType:          entity.MIMEType,
		ByteSize:          entity.ByteSize,
		Status:            domain.VerdictStatus(entity.Status),
		Provider:          entity.Provider,
		ProviderReference: entity.ProviderReference,
		Reason:            entity.Reason,
		Confidence:        entity.Confidence,
		Labels:            []string(entity.Labels),
		CheckedAt:         entity.CheckedAt,
	}
}
