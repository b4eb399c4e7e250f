package entities

import (
	"time"

	"github.com/lib/pq"
)

// PolicyCheck is the persisted verdict for one object path. The unique
// index on object_path makes the upsert last-writer-wins.
type PolicyCheck struct {
	ID                string         `gorm:"type:varchar(40);primaryKey"`
	UserUUID          string         `gorm:"type:varchar(64);not null;index"`
	ObjectPath        string         `gorm:"type:varchar(512);uniqueIndex;not null"`
	MediaType         string         `gorm:"type:varchar(16);not null"`
	MIMEType          *string        `gorm:"type:varchar(64)"`
	ByteSize          int64          `gorm:"not null"`
	Status            string         `gorm:"type:varchar(16);not null"`
	Provider          string         `gorm:"type:varchar(64);not null"`
	ProviderReference *string        `gorm:"type:varchar(255)"`
	Reason            *string        `gorm:"type:text"`
	Confidence        *float64       `gorm:""`
	Labels            pq.StringArray `gorm:"type:text[]"`
	CheckedAt         time.Time      `gorm:"not null;index"`
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime"`
}

func (PolicyCheck) TableName() string {
	return "media_policy_checks"
}
