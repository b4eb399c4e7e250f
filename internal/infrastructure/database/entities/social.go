package entities

import "time"

// Challenge is a time-boxed community challenge.
type Challenge struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"type:varchar(160);not null"`
	Description string    `gorm:"type:text"`
	CreatorUUID string    `gorm:"type:varchar(64);not null;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
	ExpiresAt   time.Time `gorm:"not null;index"`
}

func (Challenge) TableName() string {
	return "challenges"
}

// ChallengeEntry is one submission against a challenge.
type ChallengeEntry struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	ChallengeID string    `gorm:"type:uuid;not null;index"`
	UserUUID    string    `gorm:"type:varchar(64);not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (ChallengeEntry) TableName() string {
	return "challenge_entries"
}

// Post is the parent record polls hang off of.
type Post struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	CommunityID *string   `gorm:"type:uuid;index"`
	UserUUID    string    `gorm:"type:varchar(64);not null;index"`
	Content     *string   `gorm:"type:text"`
	LikeCount   int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
	ExpiresAt   time.Time `gorm:"not null;index"`
}

func (Post) TableName() string {
	return "posts"
}

// Poll stores its options as a JSON array, matching the app schema.
type Poll struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	PostID    string    `gorm:"type:uuid;not null;uniqueIndex"`
	Question  string    `gorm:"type:varchar(280);not null"`
	Options   string    `gorm:"type:jsonb;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (Poll) TableName() string {
	return "polls"
}

// PollVote records one user's option choice on a poll.
type PollVote struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	PollID      string    `gorm:"type:uuid;not null;index"`
	UserUUID    string    `gorm:"type:varchar(64);not null;index"`
	OptionIndex int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (PollVote) TableName() string {
	return "poll_votes"
}

// Community is a public or private posting space.
type Community struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(120);not null"`
	IsPrivate   bool      `gorm:"not null;default:false"`
	CreatorUUID string    `gorm:"type:varchar(64);not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Community) TableName() string {
	return "communities"
}

// CommunityMembership links users to private communities.
type CommunityMembership struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	CommunityID string    `gorm:"type:uuid;not null;index:idx_membership_community_user"`
	UserUUID    string    `gorm:"type:varchar(64);not null;index:idx_membership_community_user"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (CommunityMembership) TableName() string {
	return "community_memberships"
}
