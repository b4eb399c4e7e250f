package trending

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/shadefast/moderation-api/internal/domain/trending"
	"github.com/shadefast/moderation-api/internal/infrastructure/database/entities"
)

// Repository serves the social-graph reads behind the trending rankings.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ActiveChallenges(ctx context.Context, fetchLimit int) ([]domain.Challenge, error) {
	var rows []entities.Challenge
	err := r.db.WithContext(ctx).
		Where("expires_at > ?", time.Now()).
		Order("created_at DESC").
		Limit(fetchLimit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	challenges := make([]domain.Challenge, 0, len(rows))
	for _, row := range rows {
		challenges = append(challenges, domain.Challenge{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			CreatorID:   row.CreatorUUID,
			CreatedAt:   row.CreatedAt,
			ExpiresAt:   row.ExpiresAt,
		})
	}
	return challenges, nil
}

func (r *Repository) EntriesForChallenges(ctx context.Context, challengeIDs []string) ([]domain.ChallengeEntry, error) {
	if len(challengeIDs) == 0 {
		return nil, nil
	}

	var rows []entities.ChallengeEntry
	err := r.db.WithContext(ctx).
		Where("challenge_id IN ?", challengeIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ChallengeEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.ChallengeEntry{
			ChallengeID: row.ChallengeID,
			UserID:      row.UserUUID,
			CreatedAt:   row.CreatedAt,
		})
	}
	return entries, nil
}

func (r *Repository) RecentPolls(ctx context.Context, fetchLimit int) ([]domain.Poll, error) {
	var pollRows []entities.Poll
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(fetchLimit).
		Find(&pollRows).Error
	if err != nil {
		return nil, err
	}
	if len(pollRows) == 0 {
		return nil, nil
	}

	postIDs := make([]string, 0, len(pollRows))
	for _, row := range pollRows {
		postIDs = append(postIDs, row.PostID)
	}

	var postRows []entities.Post
	if err := r.db.WithContext(ctx).Where("id IN ?", postIDs).Find(&postRows).Error; err != nil {
		return nil, err
	}

	postsByID := make(map[string]entities.Post, len(postRows))
	for _, row := range postRows {
		postsByID[row.ID] = row
	}

	polls := make([]domain.Poll, 0, len(pollRows))
	for _, row := range pollRows {
		post, ok := postsByID[row.PostID]
		if !ok {
			continue
		}
		polls = append(polls, domain.Poll{
			ID:        row.ID,
			Question:  row.Question,
			Options:   decodeOptions(row.Options),
			CreatedAt: row.CreatedAt,
			Post: domain.Post{
				ID:          post.ID,
				CommunityID: post.CommunityID,
				Content:     post.Content,
				LikeCount:   post.LikeCount,
				CreatedAt:   post.CreatedAt,
				ExpiresAt:   post.ExpiresAt,
			},
		})
	}
	return polls, nil
}

func (r *Repository) VotesForPolls(ctx context.Context, pollIDs []string) ([]domain.PollVote, error) {
	return r.votes(ctx, "", pollIDs)
}

func (r *Repository) UserVotesForPolls(ctx context.Context, userID string, pollIDs []string) ([]domain.PollVote, error) {
	return r.votes(ctx, userID, pollIDs)
}

func (r *Repository) votes(ctx context.Context, userID string, pollIDs []string) ([]domain.PollVote, error) {
	if len(pollIDs) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx).Where("poll_id IN ?", pollIDs)
	if userID != "" {
		query = query.Where("user_uuid = ?", userID)
	}

	var rows []entities.PollVote
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	votes := make([]domain.PollVote, 0, len(rows))
	for _, row := range rows {
		votes = append(votes, domain.PollVote{
			PollID:      row.PollID,
			UserID:      row.UserUUID,
			OptionIndex: row.OptionIndex,
		})
	}
	return votes, nil
}

// CanAccessCommunity mirrors the app's visibility rule: public communities
// and the creator are always visible, private ones require membership.
func (r *Repository) CanAccessCommunity(ctx context.Context, communityID, userID string) (bool, error) {
	var community entities.Community
	err := r.db.WithContext(ctx).Where("id = ?", communityID).First(&community).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if !community.IsPrivate || community.CreatorUUID == userID {
		return true, nil
	}

	var count int64
	err = r.db.WithContext(ctx).
		Model(&entities.CommunityMembership{}).
		Where("community_id = ? AND user_uuid = ?", communityID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func decodeOptions(raw string) []string {
	var options []string
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil
	}
	return options
}
