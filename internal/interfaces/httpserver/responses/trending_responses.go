package responses

import (
	"time"

	domain "github.com/shadefast/moderation-api/internal/domain/trending"
)

// TrendingChallenge is one ranked challenge with its activity aggregates.
type TrendingChallenge struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	CreatorID        string    `json:"creatorId"`
	CreatedAt        time.Time `json:"createdAt"`
	ExpiresAt        time.Time `json:"expiresAt"`
	EntryCount       int       `json:"entryCount"`
	RecentEntryCount int       `json:"recentEntryCount"`
	ParticipantCount int       `json:"participantCount"`
	TrendScore       int       `json:"trendScore"`
}

// TrendingChallengeList wraps the ranking.
type TrendingChallengeList struct {
	Challenges []TrendingChallenge `json:"challenges"`
}

func NewTrendingChallengeList(ranked []domain.RankedChallenge) TrendingChallengeList {
	challenges := make([]TrendingChallenge, 0, len(ranked))
	for _, item := range ranked {
		challenges = append(challenges, TrendingChallenge{
			ID:               item.ID,
			Title:            item.Title,
			Description:      item.Description,
			CreatorID:        item.CreatorID,
			CreatedAt:        item.CreatedAt,
			ExpiresAt:        item.ExpiresAt,
			EntryCount:       item.EntryCount,
			RecentEntryCount: item.RecentEntryCount,
			ParticipantCount: item.ParticipantCount,
			TrendScore:       item.TrendScore,
		})
	}
	return TrendingChallengeList{Challenges: challenges}
}

// TrendingPollPost is the parent post summary attached to a ranked poll.
type TrendingPollPost struct {
	ID          string    `json:"id"`
	CommunityID *string   `json:"communityId"`
	Content     *string   `json:"content"`
	LikeCount   int       `json:"likeCount"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// TrendingPoll is one ranked poll with tallies and the caller's selection.
type TrendingPoll struct {
	ID                  string           `json:"id"`
	Question            string           `json:"question"`
	Options             []string         `json:"options"`
	Counts              []int            `json:"counts"`
	TotalVotes          int              `json:"totalVotes"`
	TrendScore          int              `json:"trendScore"`
	SelectedOptionIndex *int             `json:"selectedOptionIndex"`
	CreatedAt           time.Time        `json:"createdAt"`
	Post                TrendingPollPost `json:"post"`
}

// TrendingPollList wraps the ranking.
type TrendingPollList struct {
	Polls []TrendingPoll `json:"polls"`
}

func NewTrendingPollList(ranked []domain.RankedPoll) TrendingPollList {
	polls := make([]TrendingPoll, 0, len(ranked))
	for _, item := range ranked {
		polls = append(polls, TrendingPoll{
			ID:                  item.ID,
			Question:            item.Question,
			Options:             item.Options,
			Counts:              item.Counts,
			TotalVotes:          item.TotalVotes,
			TrendScore:          item.TrendScore,
			SelectedOptionIndex: item.SelectedOptionIndex,
			CreatedAt:           item.CreatedAt,
			Post: TrendingPollPost{
				ID:          item.Post.ID,
				CommunityID: item.Post.CommunityID,
				Content:     item.Post.Content,
				LikeCount:   item.Post.LikeCount,
				CreatedAt:   item.Post.CreatedAt,
				ExpiresAt:   item.Post.ExpiresAt,
			},
		})
	}
	return TrendingPollList{Polls: polls}
}
