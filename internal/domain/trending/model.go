package trending

import "time"

// Challenge is an active community challenge eligible for ranking.
type Challenge struct {
	ID          string
	Title       string
	Description string
	CreatorID   string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// ChallengeEntry is one submission against a challenge.
type ChallengeEntry struct {
	ChallengeID string
	UserID      string
	CreatedAt   time.Time
}

// RankedChallenge carries a challenge with its activity aggregates and
// trend score.
type RankedChallenge struct {
	Challenge
	EntryCount       int
	RecentEntryCount int
	ParticipantCount int
	TrendScore       int
}

// Post is the post a poll hangs off of.
type Post struct {
	ID          string
	CommunityID *string
	Content     *string
	LikeCount   int
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Poll is a poll joined with its parent post.
type Poll struct {
	ID        string
	Question  string
	Options   []string
	CreatedAt time.Time
	Post      Post
}

// PollVote is one vote on a poll option.
type PollVote struct {
	PollID      string
	UserID      string
	OptionIndex int
}

// RankedPoll carries a poll with vote tallies and trend score.
type RankedPoll struct {
	Poll
	Counts              []int
	TotalVotes          int
	TrendScore          int
	SelectedOptionIndex *int
}
