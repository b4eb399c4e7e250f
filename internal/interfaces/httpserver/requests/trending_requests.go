package requests

// TrendingChallenges requests the current challenge ranking.
type TrendingChallenges struct {
	Limit int `json:"limit"`
}

// TrendingPolls requests the current poll ranking, optionally scoped to one
// community.
type TrendingPolls struct {
	Limit       int    `json:"limit"`
	CommunityID string `json:"communityId"`
}
