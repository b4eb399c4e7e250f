package trending

import (
	"context"
	"regexp"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/shadefast/moderation-api/internal/utils/apierrors"
)

const (
	// DefaultLimit is applied when the caller omits a limit.
	DefaultLimit = 20
	// MaxLimit caps how many ranked items one request may ask for.
	MaxLimit = 50

	recentEntryWindow = 24 * time.Hour
	fetchCap          = 200
)

const (
	CodeInvalidLimit           = "invalid_limit"
	CodeInvalidCommunityID     = "invalid_community_id"
	CodeMembershipRequired     = "membership_required"
	CodeChallengesQueryFailed  = "challenges_query_failed"
	CodeEntriesQueryFailed     = "challenge_entries_query_failed"
	CodePollsQueryFailed       = "polls_query_failed"
	CodePollVotesQueryFailed   = "poll_votes_query_failed"
	CodeUserVotesQueryFailed   = "poll_user_votes_query_failed"
	CodeMembershipLookupFailed = "membership_lookup_failed"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// Repository provides the social-graph reads the ranking needs.
type Repository interface {
	ActiveChallenges(ctx context.Context, fetchLimit int) ([]Challenge, error)
	EntriesForChallenges(ctx context.Context, challengeIDs []string) ([]ChallengeEntry, error)
	RecentPolls(ctx context.Context, fetchLimit int) ([]Poll, error)
	VotesForPolls(ctx context.Context, pollIDs []string) ([]PollVote, error)
	UserVotesForPolls(ctx context.Context, userID string, pollIDs []string) ([]PollVote, error)
	CanAccessCommunity(ctx context.Context, communityID, userID string) (bool, error)
}

// Service computes the trending rankings.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "trending-service").Logger(),
	}
}

// TrendingChallenges ranks unexpired challenges by recent activity.
func (s *Service) TrendingChallenges(ctx context.Context, limit int) ([]RankedChallenge, error) {
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}

	challenges, err := s.repo.ActiveChallenges(ctx, fetchLimit(limit))
	if err != nil {
		s.log.Error().Err(err).Msg("challenges query failed")
		return nil, apierrors.Internal(CodeChallengesQueryFailed, "Unable to fetch challenges.", err)
	}
	if len(challenges) == 0 {
		return []RankedChallenge{}, nil
	}

	ids := make([]string, 0, len(challenges))
	for _, challenge := range challenges {
		ids = append(ids, challenge.ID)
	}

	entries, err := s.repo.EntriesForChallenges(ctx, ids)
	if err != nil {
		s.log.Error().Err(err).Msg("challenge entries query failed")
		return nil, apierrors.Internal(CodeEntriesQueryFailed, "Unable to fetch challenge activity.", err)
	}

	ranked := RankChallenges(challenges, entries, time.Now())
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// RankChallenges scores challenges by total entries, entries inside the
// 24-hour window, and distinct participants. Pure.
func RankChallenges(challenges []Challenge, entries []ChallengeEntry, now time.Time) []RankedChallenge {
	entryCounts := make(map[string]int)
	recentCounts := make(map[string]int)
	participants := make(map[string]map[string]struct{})
	recentCutoff := now.Add(-recentEntryWindow)

	for _, entry := range entries {
		if entry.ChallengeID == "" {
			continue
		}
		entryCounts[entry.ChallengeID]++

		if entry.UserID != "" {
			set := participants[entry.ChallengeID]
			if set == nil {
				set = make(map[string]struct{})
				participants[entry.ChallengeID] = set
			}
			set[entry.UserID] = struct{}{}
		}

		if !entry.CreatedAt.Before(recentCutoff) {
			recentCounts[entry.ChallengeID]++
		}
	}

	ranked := make([]RankedChallenge, 0, len(challenges))
	for _, challenge := range challenges {
		entryCount := entryCounts[challenge.ID]
		recentEntryCount := recentCounts[challenge.ID]
		participantCount := len(participants[challenge.ID])
		ranked = append(ranked, RankedChallenge{
			Challenge:        challenge,
			EntryCount:       entryCount,
			RecentEntryCount: recentEntryCount,
			ParticipantCount: participantCount,
			TrendScore:       entryCount*2 + recentEntryCount*3 + participantCount,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TrendScore != ranked[j].TrendScore {
			return ranked[i].TrendScore > ranked[j].TrendScore
		}
		return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
	})
	return ranked
}

// TrendingPolls ranks visible polls by vote volume and post likes,
// annotated with the caller's own selection.
func (s *Service) TrendingPolls(ctx context.Context, userID string, limit int, communityID string) ([]RankedPoll, error) {
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}

	if communityID != "" {
		if !uuidPattern.MatchString(communityID) {
			return nil, apierrors.BadRequest(CodeInvalidCommunityID, "communityId must be a valid UUID.")
		}
		canAccess, err := s.repo.CanAccessCommunity(ctx, communityID, userID)
		if err != nil {
			s.log.Error().Err(err).Str("community_id", communityID).Msg("membership lookup failed")
			return nil, apierrors.Internal(CodeMembershipLookupFailed, "Unable to verify community access.", err)
		}
		if !canAccess {
			return nil, apierrors.Forbidden(CodeMembershipRequired,
				"You are not allowed to view polls in this private community.")
		}
	}

	polls, err := s.repo.RecentPolls(ctx, fetchLimit(limit))
	if err != nil {
		s.log.Error().Err(err).Msg("polls query failed")
		return nil, apierrors.Internal(CodePollsQueryFailed, "Unable to fetch trending polls.", err)
	}

	now := time.Now()
	visible := make([]Poll, 0, len(polls))
	for _, poll := range polls {
		if !poll.Post.ExpiresAt.After(now) {
			continue
		}
		if communityID != "" && (poll.Post.CommunityID == nil || *poll.Post.CommunityID != communityID) {
			continue
		}
		if poll.Post.CommunityID != nil && *poll.Post.CommunityID != communityID {
			canAccess, err := s.repo.CanAccessCommunity(ctx, *poll.Post.CommunityID, userID)
			if err != nil || !canAccess {
				continue
			}
		}
		visible = append(visible, poll)
	}
	if len(visible) == 0 {
		return []RankedPoll{}, nil
	}

	pollIDs := make([]string, 0, len(visible))
	for _, poll := range visible {
		pollIDs = append(pollIDs, poll.ID)
	}

	votes, err := s.repo.VotesForPolls(ctx, pollIDs)
	if err != nil {
		s.log.Error().Err(err).Msg("poll votes query failed")
		return nil, apierrors.Internal(CodePollVotesQueryFailed, "Unable to fetch poll votes.", err)
	}

	userVotes, err := s.repo.UserVotesForPolls(ctx, userID, pollIDs)
	if err != nil {
		s.log.Error().Err(err).Msg("user votes query failed")
		return nil, apierrors.Internal(CodeUserVotesQueryFailed, "Unable to fetch your votes.", err)
	}

	ranked := RankPolls(visible, votes, userVotes)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// RankPolls tallies votes per option (votes with out-of-range indices are
// ignored) and scores each poll. Pure.
func RankPolls(polls []Poll, votes []PollVote, userVotes []PollVote) []RankedPoll {
	counts := make(map[string][]int, len(polls))
	for _, poll := range polls {
		counts[poll.ID] = make([]int, len(poll.Options))
	}

	for _, vote := range votes {
		tally, ok := counts[vote.PollID]
		if !ok || vote.OptionIndex < 0 || vote.OptionIndex >= len(tally) {
			continue
		}
		tally[vote.OptionIndex]++
	}

	selections := make(map[string]int, len(userVotes))
	for _, vote := range userVotes {
		selections[vote.PollID] = vote.OptionIndex
	}

	ranked := make([]RankedPoll, 0, len(polls))
	for _, poll := range polls {
		tally := counts[poll.ID]
		total := 0
		for _, count := range tally {
			total += count
		}

		var selected *int
		if index, ok := selections[poll.ID]; ok {
			value := index
			selected = &value
		}

		ranked = append(ranked, RankedPoll{
			Poll:                poll,
			Counts:              tally,
			TotalVotes:          total,
			TrendScore:          total*2 + poll.Post.LikeCount,
			SelectedOptionIndex: selected,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TrendScore != ranked[j].TrendScore {
			return ranked[i].TrendScore > ranked[j].TrendScore
		}
		return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
	})
	return ranked
}

func normalizeLimit(limit int) (int, error) {
	if limit == 0 {
		return DefaultLimit, nil
	}
	if limit < 1 || limit > MaxLimit {
		return 0, apierrors.BadRequest(CodeInvalidLimit, "limit must be between 1 and 50.")
	}
	return limit, nil
}

func fetchLimit(limit int) int {
	fetch := limit * 4
	if fetch > fetchCap {
		return fetchCap
	}
	return fetch
}
