package enforcement

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "github.com/shadefast/moderation-api/internal/domain/moderation"
)

// Checker delegates ban and rate-limit decisions to the datastore's SQL
// functions, keeping the counters and windows atomic on the database side.
type Checker struct {
	db *gorm.DB
}

func NewChecker(db *gorm.DB) *Checker {
	return &Checker{db: db}
}

// IsUserBanned asks the datastore whether the user is currently restricted.
func (c *Checker) IsUserBanned(ctx context.Context, userID string) (bool, error) {
	var banned bool
	err := c.db.WithContext(ctx).
		Raw("SELECT is_user_banned(?)", userID).
		Scan(&banned).Error
	if err != nil {
		return false, fmt.Errorf("enforcement check failed: %w", err)
	}
	return banned, nil
}

// BumpRateLimit increments the user's counter for the action window and
// returns whether the request is still inside the limit. The counter is
// bumped even on the call that trips the limit.
func (c *Checker) BumpRateLimit(ctx context.Context, userID, action string, window time.Duration, maxRequests int) (domain.RateLimitResult, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Raw("SELECT bump_rate_limit(?, ?, ?)", userID, action, int(window.Seconds())).
		Scan(&count).Error
	if err != nil {
		return domain.RateLimitResult{}, fmt.Errorf("rate limit bump failed: %w", err)
	}

	return domain.RateLimitResult{
		Allowed:      count <= int64(maxRequests),
		CurrentCount: int(count),
	}, nil
}
