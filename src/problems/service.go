// Package problems holds citizen problem reports. Posting is limited to
// one per user per ISO week through the quota ledger.
package problems

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/apperr"
	"github.com/janawaaz/janawaaz/src/quota"
	"github.com/janawaaz/janawaaz/src/types"
)

type Service struct {
	db          *gorm.DB
	ledger      *quota.Ledger
	sanitizer   *bluemonday.Policy
	weeklyLimit int
}

func NewService(db *gorm.DB, ledger *quota.Ledger, weeklyLimit int) *Service {
	if weeklyLimit <= 0 {
		weeklyLimit = 1
	}
	return &Service{
		db:          db,
		ledger:      ledger,
		sanitizer:   bluemonday.StrictPolicy(),
		weeklyLimit: weeklyLimit,
	}
}

type CreateInput struct {
	Title       string
	Description string
	Category    string
	State       string
	District    string
	Latitude    float64
	Longitude   float64
}

// Create posts a problem, consuming the author's weekly allowance.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*types.Problem, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("sign in to report a problem")
	}
	in.Title = strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(in.Title)))
	in.Description = strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(in.Description)))
	if in.Title == "" {
		return nil, apperr.InvalidArgument("title is required")
	}

	res, err := s.ledger.TryConsume(ctx, userID, quota.WindowWeekly, s.weeklyLimit)
	if err != nil {
		return nil, err
	}
	if !res.Allowed {
		return nil, apperr.Newf(apperr.CodeQuotaExceeded,
			"weekly problem limit of %d reached, next one after %s",
			s.weeklyLimit, res.ResetAt.Format("Mon Jan 2"))
	}

	p := types.Problem{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		State:       in.State,
		District:    in.District,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, apperr.Unavailable("problem store failed", err)
	}
	return &p, nil
}

type Filter struct {
	State    string
	District string
	Category string
	Trending bool
}

func (s *Service) List(ctx context.Context, f Filter) ([]types.Problem, error) {
	q := s.db.WithContext(ctx).Preload("User").
		Where("is_removed = ?", false).
		Order("created_at desc").Limit(50)
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	if f.District != "" {
		q = q.Where("district = ?", f.District)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Trending {
		q = q.Where("is_trending = ?", true)
	}

	var out []types.Problem
	if err := q.Find(&out).Error; err != nil {
		return nil, apperr.Unavailable("problem list failed", err)
	}
	return out, nil
}

// Upvote toggles the user's upvote. Returns true when the vote was added,
// false when an existing vote was withdrawn.
func (s *Service) Upvote(ctx context.Context, userID string, problemID uint64) (bool, error) {
	if userID == "" {
		return false, apperr.Unauthenticated("sign in to upvote")
	}

	var p types.Problem
	err := s.db.WithContext(ctx).First(&p, "id = ? AND is_removed = ?", problemID, false).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, apperr.NotFound("problem not found")
	}
	if err != nil {
		return false, apperr.Unavailable("problem lookup failed", err)
	}

	added := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing types.ProblemUpvote
		err := tx.First(&existing, "problem_id = ? AND user_id = ?", problemID, userID).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			return tx.Model(&types.Problem{}).Where("id = ?", problemID).
				UpdateColumn("upvote_count", gorm.Expr("upvote_count - 1")).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			added = true
			if err := tx.Create(&types.ProblemUpvote{ProblemID: problemID, UserID: userID}).Error; err != nil {
				return err
			}
			return tx.Model(&types.Problem{}).Where("id = ?", problemID).
				UpdateColumn("upvote_count", gorm.Expr("upvote_count + 1")).Error
		default:
			return err
		}
	})
	if err != nil {
		return false, apperr.Unavailable("upvote failed", err)
	}
	return added, nil
}

// WeeklyRemaining reports the unspent problem allowance for the UI.
func (s *Service) WeeklyRemaining(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, apperr.Unauthenticated("sign in first")
	}
	return s.ledger.Remaining(ctx, userID, quota.WindowWeekly, s.weeklyLimit)
}
