// Package protests manages protest groups and memberships. The chat
// channel for a group is created implicitly with the group; messaging
// lives in the chat package.
package protests

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/apperr"
	"github.com/janawaaz/janawaaz/src/types"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

type CreateInput struct {
	Title        string
	Description  string
	State        string
	District     string
	IsPublicJoin bool
}

// Create opens a group with the creator as approved owner.
func (s *Service) Create(ctx context.Context, creatorID string, in CreateInput) (*types.ProtestGroup, error) {
	if creatorID == "" {
		return nil, apperr.Unauthenticated("sign in to start a protest")
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperr.InvalidArgument("title is required")
	}

	g := types.ProtestGroup{
		Title:        in.Title,
		Description:  in.Description,
		State:        in.State,
		District:     in.District,
		CreatedBy:    creatorID,
		IsActive:     true,
		IsPublicJoin: in.IsPublicJoin,
		MemberCount:  1,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&g).Error; err != nil {
			return err
		}
		owner := types.ProtestMember{
			ProtestID:  g.ID,
			UserID:     creatorID,
			Role:       types.MemberRoleOwner,
			IsApproved: true,
		}
		return tx.Create(&owner).Error
	})
	if err != nil {
		return nil, apperr.Unavailable("protest store failed", err)
	}
	return &g, nil
}

type Filter struct {
	State    string
	District string
}

func (s *Service) List(ctx context.Context, f Filter) ([]types.ProtestGroup, error) {
	q := s.db.WithContext(ctx).Preload("Creator").
		Where("is_active = ?", true).
		Order("member_count desc").Limit(50)
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	if f.District != "" {
		q = q.Where("district = ?", f.District)
	}

	var groups []types.ProtestGroup
	if err := q.Find(&groups).Error; err != nil {
		return nil, apperr.Unavailable("protest list failed", err)
	}
	return groups, nil
}

// Join adds the user as a member. Open-join groups approve immediately;
// otherwise the membership stays pending until an owner approves it and
// the joiner sees public messages only.
func (s *Service) Join(ctx context.Context, protestID uint64, userID string) (*types.ProtestMember, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("sign in to join a protest")
	}

	var g types.ProtestGroup
	err := s.db.WithContext(ctx).First(&g, "id = ? AND is_active = ?", protestID, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("protest not found")
	}
	if err != nil {
		return nil, apperr.Unavailable("protest lookup failed", err)
	}

	var existing types.ProtestMember
	err = s.db.WithContext(ctx).First(&existing, "protest_id = ? AND user_id = ?", protestID, userID).Error
	if err == nil {
		return nil, apperr.FailedPrecondition("already joined this protest")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unavailable("membership lookup failed", err)
	}

	m := types.ProtestMember{
		ProtestID:  protestID,
		UserID:     userID,
		Role:       types.MemberRoleMember,
		IsApproved: g.IsPublicJoin,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		if m.IsApproved {
			return tx.Model(&types.ProtestGroup{}).
				Where("id = ?", protestID).
				UpdateColumn("member_count", gorm.Expr("member_count + 1")).Error
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Unavailable("membership store failed", err)
	}
	return &m, nil
}

// Approve flips a pending membership to approved. Only approved
// owner/admin members of the group may approve. Idempotent: approving an
// approved member changes nothing and does not double count.
func (s *Service) Approve(ctx context.Context, protestID uint64, actorID, userID string) error {
	if actorID == "" {
		return apperr.Unauthenticated("sign in first")
	}

	var actor types.ProtestMember
	err := s.db.WithContext(ctx).First(&actor, "protest_id = ? AND user_id = ?", protestID, actorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		(err == nil && (!actor.IsApproved || actor.Role == types.MemberRoleMember)) {
		return apperr.NotApproved("only protest owners and admins can approve members")
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Unavailable("membership lookup failed", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&types.ProtestMember{}).
			Where("protest_id = ? AND user_id = ? AND is_approved = ?", protestID, userID, false).
			UpdateColumn("is_approved", true)
		if res.Error != nil {
			return apperr.Unavailable("approve failed", res.Error)
		}
		if res.RowsAffected == 0 {
			// Either no such membership or already approved; distinguish
			// so callers do not mistake one for the other.
			var m types.ProtestMember
			err := tx.First(&m, "protest_id = ? AND user_id = ?", protestID, userID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("membership not found")
			}
			if err != nil {
				return apperr.Unavailable("membership lookup failed", err)
			}
			return nil
		}
		return tx.Model(&types.ProtestGroup{}).
			Where("id = ?", protestID).
			UpdateColumn("member_count", gorm.Expr("member_count + 1")).Error
	})
}
