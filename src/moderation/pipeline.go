// Package moderation is the reactive removal path: users report content,
// admins resolve reports, resolution with remove flips the target's
// is_removed flag. Removal is a soft delete; nothing is physically
// deleted here.
package moderation

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/apperr"
	"github.com/janawaaz/janawaaz/src/types"
)

type Action string

const (
	ActionRemove  Action = "remove"
	ActionDismiss Action = "dismiss"
)

// Content types accepted on reports. Only the first three map to a
// moderatable table; user and protest_group reports resolve without a
// removal action (those need a different remediation, e.g. blocking).
const (
	ContentProblem      = "problem"
	ContentWorldChat    = "world_chat"
	ContentProtestChat  = "protest_chat"
	ContentUser         = "user"
	ContentProtestGroup = "protest_group"
)

var reportableTypes = map[string]bool{
	ContentProblem:      true,
	ContentWorldChat:    true,
	ContentProtestChat:  true,
	ContentUser:         true,
	ContentProtestGroup: true,
}

// moderatable maps reportable content types onto their tables.
var moderatable = map[string]any{
	ContentProblem:     &types.Problem{},
	ContentWorldChat:   &types.WorldChatMessage{},
	ContentProtestChat: &types.ProtestChatMessage{},
}

type Pipeline struct {
	db *gorm.DB
}

func NewPipeline(db *gorm.DB) *Pipeline { return &Pipeline{db: db} }

// Report files a pending report by reporter against content.
func (p *Pipeline) Report(ctx context.Context, reporterID, contentType string, contentID uint64, reason string) (*types.Report, error) {
	if reporterID == "" {
		return nil, apperr.Unauthenticated("sign in to report content")
	}
	if !reportableTypes[contentType] {
		return nil, apperr.NotFound("unknown content type")
	}

	r := types.Report{
		ReporterID:  reporterID,
		ContentType: contentType,
		ContentID:   contentID,
		Reason:      reason,
		Status:      types.ReportPending,
	}
	if err := p.db.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, apperr.Unavailable("report store failed", err)
	}
	return &r, nil
}

// Resolve transitions a pending report to resolved or dismissed. The
// status update is conditional on pending so concurrent resolutions
// cannot both win; a report never leaves a terminal state.
func (p *Pipeline) Resolve(ctx context.Context, reportID uint64, action Action, note string) error {
	if action != ActionRemove && action != ActionDismiss {
		return apperr.FailedPrecondition("unknown resolution action")
	}

	var report types.Report
	err := p.db.WithContext(ctx).First(&report, "id = ?", reportID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("report not found")
	}
	if err != nil {
		return apperr.Unavailable("report lookup failed", err)
	}
	if report.Status != types.ReportPending {
		return apperr.FailedPrecondition("report already " + report.Status)
	}

	status := types.ReportResolved
	if action == ActionDismiss {
		status = types.ReportDismissed
	}
	// Win the pending -> terminal transition before touching content, and
	// in the same transaction, so a lost race removes nothing and a failed
	// removal leaves the report pending.
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&types.Report{}).
			Where("id = ? AND status = ?", reportID, types.ReportPending).
			Updates(map[string]any{"status": status, "admin_note": note})
		if res.Error != nil {
			return apperr.Unavailable("report update failed", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.FailedPrecondition("report already resolved")
		}
		if action == ActionRemove {
			return SoftRemove(tx, report.ContentType, report.ContentID)
		}
		return nil
	})
}

// SoftRemove flips is_removed on the referenced content. Idempotent:
// removing twice is a no-op. Content types without a moderatable table
// resolve without touching anything.
func SoftRemove(db *gorm.DB, contentType string, contentID uint64) error {
	model, ok := moderatable[contentType]
	if !ok {
		log.Printf("moderation: no removal action for content type %s", contentType)
		return nil
	}
	tx := db.Model(model).Where("id = ?", contentID).UpdateColumn("is_removed", true)
	if tx.Error != nil {
		return apperr.Unavailable("content removal failed", tx.Error)
	}
	return nil
}
