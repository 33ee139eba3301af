package types

import "time"

// User roles
const (
	RoleCitizen = "citizen"
	RoleLeader  = "leader"
	RoleAdmin   = "admin"
)

// Users (identity comes from Google sign-in, row created lazily)
type User struct {
	ID             string `gorm:"primaryKey;size:36"`
	Email          string `gorm:"size:256;uniqueIndex;not null"`
	Name           string `gorm:"size:128"`
	Username       string `gorm:"size:64;index"`
	AvatarURL      string `gorm:"size:512"`
	Role           string `gorm:"size:16;not null;default:citizen"` // citizen, leader, admin
	LeaderType     string `gorm:"size:64"`
	LeaderState    string `gorm:"size:64"`
	LeaderDistrict string `gorm:"size:64"`
	LeaderArea     string `gorm:"size:128"`
	LeaderVerified bool   `gorm:"default:false"`
	IsBlocked      bool   `gorm:"default:false"`
	FollowerCount  int    `gorm:"default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Per-user consumption counters for rolling windows. WindowID is the
// calendar date for the daily window and ISO week (e.g. 2024-W09) for the
// weekly one. The composite key is what makes the conditional increment in
// the quota ledger race-safe.
type QuotaCounter struct {
	UserID     string `gorm:"primaryKey;size:36"`
	WindowKind string `gorm:"primaryKey;size:16"`
	WindowID   string `gorm:"primaryKey;size:16"`
	Count      int    `gorm:"not null;default:0"`
	UpdatedAt  time.Time
}

// Citizen-reported local problems
type Problem struct {
	ID          uint64 `gorm:"primaryKey"`
	UserID      string `gorm:"size:36;index;not null"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Category    string `gorm:"size:64;index"`
	State       string `gorm:"size:64;index"`
	District    string `gorm:"size:64;index"`
	Latitude    float64
	Longitude   float64
	UpvoteCount int  `gorm:"default:0"`
	IsTrending  bool `gorm:"default:false"`
	IsRemoved   bool `gorm:"default:false"`
	CreatedAt   time.Time
	User        User `gorm:"foreignKey:UserID;references:ID"`
}

type ProblemUpvote struct {
	ID        uint64 `gorm:"primaryKey"`
	ProblemID uint64 `gorm:"uniqueIndex:uniq_problem_upvote;not null"`
	UserID    string `gorm:"uniqueIndex:uniq_problem_upvote;size:36;not null"`
	CreatedAt time.Time
}

// World chat (single global channel)
type WorldChatMessage struct {
	ID        uint64 `gorm:"primaryKey"`
	UserID    string `gorm:"size:36;index;not null"`
	Body      string `gorm:"type:text;not null"`
	IsRemoved bool   `gorm:"default:false"`
	CreatedAt time.Time
	User      User `gorm:"foreignKey:UserID;references:ID"`
}

// Personal chat (one implicit channel per unordered user pair)
type PersonalChatMessage struct {
	ID         uint64 `gorm:"primaryKey"`
	SenderID   string `gorm:"size:36;index;not null"`
	ReceiverID string `gorm:"size:36;index;not null"`
	Body       string `gorm:"type:text;not null"`
	IsRemoved  bool   `gorm:"default:false"`
	CreatedAt  time.Time
	Sender     User `gorm:"foreignKey:SenderID;references:ID"`
	Receiver   User `gorm:"foreignKey:ReceiverID;references:ID"`
}

// Protest groups
type ProtestGroup struct {
	ID              uint64 `gorm:"primaryKey"`
	Title           string `gorm:"size:255;not null"`
	Description     string `gorm:"type:text"`
	State           string `gorm:"size:64;index"`
	District        string `gorm:"size:64;index"`
	CreatedBy       string `gorm:"size:36;not null"`
	IsActive        bool   `gorm:"default:true"`
	IsPublicJoin    bool   `gorm:"default:true"`
	MemberCount     int    `gorm:"default:0"`
	PinnedMessageID *uint64
	CreatedAt       time.Time
	Creator         User `gorm:"foreignKey:CreatedBy;references:ID"`
}

// Membership roles within a protest
const (
	MemberRoleOwner  = "owner"
	MemberRoleAdmin  = "admin"
	MemberRoleMember = "member"
)

// At most one membership row per (protest, user) pair.
type ProtestMember struct {
	ProtestID  uint64 `gorm:"primaryKey"`
	UserID     string `gorm:"primaryKey;size:36"`
	Role       string `gorm:"size:16;not null;default:member"`
	IsApproved bool   `gorm:"default:false"`
	CreatedAt  time.Time
}

type ProtestChatMessage struct {
	ID        uint64 `gorm:"primaryKey"`
	ProtestID uint64 `gorm:"index;not null"`
	UserID    string `gorm:"size:36;index;not null"`
	Body      string `gorm:"type:text;not null"`
	IsPublic  bool   `gorm:"default:false"`
	IsPinned  bool   `gorm:"default:false"`
	IsPoll    bool   `gorm:"default:false"`
	IsRemoved bool   `gorm:"default:false"`
	CreatedAt time.Time
	User      User `gorm:"foreignKey:UserID;references:ID"`
}

// Poll attached to a protest channel. Options is a JSON array of
// {text, votes}; TotalVotes is denormalized for list rendering.
type Poll struct {
	ID         uint64 `gorm:"primaryKey"`
	ProtestID  uint64 `gorm:"index;not null"`
	MessageID  uint64 `gorm:"index;not null"`
	CreatedBy  string `gorm:"size:36;not null"`
	Question   string `gorm:"size:512;not null"`
	Options    string `gorm:"type:text;not null"`
	TotalVotes int    `gorm:"default:0"`
	IsActive   bool   `gorm:"default:true"`
	CreatedAt  time.Time
	Creator    User `gorm:"foreignKey:CreatedBy;references:ID"`
}

// One vote per user per poll.
type PollVote struct {
	PollID      uint64 `gorm:"primaryKey"`
	UserID      string `gorm:"primaryKey;size:36"`
	OptionIndex int    `gorm:"not null"`
	CreatedAt   time.Time
}

// Report statuses
const (
	ReportPending   = "pending"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

// User reports against content; pending until an admin resolves or
// dismisses, terminal afterwards.
type Report struct {
	ID          uint64 `gorm:"primaryKey"`
	ReporterID  string `gorm:"size:36;index;not null"`
	ContentType string `gorm:"size:32;not null"`
	ContentID   uint64 `gorm:"not null"`
	Reason      string `gorm:"size:512"`
	Status      string `gorm:"size:16;not null;default:pending"`
	AdminNote   string `gorm:"size:512"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Annual leader votes, one per (voter, leader, year)
type AnnualVote struct {
	ID        uint64 `gorm:"primaryKey"`
	VoterID   string `gorm:"uniqueIndex:uniq_annual_vote;size:36;not null"`
	LeaderID  string `gorm:"uniqueIndex:uniq_annual_vote;size:36;not null"`
	Year      int    `gorm:"uniqueIndex:uniq_annual_vote;not null"`
	VoteType  string `gorm:"size:16;not null"` // positive, negative
	CreatedAt time.Time
}

type Follow struct {
	ID          uint64 `gorm:"primaryKey"`
	FollowerID  string `gorm:"uniqueIndex:uniq_follow;size:36;not null"`
	FollowingID string `gorm:"uniqueIndex:uniq_follow;size:36;not null"`
	CreatedAt   time.Time
}

type Notification struct {
	ID        uint64 `gorm:"primaryKey"`
	UserID    string `gorm:"size:36;index;not null"`
	Kind      string `gorm:"size:32"`
	Body      string `gorm:"size:512"`
	IsRead    bool   `gorm:"default:false"`
	CreatedAt time.Time
}

// Settings
type Setting struct {
	ID    uint8  `gorm:"primaryKey"`
	Name  string `gorm:"size:32;not null;uniqueIndex"`
	Value string `gorm:"size:256;not null"`
}
